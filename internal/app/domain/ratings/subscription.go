package ratings

import (
	"sync"

	"github.com/reserveit/engine/internal/app/models"
)

// Subscription is a live, independently cancellable view over one user's
// ratings. Updates carries the full ordered set after every store-side change
// and closes once Stop deregisters the upstream listener.
type Subscription struct {
	updates chan []models.Rating
	done    chan struct{}
	stop    func()
	once    sync.Once
}

func newSubscription(stop func()) *Subscription {
	return &Subscription{
		updates: make(chan []models.Rating, 1),
		done:    make(chan struct{}),
		stop:    stop,
	}
}

func (s *Subscription) Updates() <-chan []models.Rating { return s.updates }

func (s *Subscription) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.stop()
	})
}

func (s *Subscription) emit(snapshot []models.Rating) bool {
	select {
	case s.updates <- snapshot:
		return true
	case <-s.done:
		return false
	}
}

package reservations

import (
	"sync"

	"github.com/reserveit/engine/internal/app/models"
)

// Subscription is a live, independently cancellable view over one user's
// reservations. Updates carries the full ordered set after every store-side
// change and closes once Stop deregisters the upstream listener.
type Subscription struct {
	updates chan []models.Reservation
	done    chan struct{}
	stop    func()
	once    sync.Once
}

func newSubscription(stop func()) *Subscription {
	return &Subscription{
		updates: make(chan []models.Reservation, 1),
		done:    make(chan struct{}),
		stop:    stop,
	}
}

func (s *Subscription) Updates() <-chan []models.Reservation { return s.updates }

func (s *Subscription) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.stop()
	})
}

// emit forwards a snapshot unless the subscription was stopped. Returns false
// once the subscription is done.
func (s *Subscription) emit(snapshot []models.Reservation) bool {
	select {
	case s.updates <- snapshot:
		return true
	case <-s.done:
		return false
	}
}

// Package location tracks device location permission and the latest position
// fix, fanning updates out to any number of subscribers. The platform
// location manager itself is an external collaborator behind the Source
// interface.
package location

import (
	"sync"

	"go.uber.org/zap"

	"github.com/reserveit/engine/internal/app/models"
)

// Authorization is the device location permission state.
type Authorization int

const (
	AuthNotDetermined Authorization = iota
	AuthDenied
	AuthRestricted
	AuthWhenInUse
	AuthAlways
)

func (a Authorization) String() string {
	switch a {
	case AuthDenied:
		return "denied"
	case AuthRestricted:
		return "restricted"
	case AuthWhenInUse:
		return "whenInUse"
	case AuthAlways:
		return "always"
	default:
		return "notDetermined"
	}
}

// Granted reports whether the state allows fix delivery.
func (a Authorization) Granted() bool {
	return a == AuthWhenInUse || a == AuthAlways
}

// Source abstracts the platform location manager. Implementations invoke the
// registered Handler from their own delivery thread; the Tracker serializes
// internally.
type Source interface {
	SetHandler(Handler)
	RequestAuthorization()
	StartUpdates()
	StopUpdates()
}

// Handler receives platform callbacks.
type Handler interface {
	AuthorizationChanged(Authorization)
	FixUpdated(models.Coordinate)
	FixFailed(error)
}

// Update is one tracker event: the current authorization, the latest known
// fix (nil before the first one), and a transient error when a fix attempt
// failed. A failed attempt never clears the last good fix.
type Update struct {
	Authorization Authorization
	Fix           *models.Coordinate
	Err           error
}

// Subscription is one subscriber's independently cancellable update stream.
type Subscription struct {
	tracker *Tracker
	id      int
	ch      chan Update
	once    sync.Once
}

func (s *Subscription) Updates() <-chan Update { return s.ch }

func (s *Subscription) Stop() {
	s.once.Do(func() {
		s.tracker.removeSubscriber(s.id)
	})
}

type Tracker struct {
	source Source
	logger *zap.Logger

	mu           sync.Mutex
	auth         Authorization
	fix          *models.Coordinate
	wantUpdates  bool
	promptIssued bool
	subscribers  map[int]chan Update
	nextSubID    int
}

var _ Handler = (*Tracker)(nil)

func NewTracker(source Source, logger *zap.Logger) *Tracker {
	t := &Tracker{
		source:      source,
		logger:      logger,
		auth:        AuthNotDetermined,
		subscribers: make(map[int]chan Update),
	}
	source.SetHandler(t)
	return t
}

// CurrentAuthorization returns the last known permission state.
func (t *Tracker) CurrentAuthorization() Authorization {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.auth
}

// LatestFix returns the last good fix, if any was ever acquired.
func (t *Tracker) LatestFix() (models.Coordinate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fix == nil {
		return models.Coordinate{}, false
	}
	return *t.fix, true
}

// RequestUpdates starts continuous fix delivery. Idempotent: the permission
// prompt is issued at most once per tracker.
func (t *Tracker) RequestUpdates() {
	t.mu.Lock()
	t.wantUpdates = true
	prompt := !t.promptIssued
	t.promptIssued = true
	t.mu.Unlock()

	if prompt {
		t.source.RequestAuthorization()
	}
	t.source.StartUpdates()
}

// StopUpdates suspends delivery. The last known fix is retained.
func (t *Tracker) StopUpdates() {
	t.mu.Lock()
	t.wantUpdates = false
	t.mu.Unlock()

	t.source.StopUpdates()
}

// Subscribe registers a new update stream. The current state is delivered
// immediately so late subscribers never wait for the next platform event.
func (t *Tracker) Subscribe() *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub := &Subscription{
		tracker: t,
		id:      t.nextSubID,
		ch:      make(chan Update, 8),
	}
	t.nextSubID++
	t.subscribers[sub.id] = sub.ch
	sub.ch <- Update{Authorization: t.auth, Fix: t.fix}
	return sub
}

// AuthorizationChanged records the new permission state. A grant auto-resumes
// fix delivery for anyone who already requested updates.
func (t *Tracker) AuthorizationChanged(auth Authorization) {
	t.mu.Lock()
	t.auth = auth
	resume := auth.Granted() && t.wantUpdates
	t.broadcastLocked(Update{Authorization: auth, Fix: t.fix})
	t.mu.Unlock()

	t.logger.Info("Location authorization changed", zap.String("status", auth.String()))
	if resume {
		t.source.StartUpdates()
	}
}

func (t *Tracker) FixUpdated(fix models.Coordinate) {
	t.mu.Lock()
	t.fix = &fix
	t.broadcastLocked(Update{Authorization: t.auth, Fix: t.fix})
	t.mu.Unlock()
}

// FixFailed reports a transient acquisition failure. The last good fix stays
// in place.
func (t *Tracker) FixFailed(err error) {
	t.logger.Warn("Location fix acquisition failed", zap.Error(err))

	t.mu.Lock()
	t.broadcastLocked(Update{Authorization: t.auth, Fix: t.fix, Err: err})
	t.mu.Unlock()
}

func (t *Tracker) broadcastLocked(update Update) {
	for _, ch := range t.subscribers {
		select {
		case ch <- update:
		default:
			// Slow consumer: replace the oldest pending update.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}

func (t *Tracker) removeSubscriber(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ch, ok := t.subscribers[id]; ok {
		delete(t.subscribers, id)
		close(ch)
	}
}

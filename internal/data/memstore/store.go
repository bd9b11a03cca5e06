// Package memstore keeps every repository in process memory. It backs the
// memory storage driver and the service tests.
package memstore

import (
	"context"
	"sync"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"

	"github.com/google/uuid"
)

// Store holds all entities. Values are cloned on the way in and out so callers
// never share memory with the store.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]*entity.User
	sessions     map[uuid.UUID]*entity.Session
	events       map[uuid.UUID]*entity.Event
	seats        map[uuid.UUID][]*entity.Seat
	bookings     map[uuid.UUID]*entity.Booking
	bookingOrder []uuid.UUID
	intents      map[uuid.UUID]*entity.PaymentIntent

	eventLocksMu sync.Mutex
	eventLocks   map[uuid.UUID]*eventLock
}

// eventLock is dropped from the map once no caller holds or waits on it.
type eventLock struct {
	mu   sync.Mutex
	refs int
}

func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*entity.User),
		sessions:   make(map[uuid.UUID]*entity.Session),
		events:     make(map[uuid.UUID]*entity.Event),
		seats:      make(map[uuid.UUID][]*entity.Seat),
		bookings:   make(map[uuid.UUID]*entity.Booking),
		intents:    make(map[uuid.UUID]*entity.PaymentIntent),
		eventLocks: make(map[uuid.UUID]*eventLock),
	}
}

// Repository exposes the store through the repository interfaces.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Tx:            &transactor{s: s},
		User:          &userRepo{s: s},
		Session:       &sessionRepo{s: s},
		Event:         &eventRepo{s: s},
		Seat:          &seatRepo{s: s},
		Booking:       &bookingRepo{s: s},
		PaymentIntent: &intentRepo{s: s},
	}
}

type transactor struct {
	s *Store
}

// WithTx has nothing to isolate: every repository call is atomic on its own and
// services validate before they write.
func (t *transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (t *transactor) WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context) error) error {
	lock := t.s.acquireEventLock(eventID)
	lock.mu.Lock()
	defer t.s.releaseEventLock(eventID, lock)

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (s *Store) acquireEventLock(id uuid.UUID) *eventLock {
	s.eventLocksMu.Lock()
	defer s.eventLocksMu.Unlock()

	lock, ok := s.eventLocks[id]
	if !ok {
		lock = &eventLock{}
		s.eventLocks[id] = lock
	}
	lock.refs++
	return lock
}

func (s *Store) releaseEventLock(id uuid.UUID, lock *eventLock) {
	lock.mu.Unlock()

	s.eventLocksMu.Lock()
	defer s.eventLocksMu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(s.eventLocks, id)
	}
}

var (
	_ repository.Transactor              = (*transactor)(nil)
	_ repository.UserRepository          = (*userRepo)(nil)
	_ repository.SessionRepository       = (*sessionRepo)(nil)
	_ repository.EventRepository         = (*eventRepo)(nil)
	_ repository.SeatRepository          = (*seatRepo)(nil)
	_ repository.BookingRepository       = (*bookingRepo)(nil)
	_ repository.PaymentIntentRepository = (*intentRepo)(nil)
)

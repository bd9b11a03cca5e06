package repository

import (
	"context"

	"event-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transactor groups repository calls into one atomic unit.
type Transactor interface {
	// WithTx runs fn inside a single transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// WithEventLock runs fn inside a transaction while holding an exclusive lock
	// scoped to eventID. The lock is not reentrant.
	WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context) error) error
}

type Repository struct {
	Tx            Transactor
	User          UserRepository
	Session       SessionRepository
	Event         EventRepository
	Seat          SeatRepository
	Booking       BookingRepository
	PaymentIntent PaymentIntentRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tx:            NewTransactor(db, log),
		User:          NewUserRepository(db, log),
		Session:       NewSessionRepository(db, log),
		Event:         NewEventRepository(db, log),
		Seat:          NewSeatRepository(db, log),
		Booking:       NewBookingRepository(db, log),
		PaymentIntent: NewPaymentIntentRepository(db, log),
	}
}

type transactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactor(db database.PgxIface, log *zap.Logger) Transactor {
	return &transactor{
		db:  db,
		log: log.With(zap.String("repository", "tx")),
	}
}

func (t *transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithTx(ctx, t.db, fn)
}

// WithEventLock takes a transaction-scoped advisory lock keyed by the event id, so
// it also serializes work on events that have already been deleted.
func (t *transactor) WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context) error) error {
	return database.WithTx(ctx, t.db, func(ctx context.Context) error {
		conn := database.Conn(ctx, t.db)
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, eventID.String()); err != nil {
			t.log.Error("Failed to acquire event lock",
				zap.Error(err),
				zap.String("event_id", eventID.String()),
			)
			return err
		}
		return fn(ctx)
	})
}

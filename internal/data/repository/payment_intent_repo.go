package repository

import (
	"context"
	"fmt"

	"event-booking/internal/data/entity"
	"event-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentIntentRepository interface {
	Create(ctx context.Context, intent *entity.PaymentIntent) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentIntent, error)
	Update(ctx context.Context, intent *entity.PaymentIntent) error
}

type paymentIntentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentIntentRepository(db database.PgxIface, log *zap.Logger) PaymentIntentRepository {
	return &paymentIntentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_intent")),
	}
}

func (r *paymentIntentRepository) Create(ctx context.Context, intent *entity.PaymentIntent) error {
	query := `
		INSERT INTO payment_intents (id, event_id, user_id, purchaser_name, purchaser_email, seat_ids,
		                             amount, status, booking_id, provider_ref, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		intent.ID,
		intent.EventID,
		intent.UserID,
		intent.PurchaserName,
		intent.PurchaserEmail,
		intent.SeatIDs,
		intent.Amount,
		intent.Status,
		intent.BookingID,
		intent.ProviderRef,
		intent.ExpiresAt,
		intent.CreatedAt,
		intent.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment intent",
			zap.Error(err),
			zap.String("event_id", intent.EventID.String()),
		)
		return fmt.Errorf("failed to create payment intent: %w", err)
	}

	return nil
}

func (r *paymentIntentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentIntent, error) {
	query := `
		SELECT id, event_id, user_id, purchaser_name, purchaser_email, seat_ids,
		       amount, status, booking_id, provider_ref, expires_at, created_at, updated_at
		FROM payment_intents
		WHERE id = $1
	`
	if database.TxFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}

	var intent entity.PaymentIntent
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&intent.ID,
		&intent.EventID,
		&intent.UserID,
		&intent.PurchaserName,
		&intent.PurchaserEmail,
		&intent.SeatIDs,
		&intent.Amount,
		&intent.Status,
		&intent.BookingID,
		&intent.ProviderRef,
		&intent.ExpiresAt,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment intent",
			zap.Error(err),
			zap.String("intent_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find payment intent: %w", err)
	}

	return &intent, nil
}

func (r *paymentIntentRepository) Update(ctx context.Context, intent *entity.PaymentIntent) error {
	query := `
		UPDATE payment_intents
		SET status = $2, booking_id = $3, provider_ref = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query,
		intent.ID,
		intent.Status,
		intent.BookingID,
		intent.ProviderRef,
		intent.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update payment intent",
			zap.Error(err),
			zap.String("intent_id", intent.ID.String()),
		)
		return fmt.Errorf("failed to update payment intent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment intent %s not found", intent.ID)
	}

	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Event, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Event, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustBookingCount adds delta to booking_count, never going below zero.
	AdjustBookingCount(ctx context.Context, id uuid.UUID, delta int, now time.Time) error
}

type eventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEventRepository(db database.PgxIface, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

const eventColumns = `id, name, date, location, description, seat_rows, seat_columns,
		       pricing, booking_count, created_at, updated_at`

func scanEvent(row pgx.Row) (*entity.Event, error) {
	var (
		event   entity.Event
		pricing []byte
	)
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.Location,
		&event.Description,
		&event.Rows,
		&event.Columns,
		&pricing,
		&event.BookingCount,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Pricing = entity.Pricing{}
	if len(pricing) > 0 {
		if err := json.Unmarshal(pricing, &event.Pricing); err != nil {
			return nil, fmt.Errorf("decode pricing: %w", err)
		}
	}
	return &event, nil
}

func encodePricing(p entity.Pricing) ([]byte, error) {
	if p == nil {
		p = entity.Pricing{}
	}
	return json.Marshal(p)
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	pricing, err := encodePricing(event.Pricing)
	if err != nil {
		return fmt.Errorf("encode pricing: %w", err)
	}

	query := `
		INSERT INTO events (id, name, date, location, description, seat_rows, seat_columns,
		                    pricing, booking_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = database.Conn(ctx, r.db).Exec(ctx, query,
		event.ID,
		event.Name,
		event.Date,
		event.Location,
		event.Description,
		event.Rows,
		event.Columns,
		pricing,
		event.BookingCount,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("name", event.Name),
		)
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("find event by ID %s: %w", id.String(), err)
	}

	return event, nil
}

func (r *eventRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Event, error) {
	events := make(map[uuid.UUID]*entity.Event, len(ids))
	if len(ids) == 0 {
		return events, nil
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ANY($1)`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find events by IDs", zap.Error(err))
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events[event.ID] = event
	}

	return events, rows.Err()
}

func (r *eventRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC, created_at ASC LIMIT $1 OFFSET $2`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list events", zap.Error(err))
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *eventRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		r.log.Error("Failed to count events", zap.Error(err))
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	pricing, err := encodePricing(event.Pricing)
	if err != nil {
		return fmt.Errorf("encode pricing: %w", err)
	}

	query := `
		UPDATE events
		SET name = $2, date = $3, location = $4, description = $5,
		    seat_rows = $6, seat_columns = $7, pricing = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query,
		event.ID,
		event.Name,
		event.Date,
		event.Location,
		event.Description,
		event.Rows,
		event.Columns,
		pricing,
		event.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update event",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return fmt.Errorf("failed to update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s not found", event.ID)
	}

	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := database.Conn(ctx, r.db).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete event",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s not found", id)
	}

	return nil
}

func (r *eventRepository) AdjustBookingCount(ctx context.Context, id uuid.UUID, delta int, now time.Time) error {
	query := `
		UPDATE events
		SET booking_count = GREATEST(booking_count + $2, 0), updated_at = $3
		WHERE id = $1
	`

	if _, err := database.Conn(ctx, r.db).Exec(ctx, query, id, delta, now); err != nil {
		r.log.Error("Failed to adjust booking count",
			zap.Error(err),
			zap.String("event_id", id.String()),
			zap.Int("delta", delta),
		)
		return fmt.Errorf("failed to adjust booking count: %w", err)
	}

	return nil
}

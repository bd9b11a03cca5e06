package repository

import (
	"context"
	"fmt"
	"strings"

	"event-booking/internal/data/entity"
	"event-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SeatRepository interface {
	// ReplaceLayout drops every seat of the event and inserts seats in their place.
	ReplaceLayout(ctx context.Context, eventID uuid.UUID, seats []*entity.Seat) error
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.Seat, error)
	FindByIDs(ctx context.Context, eventID uuid.UUID, seatIDs []string) ([]*entity.Seat, error)
	UpdateBatch(ctx context.Context, seats []*entity.Seat) error

	// CountBookable returns the number of bookable seats per event.
	CountBookable(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

const seatColumns = `seat_id, event_id, seat_row, seat_column, tier, available, price, held_by, updated_at`

func scanSeats(rows pgx.Rows) ([]*entity.Seat, error) {
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		var seat entity.Seat
		if err := rows.Scan(
			&seat.ID,
			&seat.EventID,
			&seat.Row,
			&seat.Column,
			&seat.Tier,
			&seat.Available,
			&seat.Price,
			&seat.HeldBy,
			&seat.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, &seat)
	}
	return seats, rows.Err()
}

func (r *seatRepository) ReplaceLayout(ctx context.Context, eventID uuid.UUID, seats []*entity.Seat) error {
	conn := database.Conn(ctx, r.db)

	if _, err := conn.Exec(ctx, `DELETE FROM seats WHERE event_id = $1`, eventID); err != nil {
		r.log.Error("Failed to clear seats",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return fmt.Errorf("failed to clear seats: %w", err)
	}

	if len(seats) == 0 {
		return nil
	}

	// Build batch insert
	var query strings.Builder
	query.WriteString(`INSERT INTO seats (` + seatColumns + `) VALUES `)
	args := make([]any, 0, len(seats)*9)

	for i, seat := range seats {
		if i > 0 {
			query.WriteString(", ")
		}
		fmt.Fprintf(&query, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*9+1, i*9+2, i*9+3, i*9+4, i*9+5, i*9+6, i*9+7, i*9+8, i*9+9)

		args = append(args,
			seat.ID,
			eventID,
			seat.Row,
			seat.Column,
			seat.Tier,
			seat.Available,
			seat.Price,
			seat.HeldBy,
			seat.UpdatedAt,
		)
	}

	if _, err := conn.Exec(ctx, query.String(), args...); err != nil {
		r.log.Error("Failed to create batch seats",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.Int("count", len(seats)),
		)
		return fmt.Errorf("failed to create batch seats: %w", err)
	}

	return nil
}

func (r *seatRepository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE event_id = $1 ORDER BY seat_row, seat_column`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to find seats by event",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to find seats: %w", err)
	}

	return scanSeats(rows)
}

// FindByIDs locks the returned rows when called inside a transaction.
func (r *seatRepository) FindByIDs(ctx context.Context, eventID uuid.UUID, seatIDs []string) ([]*entity.Seat, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + seatColumns + `
		FROM seats
		WHERE event_id = $1 AND seat_id = ANY($2)
		ORDER BY seat_row, seat_column`
	if database.TxFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, eventID, seatIDs)
	if err != nil {
		r.log.Error("Failed to find seats for booking",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.Strings("seat_ids", seatIDs),
		)
		return nil, fmt.Errorf("failed to find seats: %w", err)
	}

	return scanSeats(rows)
}

func (r *seatRepository) UpdateBatch(ctx context.Context, seats []*entity.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	query := `
		UPDATE seats
		SET tier = $3, available = $4, price = $5, held_by = $6, updated_at = $7
		WHERE event_id = $1 AND seat_id = $2
	`

	batch := &pgx.Batch{}
	for _, seat := range seats {
		batch.Queue(query, seat.EventID, seat.ID, seat.Tier, seat.Available, seat.Price, seat.HeldBy, seat.UpdatedAt)
	}

	return database.WithTx(ctx, r.db, func(ctx context.Context) error {
		tx := database.TxFromContext(ctx)
		results := tx.SendBatch(ctx, batch)
		for _, seat := range seats {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				r.log.Error("Failed to update seat",
					zap.Error(err),
					zap.String("event_id", seat.EventID.String()),
					zap.String("seat_id", seat.ID),
				)
				return fmt.Errorf("failed to update seat %s: %w", seat.ID, err)
			}
			if tag.RowsAffected() == 0 {
				results.Close()
				return fmt.Errorf("seat %s not found", seat.ID)
			}
		}
		return results.Close()
	})
}

func (r *seatRepository) CountBookable(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT event_id, COUNT(*)
		FROM seats
		WHERE event_id = ANY($1)
		  AND tier <> 'blocked'
		  AND available
		  AND held_by IS NULL
		GROUP BY event_id
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, eventIDs)
	if err != nil {
		r.log.Error("Failed to count bookable seats", zap.Error(err))
		return nil, fmt.Errorf("failed to count seats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    uuid.UUID
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan seat count: %w", err)
		}
		counts[id] = count
	}

	return counts, rows.Err()
}

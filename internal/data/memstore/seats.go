package memstore

import (
	"context"
	"fmt"

	"event-booking/internal/data/entity"

	"github.com/google/uuid"
)

type seatRepo struct {
	s *Store
}

func (r *seatRepo) ReplaceLayout(ctx context.Context, eventID uuid.UUID, seats []*entity.Seat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(seats) == 0 {
		delete(r.s.seats, eventID)
		return nil
	}

	layout := make([]*entity.Seat, len(seats))
	for i, seat := range seats {
		c := seat.Clone()
		c.EventID = eventID
		layout[i] = c
	}
	r.s.seats[eventID] = layout
	return nil
}

func (r *seatRepo) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.Seat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	layout := r.s.seats[eventID]
	out := make([]*entity.Seat, len(layout))
	for i, seat := range layout {
		out[i] = seat.Clone()
	}
	return out, nil
}

func (r *seatRepo) FindByIDs(ctx context.Context, eventID uuid.UUID, seatIDs []string) ([]*entity.Seat, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}

	want := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		want[id] = struct{}{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.Seat
	for _, seat := range r.s.seats[eventID] {
		if _, ok := want[seat.ID]; ok {
			out = append(out, seat.Clone())
		}
	}
	return out, nil
}

// UpdateBatch applies all seats or none of them.
func (r *seatRepo) UpdateBatch(ctx context.Context, seats []*entity.Seat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	targets := make([]*entity.Seat, len(seats))
	for i, seat := range seats {
		current := r.s.findSeat(seat.EventID, seat.ID)
		if current == nil {
			return fmt.Errorf("seat %s not found", seat.ID)
		}
		targets[i] = current
	}

	for i, seat := range seats {
		t := targets[i]
		t.Tier = seat.Tier
		t.Available = seat.Available
		t.Price = seat.Price
		t.UpdatedAt = seat.UpdatedAt
		t.HeldBy = nil
		if seat.HeldBy != nil {
			id := *seat.HeldBy
			t.HeldBy = &id
		}
	}
	return nil
}

func (r *seatRepo) CountBookable(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[uuid.UUID]int, len(eventIDs))
	for _, id := range eventIDs {
		n := 0
		for _, seat := range r.s.seats[id] {
			if seat.Bookable() {
				n++
			}
		}
		if n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

func (s *Store) findSeat(eventID uuid.UUID, seatID string) *entity.Seat {
	row, column, ok := entity.ParseSeatID(seatID)
	layout := s.seats[eventID]
	if ok {
		// layouts are stored row-major, so the position is known up front
		if e, found := s.events[eventID]; found && column <= e.Columns {
			idx := (row-1)*e.Columns + (column - 1)
			if idx < len(layout) && layout[idx].ID == seatID {
				return layout[idx]
			}
		}
	}
	for _, seat := range layout {
		if seat.ID == seatID {
			return seat
		}
	}
	return nil
}

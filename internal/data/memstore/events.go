package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"event-booking/internal/data/entity"

	"github.com/google/uuid"
)

type eventRepo struct {
	s *Store
}

func (r *eventRepo) Create(ctx context.Context, event *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[event.ID]; ok {
		return fmt.Errorf("event %s already exists", event.ID)
	}
	r.s.events[event.ID] = event.Clone()
	return nil
}

func (r *eventRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.events[id].Clone(), nil
}

func (r *eventRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[uuid.UUID]*entity.Event, len(ids))
	for _, id := range ids {
		if e, ok := r.s.events[id]; ok {
			out[id] = e.Clone()
		}
	}
	return out, nil
}

func (r *eventRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.Event, error) {
	r.s.mu.RLock()
	all := make([]*entity.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		all = append(all, e.Clone())
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.Before(all[j].Date)
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	return page(all, limit, offset), nil
}

func (r *eventRepo) CountAll(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.events)), nil
}

func (r *eventRepo) Update(ctx context.Context, event *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.events[event.ID]
	if !ok {
		return fmt.Errorf("event %s not found", event.ID)
	}
	updated := event.Clone()
	// booking_count only moves through AdjustBookingCount
	updated.BookingCount = current.BookingCount
	updated.CreatedAt = current.CreatedAt
	r.s.events[event.ID] = updated
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return fmt.Errorf("event %s not found", id)
	}
	delete(r.s.events, id)
	delete(r.s.seats, id)
	return nil
}

func (r *eventRepo) AdjustBookingCount(ctx context.Context, id uuid.UUID, delta int, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil
	}
	e.BookingCount += delta
	if e.BookingCount < 0 {
		e.BookingCount = 0
	}
	e.UpdatedAt = now
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

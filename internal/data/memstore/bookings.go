package memstore

import (
	"context"
	"fmt"
	"strings"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"

	"github.com/google/uuid"
)

type bookingRepo struct {
	s *Store
}

func (r *bookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bookings[booking.ID]; ok {
		return fmt.Errorf("booking %s already exists", booking.ID)
	}
	r.s.bookings[booking.ID] = booking.Clone()
	r.s.bookingOrder = append(r.s.bookingOrder, booking.ID)
	return nil
}

func (r *bookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.bookings[id].Clone(), nil
}

func (r *bookingRepo) FindAll(ctx context.Context, filter repository.BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	return page(r.matching(filter), limit, offset), nil
}

func (r *bookingRepo) Count(ctx context.Context, filter repository.BookingFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

// matching returns bookings newest first.
func (r *bookingRepo) matching(filter repository.BookingFilter) []*entity.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.Booking
	for i := len(r.s.bookingOrder) - 1; i >= 0; i-- {
		b := r.s.bookings[r.s.bookingOrder[i]]
		if filter.UserID != nil && (b.UserID == nil || *b.UserID != *filter.UserID) {
			continue
		}
		if filter.EventID != nil && b.EventID != *filter.EventID {
			continue
		}
		if filter.PurchaserEmail != "" && !strings.EqualFold(b.PurchaserEmail, filter.PurchaserEmail) {
			continue
		}
		out = append(out, b.Clone())
	}
	return out
}

func (r *bookingRepo) Update(ctx context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.bookings[booking.ID]
	if !ok {
		return fmt.Errorf("booking %s not found", booking.ID)
	}
	current.Status = booking.Status
	current.UpdatedAt = booking.UpdatedAt
	current.CancelledAt = nil
	if booking.CancelledAt != nil {
		t := *booking.CancelledAt
		current.CancelledAt = &t
	}
	return nil
}

type intentRepo struct {
	s *Store
}

func (r *intentRepo) Create(ctx context.Context, intent *entity.PaymentIntent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.intents[intent.ID]; ok {
		return fmt.Errorf("payment intent %s already exists", intent.ID)
	}
	r.s.intents[intent.ID] = intent.Clone()
	return nil
}

func (r *intentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentIntent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.intents[id].Clone(), nil
}

func (r *intentRepo) Update(ctx context.Context, intent *entity.PaymentIntent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.intents[intent.ID]
	if !ok {
		return fmt.Errorf("payment intent %s not found", intent.ID)
	}
	updated := intent.Clone()
	current.Status = updated.Status
	current.BookingID = updated.BookingID
	current.ProviderRef = updated.ProviderRef
	current.UpdatedAt = updated.UpdatedAt
	return nil
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentIntentStatus string

const (
	PaymentIntentPending   PaymentIntentStatus = "pending"
	PaymentIntentCommitted PaymentIntentStatus = "committed"
	PaymentIntentFailed    PaymentIntentStatus = "failed"
	PaymentIntentExpired   PaymentIntentStatus = "expired"
)

// PaymentIntent is the reserved shape of a booking awaiting external payment
// authorization. It does not hold seats.
type PaymentIntent struct {
	Base
	EventID        uuid.UUID           `db:"event_id"`
	UserID         *uuid.UUID          `db:"user_id"`
	PurchaserName  string              `db:"purchaser_name"`
	PurchaserEmail string              `db:"purchaser_email"`
	SeatIDs        []string            `db:"seat_ids"`
	Amount         float64             `db:"amount"`
	Status         PaymentIntentStatus `db:"status"`
	BookingID      *uuid.UUID          `db:"booking_id"`
	ProviderRef    *string             `db:"provider_ref"`
	ExpiresAt      time.Time           `db:"expires_at"`
}

func (p *PaymentIntent) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}

func (p *PaymentIntent) Clone() *PaymentIntent {
	if p == nil {
		return nil
	}
	c := *p
	c.SeatIDs = append([]string(nil), p.SeatIDs...)
	if p.UserID != nil {
		id := *p.UserID
		c.UserID = &id
	}
	if p.BookingID != nil {
		id := *p.BookingID
		c.BookingID = &id
	}
	if p.ProviderRef != nil {
		ref := *p.ProviderRef
		c.ProviderRef = &ref
	}
	return &c
}

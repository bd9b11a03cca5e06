package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

type Booking struct {
	Base
	Reference      string        `db:"reference"`
	EventID        uuid.UUID     `db:"event_id"`
	UserID         *uuid.UUID    `db:"user_id"`
	PurchaserName  string        `db:"purchaser_name"`
	PurchaserEmail string        `db:"purchaser_email"`
	SeatIDs        []string      `db:"seat_ids"`
	TotalAmount    float64       `db:"total_amount"`
	Status         BookingStatus `db:"status"`
	CancelledAt    *time.Time    `db:"cancelled_at"`
}

func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.SeatIDs = append([]string(nil), b.SeatIDs...)
	if b.UserID != nil {
		id := *b.UserID
		c.UserID = &id
	}
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

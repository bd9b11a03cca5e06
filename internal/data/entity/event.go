package entity

import (
	"time"
)

type TierPrice struct {
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// Pricing is the authoritative price table of an event, keyed by tier.
// Seats keep a frozen copy of their tier price taken at assignment time.
type Pricing map[Tier]TierPrice

func (p Pricing) Clone() Pricing {
	if p == nil {
		return nil
	}
	out := make(Pricing, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type Event struct {
	Base
	Name         string    `db:"name"`
	Date         time.Time `db:"date"`
	Location     string    `db:"location"`
	Description  string    `db:"description"`
	Rows         int       `db:"rows"`
	Columns      int       `db:"columns"`
	Pricing      Pricing   `db:"pricing"`
	BookingCount int       `db:"booking_count"`
}

func (e *Event) TotalSeats() int {
	return e.Rows * e.Columns
}

// Locked reports whether pricing and seating layout are frozen by confirmed bookings.
func (e *Event) Locked() bool {
	return e.BookingCount > 0
}

func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Pricing = e.Pricing.Clone()
	return &c
}

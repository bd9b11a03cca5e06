package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Seat struct {
	ID        string     `db:"seat_id"` // "{row}-{column}", 1-indexed
	EventID   uuid.UUID  `db:"event_id"`
	Row       int        `db:"seat_row"`
	Column    int        `db:"seat_column"`
	Tier      Tier       `db:"tier"`
	Available bool       `db:"available"`
	Price     float64    `db:"price"`
	HeldBy    *uuid.UUID `db:"held_by"` // confirmed booking holding the seat
	UpdatedAt time.Time  `db:"updated_at"`
}

func SeatID(row, column int) string {
	return fmt.Sprintf("%d-%d", row, column)
}

// ParseSeatID splits a "{row}-{column}" identifier.
func ParseSeatID(id string) (row, column int, ok bool) {
	r, c, found := strings.Cut(id, "-")
	if !found {
		return 0, 0, false
	}
	row, err := strconv.Atoi(r)
	if err != nil || row < 1 {
		return 0, 0, false
	}
	column, err = strconv.Atoi(c)
	if err != nil || column < 1 {
		return 0, 0, false
	}
	return row, column, true
}

// Bookable reports whether the seat can be claimed by a new booking.
func (s *Seat) Bookable() bool {
	return s.Tier != TierBlocked && s.Available && s.HeldBy == nil
}

func (s *Seat) Clone() *Seat {
	if s == nil {
		return nil
	}
	c := *s
	if s.HeldBy != nil {
		id := *s.HeldBy
		c.HeldBy = &id
	}
	return &c
}

// GenerateSeats builds a rows×columns grid in row-major order. Every seat starts
// blocked, unavailable and free of charge until a tier is painted onto it.
func GenerateSeats(eventID uuid.UUID, rows, columns int, now time.Time) []*Seat {
	if rows < 1 || columns < 1 {
		return nil
	}
	seats := make([]*Seat, 0, rows*columns)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= columns; c++ {
			seats = append(seats, &Seat{
				ID:        SeatID(r, c),
				EventID:   eventID,
				Row:       r,
				Column:    c,
				Tier:      TierBlocked,
				Available: false,
				Price:     0,
				UpdatedAt: now,
			})
		}
	}
	return seats
}

// SeatingLayout is the grid of an event together with its seats.
type SeatingLayout struct {
	Rows    int
	Columns int
	Seats   []*Seat
}

// BookedSeats is the projection of seats currently held by confirmed bookings.
func (l *SeatingLayout) BookedSeats() []string {
	booked := make([]string, 0)
	for _, s := range l.Seats {
		if s.HeldBy != nil {
			booked = append(booked, s.ID)
		}
	}
	return booked
}

func (l *SeatingLayout) AvailableCount() int {
	n := 0
	for _, s := range l.Seats {
		if s.Bookable() {
			n++
		}
	}
	return n
}

// HasSellableSeat reports whether at least one seat carries a non-blocked tier.
func (l *SeatingLayout) HasSellableSeat() bool {
	for _, s := range l.Seats {
		if s.Tier.Sellable() {
			return true
		}
	}
	return false
}

package response

import (
	"time"

	"event-booking/internal/data/entity"
)

type TierPriceResponse struct {
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

type SeatResponse struct {
	ID        string      `json:"id"`
	Row       int         `json:"row"`
	Column    int         `json:"column"`
	Tier      entity.Tier `json:"tier"`
	Available bool        `json:"available"`
	Price     float64     `json:"price"`
}

type SeatingLayoutResponse struct {
	Rows        int            `json:"rows"`
	Columns     int            `json:"columns"`
	Seats       []SeatResponse `json:"seats,omitempty"`
	BookedSeats []string       `json:"booked_seats,omitempty"`
}

type EventResponse struct {
	ID             string                       `json:"id"`
	Name           string                       `json:"name"`
	Date           time.Time                    `json:"date"`
	Location       string                       `json:"location"`
	Description    string                       `json:"description"`
	AvailableSeats int                          `json:"available_seats"`
	TotalSeats     int                          `json:"total_seats"`
	BookingCount   int                          `json:"booking_count"`
	Pricing        map[string]TierPriceResponse `json:"pricing"`
	SeatingLayout  SeatingLayoutResponse        `json:"seating_layout"`
	Bookable       bool                         `json:"bookable"`
	Locked         bool                         `json:"locked"`
	CreatedAt      time.Time                    `json:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

// Helper converters
func SeatToResponse(seat *entity.Seat) SeatResponse {
	return SeatResponse{
		ID:        seat.ID,
		Row:       seat.Row,
		Column:    seat.Column,
		Tier:      seat.Tier,
		Available: seat.Bookable(),
		Price:     seat.Price,
	}
}

func PricingToResponse(p entity.Pricing) map[string]TierPriceResponse {
	out := make(map[string]TierPriceResponse, len(p))
	for tier, tp := range p {
		out[string(tier)] = TierPriceResponse{Price: tp.Price, Available: tp.Available}
	}
	return out
}

func LayoutToResponse(layout *entity.SeatingLayout) SeatingLayoutResponse {
	seats := make([]SeatResponse, len(layout.Seats))
	for i, seat := range layout.Seats {
		seats[i] = SeatToResponse(seat)
	}
	return SeatingLayoutResponse{
		Rows:        layout.Rows,
		Columns:     layout.Columns,
		Seats:       seats,
		BookedSeats: layout.BookedSeats(),
	}
}

// EventToResponse builds the catalog view. layout may be nil for list views,
// in which case only the grid dimensions are reported.
func EventToResponse(event *entity.Event, availableSeats int, layout *entity.SeatingLayout) EventResponse {
	resp := EventResponse{
		ID:             event.ID.String(),
		Name:           event.Name,
		Date:           event.Date,
		Location:       event.Location,
		Description:    event.Description,
		AvailableSeats: availableSeats,
		TotalSeats:     event.TotalSeats(),
		BookingCount:   event.BookingCount,
		Pricing:        PricingToResponse(event.Pricing),
		SeatingLayout:  SeatingLayoutResponse{Rows: event.Rows, Columns: event.Columns},
		Bookable:       availableSeats > 0,
		Locked:         event.Locked(),
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}
	if layout != nil {
		resp.SeatingLayout = LayoutToResponse(layout)
	}
	return resp
}

package response

import (
	"time"

	"event-booking/internal/data/entity"
)

type CreateBookingResponse struct {
	BookingID   string               `json:"bookingId"`
	Reference   string               `json:"reference"`
	TotalAmount float64              `json:"totalAmount"`
	Status      entity.BookingStatus `json:"status"`
}

// BookingResponse is a ledger entry annotated against the live catalog.
type BookingResponse struct {
	ID             string               `json:"id"`
	Reference      string               `json:"reference"`
	EventID        string               `json:"eventId"`
	EventName      string               `json:"event_name"`
	EventDate      *time.Time           `json:"event_date,omitempty"`
	Location       string               `json:"location"`
	EventDeleted   bool                 `json:"eventDeleted"`
	PurchaserName  string               `json:"purchaserName"`
	PurchaserEmail string               `json:"purchaserEmail"`
	SeatIDs        []string             `json:"seatIds"`
	Tickets        int                  `json:"tickets"`
	TotalAmount    float64              `json:"totalAmount"`
	Status         entity.BookingStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	CancelledAt    *time.Time           `json:"cancelled_at,omitempty"`
}

func CreateBookingToResponse(booking *entity.Booking) CreateBookingResponse {
	return CreateBookingResponse{
		BookingID:   booking.ID.String(),
		Reference:   booking.Reference,
		TotalAmount: booking.TotalAmount,
		Status:      booking.Status,
	}
}

// BookingToResponse annotates booking with event; a nil event means it was deleted.
func BookingToResponse(booking *entity.Booking, event *entity.Event) BookingResponse {
	resp := BookingResponse{
		ID:             booking.ID.String(),
		Reference:      booking.Reference,
		EventID:        booking.EventID.String(),
		EventDeleted:   event == nil,
		PurchaserName:  booking.PurchaserName,
		PurchaserEmail: booking.PurchaserEmail,
		SeatIDs:        booking.SeatIDs,
		Tickets:        len(booking.SeatIDs),
		TotalAmount:    booking.TotalAmount,
		Status:         booking.Status,
		CreatedAt:      booking.CreatedAt,
		CancelledAt:    booking.CancelledAt,
	}
	if event != nil {
		date := event.Date
		resp.EventName = event.Name
		resp.EventDate = &date
		resp.Location = event.Location
	}
	return resp
}

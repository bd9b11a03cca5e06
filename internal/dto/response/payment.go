package response

import (
	"time"

	"event-booking/internal/data/entity"
)

type PaymentIntentResponse struct {
	IntentID  string                     `json:"intentId"`
	EventID   string                     `json:"eventId"`
	SeatIDs   []string                   `json:"seatIds"`
	Amount    float64                    `json:"amount"`
	Status    entity.PaymentIntentStatus `json:"status"`
	ExpiresAt time.Time                  `json:"expiresAt"`
	BookingID *string                    `json:"bookingId,omitempty"`
	Reference *string                    `json:"reference,omitempty"`

	BookingReference *string `json:"bookingReference,omitempty"`
}

func PaymentIntentToResponse(intent *entity.PaymentIntent) PaymentIntentResponse {
	resp := PaymentIntentResponse{
		IntentID:  intent.ID.String(),
		EventID:   intent.EventID.String(),
		SeatIDs:   intent.SeatIDs,
		Amount:    intent.Amount,
		Status:    intent.Status,
		ExpiresAt: intent.ExpiresAt,
		Reference: intent.ProviderRef,
	}
	if intent.BookingID != nil {
		id := intent.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}

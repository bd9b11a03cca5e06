package request

type CreateBookingRequest struct {
	EventID        string   `json:"eventId" validate:"required,uuid"`
	PurchaserName  string   `json:"purchaserName" validate:"required,notblank,max=100"`
	PurchaserEmail string   `json:"purchaserEmail" validate:"required,email,max=254"`
	SeatIDs        []string `json:"seatIds" validate:"max=100,dive,required"`
}

type ListBookingsRequest struct {
	PaginatedRequest
	PurchaserEmail string `json:"purchaser_email" validate:"omitempty,email"`
	EventID        string `json:"event_id" validate:"omitempty,uuid"`
}

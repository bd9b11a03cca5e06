package utils

import (
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

// GenerateBookingReference derives a short printable reference from a booking ID,
// e.g. BK-4ER1mWtcPbAHkJx3aqMbB7.
func GenerateBookingReference(bookingID uuid.UUID) string {
	return "BK-" + base58.Encode(bookingID[:])
}

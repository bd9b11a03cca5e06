package usecase

import (
	"strings"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/pkg/apperror"
)

// paintSeat assigns tier to seat and freezes the matching price from the event's
// pricing table. Seats of a blocked tier, or of a tier marked unavailable, are
// not offered for sale.
func paintSeat(event *entity.Event, seat *entity.Seat, tier entity.Tier, now time.Time) error {
	price, err := PriceOf(event, tier)
	if err != nil {
		return err
	}
	seat.Tier = tier
	seat.Price = price
	seat.Available = tier.Sellable() && event.Pricing[tier].Available
	seat.UpdatedAt = now
	return nil
}

// releaseSeat returns a seat held by a cancelled booking to the pool. A seat
// whose tier is blocked stays unavailable.
func releaseSeat(seat *entity.Seat, now time.Time) {
	seat.HeldBy = nil
	seat.Available = seat.Tier.Sellable()
	seat.UpdatedAt = now
}

func parseTier(raw string) (entity.Tier, error) {
	tier, ok := entity.ParseTier(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return "", apperror.InvalidTier(raw)
	}
	return tier, nil
}

func ensureUnlocked(event *entity.Event) error {
	if event.Locked() {
		return apperror.Locked("event %s has %d confirmed booking(s); pricing and seating layout can no longer change",
			event.ID, event.BookingCount)
	}
	return nil
}

// checkSelection verifies that every seat belongs to the layout and can be
// booked. All offending seats are reported together.
func checkSelection(layout *entity.SeatingLayout, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return apperror.New(apperror.KindEmptySelection, "no seats selected")
	}
	if !layout.HasSellableSeat() {
		return apperror.Validation(map[string]string{
			"seating_layout": "Event has no bookable seats",
		})
	}

	byID := make(map[string]*entity.Seat, len(layout.Seats))
	for _, seat := range layout.Seats {
		byID[seat.ID] = seat
	}

	var unknown, unavailable []string
	for _, id := range seatIDs {
		seat, ok := byID[id]
		switch {
		case !ok:
			unknown = append(unknown, id)
		case !seat.Bookable():
			unavailable = append(unavailable, id)
		}
	}
	if len(unknown) > 0 {
		return foreignSeatsError(unknown)
	}
	if len(unavailable) > 0 {
		return apperror.SeatUnavailable(unavailable)
	}
	return nil
}

func foreignSeatsError(ids []string) error {
	return apperror.Validation(map[string]string{
		"seatIds": "Seats do not belong to this event: " + strings.Join(ids, ", "),
	})
}

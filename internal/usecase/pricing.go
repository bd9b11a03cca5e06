package usecase

import (
	"fmt"
	"math"

	"event-booking/internal/data/entity"
	"event-booking/pkg/apperror"
)

// PriceOf looks up the current price of tier in the event's pricing table.
// Blocked seats are free; a tier without an entry cannot be priced.
func PriceOf(event *entity.Event, tier entity.Tier) (float64, error) {
	if !tier.Valid() {
		return 0, apperror.InvalidTier(string(tier))
	}
	if tier == entity.TierBlocked {
		return 0, nil
	}
	tp, ok := event.Pricing[tier]
	if !ok {
		return 0, &apperror.Error{
			Kind:    apperror.KindInvalidTier,
			Message: fmt.Sprintf("tier %q has no price for event %s", tier, event.ID),
		}
	}
	return tp.Price, nil
}

// TotalFor sums the stored price of each selected seat. The stored price is the
// one frozen at tier assignment, so later pricing edits do not change it.
func TotalFor(layout *entity.SeatingLayout, seatIDs []string) (float64, error) {
	if len(seatIDs) == 0 {
		return 0, apperror.New(apperror.KindEmptySelection, "no seats selected")
	}

	byID := make(map[string]*entity.Seat, len(layout.Seats))
	for _, seat := range layout.Seats {
		byID[seat.ID] = seat
	}

	var (
		total   float64
		unknown []string
	)
	for _, id := range seatIDs {
		seat, ok := byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		total += seat.Price
	}
	if len(unknown) > 0 {
		return 0, foreignSeatsError(unknown)
	}

	return roundAmount(total), nil
}

func roundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

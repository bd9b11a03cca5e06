package usecase

import (
	"context"
	"testing"

	"event-booking/internal/data/entity"
	"event-booking/internal/dto/request"
	"event-booking/pkg/apperror"
)

func TestAssignTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 2, 2, "")

	tests := []struct {
		tier      string
		price     float64
		available bool
	}{
		{"gold", 100, true},
		{"SILVER", 60, true},
		{"platinum", 150, true},
		{"blocked", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			seat, err := f.svc.Inventory.AssignTier(ctx, event.ID, "1-2", &request.AssignTierRequest{Tier: tt.tier})
			if err != nil {
				t.Fatalf("assign tier: %v", err)
			}
			if seat.Price != tt.price || seat.Available != tt.available {
				t.Fatalf("expected price=%v available=%v, got price=%v available=%v",
					tt.price, tt.available, seat.Price, seat.Available)
			}
		})
	}

	_, err := f.svc.Inventory.AssignTier(ctx, event.ID, "1-2", &request.AssignTierRequest{Tier: "diamond"})
	expectKind(t, err, apperror.KindInvalidTier)

	_, err = f.svc.Inventory.AssignTier(ctx, event.ID, "7-7", &request.AssignTierRequest{Tier: "gold"})
	expectKind(t, err, apperror.KindNotFound)
}

func TestAssignTierWithoutPrice(t *testing.T) {
	f := newFixture(t)
	seats := 2
	event, err := f.svc.Event.CreateEvent(context.Background(), &request.CreateEventRequest{
		Name: "Recital", Date: futureDate, Location: "Chapel", TotalSeats: &seats,
		Pricing: map[string]request.TierPriceRequest{"gold": {Price: price(40)}},
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	_, err = f.svc.Inventory.AssignTier(context.Background(), event.ID, "1-1", &request.AssignTierRequest{Tier: "silver"})
	expectKind(t, err, apperror.KindInvalidTier)
}

func TestUnavailableTierIsNotForSale(t *testing.T) {
	f := newFixture(t)
	off := false
	seats := 1
	event, err := f.svc.Event.CreateEvent(context.Background(), &request.CreateEventRequest{
		Name: "Recital", Date: futureDate, Location: "Chapel", TotalSeats: &seats,
		Pricing: map[string]request.TierPriceRequest{"gold": {Price: price(40), Available: &off}},
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	seat, err := f.svc.Inventory.AssignTier(context.Background(), event.ID, "1-1", &request.AssignTierRequest{Tier: "gold"})
	if err != nil {
		t.Fatalf("assign tier: %v", err)
	}
	if seat.Available || seat.Price != 40 {
		t.Fatalf("expected unavailable gold seat at 40, got %+v", seat)
	}

	_, err = f.book(customer(), event.ID, "1-1")
	expectKind(t, err, apperror.KindSeatUnavailable)
}

func TestCycleTierRotates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 1, "")

	want := []entity.Tier{entity.TierGold, entity.TierSilver, entity.TierPlatinum, entity.TierBlocked, entity.TierGold}
	for i, tier := range want {
		seat, err := f.svc.Inventory.CycleTier(ctx, event.ID, "1-1")
		if err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		if seat.Tier != tier {
			t.Fatalf("cycle %d: expected %s, got %s", i, tier, seat.Tier)
		}
	}
}

func TestTierNext(t *testing.T) {
	tests := map[entity.Tier]entity.Tier{
		entity.TierGold:     entity.TierSilver,
		entity.TierSilver:   entity.TierPlatinum,
		entity.TierPlatinum: entity.TierBlocked,
		entity.TierBlocked:  entity.TierGold,
		entity.Tier("vip"):  entity.TierGold,
	}
	for from, to := range tests {
		if got := from.Next(); got != to {
			t.Errorf("expected %s -> %s, got %s", from, to, got)
		}
	}
}

func TestGenerateLayout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 1, "gold")

	layout, err := f.svc.Inventory.GenerateLayout(ctx, event.ID, &request.LayoutRequest{Rows: 2, Columns: 3})
	if err != nil {
		t.Fatalf("generate layout: %v", err)
	}
	if len(layout.Seats) != 6 {
		t.Fatalf("expected 6 seats, got %d", len(layout.Seats))
	}
	for _, seat := range layout.Seats {
		if seat.Tier != entity.TierBlocked {
			t.Fatalf("expected blocked seats, got %s", seat.Tier)
		}
	}

	got, _ := f.svc.Event.GetEvent(ctx, event.ID)
	if got.TotalSeats != 6 {
		t.Fatalf("expected event to report 6 seats, got %d", got.TotalSeats)
	}

	_, err = f.svc.Inventory.GenerateLayout(ctx, event.ID, &request.LayoutRequest{Rows: 0, Columns: 31})
	expectKind(t, err, apperror.KindValidation)
}

func TestIsBookable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 3, "gold")
	if _, err := f.svc.Inventory.AssignTier(ctx, event.ID, "1-3", &request.AssignTierRequest{Tier: "blocked"}); err != nil {
		t.Fatalf("assign tier: %v", err)
	}
	if _, err := f.book(customer(), event.ID, "1-2"); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	tests := map[string]bool{"1-1": true, "1-2": false, "1-3": false, "4-4": false}
	for seat, want := range tests {
		got, err := f.svc.Inventory.IsBookable(ctx, event.ID, seat)
		if err != nil {
			t.Fatalf("is bookable %s: %v", seat, err)
		}
		if got != want {
			t.Errorf("seat %s: expected bookable=%v, got %v", seat, want, got)
		}
	}
}

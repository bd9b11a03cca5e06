package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/usecase"
	"event-booking/pkg/apperror"
	"event-booking/pkg/database"
	"event-booking/pkg/queue"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"
)

// openPostgres connects to TEST_DATABASE_URL, migrates and empties the schema.
func openPostgres(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := database.NewFromPool(pool)
	t.Cleanup(db.Close)

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Exec(ctx, `TRUNCATE payment_intents, bookings, seats, events, sessions, users`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func newService(t *testing.T, repo *repository.Repository) *usecase.Service {
	config := &utils.Config{
		JWT:     utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
		Payment: utils.PaymentConfig{IntentTTL: 15 * time.Minute},
	}
	clock := utils.NewFixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return usecase.NewService(repo, config, clock, queue.NewNopPublisher(), zaptest.NewLogger(t))
}

func TestPostgresConcurrentBookingOfOneSeat(t *testing.T) {
	db := openPostgres(t)
	repo := repository.NewRepository(db, zaptest.NewLogger(t))
	svc := newService(t, repo)
	ctx := context.Background()

	gold := 100.0
	event, err := svc.Event.CreateEvent(ctx, &request.CreateEventRequest{
		Name:          "Jazz Night",
		Date:          "2026-06-01T20:00:00Z",
		Location:      "Blue Hall",
		Pricing:       map[string]request.TierPriceRequest{"gold": {Price: &gold}},
		SeatingLayout: &request.LayoutRequest{Rows: 1, Columns: 2, DefaultTier: "gold"},
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := &utils.Session{ID: uuid.New(), UserID: uuid.New(), Role: "customer"}
			_, err := svc.Booking.CreateBooking(ctx, session, &request.CreateBookingRequest{
				EventID:        event.ID,
				PurchaserName:  "Ana",
				PurchaserEmail: "ana@example.com",
				SeatIDs:        []string{"1-1"},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				failures = append(failures, err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly 1 booking, got %d", successes)
	}
	for _, err := range failures {
		if apperror.KindOf(err) != apperror.KindSeatUnavailable {
			t.Fatalf("expected SeatUnavailable, got %v", err)
		}
	}

	got, err := svc.Event.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.BookingCount != 1 || got.AvailableSeats != 1 {
		t.Fatalf("expected count=1 available=1, got count=%d available=%d", got.BookingCount, got.AvailableSeats)
	}
}

func TestPostgresBookingSurvivesEventDeletion(t *testing.T) {
	db := openPostgres(t)
	repo := repository.NewRepository(db, zaptest.NewLogger(t))
	svc := newService(t, repo)
	ctx := context.Background()

	seats := 3
	gold := 50.0
	event, err := svc.Event.CreateEvent(ctx, &request.CreateEventRequest{
		Name: "Recital", Date: "2026-06-01T20:00:00Z", Location: "Chapel", TotalSeats: &seats,
		Pricing: map[string]request.TierPriceRequest{"gold": {Price: &gold}},
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := svc.Inventory.BulkAssignTier(ctx, event.ID, &request.BulkAssignTierRequest{Tier: "gold"}); err != nil {
		t.Fatalf("bulk assign: %v", err)
	}

	session := &utils.Session{ID: uuid.New(), UserID: uuid.New(), Role: "customer"}
	booking, err := svc.Booking.CreateBooking(ctx, session, &request.CreateBookingRequest{
		EventID: event.ID, PurchaserName: "Ana", PurchaserEmail: "ana@example.com", SeatIDs: []string{"1-2"},
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	err = svc.Event.DeleteEvent(ctx, event.ID)
	expectKind(t, err, apperror.KindConflict)

	id, _ := uuid.Parse(event.ID)
	if _, err := db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		t.Fatalf("force delete: %v", err)
	}

	got, err := svc.Booking.GetBooking(ctx, session, booking.BookingID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if !got.EventDeleted || got.TotalAmount != 50 {
		t.Fatalf("expected deleted event annotation and total 50, got %+v", got)
	}

	cancelled, err := svc.Booking.CancelBooking(ctx, session, booking.BookingID)
	if err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if cancelled.Status != "Cancelled" {
		t.Fatalf("expected Cancelled, got %s", cancelled.Status)
	}
}

func expectKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if got := apperror.KindOf(err); err == nil || got != kind {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}

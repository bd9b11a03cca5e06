package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"event-booking/internal/data/memstore"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/pkg/apperror"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

const futureDate = "2026-06-01T20:00:00Z"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	queues []string
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queues = append(p.queues, queue)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.queues...)
}

type fixture struct {
	svc       *Service
	repo      *repository.Repository
	clock     *testClock
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	config := &utils.Config{
		JWT:     utils.JWTConfig{Secret: "test-secret", ExpiryHours: 24},
		Payment: utils.PaymentConfig{IntentTTL: 15 * time.Minute},
	}
	clock := &testClock{now: testNow}
	publisher := &recordingPublisher{}
	repo := memstore.New().Repository()

	return &fixture{
		svc:       NewService(repo, config, clock, publisher, zaptest.NewLogger(t)),
		repo:      repo,
		clock:     clock,
		publisher: publisher,
	}
}

func price(v float64) *float64 { return &v }

func customer() *utils.Session {
	return &utils.Session{ID: uuid.New(), UserID: uuid.New(), Name: "Ana", Email: "ana@example.com", Role: "customer"}
}

func admin() *utils.Session {
	return &utils.Session{ID: uuid.New(), UserID: uuid.New(), Name: "Root", Email: "root@example.com", Role: "admin"}
}

// createEvent creates a rows x columns event priced gold 100, silver 60,
// platinum 150, with every seat painted defaultTier.
func (f *fixture) createEvent(t *testing.T, rows, columns int, defaultTier string) *response.EventResponse {
	t.Helper()
	event, err := f.svc.Event.CreateEvent(context.Background(), &request.CreateEventRequest{
		Name:     "Jazz Night",
		Date:     futureDate,
		Location: "Blue Hall",
		Pricing: map[string]request.TierPriceRequest{
			"gold":     {Price: price(100)},
			"silver":   {Price: price(60)},
			"platinum": {Price: price(150)},
		},
		SeatingLayout: &request.LayoutRequest{Rows: rows, Columns: columns, DefaultTier: defaultTier},
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func (f *fixture) book(session *utils.Session, eventID string, seats ...string) (*response.CreateBookingResponse, error) {
	return f.svc.Booking.CreateBooking(context.Background(), session, &request.CreateBookingRequest{
		EventID:        eventID,
		PurchaserName:  session.Name,
		PurchaserEmail: session.Email,
		SeatIDs:        seats,
	})
}

func expectKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperror.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/memstore"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/pkg/apperror"
	"event-booking/pkg/queue"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

func (f *fixture) intent(t *testing.T, session *utils.Session, eventID string, seats ...string) *response.PaymentIntentResponse {
	t.Helper()
	intent, err := f.svc.Payment.CreateIntent(context.Background(), session, &request.CreateBookingRequest{
		EventID:        eventID,
		PurchaserName:  session.Name,
		PurchaserEmail: session.Email,
		SeatIDs:        seats,
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	return intent
}

func (f *fixture) webhook(intentID, status string) (*response.PaymentIntentResponse, error) {
	return f.svc.Payment.HandleWebhook(context.Background(), &request.PaymentWebhookRequest{
		IntentID:  intentID,
		Status:    status,
		Reference: "psp_123",
	})
}

func TestPaymentIntentDoesNotHoldSeats(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 1, 2, "gold")
	user := customer()

	intent := f.intent(t, user, event.ID, "1-1", "1-2")
	if intent.Amount != 200 || intent.Status != entity.PaymentIntentPending {
		t.Fatalf("expected pending intent of 200, got %+v", intent)
	}
	if want := testNow.Add(15 * time.Minute); !intent.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, intent.ExpiresAt)
	}

	got, _ := f.svc.Event.GetEvent(context.Background(), event.ID)
	if got.AvailableSeats != 2 || got.BookingCount != 0 {
		t.Fatalf("expected intent to leave seats untouched, got available=%d count=%d", got.AvailableSeats, got.BookingCount)
	}
}

func TestAuthorizedWebhookCommitsBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 2, "gold")
	user := customer()
	intent := f.intent(t, user, event.ID, "1-1")

	resp, err := f.webhook(intent.IntentID, "authorized")
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if resp.Status != entity.PaymentIntentCommitted || resp.BookingID == nil || resp.BookingReference == nil {
		t.Fatalf("expected committed intent with booking, got %+v", resp)
	}
	if resp.Reference == nil || *resp.Reference != "psp_123" {
		t.Fatalf("expected provider reference psp_123, got %v", resp.Reference)
	}

	booking, err := f.svc.Booking.GetBooking(ctx, user, *resp.BookingID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if booking.TotalAmount != 100 || booking.Status != entity.BookingStatusConfirmed {
		t.Fatalf("expected confirmed booking of 100, got %+v", booking)
	}

	t.Run("repeated authorization is idempotent", func(t *testing.T) {
		again, err := f.webhook(intent.IntentID, "authorized")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if again.BookingID == nil || *again.BookingID != *resp.BookingID {
			t.Fatalf("expected the same booking, got %+v", again)
		}
		got, _ := f.svc.Event.GetEvent(ctx, event.ID)
		if got.BookingCount != 1 {
			t.Fatalf("expected 1 booking, got %d", got.BookingCount)
		}
	})

	t.Run("late failure is rejected", func(t *testing.T) {
		_, err := f.webhook(intent.IntentID, "failed")
		expectKind(t, err, apperror.KindInvalidState)
	})

	published := f.publisher.Published()
	if len(published) != 1 || published[0] != queue.QueueBookingConfirmed {
		t.Fatalf("expected one confirmed message, got %v", published)
	}
}

func TestFailedWebhook(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 1, 1, "gold")
	intent := f.intent(t, customer(), event.ID, "1-1")

	resp, err := f.webhook(intent.IntentID, "failed")
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if resp.Status != entity.PaymentIntentFailed || resp.BookingID != nil {
		t.Fatalf("expected failed intent without booking, got %+v", resp)
	}

	_, err = f.webhook(intent.IntentID, "authorized")
	expectKind(t, err, apperror.KindInvalidState)
}

func TestExpiredIntentIsNotCommitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 1, "gold")
	user := customer()
	intent := f.intent(t, user, event.ID, "1-1")

	f.clock.Advance(16 * time.Minute)

	_, err := f.webhook(intent.IntentID, "authorized")
	expectKind(t, err, apperror.KindInvalidState)

	got, err := f.svc.Payment.GetIntent(ctx, user, intent.IntentID)
	if err != nil {
		t.Fatalf("get intent: %v", err)
	}
	if got.Status != entity.PaymentIntentExpired {
		t.Fatalf("expected expired intent, got %s", got.Status)
	}

	ok, _ := f.svc.Inventory.IsBookable(ctx, event.ID, "1-1")
	if !ok {
		t.Fatal("expected seat to stay bookable")
	}
}

func TestWebhookAfterRepriceFailsIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 1, "gold")
	user := customer()
	intent := f.intent(t, user, event.ID, "1-1")

	if _, err := f.svc.Inventory.AssignTier(ctx, event.ID, "1-1", &request.AssignTierRequest{Tier: "silver"}); err != nil {
		t.Fatalf("assign tier: %v", err)
	}

	_, err := f.webhook(intent.IntentID, "authorized")
	expectKind(t, err, apperror.KindConflict)

	got, _ := f.svc.Payment.GetIntent(ctx, user, intent.IntentID)
	if got.Status != entity.PaymentIntentFailed {
		t.Fatalf("expected failed intent, got %s", got.Status)
	}
	ok, _ := f.svc.Inventory.IsBookable(ctx, event.ID, "1-1")
	if !ok {
		t.Fatal("expected seat to stay bookable")
	}
}

func TestWebhookAfterSeatTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 2, "gold")
	user := customer()
	intent := f.intent(t, user, event.ID, "1-1", "1-2")

	if _, err := f.book(customer(), event.ID, "1-2"); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	_, err := f.webhook(intent.IntentID, "authorized")
	expectKind(t, err, apperror.KindSeatUnavailable)

	got, _ := f.svc.Payment.GetIntent(ctx, user, intent.IntentID)
	if got.Status != entity.PaymentIntentFailed {
		t.Fatalf("expected failed intent, got %s", got.Status)
	}
	ok, _ := f.svc.Inventory.IsBookable(ctx, event.ID, "1-1")
	if !ok {
		t.Fatal("expected untouched seat 1-1 to stay bookable")
	}
}

// hookedTransactor runs hook once, just before the event lock is taken for the
// n-th time after arm.
type hookedTransactor struct {
	repository.Transactor

	mu    sync.Mutex
	calls int
	n     int
	hook  func()
}

func (h *hookedTransactor) arm(n int, hook func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls, h.n, h.hook = 0, n, hook
}

func (h *hookedTransactor) WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context) error) error {
	h.mu.Lock()
	var hook func()
	if h.hook != nil {
		h.calls++
		if h.calls == h.n {
			hook, h.hook = h.hook, nil
		}
	}
	h.mu.Unlock()

	if hook != nil {
		hook()
	}
	return h.Transactor.WithEventLock(ctx, eventID, fn)
}

func TestRedeliveredWebhookSurvivesEarlierRejection(t *testing.T) {
	repo := memstore.New().Repository()
	tx := &hookedTransactor{Transactor: repo.Tx}
	repo.Tx = tx
	config := &utils.Config{
		JWT:     utils.JWTConfig{Secret: "test-secret", ExpiryHours: 24},
		Payment: utils.PaymentConfig{IntentTTL: 15 * time.Minute},
	}
	f := &fixture{
		repo:      repo,
		clock:     &testClock{now: testNow},
		publisher: &recordingPublisher{},
	}
	f.svc = NewService(repo, config, f.clock, f.publisher, zaptest.NewLogger(t))

	ctx := context.Background()
	event := f.createEvent(t, 1, 2, "gold")
	user := customer()
	intent := f.intent(t, user, event.ID, "1-1", "1-2")
	blocker, err := f.book(customer(), event.ID, "1-2")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	var (
		redelivered  *response.PaymentIntentResponse
		redeliverErr error
	)
	// The first delivery loses seat 1-2 and releases the lock. Before it comes
	// back to mark the intent failed, the blocking booking is cancelled and the
	// processor redelivers.
	tx.arm(2, func() {
		if _, err := f.svc.Booking.CancelBooking(ctx, admin(), blocker.BookingID); err != nil {
			t.Errorf("cancel booking: %v", err)
			return
		}
		redelivered, redeliverErr = f.webhook(intent.IntentID, "authorized")
	})

	_, err = f.webhook(intent.IntentID, "authorized")
	expectKind(t, err, apperror.KindSeatUnavailable)

	if redeliverErr != nil {
		t.Fatalf("redelivered webhook: %v", redeliverErr)
	}
	if redelivered == nil || redelivered.Status != entity.PaymentIntentCommitted {
		t.Fatalf("expected redelivery to commit, got %+v", redelivered)
	}

	got, err := f.svc.Payment.GetIntent(ctx, user, intent.IntentID)
	if err != nil {
		t.Fatalf("get intent: %v", err)
	}
	if got.Status != entity.PaymentIntentCommitted {
		t.Fatalf("expected intent to stay committed, got %s", got.Status)
	}
	if got.BookingID == nil || *got.BookingID != *redelivered.BookingID {
		t.Fatalf("expected intent to keep booking %v, got %v", redelivered.BookingID, got.BookingID)
	}

	booking, err := f.svc.Booking.GetBooking(ctx, user, *got.BookingID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if booking.Status != entity.BookingStatusConfirmed {
		t.Fatalf("expected confirmed booking, got %s", booking.Status)
	}
	for _, seat := range []string{"1-1", "1-2"} {
		if ok, _ := f.svc.Inventory.IsBookable(ctx, event.ID, seat); ok {
			t.Fatalf("expected seat %s to be taken by the committed booking", seat)
		}
	}
}

func TestPaymentIntentErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 1, "gold")
	intent := f.intent(t, customer(), event.ID, "1-1")

	t.Run("unknown intent", func(t *testing.T) {
		_, err := f.webhook(uuid.NewString(), "authorized")
		expectKind(t, err, apperror.KindNotFound)
	})

	t.Run("bad webhook payload", func(t *testing.T) {
		_, err := f.webhook("nope", "refunded")
		expectKind(t, err, apperror.KindValidation)
	})

	t.Run("other customer cannot read intent", func(t *testing.T) {
		_, err := f.svc.Payment.GetIntent(ctx, customer(), intent.IntentID)
		expectKind(t, err, apperror.KindForbidden)
	})

	t.Run("admin can read intent", func(t *testing.T) {
		if _, err := f.svc.Payment.GetIntent(ctx, admin(), intent.IntentID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("unavailable seat", func(t *testing.T) {
		if _, err := f.book(customer(), event.ID, "1-1"); err != nil {
			t.Fatalf("create booking: %v", err)
		}
		_, err := f.svc.Payment.CreateIntent(ctx, customer(), &request.CreateBookingRequest{
			EventID: event.ID, PurchaserName: "Bo", PurchaserEmail: "bo@example.com", SeatIDs: []string{"1-1"},
		})
		expectKind(t, err, apperror.KindSeatUnavailable)
	})
}

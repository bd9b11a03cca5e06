package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/dto/request"
	"event-booking/pkg/apperror"
	"event-booking/pkg/queue"

	"github.com/google/uuid"
)

func TestCreateBookingTotalsAndLocksEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event := f.createEvent(t, 2, 2, "")
	if _, err := f.svc.Inventory.BulkAssignTier(ctx, event.ID, &request.BulkAssignTierRequest{Tier: "gold"}); err != nil {
		t.Fatalf("bulk assign: %v", err)
	}

	booking, err := f.book(customer(), event.ID, "1-1", "1-2")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.TotalAmount != 200 {
		t.Fatalf("expected total 200, got %v", booking.TotalAmount)
	}
	if booking.Status != entity.BookingStatusConfirmed {
		t.Fatalf("expected Confirmed, got %s", booking.Status)
	}
	if booking.Reference == "" {
		t.Fatal("expected a booking reference")
	}

	got, err := f.svc.Event.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.BookingCount != 1 {
		t.Fatalf("expected booking_count 1, got %d", got.BookingCount)
	}
	if got.AvailableSeats != 2 {
		t.Fatalf("expected 2 available seats, got %d", got.AvailableSeats)
	}
	if len(got.SeatingLayout.BookedSeats) != 2 {
		t.Fatalf("expected 2 booked seats, got %v", got.SeatingLayout.BookedSeats)
	}

	_, err = f.svc.Event.UpdateEvent(ctx, event.ID, &request.UpdateEventRequest{
		Pricing: map[string]request.TierPriceRequest{"gold": {Price: price(10)}},
	})
	expectKind(t, err, apperror.KindLocked)

	_, err = f.svc.Event.UpdateEvent(ctx, event.ID, &request.UpdateEventRequest{
		SeatingLayout: &request.LayoutRequest{Rows: 3, Columns: 3},
	})
	expectKind(t, err, apperror.KindLocked)

	_, err = f.svc.Inventory.AssignTier(ctx, event.ID, "2-1", &request.AssignTierRequest{Tier: "silver"})
	expectKind(t, err, apperror.KindLocked)

	_, err = f.svc.Inventory.BulkAssignTier(ctx, event.ID, &request.BulkAssignTierRequest{Tier: "blocked"})
	expectKind(t, err, apperror.KindLocked)

	name := "Jazz Night II"
	updated, err := f.svc.Event.UpdateEvent(ctx, event.ID, &request.UpdateEventRequest{Name: &name})
	if err != nil {
		t.Fatalf("expected metadata update to pass, got %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected name %q, got %q", name, updated.Name)
	}

	published := f.publisher.Published()
	if len(published) != 1 || published[0] != queue.QueueBookingConfirmed {
		t.Fatalf("expected one booking.confirmed message, got %v", published)
	}
}

func TestConcurrentBookingsOnSameSeat(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 2, 2, "gold")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.book(customer(), event.ID, "1-1")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful booking, got %d", successes)
	}
	for _, err := range failures {
		expectKind(t, err, apperror.KindSeatUnavailable)
	}

	got, _ := f.svc.Event.GetEvent(context.Background(), event.ID)
	if got.BookingCount != 1 {
		t.Fatalf("expected booking_count 1, got %d", got.BookingCount)
	}
}

func TestCreateBookingIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 3, "gold")

	if _, err := f.book(customer(), event.ID, "1-2"); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := f.book(customer(), event.ID, "1-1", "1-2", "1-3")
	expectKind(t, err, apperror.KindSeatUnavailable)
	appErr, _ := apperror.As(err)
	if len(appErr.Seats) != 1 || appErr.Seats[0] != "1-2" {
		t.Fatalf("expected offending seat 1-2, got %v", appErr.Seats)
	}

	for _, seat := range []string{"1-1", "1-3"} {
		ok, err := f.svc.Inventory.IsBookable(ctx, event.ID, seat)
		if err != nil {
			t.Fatalf("is bookable: %v", err)
		}
		if !ok {
			t.Fatalf("expected seat %s to remain bookable", seat)
		}
	}
}

func TestCreateBookingRejectsBadSelections(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 2, 2, "gold")
	if _, err := f.svc.Inventory.AssignTier(context.Background(), event.ID, "2-2", &request.AssignTierRequest{Tier: "blocked"}); err != nil {
		t.Fatalf("assign tier: %v", err)
	}

	tests := []struct {
		name    string
		eventID string
		seats   []string
		kind    apperror.Kind
	}{
		{"empty selection", event.ID, nil, apperror.KindEmptySelection},
		{"foreign seat", event.ID, []string{"1-1", "9-9"}, apperror.KindValidation},
		{"duplicate seat", event.ID, []string{"1-1", "1-1"}, apperror.KindValidation},
		{"blocked seat", event.ID, []string{"2-2"}, apperror.KindSeatUnavailable},
		{"unknown event", uuid.NewString(), []string{"1-1"}, apperror.KindNotFound},
		{"malformed event id", "not-a-uuid", []string{"1-1"}, apperror.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.book(customer(), tt.eventID, tt.seats...)
			expectKind(t, err, tt.kind)
		})
	}
}

func TestCreateBookingNeedsSellableSeat(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 1, 2, "")

	_, err := f.book(customer(), event.ID, "1-1")
	expectKind(t, err, apperror.KindValidation)
	appErr, _ := apperror.As(err)
	if _, ok := appErr.Fields["seating_layout"]; !ok {
		t.Fatalf("expected seating_layout violation, got %v", appErr.Fields)
	}
}

func TestCancelBookingReleasesSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 2, "gold")
	user := customer()

	booking, err := f.book(user, event.ID, "1-1", "1-2")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	cancelled, err := f.svc.Booking.CancelBooking(ctx, user, booking.BookingID)
	if err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if cancelled.Status != entity.BookingStatusCancelled {
		t.Fatalf("expected Cancelled, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be set")
	}

	got, _ := f.svc.Event.GetEvent(ctx, event.ID)
	if got.AvailableSeats != 2 || got.BookingCount != 0 {
		t.Fatalf("expected seats released and count 0, got available=%d count=%d", got.AvailableSeats, got.BookingCount)
	}
	if len(got.SeatingLayout.BookedSeats) != 0 {
		t.Fatalf("expected no booked seats, got %v", got.SeatingLayout.BookedSeats)
	}

	_, err = f.svc.Booking.CancelBooking(ctx, user, booking.BookingID)
	expectKind(t, err, apperror.KindInvalidState)

	// a released seat is contestable again
	if _, err := f.book(customer(), event.ID, "1-1"); err != nil {
		t.Fatalf("rebook released seat: %v", err)
	}
}

func TestCancelBookingErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 1, "gold")
	owner := customer()

	booking, err := f.book(owner, event.ID, "1-1")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	t.Run("missing booking", func(t *testing.T) {
		_, err := f.svc.Booking.CancelBooking(ctx, owner, uuid.NewString())
		expectKind(t, err, apperror.KindNotFound)
	})

	t.Run("another customer", func(t *testing.T) {
		_, err := f.svc.Booking.CancelBooking(ctx, customer(), booking.BookingID)
		expectKind(t, err, apperror.KindForbidden)
	})

	t.Run("admin may cancel", func(t *testing.T) {
		if _, err := f.svc.Booking.CancelBooking(ctx, admin(), booking.BookingID); err != nil {
			t.Fatalf("expected admin cancel to pass, got %v", err)
		}
	})
}

func TestConcurrentCancelSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 1, 1, "gold")
	owner := customer()

	booking, err := f.book(owner, event.ID, "1-1")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, 4)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Booking.CancelBooking(context.Background(), owner, booking.BookingID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		expectKind(t, err, apperror.KindInvalidState)
	}
	if ok != 1 {
		t.Fatalf("expected exactly one cancellation, got %d", ok)
	}

	got, _ := f.svc.Event.GetEvent(context.Background(), event.ID)
	if got.BookingCount != 0 {
		t.Fatalf("expected booking_count 0, got %d", got.BookingCount)
	}
}

func TestBookingsSurviveEventDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 2, "gold")
	user := customer()

	booking, err := f.book(user, event.ID, "1-1")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := f.svc.Booking.CancelBooking(ctx, user, booking.BookingID); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if err := f.svc.Event.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}

	list, err := f.svc.Booking.ListBookings(ctx, user, &request.ListBookingsRequest{})
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(list.Data) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(list.Data))
	}
	if !list.Data[0].EventDeleted {
		t.Fatal("expected eventDeleted to be true")
	}
	if list.Data[0].EventName != "" {
		t.Fatalf("expected blank event name, got %q", list.Data[0].EventName)
	}
}

func TestConfirmedBookingOfDeletedEventIsCancellable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := customer()

	// a confirmed booking whose event is gone, as left behind by older data
	bookingID := uuid.New()
	err := f.repo.Booking.Create(ctx, &entity.Booking{
		Base:           entity.Base{ID: bookingID, CreatedAt: testNow, UpdatedAt: testNow},
		Reference:      "BK-legacy",
		EventID:        uuid.New(),
		UserID:         &user.UserID,
		PurchaserName:  user.Name,
		PurchaserEmail: user.Email,
		SeatIDs:        []string{"1-1"},
		TotalAmount:    100,
		Status:         entity.BookingStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	list, err := f.svc.Booking.ListBookings(ctx, user, &request.ListBookingsRequest{})
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(list.Data) != 1 || !list.Data[0].EventDeleted {
		t.Fatalf("expected one booking flagged eventDeleted, got %+v", list.Data)
	}

	cancelled, err := f.svc.Booking.CancelBooking(ctx, user, bookingID.String())
	if err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if cancelled.Status != entity.BookingStatusCancelled || !cancelled.EventDeleted {
		t.Fatalf("expected cancelled booking of a deleted event, got %+v", cancelled)
	}
}

func TestListBookingsScopesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, 3, "gold")
	ana, ben := customer(), customer()
	ben.Email = "ben@example.com"

	if _, err := f.book(ana, event.ID, "1-1"); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.book(ana, event.ID, "1-2"); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.book(ben, event.ID, "1-3"); err != nil {
		t.Fatalf("book: %v", err)
	}

	own, err := f.svc.Booking.ListBookings(ctx, ana, &request.ListBookingsRequest{})
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if own.Pagination.Total != 2 {
		t.Fatalf("expected 2 own bookings, got %d", own.Pagination.Total)
	}

	all, _ := f.svc.Booking.ListBookings(ctx, admin(), &request.ListBookingsRequest{})
	if all.Pagination.Total != 3 {
		t.Fatalf("expected 3 bookings for admin, got %d", all.Pagination.Total)
	}

	byEmail, _ := f.svc.Booking.ListBookings(ctx, admin(), &request.ListBookingsRequest{PurchaserEmail: "ben@example.com"})
	if byEmail.Pagination.Total != 1 {
		t.Fatalf("expected 1 booking for ben, got %d", byEmail.Pagination.Total)
	}

	paged, _ := f.svc.Booking.ListBookings(ctx, admin(), &request.ListBookingsRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 2, PerPage: 2},
	})
	if len(paged.Data) != 1 || paged.Pagination.TotalPages != 2 {
		t.Fatalf("expected 1 booking on page 2 of 2, got %d of %d", len(paged.Data), paged.Pagination.TotalPages)
	}
}

func TestGetBookingAnnotatesEvent(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 1, 1, "gold")
	user := customer()

	created, err := f.book(user, event.ID, "1-1")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	got, err := f.svc.Booking.GetBooking(context.Background(), user, created.BookingID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.EventName != "Jazz Night" || got.EventDeleted || got.Tickets != 1 {
		t.Fatalf("unexpected booking view %+v", got)
	}
	if got.EventDate == nil || !got.EventDate.Equal(time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected event date %v", got.EventDate)
	}
}

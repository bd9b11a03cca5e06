package usecase

import (
	"context"
	"fmt"
	"strings"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/pkg/apperror"
	"event-booking/pkg/queue"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService is the booking ledger. Every call takes the caller's session
// explicitly; customers only see and cancel their own bookings.
type BookingService interface {
	CreateBooking(ctx context.Context, session *utils.Session, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error)
	CancelBooking(ctx context.Context, session *utils.Session, bookingID string) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, session *utils.Session, bookingID string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, session *utils.Session, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type bookingService struct {
	repo      *repository.Repository
	clock     utils.Clock
	publisher queue.Publisher
	log       *zap.Logger
}

func NewBookingService(repo *repository.Repository, clock utils.Clock, publisher queue.Publisher, log *zap.Logger) BookingService {
	return newBookingService(repo, clock, publisher, log)
}

func newBookingService(repo *repository.Repository, clock utils.Clock, publisher queue.Publisher, log *zap.Logger) *bookingService {
	return &bookingService{
		repo:      repo,
		clock:     clock,
		publisher: publisher,
		log:       log.With(zap.String("service", "booking")),
	}
}

// selection is a validated booking request.
type selection struct {
	EventID        uuid.UUID
	UserID         *uuid.UUID
	PurchaserName  string
	PurchaserEmail string
	SeatIDs        []string
}

func parseSelection(session *utils.Session, req *request.CreateBookingRequest) (*selection, error) {
	fields := utils.ValidateStruct(req)
	if fields == nil {
		fields = make(map[string]string)
	}

	seen := make(map[string]struct{}, len(req.SeatIDs))
	var dupes []string
	for _, id := range req.SeatIDs {
		if _, ok := seen[id]; ok {
			dupes = append(dupes, id)
		}
		seen[id] = struct{}{}
	}
	if len(dupes) > 0 {
		if _, taken := fields["seatIds"]; !taken {
			fields["seatIds"] = "Duplicate seats: " + strings.Join(dupes, ", ")
		}
	}

	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}
	if len(req.SeatIDs) == 0 {
		return nil, apperror.New(apperror.KindEmptySelection, "no seats selected")
	}

	sel := &selection{
		EventID:        uuid.MustParse(req.EventID),
		PurchaserName:  strings.TrimSpace(req.PurchaserName),
		PurchaserEmail: strings.TrimSpace(req.PurchaserEmail),
		SeatIDs:        append([]string(nil), req.SeatIDs...),
	}
	if session != nil {
		uid := session.UserID
		sel.UserID = &uid
	}
	return sel, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, session *utils.Session, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error) {
	sel, err := parseSelection(session, req)
	if err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}

	var booking *entity.Booking
	err = s.repo.Tx.WithEventLock(ctx, sel.EventID, func(ctx context.Context) error {
		booking, err = s.commit(ctx, sel, nil)
		return err
	})
	if err != nil {
		return nil, s.failure("Create booking", err, zap.String("event_id", sel.EventID.String()))
	}

	s.afterCommit(ctx, booking)

	resp := response.CreateBookingToResponse(booking)
	return &resp, nil
}

// commit allocates the selected seats to a new confirmed booking. The caller
// must hold the event lock. When expected is set the booking is refused unless
// the total still equals it.
func (s *bookingService) commit(ctx context.Context, sel *selection, expected *float64) (*entity.Booking, error) {
	event, layout, err := loadEvent(ctx, s.repo, sel.EventID)
	if err != nil {
		return nil, err
	}

	if err := checkSelection(layout, sel.SeatIDs); err != nil {
		return nil, err
	}

	total, err := TotalFor(layout, sel.SeatIDs)
	if err != nil {
		return nil, err
	}
	if expected != nil && total != *expected {
		return nil, apperror.Conflict("seat prices changed: total is %.2f, authorized %.2f", total, *expected)
	}

	now := s.clock.Now()
	bookingID := utils.GenerateUUID()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        bookingID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:      utils.GenerateBookingReference(bookingID),
		EventID:        event.ID,
		UserID:         sel.UserID,
		PurchaserName:  sel.PurchaserName,
		PurchaserEmail: sel.PurchaserEmail,
		SeatIDs:        sel.SeatIDs,
		TotalAmount:    total,
		Status:         entity.BookingStatusConfirmed,
	}

	wanted := make(map[string]struct{}, len(sel.SeatIDs))
	for _, id := range sel.SeatIDs {
		wanted[id] = struct{}{}
	}
	claimed := make([]*entity.Seat, 0, len(sel.SeatIDs))
	for _, seat := range layout.Seats {
		if _, ok := wanted[seat.ID]; !ok {
			continue
		}
		seat.Available = false
		seat.HeldBy = &bookingID
		seat.UpdatedAt = now
		claimed = append(claimed, seat)
	}

	if err := s.repo.Seat.UpdateBatch(ctx, claimed); err != nil {
		return nil, fmt.Errorf("claim seats: %w", err)
	}
	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}
	if err := s.repo.Event.AdjustBookingCount(ctx, event.ID, 1, now); err != nil {
		return nil, fmt.Errorf("count booking: %w", err)
	}

	return booking, nil
}

func (s *bookingService) afterCommit(ctx context.Context, booking *entity.Booking) {
	s.log.Info("Booking confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("event_id", booking.EventID.String()),
		zap.Strings("seat_ids", booking.SeatIDs),
		zap.Float64("total_amount", booking.TotalAmount),
	)
	s.publish(ctx, queue.QueueBookingConfirmed, booking)
}

func (s *bookingService) publish(ctx context.Context, name string, booking *entity.Booking) {
	msg := queue.BookingEvent{
		BookingID:      booking.ID.String(),
		Reference:      booking.Reference,
		EventID:        booking.EventID.String(),
		PurchaserEmail: booking.PurchaserEmail,
		SeatIDs:        booking.SeatIDs,
		TotalAmount:    booking.TotalAmount,
		Status:         string(booking.Status),
		OccurredAt:     s.clock.Now(),
	}
	if err := s.publisher.Publish(ctx, name, msg); err != nil {
		s.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("queue", name),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}

// failure logs err at a level matching its kind and wraps infrastructure errors.
func (s *bookingService) failure(op string, err error, fields ...zap.Field) error {
	if apperror.KindOf(err) == apperror.KindInternal {
		s.log.Error(op+" failed", append(fields, zap.Error(err))...)
		return fmt.Errorf("%s: %w", strings.ToLower(op), err)
	}
	s.log.Warn(op+" rejected", append(fields, zap.Error(err))...)
	return err
}

// ownedBooking loads a booking the session may act on.
func (s *bookingService) ownedBooking(ctx context.Context, session *utils.Session, bookingID string) (*entity.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.NotFound("booking", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("booking", bookingID)
	}
	if !canAccess(session, booking) {
		return nil, apperror.New(apperror.KindForbidden, "booking %s belongs to another user", bookingID)
	}
	return booking, nil
}

func canAccess(session *utils.Session, booking *entity.Booking) bool {
	if session == nil || session.IsAdmin() {
		return true
	}
	return booking.UserID != nil && *booking.UserID == session.UserID
}

func (s *bookingService) CancelBooking(ctx context.Context, session *utils.Session, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.ownedBooking(ctx, session, bookingID)
	if err != nil {
		return nil, s.failure("Cancel booking", err, zap.String("booking_id", bookingID))
	}

	var event *entity.Event
	err = s.repo.Tx.WithEventLock(ctx, booking.EventID, func(ctx context.Context) error {
		// re-read under the lock; a concurrent cancel may have won
		booking, err = s.repo.Booking.FindByID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperror.NotFound("booking", bookingID)
		}
		if booking.Status == entity.BookingStatusCancelled {
			return apperror.InvalidState("booking %s is already cancelled", bookingID)
		}

		now := s.clock.Now()
		event, err = s.repo.Event.FindByID(ctx, booking.EventID)
		if err != nil {
			return err
		}
		if event != nil {
			seats, err := s.repo.Seat.FindByIDs(ctx, event.ID, booking.SeatIDs)
			if err != nil {
				return err
			}
			released := make([]*entity.Seat, 0, len(seats))
			for _, seat := range seats {
				if seat.HeldBy != nil && *seat.HeldBy == booking.ID {
					releaseSeat(seat, now)
					released = append(released, seat)
				}
			}
			if err := s.repo.Seat.UpdateBatch(ctx, released); err != nil {
				return err
			}
			if err := s.repo.Event.AdjustBookingCount(ctx, event.ID, -1, now); err != nil {
				return err
			}
			event.BookingCount--
		}

		booking.Status = entity.BookingStatusCancelled
		booking.CancelledAt = &now
		booking.UpdatedAt = now
		return s.repo.Booking.Update(ctx, booking)
	})
	if err != nil {
		return nil, s.failure("Cancel booking", err, zap.String("booking_id", bookingID))
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("event_id", booking.EventID.String()),
		zap.Bool("event_deleted", event == nil),
	)
	s.publish(ctx, queue.QueueBookingCancelled, booking)

	resp := response.BookingToResponse(booking, event)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, session *utils.Session, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.ownedBooking(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Event.FindByID(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}

	resp := response.BookingToResponse(booking, event)
	return &resp, nil
}

// ListBookings returns bookings annotated with eventDeleted, computed against
// the catalog at read time.
func (s *bookingService) ListBookings(ctx context.Context, session *utils.Session, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	filter := repository.BookingFilter{PurchaserEmail: strings.TrimSpace(req.PurchaserEmail)}
	if req.EventID != "" {
		id := uuid.MustParse(req.EventID)
		filter.EventID = &id
	}
	if session != nil && !session.IsAdmin() {
		uid := session.UserID
		filter.UserID = &uid
	}

	bookings, err := s.repo.Booking.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.repo.Booking.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	eventIDs := make([]uuid.UUID, 0, len(bookings))
	seen := make(map[uuid.UUID]struct{})
	for _, b := range bookings {
		if _, ok := seen[b.EventID]; !ok {
			seen[b.EventID] = struct{}{}
			eventIDs = append(eventIDs, b.EventID)
		}
	}
	events, err := s.repo.Event.FindByIDs(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	data := make([]response.BookingResponse, len(bookings))
	for i, b := range bookings {
		data[i] = response.BookingToResponse(b, events[b.EventID])
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

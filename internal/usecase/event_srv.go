package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/pkg/apperror"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventService is the event catalog.
type EventService interface {
	// Public endpoints
	ListEvents(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error)
	GetEvent(ctx context.Context, id string) (*response.EventResponse, error)

	// Admin endpoints
	CreateEvent(ctx context.Context, req *request.CreateEventRequest) (*response.EventResponse, error)
	UpdateEvent(ctx context.Context, id string, req *request.UpdateEventRequest) (*response.EventResponse, error)
	DeleteEvent(ctx context.Context, id string) error
}

type eventService struct {
	repo  *repository.Repository
	clock utils.Clock
	log   *zap.Logger
}

func NewEventService(repo *repository.Repository, clock utils.Clock, log *zap.Logger) EventService {
	return &eventService{
		repo:  repo,
		clock: clock,
		log:   log.With(zap.String("service", "event")),
	}
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseEventDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// checkDate records a violation in fields unless raw is a future date.
func (s *eventService) checkDate(raw string, fields map[string]string) time.Time {
	if _, taken := fields["date"]; taken || raw == "" {
		return time.Time{}
	}
	date, ok := parseEventDate(raw)
	if !ok {
		fields["date"] = "Invalid date format, expected RFC3339"
		return time.Time{}
	}
	if !date.After(s.clock.Now()) {
		fields["date"] = "Date must be in the future"
	}
	return date
}

// checkCapacity records violations of the seat capacity fields and returns the
// resulting grid size. ok is false when neither field was given.
func checkCapacity(totalSeats *int, layout *request.LayoutRequest, pricing entity.Pricing, fields map[string]string) (rows, columns int, ok bool) {
	switch {
	case layout != nil:
		rows, columns = layout.Rows, layout.Columns
		if totalSeats != nil && *totalSeats != rows*columns {
			fields["total_seats"] = fmt.Sprintf("Must equal rows x columns (%d)", rows*columns)
		}
		if layout.DefaultTier != "" {
			tier, valid := entity.ParseTier(strings.ToLower(layout.DefaultTier))
			switch {
			case !valid:
				fields["seating_layout.default_tier"] = "Must be one of: gold, silver, platinum, blocked"
			case pricing != nil && tier.Sellable():
				if _, priced := pricing[tier]; !priced {
					fields["seating_layout.default_tier"] = fmt.Sprintf("No price configured for tier %s", tier)
				}
			}
		}
	case totalSeats != nil:
		rows, columns = 1, *totalSeats
	default:
		return 0, 0, false
	}
	return rows, columns, true
}

func pricingFromRequest(req map[string]request.TierPriceRequest) entity.Pricing {
	pricing := make(entity.Pricing, len(req))
	for name, tp := range req {
		entry := entity.TierPrice{Available: true}
		if tp.Price != nil {
			entry.Price = *tp.Price
		}
		if tp.Available != nil {
			entry.Available = *tp.Available
		}
		pricing[entity.Tier(strings.ToLower(name))] = entry
	}
	return pricing
}

// buildLayout generates a fresh grid and paints it with defaultTier when given.
func buildLayout(event *entity.Event, defaultTier string, now time.Time) ([]*entity.Seat, error) {
	seats := entity.GenerateSeats(event.ID, event.Rows, event.Columns, now)
	if defaultTier == "" {
		return seats, nil
	}
	tier, err := parseTier(defaultTier)
	if err != nil {
		return nil, err
	}
	for _, seat := range seats {
		if err := paintSeat(event, seat, tier, now); err != nil {
			return nil, err
		}
	}
	return seats, nil
}

func (s *eventService) CreateEvent(ctx context.Context, req *request.CreateEventRequest) (*response.EventResponse, error) {
	fields := utils.ValidateStruct(req)
	if fields == nil {
		fields = make(map[string]string)
	}

	date := s.checkDate(req.Date, fields)
	pricing := pricingFromRequest(req.Pricing)
	rows, columns, ok := checkCapacity(req.TotalSeats, req.SeatingLayout, pricing, fields)
	if !ok {
		fields["total_seats"] = "Provide total_seats or seating_layout"
	}

	if len(fields) > 0 {
		s.log.Warn("Create event validation failed", zap.Any("errors", fields))
		return nil, apperror.Validation(fields)
	}

	now := s.clock.Now()
	event := &entity.Event{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        strings.TrimSpace(req.Name),
		Date:        date,
		Location:    strings.TrimSpace(req.Location),
		Description: req.Description,
		Rows:        rows,
		Columns:     columns,
		Pricing:     pricing,
	}

	var defaultTier string
	if req.SeatingLayout != nil {
		defaultTier = req.SeatingLayout.DefaultTier
	}
	seats, err := buildLayout(event, defaultTier, now)
	if err != nil {
		return nil, err
	}

	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Event.Create(ctx, event); err != nil {
			return err
		}
		return s.repo.Seat.ReplaceLayout(ctx, event.ID, seats)
	})
	if err != nil {
		s.log.Error("Failed to create event", zap.Error(err), zap.String("name", event.Name))
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.Int("rows", rows),
		zap.Int("columns", columns),
	)

	layout := &entity.SeatingLayout{Rows: rows, Columns: columns, Seats: seats}
	resp := response.EventToResponse(event, layout.AvailableCount(), layout)
	return &resp, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, req *request.UpdateEventRequest) (*response.EventResponse, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound("event", id)
	}

	fields := utils.ValidateStruct(req)
	if fields == nil {
		fields = make(map[string]string)
	}

	var date time.Time
	if req.Date != nil {
		date = s.checkDate(*req.Date, fields)
	}
	var pricing entity.Pricing
	if req.Pricing != nil {
		pricing = pricingFromRequest(req.Pricing)
	}
	checkCapacity(req.TotalSeats, req.SeatingLayout, pricing, fields)

	if len(fields) > 0 {
		s.log.Warn("Update event validation failed", zap.Any("errors", fields))
		return nil, apperror.Validation(fields)
	}

	var (
		event *entity.Event
		seats []*entity.Seat
	)
	err = s.repo.Tx.WithEventLock(ctx, eventID, func(ctx context.Context) error {
		event, err = s.repo.Event.FindByID(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return apperror.NotFound("event", id)
		}
		if req.TouchesInventory() {
			if err := ensureUnlocked(event); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		if req.Name != nil {
			event.Name = strings.TrimSpace(*req.Name)
		}
		if req.Date != nil {
			event.Date = date
		}
		if req.Location != nil {
			event.Location = strings.TrimSpace(*req.Location)
		}
		if req.Description != nil {
			event.Description = *req.Description
		}
		if pricing != nil {
			event.Pricing = pricing
		}
		event.UpdatedAt = now

		regenerate := req.SeatingLayout != nil || req.TotalSeats != nil
		if regenerate {
			var defaultTier string
			if req.SeatingLayout != nil {
				event.Rows, event.Columns = req.SeatingLayout.Rows, req.SeatingLayout.Columns
				defaultTier = req.SeatingLayout.DefaultTier
			} else {
				event.Rows, event.Columns = 1, *req.TotalSeats
			}
			if seats, err = buildLayout(event, defaultTier, now); err != nil {
				return err
			}
		}

		if err := s.repo.Event.Update(ctx, event); err != nil {
			return err
		}
		if regenerate {
			return s.repo.Seat.ReplaceLayout(ctx, event.ID, seats)
		}
		seats, err = s.repo.Seat.FindByEvent(ctx, event.ID)
		return err
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.log.Error("Failed to update event", zap.Error(err), zap.String("event_id", id))
			return nil, fmt.Errorf("update event %s: %w", id, err)
		}
		s.log.Warn("Update event rejected", zap.Error(err), zap.String("event_id", id))
		return nil, err
	}

	s.log.Info("Event updated", zap.String("event_id", id))

	layout := &entity.SeatingLayout{Rows: event.Rows, Columns: event.Columns, Seats: seats}
	resp := response.EventToResponse(event, layout.AvailableCount(), layout)
	return &resp, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return apperror.NotFound("event", id)
	}

	err = s.repo.Tx.WithEventLock(ctx, eventID, func(ctx context.Context) error {
		event, err := s.repo.Event.FindByID(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return apperror.NotFound("event", id)
		}
		if event.BookingCount > 0 {
			return apperror.Conflict("event %s has %d confirmed booking(s) and cannot be deleted", id, event.BookingCount)
		}
		return s.repo.Event.Delete(ctx, eventID)
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.log.Error("Failed to delete event", zap.Error(err), zap.String("event_id", id))
			return fmt.Errorf("delete event %s: %w", id, err)
		}
		s.log.Warn("Delete event rejected", zap.Error(err), zap.String("event_id", id))
		return err
	}

	s.log.Info("Event deleted", zap.String("event_id", id))
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*response.EventResponse, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound("event", id)
	}

	event, layout, err := loadEvent(ctx, s.repo, eventID)
	if err != nil {
		return nil, err
	}

	resp := response.EventToResponse(event, layout.AvailableCount(), layout)
	return &resp, nil
}

func (s *eventService) ListEvents(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error) {
	req.Normalize()

	events, err := s.repo.Event.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	total, err := s.repo.Event.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	ids := make([]uuid.UUID, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	available, err := s.repo.Seat.CountBookable(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count available seats: %w", err)
	}

	data := make([]response.EventResponse, len(events))
	for i, e := range events {
		data[i] = response.EventToResponse(e, available[e.ID], nil)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

// loadEvent reads an event with its full seating layout.
func loadEvent(ctx context.Context, repo *repository.Repository, eventID uuid.UUID) (*entity.Event, *entity.SeatingLayout, error) {
	event, err := repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, nil, apperror.NotFound("event", eventID.String())
	}

	seats, err := repo.Seat.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("find seats: %w", err)
	}

	return event, &entity.SeatingLayout{Rows: event.Rows, Columns: event.Columns, Seats: seats}, nil
}

package usecase

import (
	"context"
	"fmt"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/pkg/apperror"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService manages the seat grid of each event.
type InventoryService interface {
	GetLayout(ctx context.Context, eventID string) (*response.SeatingLayoutResponse, error)
	IsBookable(ctx context.Context, eventID, seatID string) (bool, error)

	// Admin endpoints, rejected with Locked once the event has bookings
	GenerateLayout(ctx context.Context, eventID string, req *request.LayoutRequest) (*response.SeatingLayoutResponse, error)
	AssignTier(ctx context.Context, eventID, seatID string, req *request.AssignTierRequest) (*response.SeatResponse, error)
	BulkAssignTier(ctx context.Context, eventID string, req *request.BulkAssignTierRequest) (*response.SeatingLayoutResponse, error)
	CycleTier(ctx context.Context, eventID, seatID string) (*response.SeatResponse, error)
}

type inventoryService struct {
	repo  *repository.Repository
	clock utils.Clock
	log   *zap.Logger
}

func NewInventoryService(repo *repository.Repository, clock utils.Clock, log *zap.Logger) InventoryService {
	return &inventoryService{
		repo:  repo,
		clock: clock,
		log:   log.With(zap.String("service", "inventory")),
	}
}

func (s *inventoryService) GetLayout(ctx context.Context, eventID string) (*response.SeatingLayoutResponse, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, apperror.NotFound("event", eventID)
	}

	_, layout, err := loadEvent(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	resp := response.LayoutToResponse(layout)
	return &resp, nil
}

func (s *inventoryService) IsBookable(ctx context.Context, eventID, seatID string) (bool, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return false, nil
	}

	event, err := s.repo.Event.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return false, nil
	}

	seats, err := s.repo.Seat.FindByIDs(ctx, id, []string{seatID})
	if err != nil {
		return false, fmt.Errorf("find seat: %w", err)
	}
	return len(seats) == 1 && seats[0].Bookable(), nil
}

// mutate runs fn against an unlocked event while holding the event lock.
func (s *inventoryService) mutate(ctx context.Context, eventID string, fn func(ctx context.Context, event *entity.Event) error) error {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return apperror.NotFound("event", eventID)
	}

	err = s.repo.Tx.WithEventLock(ctx, id, func(ctx context.Context) error {
		event, err := s.repo.Event.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if event == nil {
			return apperror.NotFound("event", eventID)
		}
		if err := ensureUnlocked(event); err != nil {
			return err
		}
		return fn(ctx, event)
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.log.Error("Seat inventory update failed", zap.Error(err), zap.String("event_id", eventID))
			return fmt.Errorf("update seats of event %s: %w", eventID, err)
		}
		s.log.Warn("Seat inventory update rejected", zap.Error(err), zap.String("event_id", eventID))
	}
	return err
}

// GenerateLayout replaces the grid with a fresh rows x columns layout.
func (s *inventoryService) GenerateLayout(ctx context.Context, eventID string, req *request.LayoutRequest) (*response.SeatingLayoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Generate layout validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation(errs)
	}

	var layout *entity.SeatingLayout
	err := s.mutate(ctx, eventID, func(ctx context.Context, event *entity.Event) error {
		now := s.clock.Now()
		event.Rows, event.Columns = req.Rows, req.Columns
		event.UpdatedAt = now

		seats, err := buildLayout(event, req.DefaultTier, now)
		if err != nil {
			return err
		}
		if err := s.repo.Event.Update(ctx, event); err != nil {
			return err
		}
		if err := s.repo.Seat.ReplaceLayout(ctx, event.ID, seats); err != nil {
			return err
		}
		layout = &entity.SeatingLayout{Rows: event.Rows, Columns: event.Columns, Seats: seats}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Seating layout generated",
		zap.String("event_id", eventID),
		zap.Int("rows", req.Rows),
		zap.Int("columns", req.Columns),
	)

	resp := response.LayoutToResponse(layout)
	return &resp, nil
}

func (s *inventoryService) AssignTier(ctx context.Context, eventID, seatID string, req *request.AssignTierRequest) (*response.SeatResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	tier, err := parseTier(req.Tier)
	if err != nil {
		return nil, err
	}

	return s.repaintOne(ctx, eventID, seatID, func(*entity.Seat) entity.Tier { return tier })
}

// CycleTier moves a seat to the next tier of the gold, silver, platinum, blocked rotation.
func (s *inventoryService) CycleTier(ctx context.Context, eventID, seatID string) (*response.SeatResponse, error) {
	return s.repaintOne(ctx, eventID, seatID, func(seat *entity.Seat) entity.Tier { return seat.Tier.Next() })
}

func (s *inventoryService) repaintOne(ctx context.Context, eventID, seatID string, pick func(*entity.Seat) entity.Tier) (*response.SeatResponse, error) {
	var seat *entity.Seat
	err := s.mutate(ctx, eventID, func(ctx context.Context, event *entity.Event) error {
		seats, err := s.repo.Seat.FindByIDs(ctx, event.ID, []string{seatID})
		if err != nil {
			return err
		}
		if len(seats) == 0 {
			return apperror.NotFound("seat", seatID)
		}
		seat = seats[0]

		if err := paintSeat(event, seat, pick(seat), s.clock.Now()); err != nil {
			return err
		}
		return s.repo.Seat.UpdateBatch(ctx, []*entity.Seat{seat})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Seat tier assigned",
		zap.String("event_id", eventID),
		zap.String("seat_id", seatID),
		zap.String("tier", string(seat.Tier)),
	)

	resp := response.SeatToResponse(seat)
	return &resp, nil
}

func (s *inventoryService) BulkAssignTier(ctx context.Context, eventID string, req *request.BulkAssignTierRequest) (*response.SeatingLayoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	tier, err := parseTier(req.Tier)
	if err != nil {
		return nil, err
	}

	var layout *entity.SeatingLayout
	err = s.mutate(ctx, eventID, func(ctx context.Context, event *entity.Event) error {
		seats, err := s.repo.Seat.FindByEvent(ctx, event.ID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for _, seat := range seats {
			if err := paintSeat(event, seat, tier, now); err != nil {
				return err
			}
		}
		if err := s.repo.Seat.UpdateBatch(ctx, seats); err != nil {
			return err
		}
		layout = &entity.SeatingLayout{Rows: event.Rows, Columns: event.Columns, Seats: seats}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Tier assigned to all seats",
		zap.String("event_id", eventID),
		zap.String("tier", string(tier)),
		zap.Int("seats", len(layout.Seats)),
	)

	resp := response.LayoutToResponse(layout)
	return &resp, nil
}

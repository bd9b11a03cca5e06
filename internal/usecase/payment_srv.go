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

// PaymentService implements the two-phase booking flow: an intent reserves the
// shape of a booking, the payment processor authorizes it out of band, and the
// webhook commits it.
type PaymentService interface {
	CreateIntent(ctx context.Context, session *utils.Session, req *request.CreateBookingRequest) (*response.PaymentIntentResponse, error)
	GetIntent(ctx context.Context, session *utils.Session, intentID string) (*response.PaymentIntentResponse, error)
	HandleWebhook(ctx context.Context, req *request.PaymentWebhookRequest) (*response.PaymentIntentResponse, error)
}

type paymentService struct {
	repo    *repository.Repository
	booking *bookingService
	clock   utils.Clock
	ttl     time.Duration
	log     *zap.Logger
}

func NewPaymentService(repo *repository.Repository, booking *bookingService, clock utils.Clock, ttl time.Duration, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:    repo,
		booking: booking,
		clock:   clock,
		ttl:     ttl,
		log:     log.With(zap.String("service", "payment")),
	}
}

// CreateIntent prices the selection and records a pending intent. Seats are not
// held; they are claimed only when the authorized intent is committed.
func (s *paymentService) CreateIntent(ctx context.Context, session *utils.Session, req *request.CreateBookingRequest) (*response.PaymentIntentResponse, error) {
	sel, err := parseSelection(session, req)
	if err != nil {
		s.log.Warn("Create payment intent validation failed", zap.Error(err))
		return nil, err
	}

	_, layout, err := loadEvent(ctx, s.repo, sel.EventID)
	if err != nil {
		return nil, err
	}
	if err := checkSelection(layout, sel.SeatIDs); err != nil {
		s.log.Warn("Create payment intent rejected", zap.Error(err), zap.String("event_id", sel.EventID.String()))
		return nil, err
	}
	amount, err := TotalFor(layout, sel.SeatIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	intent := &entity.PaymentIntent{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		EventID:        sel.EventID,
		UserID:         sel.UserID,
		PurchaserName:  sel.PurchaserName,
		PurchaserEmail: sel.PurchaserEmail,
		SeatIDs:        sel.SeatIDs,
		Amount:         amount,
		Status:         entity.PaymentIntentPending,
		ExpiresAt:      now.Add(s.ttl),
	}

	if err := s.repo.PaymentIntent.Create(ctx, intent); err != nil {
		s.log.Error("Failed to create payment intent", zap.Error(err))
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	s.log.Info("Payment intent created",
		zap.String("intent_id", intent.ID.String()),
		zap.String("event_id", intent.EventID.String()),
		zap.Float64("amount", amount),
	)

	resp := response.PaymentIntentToResponse(intent)
	return &resp, nil
}

func (s *paymentService) GetIntent(ctx context.Context, session *utils.Session, intentID string) (*response.PaymentIntentResponse, error) {
	intent, err := s.findIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if session != nil && !session.IsAdmin() && (intent.UserID == nil || *intent.UserID != session.UserID) {
		return nil, apperror.New(apperror.KindForbidden, "payment intent %s belongs to another user", intentID)
	}

	resp := response.PaymentIntentToResponse(intent)
	return &resp, nil
}

func (s *paymentService) findIntent(ctx context.Context, intentID string) (*entity.PaymentIntent, error) {
	id, err := uuid.Parse(intentID)
	if err != nil {
		return nil, apperror.NotFound("payment intent", intentID)
	}
	intent, err := s.repo.PaymentIntent.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find payment intent: %w", err)
	}
	if intent == nil {
		return nil, apperror.NotFound("payment intent", intentID)
	}
	return intent, nil
}

// settled reports the outcome for an intent that is no longer pending. A
// repeated authorization of a committed intent is answered idempotently.
func settled(intent *entity.PaymentIntent, authorized bool) error {
	if intent.Status == entity.PaymentIntentCommitted && authorized {
		return nil
	}
	return apperror.InvalidState("payment intent %s is %s", intent.ID, intent.Status)
}

func (s *paymentService) HandleWebhook(ctx context.Context, req *request.PaymentWebhookRequest) (*response.PaymentIntentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	intent, err := s.findIntent(ctx, req.IntentID)
	if err != nil {
		return nil, err
	}

	authorized := req.Status == "authorized"
	var ref *string
	if r := strings.TrimSpace(req.Reference); r != "" {
		ref = &r
	}

	eventID, intentID := intent.EventID, intent.ID
	var (
		booking    *entity.Booking
		commitLost bool
	)
	err = s.repo.Tx.WithEventLock(ctx, eventID, func(ctx context.Context) error {
		intent, err = s.repo.PaymentIntent.FindByID(ctx, intentID)
		if err != nil {
			return err
		}
		if intent == nil {
			return apperror.NotFound("payment intent", req.IntentID)
		}
		if intent.Status != entity.PaymentIntentPending {
			return settled(intent, authorized)
		}

		now := s.clock.Now()
		intent.UpdatedAt = now
		intent.ProviderRef = ref

		switch {
		case !authorized:
			intent.Status = entity.PaymentIntentFailed
			return s.repo.PaymentIntent.Update(ctx, intent)
		case intent.Expired(now):
			intent.Status = entity.PaymentIntentExpired
			return s.repo.PaymentIntent.Update(ctx, intent)
		}

		sel := &selection{
			EventID:        intent.EventID,
			UserID:         intent.UserID,
			PurchaserName:  intent.PurchaserName,
			PurchaserEmail: intent.PurchaserEmail,
			SeatIDs:        intent.SeatIDs,
		}
		booking, err = s.booking.commit(ctx, sel, &intent.Amount)
		if err != nil {
			commitLost = true
			return err
		}

		intent.Status = entity.PaymentIntentCommitted
		intent.BookingID = &booking.ID
		return s.repo.PaymentIntent.Update(ctx, intent)
	})

	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.log.Error("Payment webhook failed", zap.Error(err), zap.String("intent_id", req.IntentID))
			return nil, fmt.Errorf("handle payment webhook: %w", err)
		}
		if commitLost {
			// the payment went through but the seats could not be committed
			s.markFailed(ctx, eventID, intentID, ref)
		}
		s.log.Warn("Payment webhook rejected", zap.Error(err), zap.String("intent_id", req.IntentID))
		return nil, err
	}

	if intent.Status == entity.PaymentIntentExpired {
		s.log.Warn("Payment intent expired", zap.String("intent_id", req.IntentID))
		return nil, apperror.InvalidState("payment intent %s expired", req.IntentID)
	}

	if booking != nil {
		s.booking.afterCommit(ctx, booking)
	}

	s.log.Info("Payment webhook handled",
		zap.String("intent_id", intent.ID.String()),
		zap.String("status", string(intent.Status)),
	)

	resp := response.PaymentIntentToResponse(intent)
	if intent.BookingID != nil {
		b, err := s.repo.Booking.FindByID(ctx, *intent.BookingID)
		if err == nil && b != nil {
			resp.BookingReference = &b.Reference
		}
	}
	return &resp, nil
}

// markFailed takes the event lock again and only moves an intent that is still
// pending. A redelivery may have committed it since the first attempt let go
// of the lock.
func (s *paymentService) markFailed(ctx context.Context, eventID, intentID uuid.UUID, ref *string) {
	err := s.repo.Tx.WithEventLock(ctx, eventID, func(ctx context.Context) error {
		cur, err := s.repo.PaymentIntent.FindByID(ctx, intentID)
		if err != nil {
			return err
		}
		if cur == nil || cur.Status != entity.PaymentIntentPending {
			return nil
		}
		cur.Status = entity.PaymentIntentFailed
		cur.ProviderRef = ref
		cur.UpdatedAt = s.clock.Now()
		return s.repo.PaymentIntent.Update(ctx, cur)
	})
	if err != nil {
		s.log.Error("Failed to mark payment intent failed",
			zap.Error(err),
			zap.String("intent_id", intentID.String()),
		)
	}
}

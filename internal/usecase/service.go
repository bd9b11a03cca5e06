package usecase

import (
	"event-booking/internal/data/repository"
	"event-booking/pkg/queue"
	"event-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth      AuthService
	Event     EventService
	Inventory InventoryService
	Booking   BookingService
	Payment   PaymentService
}

func NewService(repo *repository.Repository, config *utils.Config, clock utils.Clock, publisher queue.Publisher, log *zap.Logger) *Service {
	booking := newBookingService(repo, clock, publisher, log)

	return &Service{
		Auth:      NewAuthService(repo, config, clock, log),
		Event:     NewEventService(repo, clock, log),
		Inventory: NewInventoryService(repo, clock, log),
		Booking:   booking,
		Payment:   NewPaymentService(repo, booking, clock, config.Payment.IntentTTL, log),
	}
}

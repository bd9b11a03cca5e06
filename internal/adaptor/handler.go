package adaptor

import (
	"event-booking/internal/usecase"
	"event-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth      *AuthHandler
	Event     *EventHandler
	Inventory *InventoryHandler
	Booking   *BookingHandler
	Payment   *PaymentHandler
	Health    *HealthHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, health HealthChecker, log *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(service.Auth, log),
		Event:     NewEventHandler(service.Event, log),
		Inventory: NewInventoryHandler(service.Inventory, log),
		Booking:   NewBookingHandler(service.Booking, log),
		Payment:   NewPaymentHandler(service.Payment, config.Payment.WebhookSecret, log),
		Health:    NewHealthHandler(config.App.Name, health),
	}
}

package adaptor

import (
	"crypto/subtle"
	"net/http"

	"event-booking/internal/dto/request"
	"event-booking/internal/usecase"
	"event-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const webhookSecretHeader = "X-Webhook-Secret"

type PaymentHandler struct {
	service       usecase.PaymentService
	webhookSecret string
	log           *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, webhookSecret string, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
		log:           log.With(zap.String("handler", "payment")),
	}
}

// CreateIntent handles POST /api/payments/intents (protected)
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), session, &req)
	if err != nil {
		writeError(w, h.log, err, "create payment intent")
		return
	}

	utils.ResponseCreated(w, "Payment intent created", intent)
}

// GetIntent handles GET /api/payments/intents/{id} (protected)
func (h *PaymentHandler) GetIntent(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}

	intent, err := h.service.GetIntent(r.Context(), session, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, "get payment intent")
		return
	}

	utils.ResponseSuccess(w, "success", intent)
}

// Webhook handles POST /api/payments/webhook, called by the payment processor.
// Without a configured secret every delivery is refused.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret == "" {
		h.log.Error("Payment webhook received but no webhook secret is configured", zap.String("ip", r.RemoteAddr))
		utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Payment webhook is not configured", nil, nil)
		return
	}
	got := r.Header.Get(webhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
		h.log.Warn("Payment webhook with bad secret", zap.String("ip", r.RemoteAddr))
		utils.ResponseUnauthorized(w, "Invalid webhook secret")
		return
	}

	var req request.PaymentWebhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	intent, err := h.service.HandleWebhook(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err, "handle payment webhook")
		return
	}

	utils.ResponseSuccess(w, "success", intent)
}

package wire

import (
	"event-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler, g guards) {
	// the processor authenticates with the shared webhook secret, not a session;
	// the route answers 503 while no secret is configured
	r.Post("/api/payments/webhook", paymentHandler.Webhook)

	r.Route("/api/payments/intents", func(r chi.Router) {
		r.Use(g.auth)

		r.With(g.rateLimit).Post("/", paymentHandler.CreateIntent)
		r.Get("/{id}", paymentHandler.GetIntent)
	})
}

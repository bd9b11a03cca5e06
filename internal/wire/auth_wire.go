package wire

import (
	"event-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guards) {
	r.Group(func(r chi.Router) {
		r.Use(g.rateLimit)
		r.Post("/api/register", authHandler.Register)
		r.Post("/api/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(g.auth)
		r.Post("/api/logout", authHandler.Logout)
	})
}

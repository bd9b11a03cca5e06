package wire

import (
	"event-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireEvent(r chi.Router, eventHandler *adaptor.EventHandler, inventoryHandler *adaptor.InventoryHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{id}", eventHandler.GetEvent)
		r.Get("/{id}/seats", inventoryHandler.GetLayout)
		r.Get("/{id}/seats/{seatId}/bookable", inventoryHandler.IsBookable)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/events", func(r chi.Router) {
		r.Use(g.auth)
		r.Use(g.admin)

		r.Post("/", eventHandler.CreateEvent)
		r.Patch("/{id}", eventHandler.UpdateEvent)
		r.Delete("/{id}", eventHandler.DeleteEvent)

		r.Put("/{id}/layout", inventoryHandler.GenerateLayout)
		r.Put("/{id}/seats/tier", inventoryHandler.BulkAssignTier)
		r.Put("/{id}/seats/{seatId}/tier", inventoryHandler.AssignTier)
		r.Post("/{id}/seats/{seatId}/cycle", inventoryHandler.CycleTier)
	})
}

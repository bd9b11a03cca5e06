package adaptor

import (
	"net/http"

	"event-booking/internal/dto/request"
	"event-booking/internal/usecase"
	"event-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	service usecase.InventoryService
	log     *zap.Logger
}

func NewInventoryHandler(service usecase.InventoryService, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		log:     log.With(zap.String("handler", "inventory")),
	}
}

// GetLayout handles GET /api/events/{id}/seats
func (h *InventoryHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.service.GetLayout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, "get seating layout")
		return
	}

	utils.ResponseSuccess(w, "success", layout)
}

// IsBookable handles GET /api/events/{id}/seats/{seatId}/bookable
func (h *InventoryHandler) IsBookable(w http.ResponseWriter, r *http.Request) {
	seatID := chi.URLParam(r, "seatId")
	ok, err := h.service.IsBookable(r.Context(), chi.URLParam(r, "id"), seatID)
	if err != nil {
		writeError(w, h.log, err, "check seat")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]any{
		"seatId":   seatID,
		"bookable": ok,
	})
}

// GenerateLayout handles PUT /api/admin/events/{id}/layout (admin only)
func (h *InventoryHandler) GenerateLayout(w http.ResponseWriter, r *http.Request) {
	var req request.LayoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	layout, err := h.service.GenerateLayout(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, h.log, err, "generate layout")
		return
	}

	utils.ResponseSuccess(w, "Seating layout generated", layout)
}

// AssignTier handles PUT /api/admin/events/{id}/seats/{seatId}/tier (admin only)
func (h *InventoryHandler) AssignTier(w http.ResponseWriter, r *http.Request) {
	var req request.AssignTierRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	seat, err := h.service.AssignTier(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "seatId"), &req)
	if err != nil {
		writeError(w, h.log, err, "assign tier")
		return
	}

	utils.ResponseSuccess(w, "Tier assigned", seat)
}

// BulkAssignTier handles PUT /api/admin/events/{id}/seats/tier (admin only)
func (h *InventoryHandler) BulkAssignTier(w http.ResponseWriter, r *http.Request) {
	var req request.BulkAssignTierRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	layout, err := h.service.BulkAssignTier(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, h.log, err, "bulk assign tier")
		return
	}

	utils.ResponseSuccess(w, "Tier assigned to all seats", layout)
}

// CycleTier handles POST /api/admin/events/{id}/seats/{seatId}/cycle (admin only)
func (h *InventoryHandler) CycleTier(w http.ResponseWriter, r *http.Request) {
	seat, err := h.service.CycleTier(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "seatId"))
	if err != nil {
		writeError(w, h.log, err, "cycle tier")
		return
	}

	utils.ResponseSuccess(w, "Tier assigned", seat)
}

package adaptor

import (
	"net/http"

	"event-booking/internal/dto/request"
	"event-booking/internal/usecase"
	"event-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EventHandler struct {
	service usecase.EventService
	log     *zap.Logger
}

func NewEventHandler(service usecase.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log.With(zap.String("handler", "event")),
	}
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	events, err := h.service.ListEvents(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err, "list events")
		return
	}

	utils.ResponseSuccess(w, "success", events)
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, "get event")
		return
	}

	utils.ResponseSuccess(w, "success", event)
}

// CreateEvent handles POST /api/admin/events (admin only)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req request.CreateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.service.CreateEvent(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err, "create event")
		return
	}

	utils.ResponseCreated(w, "Event created", event)
}

// UpdateEvent handles PATCH /api/admin/events/{id} (admin only)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, h.log, err, "update event")
		return
	}

	utils.ResponseSuccess(w, "Event updated", event)
}

// DeleteEvent handles DELETE /api/admin/events/{id} (admin only)
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err, "delete event")
		return
	}

	utils.ResponseSuccess(w, "Event deleted", nil)
}

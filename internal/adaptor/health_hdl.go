package adaptor

import (
	"context"
	"net/http"
	"time"

	"event-booking/pkg/utils"
)

// HealthChecker pings the backing store.
type HealthChecker func(ctx context.Context) error

type HealthHandler struct {
	app   string
	check HealthChecker
}

func NewHealthHandler(app string, check HealthChecker) *HealthHandler {
	return &HealthHandler{app: app, check: check}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.check(ctx); err != nil {
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "unhealthy", nil,
				map[string]string{"database": err.Error()})
			return
		}
	}

	utils.ResponseSuccess(w, "ok", map[string]string{"app": h.app})
}

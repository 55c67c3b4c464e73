package api

import (
	"net/http"
)

// HealthHandler reports liveness plus service counters.
type HealthHandler struct {
	stats StatsProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{stats: stats}
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.stats != nil {
		for k, v := range h.stats.GetStats() {
			body[k] = v
		}
	}
	writeJSON(w, http.StatusOK, body)
}

package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /healthz.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)
	if h.src.Ready != nil && !h.src.Ready() {
		h.writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "server is shutting down")
		return
	}
	h.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Time: now})
}

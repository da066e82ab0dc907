package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yndnr/microcache-go/internal/infra/buildinfo"
	"github.com/yndnr/microcache-go/internal/server/cacheserver"
)

// handleStats handles GET /v1/stats.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Build:  buildinfo.Get(),
		Uptime: time.Since(h.src.StartedAt).Truncate(time.Second).String(),
	}
	if s := h.src.Store; s != nil {
		st := s.Stats()
		resp.Store = StoreStats{Gets: st.Gets, Sets: st.Sets, Deletes: st.Deletes, Keys: s.Len()}
	}
	if q := h.src.Queue; q != nil {
		resp.QueueDepth = q.Len()
	}
	if p := h.src.Workers; p != nil {
		resp.Workers = p.Stats()
	}
	if c := h.src.Connections; c != nil {
		resp.Connections = c.Totals()
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleConnections handles GET /v1/connections.
//
// Query parameters: alive=true|false filters by state.
func (h *Handler) handleConnections(w http.ResponseWriter, r *http.Request) {
	records := []cacheserver.ConnectionRecord{}
	if c := h.src.Connections; c != nil {
		records = c.Snapshot()
	}

	if v := r.URL.Query().Get("alive"); v != "" {
		alive, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "alive must be a boolean")
			return
		}
		filtered := records[:0]
		for _, rec := range records {
			if rec.Alive == alive {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	h.writeJSON(w, r, http.StatusOK, ConnectionsResponse{Count: len(records), Connections: records})
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/microcache-go/internal/dispatch"
	"github.com/yndnr/microcache-go/internal/server/cacheserver"
	"github.com/yndnr/microcache-go/internal/storage"
	"github.com/yndnr/microcache-go/internal/telemetry/logger"
)

// StoreSource reports store counters.
type StoreSource interface {
	Stats() storage.Stats
	Len() int
}

// QueueSource reports the dispatcher queue depth.
type QueueSource interface {
	Len() int
}

// WorkerSource reports worker pool counters.
type WorkerSource interface {
	Stats() dispatch.WorkerStats
}

// ConnectionSource reports client connections.
type ConnectionSource interface {
	Snapshot() []cacheserver.ConnectionRecord
	Totals() cacheserver.Totals
}

// Sources are the components the endpoints read from. Nil sources report
// zero values.
type Sources struct {
	Store       StoreSource
	Queue       QueueSource
	Workers     WorkerSource
	Connections ConnectionSource

	// Ready reports whether the server accepts traffic. Nil means always.
	Ready func() bool

	// StartedAt is the process start time used for uptime.
	StartedAt time.Time
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	src    Sources
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a new Handler.
func New(src Sources, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if src.StartedAt.IsZero() {
		src.StartedAt = time.Now()
	}
	h := &Handler{
		src:    src,
		logger: log,
		mux:    http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	h.mux.HandleFunc("GET /v1/stats", h.handleStats)
	h.mux.HandleFunc("GET /v1/connections", h.handleConnections)
}

// writeJSON writes a success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.write(w, status, NewResponse(logger.RequestIDFromContext(r.Context()), data))
}

// writeError writes an error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("X-Error-Code", code)
	h.write(w, status, NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message))
}

func (h *Handler) write(w http.ResponseWriter, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Debug("failed to write response", "error", err)
	}
}

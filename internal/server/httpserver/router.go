package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/microcache-go/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Sources feed the JSON endpoints.
	Sources handler.Sources

	// Metrics serves GET /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter creates the admin router with all routes and middleware.
//
// Order: RequestID -> Recover -> Audit -> route
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(cfg.Sources, log)

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", h)
	mux.Handle("GET /v1/stats", h)
	mux.Handle("GET /v1/connections", h)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	return Chain(mux,
		RequestID(),
		Recover(log),
		Audit(log),
	)
}

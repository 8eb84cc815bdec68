// Package httpserver provides the admin HTTP server for shardkv.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/shardkv/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Store backs /stats.
	Store handler.Store

	// Ready backs /ready. Nil means always ready.
	Ready func() error

	// Connections reports open Redis connections for /stats.
	Connections func() int

	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter creates the admin router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := handler.New(handler.Config{
		Store:       cfg.Store,
		Ready:       cfg.Ready,
		Connections: cfg.Connections,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	mux.Handle("GET /health", h)
	mux.Handle("GET /ready", h)
	mux.Handle("GET /stats", h)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Order: RequestID -> Recover -> AccessLog -> route
	return Chain(mux, RequestID(), Recover(logger), AccessLog(logger))
}

// Package handler provides HTTP request handlers for shardkv.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yndnr/shardkv/pkg/cmap"
)

// Store is the part of the store the admin endpoints read.
type Store interface {
	Len() int
	ShardCount() int
	Stats() []cmap.ShardStats
}

// Config wires the handler to the running server.
type Config struct {
	Store Store
	// Ready reports whether the server accepts traffic. Nil means always.
	Ready func() error
	// Connections returns the number of open client connections. Optional.
	Connections func() int
	Logger      *slog.Logger
}

// Handler serves the admin endpoints.
type Handler struct {
	store       Store
	ready       func() error
	connections func() int
	logger      *slog.Logger
	mux         *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		store:       cfg.Store,
		ready:       cfg.Ready,
		connections: cfg.Connections,
		logger:      cfg.Logger,
		mux:         http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /stats", h.handleStats)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.write(w, status, NewResponse(requestID(r), data))
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("X-Error-Code", code)
	h.write(w, status, NewErrorResponse(requestID(r), code, message))
}

func (h *Handler) write(w http.ResponseWriter, status int, body *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// requestID reads the id the RequestID middleware put on the response.
func requestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

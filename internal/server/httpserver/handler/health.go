// Package handler provides HTTP request handlers for shardkv.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/yndnr/shardkv/internal/core/domain"
	"github.com/yndnr/shardkv/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Build:  buildinfo.Get(),
	})
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			code := domain.ErrNotReady.Code
			var de *domain.DomainError
			if errors.As(err, &de) {
				code = de.Code
			}
			h.writeError(w, r, http.StatusServiceUnavailable, code, err.Error())
			return
		}
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

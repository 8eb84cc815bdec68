package handler

import (
	"net/http"

	"github.com/yndnr/shardkv/internal/core/domain"
)

// handleStats handles GET /stats.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrNotReady.Code, "store not configured")
		return
	}

	resp := StatsResponse{
		Keys:       h.store.Len(),
		ShardCount: h.store.ShardCount(),
		Shards:     h.store.Stats(),
	}
	if h.connections != nil {
		resp.Connections = h.connections()
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

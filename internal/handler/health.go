package handler

import (
	"net/http"
	"time"

	"github.com/kpgen/kpgen/internal/catalog"
)

// HealthHandler reports process liveness and catalog state.
type HealthHandler struct {
	store *catalog.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store *catalog.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health reports service health.
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "ok",
	}
	if snap := h.store.Current(); snap != nil {
		resp["catalog_loaded"] = true
		resp["catalog_loaded_at"] = snap.LoadedAt.UTC().Format(time.RFC3339)
	} else {
		resp["catalog_loaded"] = false
	}
	writeJSON(w, http.StatusOK, resp)
}

// RegisterRoutes registers health routes on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
}

// Package handler contains HTTP handlers for the quote engine API.
//
// This file implements the authenticated admin endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/kpgen/kpgen/internal/service"
)

// AdminHandler handles catalog administration requests.
type AdminHandler struct {
	catalogs service.CatalogService
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(catalogs service.CatalogService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		catalogs: catalogs,
		logger:   logger,
	}
}

// Reload re-reads the catalog files and publishes a new snapshot.
// POST /api/admin/reload
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalogs.Reload(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RegisterRoutes registers admin routes on the provided ServeMux. The
// requireAuth middleware guards every route.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/admin/reload", requireAuth(http.HandlerFunc(h.Reload)))
}

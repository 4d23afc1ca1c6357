// Package handler contains HTTP handlers for the quote engine API.
//
// This file implements the reference data endpoints backing the quote form.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/kpgen/kpgen/internal/domain"
	"github.com/kpgen/kpgen/internal/service"
)

// CatalogHandler handles reference data requests.
type CatalogHandler struct {
	catalogs service.CatalogService
	logger   *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogs service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogs: catalogs,
		logger:   logger,
	}
}

// Services lists the published service names.
// GET /api/services
func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalogs.Services(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"services": services})
}

// Levels lists the published levels of one service.
// GET /api/services/{service}/levels
func (h *CatalogHandler) Levels(w http.ResponseWriter, r *http.Request) {
	service := r.PathValue("service")
	if service == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.levels", "service is required"))
		return
	}

	levels, err := h.catalogs.Levels(r.Context(), service)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"levels": levels})
}

// Periods lists the published billing periods.
// GET /api/periods
func (h *CatalogHandler) Periods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.catalogs.Periods(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"periods": periods})
}

// FixationCoefficients lists the price fixation terms.
// GET /api/fixation-coefficients
func (h *CatalogHandler) FixationCoefficients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"options": h.catalogs.FixationOptions(r.Context()),
	})
}

// promotionSearchRequest is the body of a promotion search.
type promotionSearchRequest struct {
	Service string   `json:"service"`
	Levels  []string `json:"levels"`
}

// SearchPromotions lists the promotions touching a service and level set.
// POST /api/promotions/search
func (h *CatalogHandler) SearchPromotions(w http.ResponseWriter, r *http.Request) {
	var req promotionSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if req.Service == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.promotions", "service is required"))
		return
	}

	promotions, err := h.catalogs.Promotions(r.Context(), req.Service, req.Levels)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"promotions": promotions})
}

// RegisterRoutes registers catalog routes on the provided ServeMux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/services", h.Services)
	mux.HandleFunc("GET /api/services/{service}/levels", h.Levels)
	mux.HandleFunc("GET /api/periods", h.Periods)
	mux.HandleFunc("GET /api/fixation-coefficients", h.FixationCoefficients)
	mux.HandleFunc("POST /api/promotions/search", h.SearchPromotions)
}

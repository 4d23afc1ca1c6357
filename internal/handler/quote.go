// Package handler contains HTTP handlers for the quote engine API.
//
// This file implements the quote calculation and offer download endpoints.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/kpgen/kpgen/internal/domain"
	"github.com/kpgen/kpgen/internal/report"
	"github.com/kpgen/kpgen/internal/service"
)

// QuoteHandler handles quote calculation and offer generation requests.
type QuoteHandler struct {
	quotes service.QuoteService
	logger *slog.Logger
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quotes service.QuoteService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{
		quotes: quotes,
		logger: logger,
	}
}

// Calculate prices a quote request.
// POST /api/quote
func (h *QuoteHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.quotes.Calculate(r.Context(), req)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Offer prices a quote request and streams the rendered offer document.
// POST /api/offer?format=docx|pdf
func (h *QuoteHandler) Offer(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req domain.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	doc, err := h.quotes.GenerateOffer(r.Context(), req, format)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc.Data)))
	w.Header().Set("Content-Disposition", contentDisposition(doc.FileName))

	if _, err := w.Write(doc.Data); err != nil {
		h.logger.Error("failed to stream offer document",
			"error", err,
			"file_name", doc.FileName,
		)
		return
	}

	h.logger.Info("offer downloaded",
		"service", req.Service,
		"format", format,
		"file_name", doc.FileName,
		"archive_key", doc.ArchiveKey,
	)
}

// contentDisposition builds an attachment header for a Cyrillic filename.
// The plain filename parameter carries an ASCII fallback; the RFC 5987
// filename* parameter carries the real name.
func contentDisposition(filename string) string {
	ascii := make([]rune, 0, len(filename))
	for _, c := range filename {
		if c < 128 {
			ascii = append(ascii, c)
		} else {
			ascii = append(ascii, '_')
		}
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		string(ascii), url.PathEscape(filename))
}

// RegisterRoutes registers quote routes on the provided ServeMux. Document
// rendering is the expensive path, so offer requests go through limitOffer.
func (h *QuoteHandler) RegisterRoutes(mux *http.ServeMux, limitOffer func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/quote", h.Calculate)
	mux.Handle("POST /api/offer", limitOffer(http.HandlerFunc(h.Offer)))
}

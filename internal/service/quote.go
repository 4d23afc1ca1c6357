// Package service contains the business logic layer.
//
// This file implements the quote service: pricing computations and offer
// document generation on top of the published catalog snapshot.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kpgen/kpgen/internal/catalog"
	"github.com/kpgen/kpgen/internal/domain"
	"github.com/kpgen/kpgen/internal/metrics"
	"github.com/kpgen/kpgen/internal/pricing"
	"github.com/kpgen/kpgen/internal/report"
	"github.com/kpgen/kpgen/internal/storage"
)

// =============================================================================
// Interface Definition
// =============================================================================

// QuoteService defines pricing and offer generation operations.
type QuoteService interface {
	// Calculate prices a quote request against the current catalog snapshot.
	Calculate(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResult, error)

	// GenerateOffer prices a quote request and renders the result as an
	// offer document in the requested format.
	GenerateOffer(ctx context.Context, req domain.QuoteRequest, format report.Format) (*OfferDocument, error)
}

// OfferDocument is a rendered offer ready to be sent to the client.
type OfferDocument struct {
	FileName    string
	ContentType string
	Data        []byte

	// ArchiveKey is the key the document was archived under, empty when
	// archiving failed or no archive is configured.
	ArchiveKey string
}

// =============================================================================
// Implementation
// =============================================================================

type quoteService struct {
	store      *catalog.Store
	generators map[report.Format]report.Generator
	archive    storage.Storage
	logger     *slog.Logger
	now        func() time.Time
}

// NewQuoteService creates a new QuoteService. The archive may be nil, in
// which case generated offers are not retained.
func NewQuoteService(
	store *catalog.Store,
	generators []report.Generator,
	archive storage.Storage,
	logger *slog.Logger,
) QuoteService {
	byFormat := make(map[report.Format]report.Generator, len(generators))
	for _, g := range generators {
		byFormat[g.Format()] = g
	}
	return &quoteService{
		store:      store,
		generators: byFormat,
		archive:    archive,
		logger:     logger,
		now:        time.Now,
	}
}

// =============================================================================
// Calculate
// =============================================================================

// Calculate prices a quote request against the current catalog snapshot.
func (s *quoteService) Calculate(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResult, error) {
	if err := req.Validate(); err != nil {
		metrics.QuotesCalculated.WithLabelValues("invalid").Inc()
		return nil, err
	}
	req.Normalize()

	snap := s.store.Current()
	if snap == nil || snap.Prices.Empty() {
		return nil, domain.Unavailable("quote.calculate", "price list is not loaded")
	}

	// A requested promotion that fails its applicability checks does not
	// fail the quote; pricing proceeds on the manual terms.
	var promo *domain.SelectedPromotion
	if req.HasPromotion() {
		promo = pricing.FindPromotion(req, snap.Promotions, s.now())
		if promo == nil {
			s.logger.Debug("requested promotion not applicable",
				"promotion_id", req.PromotionID,
				"service", req.Service,
				"period", req.Period,
			)
		}
	}

	summary, offerCtx := pricing.Calculate(req, snap.Prices, promo)
	if summary == nil {
		metrics.QuotesCalculated.WithLabelValues("not_found").Inc()
		return nil, domain.NotFound("quote.calculate",
			"no price list rows match the requested service, levels, and period")
	}

	metrics.QuotesCalculated.WithLabelValues("success").Inc()
	if promo != nil {
		metrics.PromotionsApplied.Inc()
	}

	return &domain.QuoteResult{
		Summary:   summary,
		Context:   offerCtx,
		Promotion: promo,
	}, nil
}

// =============================================================================
// GenerateOffer
// =============================================================================

// GenerateOffer prices a quote request and renders the result as an offer
// document in the requested format.
func (s *quoteService) GenerateOffer(ctx context.Context, req domain.QuoteRequest, format report.Format) (*OfferDocument, error) {
	gen, ok := s.generators[format]
	if !ok {
		return nil, domain.Invalid("quote.generate_offer",
			fmt.Sprintf("offer format %q is not available", format))
	}

	result, err := s.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result.Context.CurrentDate = report.FormatDate(now)

	start := time.Now()
	var buf bytes.Buffer
	if _, err := gen.Generate(ctx, result.Context, &buf); err != nil {
		return nil, domain.Errorf(domain.EINTERNAL, "quote.generate_offer",
			"render offer document: %v", err)
	}
	metrics.OffersGenerated.WithLabelValues(string(format)).Inc()
	metrics.OfferGenerationDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())

	doc := &OfferDocument{
		FileName:    OfferFileName(req.Service, now, format.Extension()),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}
	doc.ArchiveKey = s.archiveOffer(ctx, doc, now, format.Extension())

	return doc, nil
}

// archiveOffer writes the rendered document to the archive. Failures are
// logged and do not fail offer generation.
func (s *quoteService) archiveOffer(ctx context.Context, doc *OfferDocument, now time.Time, ext string) string {
	if s.archive == nil {
		return ""
	}

	key := storage.OfferKey(now, ext)
	err := s.archive.Put(ctx, key, bytes.NewReader(doc.Data), storage.PutOptions{
		ContentType: doc.ContentType,
	})
	if err != nil {
		metrics.OffersArchived.WithLabelValues("error").Inc()
		s.logger.Warn("failed to archive offer document",
			"key", key,
			"file_name", doc.FileName,
			"error", err,
		)
		return ""
	}

	metrics.OffersArchived.WithLabelValues("success").Inc()
	s.logger.Debug("archived offer document", "key", key, "size", len(doc.Data))
	return key
}

// OfferFileName builds the download name of a generated offer.
func OfferFileName(service string, now time.Time, ext string) string {
	return fmt.Sprintf("КП %s от %s.%s", service, report.FormatDate(now), ext)
}

// Package service contains the business logic layer.
//
// This file implements the catalog service: reference data lookups for the
// quote form and the reload of the published catalog snapshot.
package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kpgen/kpgen/internal/catalog"
	"github.com/kpgen/kpgen/internal/domain"
	"github.com/kpgen/kpgen/internal/metrics"
	"github.com/kpgen/kpgen/internal/pricing"
)

// =============================================================================
// Interface Definition
// =============================================================================

// CatalogService defines reference data and snapshot management operations.
type CatalogService interface {
	// Services lists the service names published in the price list.
	Services(ctx context.Context) ([]string, error)

	// Levels lists the published levels of one service.
	Levels(ctx context.Context, service string) ([]catalog.LevelInfo, error)

	// Periods lists the published period tokens in chronological order.
	Periods(ctx context.Context) ([]string, error)

	// FixationOptions lists the price fixation terms and their coefficients.
	FixationOptions(ctx context.Context) []FixationOption

	// Promotions lists the promotions touching the given service and levels.
	Promotions(ctx context.Context, service string, levels []string) ([]catalog.PromotionSummary, error)

	// Reload re-reads the catalog files and publishes a new snapshot.
	Reload(ctx context.Context) (*ReloadResult, error)
}

// FixationOption is one selectable price fixation term.
type FixationOption struct {
	Months      int             `json:"months"`
	Coefficient decimal.Decimal `json:"coefficient"`
}

// ReloadResult reports the outcome of a catalog reload.
type ReloadResult struct {
	PriceRows     int       `json:"price_rows"`
	PromotionRows int       `json:"promotion_rows"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// =============================================================================
// Implementation
// =============================================================================

type catalogService struct {
	store  *catalog.Store
	loader *catalog.Loader
	logger *slog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store *catalog.Store, loader *catalog.Loader, logger *slog.Logger) CatalogService {
	return &catalogService{
		store:  store,
		loader: loader,
		logger: logger,
	}
}

func (s *catalogService) snapshot(op string) (*catalog.Snapshot, error) {
	snap := s.store.Current()
	if snap == nil || snap.Prices.Empty() {
		return nil, domain.Unavailable(op, "price list is not loaded")
	}
	return snap, nil
}

// Services lists the service names published in the price list.
func (s *catalogService) Services(ctx context.Context) ([]string, error) {
	snap, err := s.snapshot("catalog.services")
	if err != nil {
		return nil, err
	}
	return snap.Prices.Services(), nil
}

// Levels lists the published levels of one service.
func (s *catalogService) Levels(ctx context.Context, service string) ([]catalog.LevelInfo, error) {
	snap, err := s.snapshot("catalog.levels")
	if err != nil {
		return nil, err
	}
	levels := snap.Prices.LevelsForService(service)
	if len(levels) == 0 {
		return nil, domain.NotFound("catalog.levels", "unknown service")
	}
	return levels, nil
}

// Periods lists the published period tokens in chronological order.
func (s *catalogService) Periods(ctx context.Context) ([]string, error) {
	snap, err := s.snapshot("catalog.periods")
	if err != nil {
		return nil, err
	}
	return snap.Prices.Periods(), nil
}

// FixationOptions lists the price fixation terms and their coefficients.
func (s *catalogService) FixationOptions(ctx context.Context) []FixationOption {
	coeffs := pricing.FixationCoefficients()
	options := make([]FixationOption, 0, len(coeffs))
	for months, coeff := range coeffs {
		options = append(options, FixationOption{Months: months, Coefficient: coeff})
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].Months < options[j].Months
	})
	return options
}

// Promotions lists the promotions touching the given service and levels,
// sorted by promotion id for stable output.
func (s *catalogService) Promotions(ctx context.Context, service string, levels []string) ([]catalog.PromotionSummary, error) {
	snap, err := s.snapshot("catalog.promotions")
	if err != nil {
		return nil, err
	}

	grouped := snap.Promotions.ForSelection(service, levels)
	summaries := make([]catalog.PromotionSummary, 0, len(grouped))
	for _, summary := range grouped {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// Reload re-reads the catalog files and publishes a new snapshot. The old
// snapshot stays published when loading fails.
func (s *catalogService) Reload(ctx context.Context) (*ReloadResult, error) {
	snap, err := s.loader.Load()
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		return nil, domain.Internal(err, "catalog.reload", "failed to reload catalog files")
	}

	s.store.Swap(snap)
	metrics.CatalogReloads.WithLabelValues("success").Inc()
	metrics.CatalogRows.WithLabelValues("prices").Set(float64(snap.Prices.Len()))
	metrics.CatalogRows.WithLabelValues("promotions").Set(float64(snap.Promotions.Len()))

	s.logger.Info("catalog reloaded",
		"price_rows", snap.Prices.Len(),
		"promotion_rows", snap.Promotions.Len(),
	)

	return &ReloadResult{
		PriceRows:     snap.Prices.Len(),
		PromotionRows: snap.Promotions.Len(),
		LoadedAt:      snap.LoadedAt,
	}, nil
}

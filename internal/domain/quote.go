// Package domain contains core business types and interfaces.
//
// This file defines the quote request/response types used by the pricing
// engine and the offer document renderer.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NoPromotion is the sentinel promotion id meaning "no promotion selected".
const NoPromotion = "no_promotion"

// =============================================================================
// Quote Request
// =============================================================================

// LevelRequest is a user-selected service level with an account count.
// Accounts <= 0 means the level was not selected.
type LevelRequest struct {
	Level    string `json:"level"`
	Accounts int    `json:"accounts"`
}

// QuoteRequest is the input for a single pricing computation.
//
// Exactly one discount mechanism is economically active at a time: either the
// manual DiscountPercent/FixationMonths pair or a promotion selected via
// PromotionID. The engine does not combine them; see the promotion path in
// the pricing package.
type QuoteRequest struct {
	Service          string          `json:"service"`
	Period           string          `json:"period"`
	Levels           []LevelRequest  `json:"levels"`
	PrepaymentMonths int             `json:"prepayment_months"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	FixationMonths   int             `json:"fixation_months"`
	PromotionID      string          `json:"promotion_id,omitempty"`
}

// Normalize applies input defaults: a missing or non-positive prepayment
// term means one month.
func (r *QuoteRequest) Normalize() {
	if r.PrepaymentMonths < 1 {
		r.PrepaymentMonths = 1
	}
}

// Validate checks field ranges. It does not verify the service or levels
// against the catalog; unknown combinations simply price to nothing.
func (r *QuoteRequest) Validate() error {
	const op = "quote.validate"
	if strings.TrimSpace(r.Service) == "" {
		return Invalid(op, "service is required")
	}
	if strings.TrimSpace(r.Period) == "" {
		return Invalid(op, "period is required")
	}
	if len(r.Levels) == 0 {
		return Invalid(op, "at least one level is required")
	}
	if r.DiscountPercent.IsNegative() || r.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return Invalid(op, "discount_percent must be between 0 and 100")
	}
	if r.FixationMonths < 0 || r.FixationMonths > 12 {
		return Invalid(op, "fixation_months must be between 0 and 12")
	}
	return nil
}

// HasPromotion reports whether the request names a concrete promotion.
func (r *QuoteRequest) HasPromotion() bool {
	return r.PromotionID != "" && r.PromotionID != NoPromotion
}

// ActiveLevels returns the levels the user actually selected.
func (r *QuoteRequest) ActiveLevels() []LevelRequest {
	var active []LevelRequest
	for _, l := range r.Levels {
		if l.Accounts > 0 {
			active = append(active, l)
		}
	}
	return active
}

// ActiveLevelSet returns the lowercased names of the selected levels.
func (r *QuoteRequest) ActiveLevelSet() map[string]bool {
	set := make(map[string]bool, len(r.Levels))
	for _, l := range r.Levels {
		if l.Accounts > 0 {
			set[strings.ToLower(l.Level)] = true
		}
	}
	return set
}

// =============================================================================
// Resolved Levels
// =============================================================================

// ResolvedLevel is a selected level paired with the unit price of its matched
// price-list row. Accounts is the requested headcount, not the breakpoint of
// the matched row.
type ResolvedLevel struct {
	Level     string          `json:"level_name"`
	Accounts  int             `json:"accounts"`
	UnitPrice decimal.Decimal `json:"price_without_vat_per_user"`
}

// =============================================================================
// Price Summary & Offer Context
// =============================================================================

// PriceSummary holds the six VAT-inclusive display amounts of a quote, each
// independently rounded half-up to 2 decimal places.
type PriceSummary struct {
	ListMonthly       decimal.Decimal `json:"list_monthly"`
	ListPeriod        decimal.Decimal `json:"list_period"`
	DiscountedMonthly decimal.Decimal `json:"discounted_monthly"`
	DiscountedPeriod  decimal.Decimal `json:"discounted_period"`
	FixedMonthly      decimal.Decimal `json:"fixed_monthly"`
	FixedPeriod       decimal.Decimal `json:"fixed_period"`
}

// OfferContext is the flat field mapping consumed by the offer document
// renderer. Purely mechanical packaging of engine output.
type OfferContext struct {
	ServiceName      string          `json:"service_name"`
	PrepaymentMonths int             `json:"prepayment_months"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	FixationMonths   int             `json:"fixation_months"`
	TotalAccounts    int             `json:"total_users"`
	Levels           []ResolvedLevel `json:"levels"`
	Summary          PriceSummary    `json:"price_summary"`
	CurrentDate      string          `json:"current_date,omitempty"` // dd.mm.yyyy, set at render time
}

// QuoteResult bundles engine output with the promotion that was applied,
// if any.
type QuoteResult struct {
	Summary   *PriceSummary      `json:"price_summary"`
	Context   *OfferContext      `json:"calculation_context"`
	Promotion *SelectedPromotion `json:"promotion,omitempty"`
}

// Package domain contains core business types and interfaces.
//
// This file defines the price list row type and the fixed service-level
// vocabulary shared by the catalog, the pricing engine and the promotion
// combo parser.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// Service Levels
// =============================================================================

// KnownLevels is the canonical service-level vocabulary, in display order.
// Promotion combo tokens are concatenations of these names.
var KnownLevels = []string{
	"Эксперт",
	"Оптимальный",
	"Оптимальный Плюс",
	"Минимальный",
	"Базовый",
}

// MainLevel is the anchor level for combo promotions: a combo that includes
// it only applies when the user actually selected it.
const MainLevel = "Эксперт"

// LevelRank returns the position of a level in the canonical display order.
// Unknown levels sort after all known ones.
func LevelRank(level string) int {
	for i, name := range KnownLevels {
		if name == level {
			return i
		}
	}
	return len(KnownLevels)
}

// =============================================================================
// Billing Families
// =============================================================================

// DeferredMarker in a service name selects deferred (whole-period) billing.
// Such tariffs are priced directly over the full prepayment term from a
// single unit rate instead of monthly-then-multiplied.
const DeferredMarker = "ЛД"

// IsDeferredService reports whether the service uses deferred-period billing.
func IsDeferredService(service string) bool {
	return strings.Contains(service, DeferredMarker)
}

// =============================================================================
// Price Row
// =============================================================================

// PriceRow is one row of the tariff price list: the per-account unit price
// (excluding VAT) for a service level at a published account-count breakpoint
// within a billing period.
//
// Multiple rows share (Service, Level, Period) at different breakpoints;
// prices are a step function of headcount, not a per-unit rate.
type PriceRow struct {
	Service   string          // tariff plan name, pre-trimmed
	Level     string          // service level name, pre-trimmed
	Period    string          // normalized "<month abbr>.<yy>" token, e.g. "окт.25"
	Accounts  int             // account-count breakpoint
	UnitPrice decimal.Decimal // per account, excluding VAT
	Minutes   string          // included-minutes display column, never priced
}

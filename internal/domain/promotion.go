// Package domain contains core business types and interfaces.
//
// This file defines promotional campaign types. Promotions arrive as catalog
// rows keyed by an order id; rows sharing an order id and month count but
// differing level tokens together describe which levels a combo promotion
// covers.
package domain

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// Promotion Row
// =============================================================================

// PromotionRow is one row of the promotion catalog.
type PromotionRow struct {
	Service      string            // tariff plan the promotion applies to
	LevelToken   string            // level name, possibly a combo concatenation
	OrderID      string            // stable promotion identifier (order number)
	Months       int               // committed prepayment length this variant covers
	BaseDiscount decimal.Decimal   // base discount fraction in [0,1]
	Special      *SpecialCondition // optional steeper initial-window discount
}

// =============================================================================
// Special Condition
// =============================================================================

// SpecialCondition grants a steeper discount for an initial subset of the
// committed months, e.g. "2 мес. со скидкой 99%".
type SpecialCondition struct {
	Months   int             `json:"months"`
	Discount decimal.Decimal `json:"discount"` // fraction in [0,1]
}

var conditionNumbers = regexp.MustCompile(`\d+`)

// ParseSpecialCondition extracts a structured condition from the legacy
// free-text format. The first embedded integer is the month count, the second
// the discount percentage; a percent marker must be present. Anything
// unparseable yields nil, which means the base discount applies for the whole
// term.
func ParseSpecialCondition(condition string) *SpecialCondition {
	if !strings.Contains(condition, "%") {
		return nil
	}
	numbers := conditionNumbers.FindAllString(condition, 2)
	if len(numbers) < 2 {
		return nil
	}
	months, err := strconv.Atoi(numbers[0])
	if err != nil {
		return nil
	}
	percent, err := decimal.NewFromString(numbers[1])
	if err != nil {
		return nil
	}
	return &SpecialCondition{
		Months:   months,
		Discount: percent.Div(decimal.NewFromInt(100)),
	}
}

// =============================================================================
// Selected Promotion
// =============================================================================

// SelectedPromotion is the outcome of promotion matching for one request:
// the merged fields of the best-fit catalog row plus the set of levels it
// actually covers. Ephemeral, recomputed per request.
type SelectedPromotion struct {
	OrderID          string            `json:"order_id"`
	Months           int               `json:"months"`
	BaseDiscount     decimal.Decimal   `json:"base_discount"`
	Special          *SpecialCondition `json:"special_condition,omitempty"`
	ApplicableLevels []string          `json:"applicable_levels"`
}

// LevelSet returns the lowercased names of the covered levels.
func (p *SelectedPromotion) LevelSet() map[string]bool {
	set := make(map[string]bool, len(p.ApplicableLevels))
	for _, level := range p.ApplicableLevels {
		set[strings.ToLower(level)] = true
	}
	return set
}

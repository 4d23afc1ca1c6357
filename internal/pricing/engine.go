package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kpgen/kpgen/internal/catalog"
	"github.com/kpgen/kpgen/internal/domain"
)

// =============================================================================
// Monetary Constants
// =============================================================================

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// vatRate is the 20% tax-on-top multiplier.
	vatRate = decimal.RequireFromString("1.2")
)

// fixationCoefficients maps a price-fixation commitment in months to its
// published markup multiplier. The schedule is non-linear and domain-specific;
// it is a lookup table, not a formula.
var fixationCoefficients = map[int]decimal.Decimal{
	1:  decimal.RequireFromString("1.0"),
	2:  decimal.RequireFromString("1.02"),
	3:  decimal.RequireFromString("1.04"),
	4:  decimal.RequireFromString("1.05"),
	5:  decimal.RequireFromString("1.06"),
	6:  decimal.RequireFromString("1.07"),
	7:  decimal.RequireFromString("1.08"),
	8:  decimal.RequireFromString("1.09"),
	9:  decimal.RequireFromString("1.11"),
	10: decimal.RequireFromString("1.12"),
	11: decimal.RequireFromString("1.13"),
	12: decimal.RequireFromString("1.14"),
}

// FixationCoefficients returns a copy of the published markup schedule for
// display purposes.
func FixationCoefficients() map[int]decimal.Decimal {
	m := make(map[int]decimal.Decimal, len(fixationCoefficients))
	for k, v := range fixationCoefficients {
		m[k] = v
	}
	return m
}

func fixationCoefficient(months int) decimal.Decimal {
	if coeff, ok := fixationCoefficients[months]; ok {
		return coeff
	}
	return one
}

// roundMoney rounds half away from zero to 2 decimal places. It is applied at
// every step where an intermediate amount is persisted or displayed; the
// rounding order materially changes results and mirrors the reference
// spreadsheet.
func roundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

func discountMultiplier(percent decimal.Decimal) decimal.Decimal {
	return one.Sub(percent.Div(hundred))
}

// =============================================================================
// Engine Entry Point
// =============================================================================

// Calculate resolves the requested levels against the price catalog and
// computes the three price variants of a quote.
//
// A nil, nil return means no requested level had an applicable price row.
// That is the normal "no pricing available" outcome, not a fault.
//
// When a promotion is supplied it overrides the discounted figure (and the
// prepayment term, if the promotion commits one). The manual discount percent
// is expected to be zero in that case; a nonzero fixation commitment still
// recomputes the fixed figure through the manual path, which is how the
// reference pricing sheet combines the two.
func Calculate(req domain.QuoteRequest, prices *catalog.PriceCatalog, promo *domain.SelectedPromotion) (*domain.PriceSummary, *domain.OfferContext) {
	req.Normalize()
	deferred := domain.IsDeferredService(req.Service)

	months := req.PrepaymentMonths
	if promo != nil && promo.Months > 0 {
		months = promo.Months
	}
	monthsDec := decimal.NewFromInt(int64(months))

	resolved := ResolveLevels(req, prices)
	if len(resolved) == 0 {
		return nil, nil
	}

	discount := discountMultiplier(req.DiscountPercent)

	// List price. Simple family applies VAT per level per month; deferred
	// family sums raw unit amounts and applies VAT once over the whole term.
	listMonthlyBase := decimal.Zero
	for _, lvl := range resolved {
		amount := levelAmount(lvl)
		if deferred {
			listMonthlyBase = listMonthlyBase.Add(amount)
		} else {
			listMonthlyBase = listMonthlyBase.Add(roundMoney(amount.Mul(vatRate)))
		}
	}
	var listPeriod decimal.Decimal
	if deferred {
		listPeriod = roundMoney(listMonthlyBase.Mul(monthsDec).Mul(vatRate))
	} else {
		listPeriod = listMonthlyBase.Mul(monthsDec)
	}

	// Discounted price: promotional month-by-month schedule, or the manual
	// discount path.
	var discountedPeriod decimal.Decimal
	switch {
	case promo != nil:
		discountedPeriod = promotionalPeriodTotal(resolved, promo, months, deferred)
	case deferred:
		discountedPeriod = deferredPeriodTotal(resolved, discount, one, req.PrepaymentMonths)
	default:
		discountedPeriod = simpleMonthlyTotal(resolved, discount, one).Mul(monthsDec)
	}

	// Fixed price: equals the discounted price unless a fixation term was
	// committed; the coefficient multiplies in before the intermediate
	// rounding step.
	fixedPeriod := discountedPeriod
	if req.FixationMonths > 0 {
		coeff := fixationCoefficient(req.FixationMonths)
		if deferred {
			fixedPeriod = deferredPeriodTotal(resolved, discount, coeff, req.PrepaymentMonths)
		} else {
			fixedPeriod = simpleMonthlyTotal(resolved, discount, coeff).Mul(monthsDec)
		}
	}

	// Display monthly figures derive from the period totals, except the
	// deferred-family list price: dividing its period total by the month
	// count reproduces the term rounding, not the published monthly rate, so
	// the monthly figure is re-derived from the raw unit amounts instead.
	listMonthly := roundMoney(listPeriod.Div(monthsDec))
	if deferred {
		base := decimal.Zero
		for _, lvl := range resolved {
			base = base.Add(levelAmount(lvl))
		}
		listMonthly = roundMoney(base.Mul(vatRate))
	}

	summary := &domain.PriceSummary{
		ListMonthly:       listMonthly,
		ListPeriod:        roundMoney(listPeriod),
		DiscountedMonthly: roundMoney(discountedPeriod.Div(monthsDec)),
		DiscountedPeriod:  roundMoney(discountedPeriod),
		FixedMonthly:      roundMoney(fixedPeriod.Div(monthsDec)),
		FixedPeriod:       roundMoney(fixedPeriod),
	}

	totalAccounts := 0
	for _, lvl := range resolved {
		totalAccounts += lvl.Accounts
	}
	ctx := &domain.OfferContext{
		ServiceName:      req.Service,
		PrepaymentMonths: months,
		DiscountPercent:  req.DiscountPercent,
		FixationMonths:   req.FixationMonths,
		TotalAccounts:    totalAccounts,
		Levels:           resolved,
		Summary:          *summary,
	}
	return summary, ctx
}

// levelAmount is the per-month amount of a level excluding VAT: the matched
// unit price times the requested headcount.
func levelAmount(lvl domain.ResolvedLevel) decimal.Decimal {
	return lvl.UnitPrice.Mul(decimal.NewFromInt(int64(lvl.Accounts)))
}

// =============================================================================
// Manual Discount / Fixation Paths
// =============================================================================

// simpleMonthlyTotal prices one month of a simple-family service: per level,
// the excl.-tax amount times discount times coefficient, rounded, then VAT,
// rounded, summed.
func simpleMonthlyTotal(levels []domain.ResolvedLevel, discount, coeff decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, lvl := range levels {
		withCoeff := roundMoney(levelAmount(lvl).Mul(discount).Mul(coeff))
		total = total.Add(roundMoney(withCoeff.Mul(vatRate)))
	}
	return total
}

// deferredPeriodTotal prices the whole term of a deferred-family service from
// the single effective unit price: discount and coefficient apply to the unit
// rate, rounded, then the term multiple and VAT, rounded once.
// Deferred-family tariffs are always single-tier; only the first resolved
// level participates.
func deferredPeriodTotal(levels []domain.ResolvedLevel, discount, coeff decimal.Decimal, months int) decimal.Decimal {
	withCoeff := roundMoney(levels[0].UnitPrice.Mul(discount).Mul(coeff))
	total := withCoeff.Mul(decimal.NewFromInt(int64(months))).Mul(vatRate)
	return roundMoney(total)
}

// =============================================================================
// Promotional Path
// =============================================================================

// promotionalPeriodTotal evaluates a promotion month by month, because a
// special condition may grant a steeper discount for an initial window of the
// committed term. Levels the promotion does not cover price at the full rate.
//
// Simple-family services apply VAT per level per month; deferred-family
// services defer VAT to a single application over the grand total.
func promotionalPeriodTotal(levels []domain.ResolvedLevel, promo *domain.SelectedPromotion, months int, deferred bool) decimal.Decimal {
	baseMultiplier := one.Sub(promo.BaseDiscount)
	covered := promo.LevelSet()

	total := decimal.Zero
	for month := 1; month <= months; month++ {
		for _, lvl := range levels {
			multiplier := one
			if covered[strings.ToLower(lvl.Level)] {
				multiplier = baseMultiplier
				if promo.Special != nil && month <= promo.Special.Months {
					multiplier = one.Sub(promo.Special.Discount)
				}
			}
			amount := roundMoney(levelAmount(lvl).Mul(multiplier))
			if !deferred {
				amount = roundMoney(amount.Mul(vatRate))
			}
			total = total.Add(amount)
		}
	}
	if deferred {
		total = roundMoney(total.Mul(vatRate))
	}
	return roundMoney(total)
}

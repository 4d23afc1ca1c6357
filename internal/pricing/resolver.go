package pricing

import (
	"github.com/kpgen/kpgen/internal/catalog"
	"github.com/kpgen/kpgen/internal/domain"
)

// ResolveLevels finds the applicable price row for each requested level.
//
// Per level the policy is:
//   - exact breakpoint match wins;
//   - a request above every published breakpoint reuses the largest
//     breakpoint's row (published ceiling pricing);
//   - anything else, including a level with no price rows at all, is silently
//     skipped — missing price data is an expected business condition.
//
// The resolved level carries the matched row's unit price together with the
// requested account count; the two are multiplied in later stages.
func ResolveLevels(req domain.QuoteRequest, prices *catalog.PriceCatalog) []domain.ResolvedLevel {
	var resolved []domain.ResolvedLevel
	for _, level := range req.Levels {
		if level.Accounts <= 0 {
			continue
		}
		rows := prices.Find(req.Service, level.Level, req.Period)
		if len(rows) == 0 {
			continue
		}
		row, ok := matchBreakpoint(rows, level.Accounts)
		if !ok {
			continue
		}
		resolved = append(resolved, domain.ResolvedLevel{
			Level:     level.Level,
			Accounts:  level.Accounts,
			UnitPrice: row.UnitPrice,
		})
	}
	return resolved
}

// matchBreakpoint selects the row for a requested account count. Ties on the
// maximum breakpoint keep the first row seen, matching catalog order.
func matchBreakpoint(rows []domain.PriceRow, accounts int) (domain.PriceRow, bool) {
	maxRow := rows[0]
	for _, row := range rows {
		if row.Accounts == accounts {
			return row, true
		}
		if row.Accounts > maxRow.Accounts {
			maxRow = row
		}
	}
	if accounts > maxRow.Accounts {
		return maxRow, true
	}
	return domain.PriceRow{}, false
}

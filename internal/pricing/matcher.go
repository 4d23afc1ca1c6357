package pricing

import (
	"strings"
	"time"

	"github.com/kpgen/kpgen/internal/catalog"
	"github.com/kpgen/kpgen/internal/domain"
)

// FindPromotion selects the best-fit promotion for a request, or nil when
// none is eligible. A nil result is never an error: the quote simply proceeds
// without a promotion.
//
// The admission window is checked first and overrides everything else,
// including an explicit promotion id: promotions only apply when the
// requested billing period is the current calendar month or one of the next
// two, anchored to the server clock so clients cannot request promotional
// pricing for arbitrary past or future periods.
func FindPromotion(req domain.QuoteRequest, promos *catalog.PromotionCatalog, now time.Time) *domain.SelectedPromotion {
	req.Normalize()
	if !inAdmissionWindow(req.Period, now) {
		return nil
	}
	if promos.Empty() || !req.HasPromotion() {
		return nil
	}
	userLevels := req.ActiveLevelSet()
	if len(userLevels) == 0 {
		return nil
	}

	candidates := promos.Candidates(req.Service, req.PromotionID, req.PrepaymentMonths)

	var best *domain.SelectedPromotion
	bestCount := 0
	for _, row := range candidates {
		required := ParseComboLevel(row.LevelToken)
		if !coversAll(required, userLevels) {
			continue
		}
		// A combo anchored on the main level must not activate on a subset
		// that excludes it.
		if len(required) > 1 && containsFold(required, domain.MainLevel) &&
			!userLevels[strings.ToLower(domain.MainLevel)] {
			continue
		}
		if len(required) > bestCount {
			bestCount = len(required)
			best = &domain.SelectedPromotion{
				OrderID:          row.OrderID,
				Months:           row.Months,
				BaseDiscount:     row.BaseDiscount,
				Special:          row.Special,
				ApplicableLevels: required,
			}
		}
	}
	return best
}

// inAdmissionWindow reports whether the period token falls in the rolling
// three-calendar-month window anchored at now. Unparseable tokens resolve to
// a 1900 placeholder and never pass.
func inAdmissionWindow(period string, now time.Time) bool {
	requested := catalog.ParsePeriod(period)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if requested.Equal(month.AddDate(0, i, 0)) {
			return true
		}
	}
	return false
}

// coversAll reports whether every required level was selected by the user.
func coversAll(required []string, userLevels map[string]bool) bool {
	for _, level := range required {
		if !userLevels[strings.ToLower(level)] {
			return false
		}
	}
	return true
}

func containsFold(levels []string, name string) bool {
	for _, level := range levels {
		if strings.EqualFold(level, name) {
			return true
		}
	}
	return false
}

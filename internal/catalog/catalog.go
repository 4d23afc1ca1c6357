package catalog

import (
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kpgen/kpgen/internal/domain"
)

// =============================================================================
// Price Catalog
// =============================================================================

// PriceCatalog is an immutable index over the loaded price list. Concurrent
// readers need no locking; a reload replaces the whole catalog via the Store.
type PriceCatalog struct {
	rows []domain.PriceRow
}

// NewPriceCatalog wraps a loaded row set.
func NewPriceCatalog(rows []domain.PriceRow) *PriceCatalog {
	return &PriceCatalog{rows: rows}
}

// Empty reports whether the catalog holds no rows.
func (c *PriceCatalog) Empty() bool {
	return c == nil || len(c.rows) == 0
}

// Len returns the number of loaded rows.
func (c *PriceCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rows)
}

// Find returns the rows matching (service, level, period) exactly.
// Comparison is case-sensitive; cells are trimmed at load time.
func (c *PriceCatalog) Find(service, level, period string) []domain.PriceRow {
	if c == nil {
		return nil
	}
	var matched []domain.PriceRow
	for _, row := range c.rows {
		if row.Service == service && row.Level == level && row.Period == period {
			matched = append(matched, row)
		}
	}
	return matched
}

// Services returns the distinct service names, sorted. Rows without a level
// are header artifacts and are skipped.
func (c *PriceCatalog) Services() []string {
	seen := make(map[string]bool)
	var services []string
	for _, row := range c.rows {
		if row.Level == "" || seen[row.Service] {
			continue
		}
		seen[row.Service] = true
		services = append(services, row.Service)
	}
	sort.Strings(services)
	return services
}

// LevelInfo pairs a service level with its included-minutes display value.
type LevelInfo struct {
	Level   string `json:"level"`
	Minutes string `json:"minutes,omitempty"`
}

// LevelsForService returns the distinct levels published for a service, in
// canonical display order, keeping the first minutes value seen per level.
func (c *PriceCatalog) LevelsForService(service string) []LevelInfo {
	seen := make(map[string]bool)
	var levels []LevelInfo
	for _, row := range c.rows {
		if row.Service != service || row.Level == "" || seen[row.Level] {
			continue
		}
		seen[row.Level] = true
		levels = append(levels, LevelInfo{Level: row.Level, Minutes: row.Minutes})
	}
	sort.SliceStable(levels, func(i, j int) bool {
		ri, rj := domain.LevelRank(levels[i].Level), domain.LevelRank(levels[j].Level)
		if ri != rj {
			return ri < rj
		}
		return levels[i].Level < levels[j].Level
	})
	return levels
}

// Periods returns the distinct period tokens, sorted chronologically.
func (c *PriceCatalog) Periods() []string {
	seen := make(map[string]bool)
	var periods []string
	for _, row := range c.rows {
		if row.Period == "" || seen[row.Period] {
			continue
		}
		seen[row.Period] = true
		periods = append(periods, row.Period)
	}
	SortPeriods(periods)
	return periods
}

// =============================================================================
// Promotion Catalog
// =============================================================================

// PromotionCatalog is an immutable index over the loaded promotion rows.
type PromotionCatalog struct {
	rows []domain.PromotionRow
}

// NewPromotionCatalog wraps a loaded row set.
func NewPromotionCatalog(rows []domain.PromotionRow) *PromotionCatalog {
	return &PromotionCatalog{rows: rows}
}

// Empty reports whether the catalog holds no rows.
func (c *PromotionCatalog) Empty() bool {
	return c == nil || len(c.rows) == 0
}

// Len returns the number of loaded rows.
func (c *PromotionCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rows)
}

// Candidates returns the rows for one promotion order applicable to the
// given service and committed month count. The service match is
// case-insensitive; the order id is exact.
func (c *PromotionCatalog) Candidates(service, orderID string, months int) []domain.PromotionRow {
	if c == nil {
		return nil
	}
	serviceLower := strings.ToLower(service)
	var candidates []domain.PromotionRow
	for _, row := range c.rows {
		if strings.ToLower(row.Service) == serviceLower &&
			row.OrderID == orderID &&
			row.Months == months {
			candidates = append(candidates, row)
		}
	}
	return candidates
}

// PromotionVariant is one committed-months option of a promotion.
type PromotionVariant struct {
	Months          int                      `json:"months"`
	DiscountPercent decimal.Decimal          `json:"discount_percent"`
	Condition       *domain.SpecialCondition `json:"condition,omitempty"`
}

// PromotionSummary groups the variants of one promotion order for display.
type PromotionSummary struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ApplicableLevels []string           `json:"applicable_levels"`
	Variants         []PromotionVariant `json:"variants"`
}

// ForSelection returns every promotion of a service that touches at least one
// of the given levels, grouped by order id. A promotion touches a level when
// the level name appears inside the row's level token (combo tokens have
// their spaces stripped before the substring test).
func (c *PromotionCatalog) ForSelection(service string, levels []string) map[string]PromotionSummary {
	result := make(map[string]PromotionSummary)
	if c == nil {
		return result
	}
	serviceLower := strings.ToLower(service)
	levelsLower := make([]string, 0, len(levels))
	for _, l := range levels {
		levelsLower = append(levelsLower, strings.ToLower(l))
	}

	for _, row := range c.rows {
		if strings.ToLower(row.Service) != serviceLower {
			continue
		}
		token := strings.ReplaceAll(strings.ToLower(row.LevelToken), " ", "")
		touches := false
		for _, l := range levelsLower {
			if strings.Contains(token, strings.ReplaceAll(l, " ", "")) {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}

		summary, ok := result[row.OrderID]
		if !ok {
			summary = PromotionSummary{ID: row.OrderID, Name: row.OrderID}
		}
		if !containsString(summary.ApplicableLevels, row.LevelToken) {
			summary.ApplicableLevels = append(summary.ApplicableLevels, row.LevelToken)
		}
		if !hasVariantMonths(summary.Variants, row.Months) {
			summary.Variants = append(summary.Variants, PromotionVariant{
				Months:          row.Months,
				DiscountPercent: row.BaseDiscount.Mul(decimal.NewFromInt(100)),
				Condition:       row.Special,
			})
		}
		result[row.OrderID] = summary
	}

	for id, summary := range result {
		sort.Slice(summary.Variants, func(i, j int) bool {
			return summary.Variants[i].Months < summary.Variants[j].Months
		})
		result[id] = summary
	}
	return result
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func hasVariantMonths(variants []PromotionVariant, months int) bool {
	for _, v := range variants {
		if v.Months == months {
			return true
		}
	}
	return false
}

// =============================================================================
// Atomic Store
// =============================================================================

// Snapshot is one consistent pair of catalogs.
type Snapshot struct {
	Prices     *PriceCatalog
	Promotions *PromotionCatalog
	LoadedAt   time.Time
}

// Store publishes catalog snapshots to concurrent readers. Reloads swap the
// whole snapshot pointer, so in-flight computations never observe a
// half-updated catalog.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Swap publishes a new snapshot.
func (s *Store) Swap(snap *Snapshot) {
	s.current.Store(snap)
}

// Current returns the latest snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

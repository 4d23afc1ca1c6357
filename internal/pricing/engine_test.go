package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpgen/kpgen/internal/catalog"
	"github.com/kpgen/kpgen/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

const vipService = "Комплекс коммерческий VIP Предприятие"

func vipCatalog() *catalog.PriceCatalog {
	return catalog.NewPriceCatalog([]domain.PriceRow{
		{Service: vipService, Level: "Эксперт", Period: "окт.25", Accounts: 2, UnitPrice: d("664.03")},
		{Service: vipService, Level: "Оптимальный", Period: "окт.25", Accounts: 2, UnitPrice: d("406.20")},
		{Service: vipService, Level: "Минимальный", Period: "окт.25", Accounts: 2, UnitPrice: d("51.11")},
	})
}

func vipRequest() domain.QuoteRequest {
	return domain.QuoteRequest{
		Service: vipService,
		Period:  "окт.25",
		Levels: []domain.LevelRequest{
			{Level: "Эксперт", Accounts: 2},
			{Level: "Оптимальный", Accounts: 2},
			{Level: "Минимальный", Accounts: 2},
		},
		PrepaymentMonths: 12,
	}
}

func assertSummary(t *testing.T, summary *domain.PriceSummary, want map[string]string) {
	t.Helper()
	got := map[string]string{
		"list_monthly":       summary.ListMonthly.StringFixed(2),
		"list_period":        summary.ListPeriod.StringFixed(2),
		"discounted_monthly": summary.DiscountedMonthly.StringFixed(2),
		"discounted_period":  summary.DiscountedPeriod.StringFixed(2),
		"fixed_monthly":      summary.FixedMonthly.StringFixed(2),
		"fixed_period":       summary.FixedPeriod.StringFixed(2),
	}
	assert.Equal(t, want, got)
}

func TestCalculateComboPromotionWithFixation(t *testing.T) {
	req := vipRequest()
	req.FixationMonths = 5
	req.PromotionID = "Акция_Пр.166 (сентябрь25)"

	promo := &domain.SelectedPromotion{
		OrderID:          "Акция_Пр.166 (сентябрь25)",
		Months:           12,
		BaseDiscount:     d("0.10"),
		Special:          &domain.SpecialCondition{Months: 2, Discount: d("0.99")},
		ApplicableLevels: []string{"Эксперт", "Оптимальный", "Минимальный"},
	}

	summary, ctx := Calculate(req, vipCatalog(), promo)
	require.NotNil(t, summary)
	require.NotNil(t, ctx)

	assertSummary(t, summary, map[string]string{
		"list_monthly":       "2691.21",
		"list_period":        "32294.52",
		"discounted_monthly": "2022.89",
		"discounted_period":  "24274.70",
		"fixed_monthly":      "2852.68",
		"fixed_period":       "34232.16",
	})
	assert.Equal(t, 6, ctx.TotalAccounts)
	assert.Equal(t, 12, ctx.PrepaymentMonths)
}

func TestCalculateDeferredMonthlyDerivation(t *testing.T) {
	// Dividing the period total by the month count yields 380.02/4 = 95.005,
	// which would display as 95.01. The monthly figure must be re-derived
	// from the unit rate instead: 79.17 * 1.2 = 95.004 -> 95.00.
	prices := catalog.NewPriceCatalog([]domain.PriceRow{
		{Service: "Комплекс ЛД", Level: "Оптимальный", Period: "окт.25", Accounts: 1, UnitPrice: d("79.17")},
	})
	req := domain.QuoteRequest{
		Service:          "Комплекс ЛД",
		Period:           "окт.25",
		Levels:           []domain.LevelRequest{{Level: "Оптимальный", Accounts: 1}},
		PrepaymentMonths: 4,
	}

	summary, _ := Calculate(req, prices, nil)
	require.NotNil(t, summary)

	assertSummary(t, summary, map[string]string{
		"list_monthly":       "95.00",
		"list_period":        "380.02",
		"discounted_monthly": "95.01",
		"discounted_period":  "380.02",
		"fixed_monthly":      "95.01",
		"fixed_period":       "380.02",
	})
}

func TestCalculateExceedsMaximumWithDiscountAndFixation(t *testing.T) {
	prices := catalog.NewPriceCatalog([]domain.PriceRow{
		{Service: vipService, Level: "Эксперт", Period: "окт.25", Accounts: 5, UnitPrice: d("170.00")},
		{Service: vipService, Level: "Эксперт", Period: "окт.25", Accounts: 10, UnitPrice: d("150.00")},
		{Service: vipService, Level: "Оптимальный", Period: "окт.25", Accounts: 10, UnitPrice: d("60.30")},
		{Service: vipService, Level: "Минимальный", Period: "окт.25", Accounts: 5, UnitPrice: d("15.00")},
	})
	req := domain.QuoteRequest{
		Service: vipService,
		Period:  "окт.25",
		Levels: []domain.LevelRequest{
			{Level: "Эксперт", Accounts: 20},
			{Level: "Оптимальный", Accounts: 30},
			{Level: "Минимальный", Accounts: 40},
		},
		PrepaymentMonths: 9,
		DiscountPercent:  d("10"),
		FixationMonths:   11,
	}

	summary, ctx := Calculate(req, prices, nil)
	require.NotNil(t, summary)

	assert.Equal(t, "58417.20", summary.ListPeriod.StringFixed(2))
	assert.Equal(t, "52575.48", summary.DiscountedPeriod.StringFixed(2))
	assert.Equal(t, "59410.26", summary.FixedPeriod.StringFixed(2))

	// Extrapolation keeps the requested headcount, not the breakpoint.
	require.Len(t, ctx.Levels, 3)
	assert.Equal(t, 20, ctx.Levels[0].Accounts)
	assert.Equal(t, "150.00", ctx.Levels[0].UnitPrice.StringFixed(2))
}

func TestCalculateNoApplicablePricing(t *testing.T) {
	req := vipRequest()
	req.Period = "янв.26" // no rows published for this period

	summary, ctx := Calculate(req, vipCatalog(), nil)
	assert.Nil(t, summary)
	assert.Nil(t, ctx)
}

func TestCalculateZeroFixationEqualsDiscounted(t *testing.T) {
	req := vipRequest()
	req.DiscountPercent = d("7.5")

	summary, _ := Calculate(req, vipCatalog(), nil)
	require.NotNil(t, summary)

	assert.True(t, summary.FixedPeriod.Equal(summary.DiscountedPeriod))
	assert.True(t, summary.FixedMonthly.Equal(summary.DiscountedMonthly))
}

func TestCalculateDefaultsCollapseToListPrice(t *testing.T) {
	summary, _ := Calculate(vipRequest(), vipCatalog(), nil)
	require.NotNil(t, summary)

	assert.True(t, summary.DiscountedPeriod.Equal(summary.ListPeriod))
	assert.True(t, summary.FixedPeriod.Equal(summary.ListPeriod))
	assert.True(t, summary.DiscountedMonthly.Equal(summary.ListMonthly))
	assert.True(t, summary.FixedMonthly.Equal(summary.ListMonthly))
}

func TestCalculateFixationMonotonicity(t *testing.T) {
	prev := decimal.Zero
	for months := 1; months <= 12; months++ {
		req := vipRequest()
		req.FixationMonths = months

		summary, _ := Calculate(req, vipCatalog(), nil)
		require.NotNil(t, summary)

		assert.True(t, summary.FixedPeriod.GreaterThanOrEqual(prev),
			"fixed_period decreased at %d months: %s < %s", months, summary.FixedPeriod, prev)
		prev = summary.FixedPeriod
	}
}

func TestCalculateDiscountMonotonicity(t *testing.T) {
	prev := decimal.New(1, 12) // larger than any quote
	for percent := 0; percent <= 100; percent += 5 {
		req := vipRequest()
		req.DiscountPercent = decimal.NewFromInt(int64(percent))

		summary, _ := Calculate(req, vipCatalog(), nil)
		require.NotNil(t, summary)

		assert.True(t, summary.DiscountedPeriod.LessThanOrEqual(prev),
			"discounted_period increased at %d%%: %s > %s", percent, summary.DiscountedPeriod, prev)
		prev = summary.DiscountedPeriod
	}
}

func TestCalculatePromotionOverridesPrepaymentTerm(t *testing.T) {
	req := vipRequest()
	req.PrepaymentMonths = 1

	promo := &domain.SelectedPromotion{
		OrderID:          "Акция_Пр.166 (сентябрь25)",
		Months:           12,
		BaseDiscount:     d("0.10"),
		ApplicableLevels: []string{"Эксперт", "Оптимальный", "Минимальный"},
	}

	_, ctx := Calculate(req, vipCatalog(), promo)
	require.NotNil(t, ctx)
	assert.Equal(t, 12, ctx.PrepaymentMonths)
}

func TestCalculatePromotionSkipsUncoveredLevels(t *testing.T) {
	req := vipRequest()
	promo := &domain.SelectedPromotion{
		OrderID:          "Акция_Пр.20",
		Months:           12,
		BaseDiscount:     d("0.50"),
		ApplicableLevels: []string{"Эксперт"},
	}

	summary, _ := Calculate(req, vipCatalog(), promo)
	require.NotNil(t, summary)

	// Эксперт at half price, the other two levels at full price:
	// round(1328.06*0.5)*1.2 = 796.84; 974.88; 122.66 per month.
	assert.Equal(t, "22732.56", summary.DiscountedPeriod.StringFixed(2))
}

package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpgen/kpgen/internal/domain"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"small amount", "95.01", "95,01"},
		{"thousands grouped", "34232.16", "34 232,16"},
		{"millions grouped", "1234567.5", "1 234 567,50"},
		{"integer gets cents", "380", "380,00"},
		{"zero", "0", "0,00"},
		{"negative", "-1500.25", "-1 500,25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.input)
			assert.Equal(t, tt.want, FormatMoney(d))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "10%", FormatPercent(decimal.NewFromInt(10)))
	assert.Equal(t, "12,5%", FormatPercent(decimal.RequireFromString("12.5")))
}

func TestMonthsRu(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "месяц"},
		{2, "месяца"},
		{4, "месяца"},
		{5, "месяцев"},
		{11, "месяцев"},
		{12, "месяцев"},
		{21, "месяц"},
		{22, "месяца"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthsRu(tt.n), "n=%d", tt.n)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatDOCX, false},
		{"docx", FormatDOCX, false},
		{"pdf", FormatPDF, false},
		{"PDF", FormatPDF, false},
		{" docx ", FormatDOCX, false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			require.Error(t, err, "input=%q", tt.input)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			continue
		}
		require.NoError(t, err, "input=%q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestSummaryRowsOrder(t *testing.T) {
	offer := &domain.OfferContext{
		Summary: domain.PriceSummary{
			ListMonthly:       decimal.NewFromInt(1),
			ListPeriod:        decimal.NewFromInt(2),
			DiscountedMonthly: decimal.NewFromInt(3),
			DiscountedPeriod:  decimal.NewFromInt(4),
			FixedMonthly:      decimal.NewFromInt(5),
			FixedPeriod:       decimal.NewFromInt(6),
		},
	}

	rows := summaryRows(offer)
	require.Len(t, rows, 6)
	for i, row := range rows {
		assert.True(t, row.amount.Equal(decimal.NewFromInt(int64(i+1))),
			"row %d out of order", i)
	}
}

func TestHexToRGB(t *testing.T) {
	r, g, b := HexToRGB("#1F4E79")
	assert.Equal(t, 31, r)
	assert.Equal(t, 78, g)
	assert.Equal(t, 121, b)

	r, g, b = HexToRGB("bad")
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

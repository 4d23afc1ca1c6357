package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		token string
		want  time.Time
	}{
		{"окт.25", time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{"янв.26", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"ДЕК.25", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{" май.25 ", time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)},
		// Unknown month abbreviation falls back to January.
		{"xxx.25", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
		// Malformed tokens sort as the 1900 placeholder.
		{"октябрь 2025", unknownPeriod},
		{"окт.двадцать", unknownPeriod},
		{"", unknownPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePeriod(tt.token))
		})
	}
}

func TestFormatPeriod(t *testing.T) {
	assert.Equal(t, "окт.25", FormatPeriod(time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "янв.30", FormatPeriod(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSortPeriods(t *testing.T) {
	periods := []string{"янв.26", "окт.25", "мусор", "ноя.25"}
	SortPeriods(periods)
	assert.Equal(t, []string{"мусор", "окт.25", "ноя.25", "янв.26"}, periods)
}

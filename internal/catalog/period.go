// Package catalog holds the in-memory price and promotion catalogs, their
// tabular loader and the period token helpers shared by the pricing layer.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Billing periods are keyed by a "<month abbr>.<yy>" token with Russian
// three-letter month abbreviations, e.g. "окт.25".

var monthByAbbr = map[string]time.Month{
	"янв": time.January, "фев": time.February, "мар": time.March,
	"апр": time.April, "май": time.May, "июн": time.June,
	"июл": time.July, "авг": time.August, "сен": time.September,
	"окт": time.October, "ноя": time.November, "дек": time.December,
}

var abbrByMonth = map[time.Month]string{
	time.January: "янв", time.February: "фев", time.March: "мар",
	time.April: "апр", time.May: "май", time.June: "июн",
	time.July: "июл", time.August: "авг", time.September: "сен",
	time.October: "окт", time.November: "ноя", time.December: "дек",
}

// unknownPeriod is the sort placeholder for unparseable tokens. It predates
// every real period, so bad tokens sort first and never match a promotion
// admission window.
var unknownPeriod = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParsePeriod converts a period token to the first day of its month.
// An unknown month abbreviation falls back to January; a malformed token
// yields the unknownPeriod placeholder rather than an error.
func ParsePeriod(token string) time.Time {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(token)), ".", 2)
	if len(parts) != 2 {
		return unknownPeriod
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return unknownPeriod
	}
	month, ok := monthByAbbr[parts[0]]
	if !ok {
		month = time.January
	}
	return time.Date(2000+year, month, 1, 0, 0, 0, 0, time.UTC)
}

// FormatPeriod renders the period token for a date, e.g. "окт.25".
func FormatPeriod(t time.Time) string {
	return fmt.Sprintf("%s.%02d", abbrByMonth[t.Month()], t.Year()%100)
}

// SortPeriods orders period tokens chronologically in place.
func SortPeriods(tokens []string) {
	sort.SliceStable(tokens, func(i, j int) bool {
		return ParsePeriod(tokens[i]).Before(ParsePeriod(tokens[j]))
	})
}

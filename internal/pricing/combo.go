// Package pricing implements the quote computation core: service-level
// resolution against the price list, promotion matching, and the pricing
// engine with its three price variants (list, discounted, fixed).
package pricing

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kpgen/kpgen/internal/domain"
)

// comboScanOrder is the level vocabulary ordered by descending name length.
// Longest-first matching is essential: "Оптимальный" is a prefix of
// "Оптимальный Плюс" and would otherwise consume it and corrupt the rest of
// the token.
var comboScanOrder = func() []string {
	order := make([]string, len(domain.KnownLevels))
	copy(order, domain.KnownLevels)
	sort.SliceStable(order, func(i, j int) bool {
		return utf8.RuneCountInString(order[i]) > utf8.RuneCountInString(order[j])
	})
	return order
}()

// normalizeLevelToken upcases a token and strips the separators promotion
// rows are known to contain.
func normalizeLevelToken(token string) string {
	token = strings.ToUpper(token)
	token = strings.ReplaceAll(token, " ", "")
	return strings.ReplaceAll(token, "/", "")
}

// ParseComboLevel decomposes a concatenated level token (e.g.
// "ЭКСПЕРТОПТИМАЛЬНЫЙМИНИМАЛЬНЫЙ") into the known level names it encodes,
// in vocabulary-scan order.
//
// Each known level is consumed at most once. If any characters of the token
// remain unmatched, the token is returned verbatim as a single literal level
// name: a degraded but safe fallback for unknown data.
func ParseComboLevel(token string) []string {
	remaining := normalizeLevelToken(token)
	var found []string
	for _, level := range comboScanOrder {
		key := normalizeLevelToken(level)
		if strings.Contains(remaining, key) {
			found = append(found, level)
			remaining = strings.Replace(remaining, key, "", 1)
		}
	}
	if strings.TrimSpace(remaining) == "" && len(found) > 0 {
		return found
	}
	return []string{token}
}

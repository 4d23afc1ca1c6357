package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/kpgen/kpgen/internal/domain"
)

// Expected column headers of the tabular exports. The price list and the
// promotion file come out of a Russian-locale spreadsheet, so cells may use
// decimal commas and the files may be saved in windows-1251.
const (
	colService   = "Сервис"
	colLevel     = "Уровень"
	colPeriod    = "Период"
	colAccounts  = "Аккаунтов"
	colPrice     = "Стоимость без НДС"
	colMinutes   = "Минут"
	colPromoPlan = "ТП"
	colOrderID   = "Приказ"
	colMonths    = "Месяцев"
	colDiscount  = "Условие1"
	colCondition = "Условие2"
)

// Loader reads the price and promotion catalogs from CSV exports.
type Loader struct {
	pricePath string
	promoPath string
	logger    *slog.Logger
}

// NewLoader creates a catalog loader.
func NewLoader(pricePath, promoPath string, logger *slog.Logger) *Loader {
	return &Loader{
		pricePath: pricePath,
		promoPath: promoPath,
		logger:    logger,
	}
}

// Load reads both catalogs and returns a consistent snapshot.
//
// The price list is mandatory. A missing or broken promotion file degrades to
// an empty promotion catalog: quotes still work, promotions are simply never
// found.
func (l *Loader) Load() (*Snapshot, error) {
	prices, err := l.loadPrices()
	if err != nil {
		return nil, fmt.Errorf("load price list: %w", err)
	}
	l.logger.Info("price list loaded", "path", l.pricePath, "rows", len(prices))

	promos, err := l.loadPromotions()
	if err != nil {
		l.logger.Warn("promotion file unavailable, promotions disabled",
			"path", l.promoPath,
			"error", err,
		)
		promos = nil
	} else {
		l.logger.Info("promotions loaded", "path", l.promoPath, "rows", len(promos))
	}

	return &Snapshot{
		Prices:     NewPriceCatalog(prices),
		Promotions: NewPromotionCatalog(promos),
		LoadedAt:   time.Now(),
	}, nil
}

// =============================================================================
// Price List
// =============================================================================

func (l *Loader) loadPrices() ([]domain.PriceRow, error) {
	records, err := readTable(l.pricePath)
	if err != nil {
		return nil, err
	}

	var rows []domain.PriceRow
	for i, rec := range records {
		service := rec[colService]
		period := normalizePeriodCell(rec[colPeriod])
		if service == "" || period == "" {
			continue // blank or header-artifact row
		}
		price, err := parseDecimalCell(rec[colPrice])
		if err != nil {
			l.logger.Warn("skipping price row with bad price cell",
				"row", i+2,
				"value", rec[colPrice],
			)
			continue
		}
		rows = append(rows, domain.PriceRow{
			Service:   service,
			Level:     rec[colLevel],
			Period:    period,
			Accounts:  parseIntCell(rec[colAccounts]),
			UnitPrice: price,
			Minutes:   strings.TrimSuffix(rec[colMinutes], ".0"),
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no usable rows in %s", l.pricePath)
	}
	return rows, nil
}

// =============================================================================
// Promotions
// =============================================================================

func (l *Loader) loadPromotions() ([]domain.PromotionRow, error) {
	records, err := readTable(l.promoPath)
	if err != nil {
		return nil, err
	}

	var rows []domain.PromotionRow
	for _, rec := range records {
		service := rec[colPromoPlan]
		orderID := rec[colOrderID]
		if service == "" || orderID == "" {
			continue
		}
		discount, err := parseDecimalCell(rec[colDiscount])
		if err != nil {
			discount = decimal.Zero
		}
		rows = append(rows, domain.PromotionRow{
			Service:      service,
			LevelToken:   rec[colLevel],
			OrderID:      orderID,
			Months:       parseIntCell(rec[colMonths]),
			BaseDiscount: discount,
			Special:      domain.ParseSpecialCondition(rec[colCondition]),
		})
	}
	return rows, nil
}

// =============================================================================
// Table Reading
// =============================================================================

// readTable reads a CSV file into header-keyed records. Headers and cells are
// trimmed. Files that are not valid UTF-8 are decoded as windows-1251.
func readTable(path string) ([]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		data, err = charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode windows-1251: %w", err)
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("empty table")
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	table := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			row[h] = strings.TrimSpace(rec[i])
		}
		table = append(table, row)
	}
	return table, nil
}

// sniffDelimiter picks ';' when the first line favors it; Russian-locale
// Excel exports CSV with semicolons.
func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// =============================================================================
// Cell Parsing
// =============================================================================

// normalizePeriodCell accepts either a ready period token ("окт.25") or a
// date cell ("01.10.2025", "2025-10-01") and returns the token form.
func normalizePeriodCell(cell string) string {
	if cell == "" {
		return ""
	}
	for _, layout := range []string{"02.01.2006", "2006-01-02", "02.01.06"} {
		if t, err := time.Parse(layout, cell); err == nil {
			return FormatPeriod(t)
		}
	}
	return strings.ToLower(cell)
}

// parseDecimalCell parses a money or fraction cell, tolerating decimal commas
// and embedded group spaces.
func parseDecimalCell(cell string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", ".", " ", "", " ", "").Replace(cell)
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty cell")
	}
	return decimal.NewFromString(cleaned)
}

// parseIntCell parses an integer cell; spreadsheet exports often render
// integers as "12.0". Unparseable cells yield 0.
func parseIntCell(cell string) int {
	cell = strings.TrimSuffix(strings.TrimSpace(cell), ".0")
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0
	}
	return n
}

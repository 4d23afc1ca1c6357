// Package report renders commercial offer documents from quote data.
//
// The package defines a Generator interface implemented by DOCXGenerator and
// PDFGenerator, along with shared formatting helpers for Russian-style money,
// date, and plural forms.
package report

import (
	"context"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kpgen/kpgen/internal/domain"
)

// =============================================================================
// Generator Interface
// =============================================================================

// Format identifies an offer document output format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// ParseFormat interprets a format query value. Empty defaults to DOCX;
// anything unrecognized is rejected.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "docx":
		return FormatDOCX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", domain.Invalid("report.parse_format", "format must be docx or pdf")
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Generator defines the interface for offer document generators.
// Implementations handle the specifics of each format (DOCX, PDF).
type Generator interface {
	// Generate renders an offer document and writes it to the provided
	// writer. Returns the number of bytes written and any error.
	Generate(ctx context.Context, offer *domain.OfferContext, w io.Writer) (int64, error)

	// Format returns the output format of this generator.
	Format() Format
}

// =============================================================================
// Brand Colors
// =============================================================================

// BrandColors defines the color palette for offer documents.
var BrandColors = struct {
	Primary   string // Headings and accents
	TextDark  string // Primary text
	TextMuted string // Secondary text
	Border    string // Borders and dividers
	TableFill string // Table header fill
}{
	Primary:   "#1F4E79",
	TextDark:  "#1F2937",
	TextMuted: "#6B7280",
	Border:    "#D9D9D9",
	TableFill: "#EDF2F7",
}

// HexToRGB converts a hex color string to RGB values.
// Input format: "#RRGGBB" or "RRGGBB"
func HexToRGB(hex string) (r, g, b int) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	r = hexToDec(hex[0:2])
	g = hexToDec(hex[2:4])
	b = hexToDec(hex[4:6])
	return
}

func hexToDec(hex string) int {
	val := 0
	for _, c := range hex {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

// =============================================================================
// Formatting Helpers
// =============================================================================

// FormatMoney renders an amount in Russian style: space-grouped thousands and
// a comma decimal separator, always with two decimal places.
// 1234567.5 -> "1 234 567,50"
func FormatMoney(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(c)
	}
	sb.WriteByte(',')
	sb.WriteString(fracPart)
	return sb.String()
}

// FormatPercent renders a discount percentage without trailing zeros.
// 10 -> "10%", 12.5 -> "12,5%"
func FormatPercent(d decimal.Decimal) string {
	return strings.ReplaceAll(d.String(), ".", ",") + "%"
}

// FormatDate formats a date for display in offer documents.
func FormatDate(t interface{ Format(string) string }) string {
	return t.Format("02.01.2006")
}

// PluralRu picks the Russian plural form for n.
// one is used for 1, 21, 31...; few for 2-4, 22-24...; many for the rest.
func PluralRu(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	switch {
	case n%100 >= 11 && n%100 <= 14:
		return many
	case n%10 == 1:
		return one
	case n%10 >= 2 && n%10 <= 4:
		return few
	default:
		return many
	}
}

// MonthsRu renders a month count with the correct plural form.
func MonthsRu(n int) string {
	return PluralRu(n, "месяц", "месяца", "месяцев")
}

// UsersRu renders a user count with the correct plural form.
func UsersRu(n int) string {
	return PluralRu(n, "пользователь", "пользователя", "пользователей")
}

// =============================================================================
// Shared Offer Content
// =============================================================================

// summaryRow is one line of the price summary table.
type summaryRow struct {
	label  string
	amount decimal.Decimal
}

// summaryRows lays out the six display amounts in presentation order.
func summaryRows(offer *domain.OfferContext) []summaryRow {
	return []summaryRow{
		{"Стоимость по прайс-листу в месяц", offer.Summary.ListMonthly},
		{"Стоимость по прайс-листу за период", offer.Summary.ListPeriod},
		{"Стоимость со скидкой в месяц", offer.Summary.DiscountedMonthly},
		{"Стоимость со скидкой за период", offer.Summary.DiscountedPeriod},
		{"Стоимость с фиксацией цены в месяц", offer.Summary.FixedMonthly},
		{"Стоимость с фиксацией цены за период", offer.Summary.FixedPeriod},
	}
}

// offerTitle is the document heading; the original offers carry this name.
const offerTitle = "Коммерческое предложение"

// vatNote is the legal pricing footnote on every offer.
const vatNote = "Все цены указаны в рублях, включая НДС 20%."

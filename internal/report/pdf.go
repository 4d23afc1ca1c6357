package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/kpgen/kpgen/internal/domain"
)

// fontFamily is the internal name the offer font is registered under.
const fontFamily = "OfferSans"

// =============================================================================
// PDF Generator
// =============================================================================

// PDFGenerator renders commercial offers as PDF documents.
//
// Offer text is Cyrillic, which the built-in PDF core fonts cannot encode, so
// the generator embeds a configured UTF-8 TrueType font.
type PDFGenerator struct {
	fontPath     string
	boldFontPath string

	// Page dimensions (A4 in mm)
	pageWidth  float64
	pageHeight float64
	margin     float64

	contentWidth float64
}

// NewPDFGenerator creates a new PDF generator. fontPath must point to a
// TrueType font with Cyrillic coverage; boldFontPath may be empty, in which
// case the regular face is reused for bold text.
func NewPDFGenerator(fontPath, boldFontPath string) *PDFGenerator {
	if boldFontPath == "" {
		boldFontPath = fontPath
	}
	margin := 15.0
	pageWidth := 210.0 // A4 width in mm
	return &PDFGenerator{
		fontPath:     fontPath,
		boldFontPath: boldFontPath,
		pageWidth:    pageWidth,
		pageHeight:   297.0,
		margin:       margin,
		contentWidth: pageWidth - (2 * margin),
	}
}

// Format returns the output format of this generator.
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Generate renders the offer and writes it to the provided writer.
func (g *PDFGenerator) Generate(ctx context.Context, offer *domain.OfferContext, w io.Writer) (int64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8Font(fontFamily, "", g.fontPath)
	pdf.AddUTF8Font(fontFamily, "B", g.boldFontPath)

	pdf.SetTitle(offerTitle+" - "+offer.ServiceName, true)
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFooterFunc(func() {
		g.addFooter(pdf, offer)
	})

	pdf.AddPage()
	g.addHeader(pdf, offer)
	g.addTerms(pdf, offer)
	g.addLevelsTable(pdf, offer)
	g.addSummaryTable(pdf, offer)

	if err := pdf.Error(); err != nil {
		return 0, fmt.Errorf("pdf generation error: %w", err)
	}

	// Write to buffer to count bytes
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return 0, fmt.Errorf("pdf output error: %w", err)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// =============================================================================
// Header
// =============================================================================

func (g *PDFGenerator) addHeader(pdf *fpdf.Fpdf, offer *domain.OfferContext) {
	r, gr, b := HexToRGB(BrandColors.Primary)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont(fontFamily, "B", 22)
	pdf.Cell(0, 12, offerTitle)
	pdf.Ln(14)

	r, gr, b = HexToRGB(BrandColors.TextDark)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont(fontFamily, "", 13)
	pdf.Cell(0, 8, offer.ServiceName)
	pdf.Ln(9)

	if offer.CurrentDate != "" {
		r, gr, b = HexToRGB(BrandColors.TextMuted)
		pdf.SetTextColor(r, gr, b)
		pdf.SetFont(fontFamily, "", 10)
		pdf.Cell(0, 6, "от "+offer.CurrentDate)
		pdf.Ln(8)
	}

	r, gr, b = HexToRGB(BrandColors.Primary)
	pdf.SetDrawColor(r, gr, b)
	pdf.SetLineWidth(0.5)
	pdf.Line(g.margin, pdf.GetY(), g.pageWidth-g.margin, pdf.GetY())
	pdf.Ln(8)

	r, gr, b = HexToRGB(BrandColors.TextDark)
	pdf.SetTextColor(r, gr, b)
}

// =============================================================================
// Subscription Terms
// =============================================================================

func (g *PDFGenerator) addTerms(pdf *fpdf.Fpdf, offer *domain.OfferContext) {
	g.addSectionHeader(pdf, "Условия подписки")

	g.addLabelValue(pdf, "Срок предоплаты",
		fmt.Sprintf("%d %s", offer.PrepaymentMonths, MonthsRu(offer.PrepaymentMonths)))
	g.addLabelValue(pdf, "Всего пользователей",
		fmt.Sprintf("%d", offer.TotalAccounts))
	if offer.DiscountPercent.IsPositive() {
		g.addLabelValue(pdf, "Скидка", FormatPercent(offer.DiscountPercent))
	}
	if offer.FixationMonths > 0 {
		g.addLabelValue(pdf, "Фиксация цены",
			fmt.Sprintf("%d %s", offer.FixationMonths, MonthsRu(offer.FixationMonths)))
	}
	pdf.Ln(6)
}

// =============================================================================
// Levels Table
// =============================================================================

func (g *PDFGenerator) addLevelsTable(pdf *fpdf.Fpdf, offer *domain.OfferContext) {
	if len(offer.Levels) == 0 {
		return
	}

	g.addSectionHeader(pdf, "Состав тарифа")

	levelWidth := 70.0
	accountsWidth := 40.0
	priceWidth := g.contentWidth - levelWidth - accountsWidth

	r, gr, b := HexToRGB(BrandColors.TableFill)
	pdf.SetFillColor(r, gr, b)
	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(levelWidth, 8, "Уровень", "1", 0, "L", true, 0, "")
	pdf.CellFormat(accountsWidth, 8, "Пользователей", "1", 0, "C", true, 0, "")
	pdf.CellFormat(priceWidth, 8, "Цена без НДС, руб.", "1", 1, "R", true, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	for _, level := range offer.Levels {
		pdf.CellFormat(levelWidth, 8, level.Level, "1", 0, "L", false, 0, "")
		pdf.CellFormat(accountsWidth, 8, fmt.Sprintf("%d", level.Accounts), "1", 0, "C", false, 0, "")
		pdf.CellFormat(priceWidth, 8, FormatMoney(level.UnitPrice), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

// =============================================================================
// Price Summary Table
// =============================================================================

func (g *PDFGenerator) addSummaryTable(pdf *fpdf.Fpdf, offer *domain.OfferContext) {
	g.addSectionHeader(pdf, "Стоимость подписки")

	labelWidth := 120.0
	amountWidth := g.contentWidth - labelWidth

	for _, row := range summaryRows(offer) {
		pdf.SetFont(fontFamily, "", 10)
		pdf.CellFormat(labelWidth, 8, row.label, "1", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "B", 10)
		pdf.CellFormat(amountWidth, 8, FormatMoney(row.amount)+" руб.", "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

// =============================================================================
// Helper Methods
// =============================================================================

func (g *PDFGenerator) addSectionHeader(pdf *fpdf.Fpdf, title string) {
	r, gr, b := HexToRGB(BrandColors.Primary)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont(fontFamily, "B", 13)
	pdf.Cell(0, 9, title)
	pdf.Ln(11)

	r, gr, b = HexToRGB(BrandColors.TextDark)
	pdf.SetTextColor(r, gr, b)
}

func (g *PDFGenerator) addLabelValue(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.Cell(55, 6, label+":")
	pdf.SetFont(fontFamily, "", 10)
	pdf.Cell(0, 6, value)
	pdf.Ln(6)
}

func (g *PDFGenerator) addFooter(pdf *fpdf.Fpdf, offer *domain.OfferContext) {
	pdf.SetY(-15)

	r, gr, b := HexToRGB(BrandColors.Border)
	pdf.SetDrawColor(r, gr, b)
	pdf.Line(g.margin, pdf.GetY()-3, g.pageWidth-g.margin, pdf.GetY()-3)

	r, gr, b = HexToRGB(BrandColors.TextMuted)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont(fontFamily, "", 8)

	pdf.Cell(0, 10, vatNote)
	pdf.SetX(-g.margin - 30)
	pdf.CellFormat(30, 10, fmt.Sprintf("Стр. %d", pdf.PageNo()), "", 0, "R", false, 0, "")
}

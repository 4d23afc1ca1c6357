package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"

	"github.com/kpgen/kpgen/internal/domain"
)

// =============================================================================
// DOCX Generator
// =============================================================================

// DOCXGenerator renders commercial offers as DOCX documents.
type DOCXGenerator struct{}

// NewDOCXGenerator creates a new DOCX generator.
func NewDOCXGenerator() *DOCXGenerator {
	return &DOCXGenerator{}
}

// Format returns the output format of this generator.
func (g *DOCXGenerator) Format() Format {
	return FormatDOCX
}

// Generate renders the offer and writes it to the provided writer.
func (g *DOCXGenerator) Generate(ctx context.Context, offer *domain.OfferContext, w io.Writer) (int64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	doc := document.New()
	defer doc.Close()

	props := doc.CoreProperties
	props.SetTitle(offerTitle + " - " + offer.ServiceName)

	g.addHeader(doc, offer)
	g.addTerms(doc, offer)
	g.addLevelsTable(doc, offer)
	g.addSummaryTable(doc, offer)
	g.addFootnotes(doc, offer)

	// Write to buffer to count bytes
	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return 0, fmt.Errorf("docx save error: %w", err)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// =============================================================================
// Header
// =============================================================================

func (g *DOCXGenerator) addHeader(doc *document.Document, offer *domain.OfferContext) {
	title := doc.AddParagraph()
	titleRun := title.AddRun()
	titleRun.Properties().SetBold(true)
	titleRun.Properties().SetSize(24 * measurement.Point)
	titleRun.Properties().SetColor(g.rgb(BrandColors.Primary))
	titleRun.AddText(offerTitle)
	title.Properties().SetSpacing(0, 8*measurement.Point)

	subtitle := doc.AddParagraph()
	subtitleRun := subtitle.AddRun()
	subtitleRun.Properties().SetSize(14 * measurement.Point)
	subtitleRun.AddText(offer.ServiceName)
	subtitle.Properties().SetSpacing(0, 4*measurement.Point)

	if offer.CurrentDate != "" {
		date := doc.AddParagraph()
		dateRun := date.AddRun()
		dateRun.Properties().SetColor(g.rgb(BrandColors.TextMuted))
		dateRun.AddText("от " + offer.CurrentDate)
		date.Properties().SetSpacing(0, 16*measurement.Point)
	}
}

// =============================================================================
// Subscription Terms
// =============================================================================

func (g *DOCXGenerator) addTerms(doc *document.Document, offer *domain.OfferContext) {
	g.addSectionHeader(doc, "Условия подписки")

	g.addLabelValue(doc, "Срок предоплаты",
		fmt.Sprintf("%d %s", offer.PrepaymentMonths, MonthsRu(offer.PrepaymentMonths)))
	g.addLabelValue(doc, "Всего пользователей",
		fmt.Sprintf("%d", offer.TotalAccounts))
	if offer.DiscountPercent.IsPositive() {
		g.addLabelValue(doc, "Скидка", FormatPercent(offer.DiscountPercent))
	}
	if offer.FixationMonths > 0 {
		g.addLabelValue(doc, "Фиксация цены",
			fmt.Sprintf("%d %s", offer.FixationMonths, MonthsRu(offer.FixationMonths)))
	}

	doc.AddParagraph()
}

// =============================================================================
// Levels Table
// =============================================================================

func (g *DOCXGenerator) addLevelsTable(doc *document.Document, offer *domain.OfferContext) {
	if len(offer.Levels) == 0 {
		return
	}

	g.addSectionHeader(doc, "Состав тарифа")

	table := doc.AddTable()
	table.Properties().SetWidthPercent(100)

	headerRow := table.AddRow()
	g.addTableCell(headerRow, "Уровень", true)
	g.addTableCell(headerRow, "Пользователей", true)
	g.addTableCell(headerRow, "Цена за пользователя без НДС, руб.", true)

	for _, level := range offer.Levels {
		row := table.AddRow()
		g.addTableCell(row, level.Level, false)
		g.addTableCell(row, fmt.Sprintf("%d", level.Accounts), false)
		g.addTableCell(row, FormatMoney(level.UnitPrice), false)
	}

	doc.AddParagraph()
}

// =============================================================================
// Price Summary Table
// =============================================================================

func (g *DOCXGenerator) addSummaryTable(doc *document.Document, offer *domain.OfferContext) {
	g.addSectionHeader(doc, "Стоимость подписки")

	table := doc.AddTable()
	table.Properties().SetWidthPercent(100)

	for _, row := range summaryRows(offer) {
		tr := table.AddRow()
		g.addTableCell(tr, row.label, false)
		g.addTableCell(tr, FormatMoney(row.amount)+" руб.", true)
	}

	doc.AddParagraph()
}

// =============================================================================
// Footnotes
// =============================================================================

func (g *DOCXGenerator) addFootnotes(doc *document.Document, offer *domain.OfferContext) {
	note := doc.AddParagraph()
	noteRun := note.AddRun()
	noteRun.Properties().SetItalic(true)
	noteRun.Properties().SetSize(9 * measurement.Point)
	noteRun.Properties().SetColor(g.rgb(BrandColors.TextMuted))
	noteRun.AddText(vatNote)

	if offer.FixationMonths > 0 {
		fix := doc.AddParagraph()
		fixRun := fix.AddRun()
		fixRun.Properties().SetItalic(true)
		fixRun.Properties().SetSize(9 * measurement.Point)
		fixRun.Properties().SetColor(g.rgb(BrandColors.TextMuted))
		fixRun.AddText(fmt.Sprintf(
			"Стоимость зафиксирована на %d %s с учетом коэффициента фиксации.",
			offer.FixationMonths, MonthsRu(offer.FixationMonths)))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (g *DOCXGenerator) addSectionHeader(doc *document.Document, title string) {
	para := doc.AddParagraph()
	run := para.AddRun()
	run.Properties().SetBold(true)
	run.Properties().SetSize(13 * measurement.Point)
	run.Properties().SetColor(g.rgb(BrandColors.Primary))
	run.AddText(title)
	para.Properties().SetSpacing(10*measurement.Point, 6*measurement.Point)
}

func (g *DOCXGenerator) addLabelValue(doc *document.Document, label, value string) {
	para := doc.AddParagraph()
	labelRun := para.AddRun()
	labelRun.Properties().SetBold(true)
	labelRun.AddText(label + ": ")
	para.AddRun().AddText(value)
}

func (g *DOCXGenerator) addTableCell(row document.Row, text string, bold bool) {
	cell := row.AddCell()
	para := cell.AddParagraph()
	run := para.AddRun()
	if bold {
		run.Properties().SetBold(true)
	}
	run.AddText(text)
}

func (g *DOCXGenerator) rgb(hex string) color.Color {
	r, gr, b := HexToRGB(hex)
	return color.RGB(uint8(r), uint8(gr), uint8(b))
}

package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXRenderer exports the priced quote behind a composed document as a
// cost/charge/margin workbook. Layout modules do not apply to spreadsheets.
type XLSXRenderer struct{}

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXRenderer) Extension() string { return "xlsx" }

func (XLSXRenderer) Render(doc *Document) ([]byte, error) {
	if doc.Quote == nil {
		return nil, fmt.Errorf("xlsx export: %w", ErrQuoteNotFound)
	}
	return GenerateQuoteExcel(doc.Quote, doc.Totals, doc.Currency)
}

var marginBandFills = map[string]string{
	BandHealthy:   "#D1FAE5",
	BandWarning:   "#FEF3C7",
	BandLow:       "#FEE2E2",
	BandUndefined: "#E5E7EB",
}

// GenerateQuoteExcel writes one line per item with cost, charge and margin,
// section subtotals, and the fee totals block.
func GenerateQuoteExcel(q *Quote, totals Totals, currency string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Quote"
	if q.QuoteNumber != "" {
		sheetName = q.QuoteNumber
	}
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	lastCol := columns[len(columns)-1]
	widths := []float64{22, 36, 8, 8, 14, 14, 16, 16, 10}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#F1F5F9"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}
	itemStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	bandStyles := make(map[string]int, len(marginBandFills))
	for band, fill := range marginBandFills {
		id, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Size: 10},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
			Border:    thinBorders(),
			Alignment: &excelize.Alignment{Horizontal: "right"},
		})
		if err != nil {
			return nil, fmt.Errorf("create %s margin style: %w", band, err)
		}
		bandStyles[band] = id
	}
	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}
	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	title := q.Title
	if title == "" {
		title = "Quote"
	}
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)
	f.SetCellValue(sheetName, "A2", sanitizeExcelCell("Client: "+q.Client.Company))
	f.SetCellValue(sheetName, "A3", "Currency: "+currency)

	headers := []string{"Section", "Item", "Qty", "Days", "Unit Cost", "Unit Charge", "Line Cost", "Line Charge", "Margin"}
	for i, h := range headers {
		f.SetCellValue(sheetName, columns[i]+"5", h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	row := 6
	for _, sec := range OrderedSections(q) {
		r := fmt.Sprint(row)
		total := SectionTotal(sec.Section.Subsections)
		f.SetCellValue(sheetName, "A"+r, sanitizeExcelCell(sec.Name))
		f.SetCellValue(sheetName, "G"+r, total.Cost)
		f.SetCellValue(sheetName, "H"+r, total.Charge)
		f.SetCellValue(sheetName, "I"+r, MarginOf(total.Cost, total.Charge).String())
		f.SetCellStyle(sheetName, "A"+r, lastCol+r, sectionStyle)
		row++

		for _, sub := range sec.Section.Subsections {
			for _, item := range sub.Items {
				r := fmt.Sprint(row)
				line := LineTotal(item)
				margin := LineMargin(item)

				f.SetCellValue(sheetName, "A"+r, sanitizeExcelCell(sub.Name))
				f.SetCellValue(sheetName, "B"+r, sanitizeExcelCell(item.Name))
				f.SetCellValue(sheetName, "C"+r, atLeastOne(item.Quantity))
				f.SetCellValue(sheetName, "D"+r, atLeastOne(item.Days))
				f.SetCellValue(sheetName, "E"+r, nonNegative(item.Cost))
				f.SetCellValue(sheetName, "F"+r, nonNegative(item.Charge))
				f.SetCellValue(sheetName, "G"+r, line.Cost)
				f.SetCellValue(sheetName, "H"+r, line.Charge)
				f.SetCellValue(sheetName, "I"+r, margin.String())

				f.SetCellStyle(sheetName, "A"+r, "D"+r, itemStyle)
				f.SetCellStyle(sheetName, "E"+r, "H"+r, moneyStyle)
				f.SetCellStyle(sheetName, "I"+r, "I"+r, bandStyles[MarginBand(margin)])
				row++
			}
		}
	}

	row++
	summary := []struct {
		label string
		value float64
	}{
		{"Base Cost", totals.BaseCost},
		{"Base Charge", totals.BaseCharge},
		{fmt.Sprintf("Management Fee (%s)", formatPct(totals.Fees.ManagementFeePct)), totals.ManagementAmount},
		{fmt.Sprintf("Commission (%s)", formatPct(totals.Fees.CommissionFeePct)), totals.CommissionAmount},
		{fmt.Sprintf("Discount (%s)", formatPct(totals.Fees.DiscountPct)), -totals.DiscountAmount},
		{"Total Charge", totals.TotalCharge},
		{"Profit", totals.Profit},
	}
	for _, s := range summary {
		r := fmt.Sprint(row)
		f.SetCellValue(sheetName, "G"+r, s.label)
		f.SetCellStyle(sheetName, "G"+r, "G"+r, summaryLabelStyle)
		f.SetCellValue(sheetName, "H"+r, s.value)
		f.SetCellStyle(sheetName, "H"+r, "H"+r, summaryValueStyle)
		row++
	}
	r := fmt.Sprint(row)
	margin := MarginOf(totals.TotalCost, totals.TotalCharge)
	f.SetCellValue(sheetName, "G"+r, "Margin")
	f.SetCellStyle(sheetName, "G"+r, "G"+r, summaryLabelStyle)
	f.SetCellValue(sheetName, "H"+r, margin.String())
	f.SetCellStyle(sheetName, "H"+r, "H"+r, bandStyles[MarginBand(margin)])

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1,
		}
	}
	return borders
}

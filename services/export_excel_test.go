package services

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestGenerateQuoteExcel(t *testing.T) {
	q := testQuote()
	totals := GrandTotalWithFees(q.Sections, q.Fees)

	result, err := GenerateQuoteExcel(q, totals, "USD")
	if err != nil {
		t.Fatalf("GenerateQuoteExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateQuoteExcel() returned empty bytes")
	}

	f := openWorkbook(t, result)

	sheets := f.GetSheetList()
	if len(sheets) == 0 || sheets[0] != "QT-2026-001" {
		t.Fatalf("expected sheet name 'QT-2026-001', got %v", sheets)
	}
	sheet := sheets[0]

	cells := map[string]string{
		"A1": "Launch Event",
		"A6": "Production Team",
		"B7": "Camera op",
		"G7": "2400",
		"H7": "3600",
		"I7": "33.3%",
		"A8": "Logistics",
		"B9": "Van",
	}
	for cell, want := range cells {
		got, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestGenerateQuoteExcel_LongSheetName(t *testing.T) {
	q := testQuote()
	q.QuoteNumber = "QT-2026-001-REVISION-FOR-CLIENT-APPROVAL"
	result, err := GenerateQuoteExcel(q, GrandTotalWithFees(q.Sections, q.Fees), "USD")
	if err != nil {
		t.Fatalf("GenerateQuoteExcel() error = %v", err)
	}
	f := openWorkbook(t, result)
	if name := f.GetSheetList()[0]; len(name) != 31 {
		t.Errorf("sheet name %q has length %d, want 31", name, len(name))
	}
}

func TestXLSXRenderer_NeedsQuote(t *testing.T) {
	if _, err := (XLSXRenderer{}).Render(&Document{}); err == nil {
		t.Error("expected error for document without quote")
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1", "'+1"},
		{"@cmd", "'@cmd"},
		{"Camera op", "Camera op"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.in); got != tt.want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

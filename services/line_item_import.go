package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowError is a single field-level problem on one data row. Row is 1-based
// and counts the header, matching what a spreadsheet shows.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is returned after parsing an uploaded line item sheet. Rows
// with errors are left out of Sections.
type ImportResult struct {
	TotalRows int        `json:"total_rows"`
	ValidRows int        `json:"valid_rows"`
	ErrorRows int        `json:"error_rows"`
	Errors    []RowError `json:"errors"`
	Sections  Sections   `json:"-"`
}

var errTooFewRows = errors.New("file must contain a header row and at least one data row")

// importColumns maps accepted header spellings to field keys.
var importColumns = map[string]string{
	"section":    "section",
	"subsection": "subsection",
	"category":   "subsection",
	"item":       "name",
	"name":       "name",
	"qty":        "quantity",
	"quantity":   "quantity",
	"days":       "days",
	"cost":       "cost",
	"unit cost":  "cost",
	"charge":     "charge",
	"rate":       "charge",
	"unit rate":  "charge",
}

// ParseLineItems reads a .csv or .xlsx sheet of line items.
func ParseLineItems(r io.Reader, fileName string) (*ImportResult, error) {
	var (
		headers []string
		rows    [][]string
		err     error
	)
	switch lower := strings.ToLower(fileName); {
	case strings.HasSuffix(lower, ".csv"):
		headers, rows, err = parseCSV(r)
	case strings.HasSuffix(lower, ".xlsx"):
		headers, rows, err = parseExcel(r)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	keys := mapImportHeaders(headers)
	if !hasKey(keys, "section") || !hasKey(keys, "name") {
		return nil, fmt.Errorf("missing required columns: Section and Item")
	}

	result := &ImportResult{Sections: make(Sections)}
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		result.TotalRows++
		rowNum := i + 2

		values := make(map[string]string, len(keys))
		for col, key := range keys {
			if key == "" || col >= len(row) {
				continue
			}
			values[key] = strings.TrimSpace(row[col])
		}

		item, sectionID, subsection, rowErrs := lineItemFromRow(rowNum, values)
		if len(rowErrs) > 0 {
			result.ErrorRows++
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}
		result.ValidRows++
		addImportedItem(result.Sections, sectionID, subsection, item)
	}
	return result, nil
}

func lineItemFromRow(rowNum int, values map[string]string) (LineItem, string, string, []RowError) {
	var errs []RowError

	sectionID := resolveSectionID(values["section"])
	if sectionID == "" {
		errs = append(errs, RowError{Row: rowNum, Field: "section", Message: "is required"})
	}
	item := LineItem{Name: values["name"]}
	if item.Name == "" {
		errs = append(errs, RowError{Row: rowNum, Field: "name", Message: "is required"})
	}

	numbers := []struct {
		key string
		dst *float64
	}{
		{"quantity", &item.Quantity},
		{"days", &item.Days},
		{"cost", &item.Cost},
		{"charge", &item.Charge},
	}
	for _, n := range numbers {
		raw := strings.ReplaceAll(values[n.key], ",", "")
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Field: n.key, Message: fmt.Sprintf("%q is not a number", values[n.key])})
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v > MaxAmount {
			errs = append(errs, RowError{Row: rowNum, Field: n.key, Message: fmt.Sprintf("%q is out of range", values[n.key])})
			continue
		}
		if v < 0 {
			errs = append(errs, RowError{Row: rowNum, Field: n.key, Message: "cannot be negative"})
			continue
		}
		*n.dst = v
	}

	subsection := values["subsection"]
	if subsection == "" {
		def := LookupSection(sectionID)
		subsection = flatSubsection
		if len(def.Subsections) > 0 {
			subsection = def.Subsections[0]
		}
	}
	return item, sectionID, subsection, errs
}

// resolveSectionID accepts a registry id or display name, case-insensitively.
// Anything else is used verbatim as a custom section id.
func resolveSectionID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, id := range SectionOrder {
		def := SectionDefs[id]
		if strings.EqualFold(s, id) || strings.EqualFold(s, def.Name) {
			return id
		}
	}
	return s
}

func addImportedItem(sections Sections, sectionID, subsection string, item LineItem) {
	sec := sections[sectionID]
	for i := range sec.Subsections {
		if sec.Subsections[i].Name == subsection {
			sec.Subsections[i].Items = append(sec.Subsections[i].Items, item)
			sections[sectionID] = sec
			return
		}
	}
	sec.Subsections = append(sec.Subsections, Subsection{Name: subsection, Items: []LineItem{item}})
	sections[sectionID] = sec
}

// MergeSections appends imported items to q, keeping existing items first.
func MergeSections(q *Quote, imported Sections) {
	if q.Sections == nil {
		q.Sections = make(Sections)
	}
	for id, sec := range imported {
		for _, sub := range sec.Subsections {
			for _, item := range sub.Items {
				addImportedItem(q.Sections, id, sub.Name, item)
			}
		}
	}
}

func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, errTooFewRows
	}
	return allRows[0], allRows[1:], nil
}

func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, errTooFewRows
	}
	return rows[0], rows[1:], nil
}

// mapImportHeaders returns one field key per column, "" for unknown columns.
func mapImportHeaders(headers []string) []string {
	keys := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, " *"))
		keys[i] = importColumns[norm]
	}
	return keys
}

func hasKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

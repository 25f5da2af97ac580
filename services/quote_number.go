package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

var numberPrefixes = map[DocumentKind]string{
	KindQuote:    "QT",
	KindInvoice:  "INV",
	KindProposal: "PRP",
}

// formatQuoteNumber builds a document number from its parts, e.g. QT-2026-007.
func formatQuoteNumber(prefix string, year, sequence int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, sequence)
}

// NextQuoteNumber returns the next number for kind in the calendar year of
// now. The sequence restarts at 1 each year.
func NextQuoteNumber(app core.App, kind DocumentKind, now time.Time) (string, error) {
	prefix, ok := numberPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("no number prefix for document kind %q", kind)
	}
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, now.Year())

	existing, err := app.FindRecordsByFilter(
		CollectionQuotes,
		"quote_number ~ {:prefix}",
		"",
		0,
		0,
		dbx.Params{"prefix": yearPrefix + "%"},
	)
	if err != nil {
		return "", fmt.Errorf("count %s numbers: %w", prefix, err)
	}
	return formatQuoteNumber(prefix, now.Year(), len(existing)+1), nil
}

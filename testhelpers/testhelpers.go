// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedeck/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestQuote creates a USD quote record with no fees and returns it.
func CreateTestQuote(t *testing.T, app *pocketbase.PocketBase, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("failed to find quotes collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("title", title)
	record.Set("currency", "USD")
	record.Set("client", map[string]any{"company": "Acme Events", "contact": "Sam Lee"})
	record.Set("fees", map[string]any{"managementFee": 0, "commissionFee": 0, "discount": 0})

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}

	return record
}

// CreateTestLineItem creates a line item on a quote and returns it.
func CreateTestLineItem(t *testing.T, app *pocketbase.PocketBase, quoteID, section, subsection, name string, qty, days, cost, charge float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quote_line_items")
	if err != nil {
		t.Fatalf("failed to find quote_line_items collection: %v", err)
	}

	existing, _ := app.FindRecordsByFilter("quote_line_items", "quote = {:quote}", "", 0, 0, map[string]any{"quote": quoteID})

	record := core.NewRecord(col)
	record.Set("quote", quoteID)
	record.Set("section", section)
	record.Set("subsection", subsection)
	record.Set("sort_order", len(existing))
	record.Set("name", name)
	record.Set("quantity", qty)
	record.Set("days", days)
	record.Set("cost", cost)
	record.Set("charge", charge)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test line item: %v", err)
	}

	return record
}

// CreateTestTemplate creates a template record with the given modules, given
// as plain maps the way they arrive over JSON.
func CreateTestTemplate(t *testing.T, app *pocketbase.PocketBase, name, kind string, modules []map[string]any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("document_templates")
	if err != nil {
		t.Fatalf("failed to find document_templates collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("kind", kind)
	record.Set("is_default", true)
	record.Set("modules", modules)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test template: %v", err)
	}

	return record
}

// StandardModules is a small valid module list for any document kind.
func StandardModules() []map[string]any {
	return []map[string]any{
		{"id": "company", "type": "companyInfo", "width": "half"},
		{"id": "header", "type": "invoiceHeader", "width": "half"},
		{"id": "items", "type": "lineItems", "width": "full"},
		{"id": "totals", "type": "totals", "width": "half", "config": map[string]any{"alignment": "right"}},
		{"id": "footer", "type": "footer"},
	}
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

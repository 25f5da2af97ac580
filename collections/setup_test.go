package collections_test

import (
	"testing"

	"quotedeck/collections"
	"quotedeck/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"quotes",
	"quote_line_items",
	"document_templates",
	"documents",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	before := make(map[string]string)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Fatalf("collection %q not found: %v", name, err)
		}
		before[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Fatalf("collection %q not found after second Setup(): %v", name, err)
		}
		if col.Id != before[name] {
			t.Errorf("collection %q was recreated: id %s -> %s", name, before[name], col.Id)
		}
	}
}

func TestSetup_Fields(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	tests := []struct {
		collection string
		fields     []string
	}{
		{"quotes", []string{"quote_number", "title", "currency", "client", "project", "fees", "section_order", "section_names", "validity_days", "prepared_by", "quote_date", "created", "updated"}},
		{"quote_line_items", []string{"quote", "section", "subsection", "subsection_order", "sort_order", "name", "quantity", "days", "cost", "charge"}},
		{"document_templates", []string{"name", "kind", "is_default", "page_settings", "styles", "modules", "created", "updated"}},
		{"documents", []string{"quote", "template", "format", "file", "created"}},
	}
	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			col, err := app.FindCollectionByNameOrId(tt.collection)
			if err != nil {
				t.Fatalf("collection %q not found: %v", tt.collection, err)
			}
			for _, name := range tt.fields {
				if col.Fields.GetByName(name) == nil {
					t.Errorf("field %q missing from %q", name, tt.collection)
				}
			}
		})
	}
}

func TestSetup_TemplateKindValues(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("document_templates")
	field, ok := col.Fields.GetByName("kind").(*core.SelectField)
	if !ok {
		t.Fatal("kind is not a select field")
	}
	want := []string{"quote", "invoice", "proposal"}
	if len(field.Values) != len(want) {
		t.Fatalf("kind values = %v, want %v", field.Values, want)
	}
	for i := range want {
		if field.Values[i] != want[i] {
			t.Errorf("kind values = %v, want %v", field.Values, want)
		}
	}
}

func TestSetup_LineItemsCascadeDeleteWithQuote(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Cascade")
	testhelpers.CreateTestLineItem(t, app, quote.Id, "logistics", "Services", "Van", 1, 1, 100, 150)

	if err := app.Delete(quote); err != nil {
		t.Fatalf("delete quote: %v", err)
	}
	items, err := app.FindRecordsByFilter("quote_line_items", "quote = {:quote}", "", 0, 0, map[string]any{"quote": quote.Id})
	if err != nil {
		t.Fatalf("query line items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected line items to be cascade deleted, got %d", len(items))
	}
}

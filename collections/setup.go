package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the quotes, quote_line_items,
// document_templates and documents collections exist.
func Setup(app *pocketbase.PocketBase) {
	quotes := ensureCollection(app, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "quote_number", Required: false})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "currency", Required: false, Max: 3})
		c.Fields.Add(&core.JSONField{Name: "client"})
		c.Fields.Add(&core.JSONField{Name: "project"})
		c.Fields.Add(&core.JSONField{Name: "fees"})
		c.Fields.Add(&core.JSONField{Name: "section_order"})
		c.Fields.Add(&core.JSONField{Name: "section_names"})
		c.Fields.Add(&core.NumberField{Name: "validity_days", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "prepared_by", Required: false})
		c.Fields.Add(&core.DateField{Name: "quote_date"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_quotes_quote_number", false, "quote_number", "")
	})

	ensureCollection(app, "quote_line_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "section", Required: true})
		c.Fields.Add(&core.TextField{Name: "subsection", Required: false})
		c.Fields.Add(&core.NumberField{Name: "subsection_order", OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "quantity"})
		c.Fields.Add(&core.NumberField{Name: "days"})
		c.Fields.Add(&core.NumberField{Name: "cost"})
		c.Fields.Add(&core.NumberField{Name: "charge"})
	})

	templates := ensureCollection(app, "document_templates", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"quote", "invoice", "proposal"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.BoolField{Name: "is_default"})
		c.Fields.Add(&core.JSONField{Name: "page_settings"})
		c.Fields.Add(&core.JSONField{Name: "styles"})
		c.Fields.Add(&core.JSONField{Name: "modules", MaxSize: 1 << 20})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "documents", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "template",
			Required:     false,
			CollectionId: templates.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "format",
			Required:  true,
			Values:    []string{"pdf", "html", "xlsx"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.FileField{
			Name:      "file",
			Required:  true,
			MaxSelect: 1,
			MaxSize:   20 << 20,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}

package collections

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"

	"quotedeck/services"
)

// MigrateTemplateModuleIDs gives every template module without an id a
// generated one, so validation errors and overrides can name the module.
// Safe to call on every startup.
func MigrateTemplateModuleIDs(app *pocketbase.PocketBase) error {
	templatesCol, err := app.FindCollectionByNameOrId(services.CollectionTemplates)
	if err != nil {
		return fmt.Errorf("migrate_module_ids: could not find templates collection: %w", err)
	}
	records, err := app.FindAllRecords(templatesCol)
	if err != nil {
		return fmt.Errorf("migrate_module_ids: could not query templates: %w", err)
	}

	migrated := 0
	for _, rec := range records {
		tpl, err := services.TemplateFromRecord(rec)
		if err != nil {
			return fmt.Errorf("migrate_module_ids: %w", err)
		}
		changed := false
		for i := range tpl.Modules {
			if tpl.Modules[i].ID == "" {
				tpl.Modules[i].ID = uuid.NewString()
				changed = true
			}
		}
		if !changed {
			continue
		}
		rec.Set("modules", tpl.Modules)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("migrate_module_ids: save template %s: %w", rec.Id, err)
		}
		migrated++
	}

	if migrated > 0 {
		log.Printf("migrate_module_ids: assigned module ids in %d templates", migrated)
	}
	return nil
}

package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedeck/collections"
	"quotedeck/commands"
	"quotedeck/config"
	"quotedeck/handlers"
	"quotedeck/services"
)

func main() {
	configPath := os.Getenv("QUOTEDECK_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg := config.MustLoad(configPath)

	log.SetReportTimestamp(true)
	if cfg.Env != config.EnvProd {
		log.SetLevel(log.DebugLevel)
	}

	app := pocketbase.New()
	composer := services.NewComposer(cfg.Settings, cfg.Currency)

	// Ensure collections exist for both the server and the CLI verbs.
	app.OnBootstrap().BindFunc(func(e *core.BootstrapEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		collections.Setup(app)
		if err := collections.MigrateTemplateModuleIDs(app); err != nil {
			log.Warn("module id migration failed", "err", err)
		}
		return nil
	})

	// Warn about templates that would fail to compose as soon as they are saved.
	services.Subscribe(app, services.CollectionTemplates, func(ev services.ChangeEvent) {
		if ev.Action == "delete" {
			return
		}
		tpl, err := services.TemplateFromRecord(ev.Record)
		if err != nil {
			log.Warn("template cannot be decoded", "template", ev.Record.Id, "err", err)
			return
		}
		if err := composer.Validate(nil, tpl); err != nil {
			log.Warn("template has problems", "template", tpl.Name, "err", err)
		}
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := collections.Seed(app); err != nil {
			log.Warn("seed data failed", "err", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Quotes ───────────────────────────────────────────────
		se.Router.GET("/api/quotes/{id}/totals", handlers.HandleQuoteTotals(app, cfg.Currency))
		se.Router.POST("/api/quotes/{id}/import", handlers.HandleLineItemImport(app))

		// ── Rendering ────────────────────────────────────────────
		se.Router.GET("/quotes/{id}/export/{format}", handlers.HandleQuoteExport(app, composer))

		// ── Stored documents ─────────────────────────────────────
		se.Router.GET("/api/quotes/{id}/documents", handlers.HandleDocumentList(app))
		se.Router.POST("/api/quotes/{id}/documents", handlers.HandleDocumentCreate(app, composer))
		se.Router.DELETE("/api/documents/{docId}", handlers.HandleDocumentDelete(app))

		// ── Templates ────────────────────────────────────────────
		se.Router.GET("/api/templates/{id}/layout", handlers.HandleTemplateLayout(app, composer))

		return se.Next()
	})

	app.RootCmd.AddCommand(commands.Commands(app, cfg)...)

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

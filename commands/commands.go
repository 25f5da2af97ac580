// Package commands holds the quotedeck CLI verbs. They are registered on
// PocketBase's root command, so they run against the same data directory as
// the server.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"quotedeck/config"
	"quotedeck/services"
)

// deps is what every verb needs.
type deps struct {
	app      core.App
	cfg      *config.Config
	store    services.QuoteStore
	composer *services.Composer
}

func newDeps(app core.App, cfg *config.Config) *deps {
	return &deps{
		app:      app,
		cfg:      cfg,
		store:    services.NewRecordStore(app),
		composer: services.NewComposer(cfg.Settings, cfg.Currency),
	}
}

// Commands returns the CLI verbs bound to app.
func Commands(app core.App, cfg *config.Config) []*cobra.Command {
	d := newDeps(app, cfg)
	return []*cobra.Command{
		newComposeCmd(d),
		newComposeBatchCmd(d),
		newTemplateImportCmd(d),
		newTemplateExportCmd(d),
		newTemplateCheckCmd(d),
	}
}

// commandContext attaches a logger honouring --verbose to the command's
// context.
func commandContext(cmd *cobra.Command) context.Context {
	level := log.InfoLevel
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = log.DebugLevel
	}
	return withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
}

func addVerboseFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package collections

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"quotedeck/services"
)

//go:embed presets/*.toml
var presetFS embed.FS

// Presets returns the built-in templates, sorted by file name.
func Presets() ([]*services.Template, error) {
	names, err := fs.Glob(presetFS, "presets/*.toml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	templates := make([]*services.Template, 0, len(names))
	for _, name := range names {
		f, err := presetFS.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open preset %s: %w", name, err)
		}
		tpl, err := services.DecodeTemplate(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

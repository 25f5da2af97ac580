package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedeck/services"
)

type layoutModule struct {
	ID      string              `json:"id"`
	Type    services.ModuleType `json:"type"`
	Width   services.Width      `json:"width"`
	Percent float64             `json:"percent"`
	Align   services.Alignment  `json:"align"`
}

type layoutRow struct {
	Width   float64        `json:"width"`
	Modules []layoutModule `json:"modules"`
}

type layoutResponse struct {
	Template string        `json:"template"`
	Kind     string        `json:"kind"`
	Rows     []layoutRow   `json:"rows"`
	Footer   *layoutModule `json:"footer,omitempty"`
	Errors   []string      `json:"errors"`
}

// HandleTemplateLayout returns how a template's modules pack into rows,
// along with every validation problem the composer would report.
func HandleTemplateLayout(app *pocketbase.PocketBase, composer *services.Composer) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		tpl, err := services.NewRecordStore(app).LoadTemplate(e.Request.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrTemplateNotFound) {
				return e.JSON(http.StatusNotFound, map[string]string{"error": "template not found"})
			}
			log.Error("layout: load template failed", "template", id, "err", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load template"})
		}

		resp := layoutResponse{Template: tpl.Name, Kind: string(tpl.Kind), Errors: []string{}}
		for _, row := range services.PackModules(tpl.Modules) {
			lr := layoutRow{Width: row.Width()}
			for _, p := range row.Placements {
				lr.Modules = append(lr.Modules, layoutModule{
					ID:      p.Module.ID,
					Type:    p.Module.Type,
					Width:   p.Module.Width,
					Percent: p.Module.Width.Percent(),
					Align:   p.Align,
				})
			}
			resp.Rows = append(resp.Rows, lr)
		}
		if footer, ok := services.FindFooter(tpl.Modules); ok {
			align, _ := footer.Alignment()
			resp.Footer = &layoutModule{ID: footer.ID, Type: footer.Type, Width: services.WidthFull, Percent: 100, Align: align}
		}

		if err := composer.Validate(nil, tpl); err != nil {
			resp.Errors = splitJoined(err)
		}
		return e.JSON(http.StatusOK, resp)
	}
}

// splitJoined flattens an errors.Join tree into its messages.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, inner := range joined.Unwrap() {
			out = append(out, splitJoined(inner)...)
		}
		return out
	}
	return []string{err.Error()}
}

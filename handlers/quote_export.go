package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedeck/services"
)

// exportRequest reads the quote id and format from the path and the
// optional template and kind from the query string.
func exportRequest(e *core.RequestEvent) services.ExportRequest {
	q := e.Request.URL.Query()
	return services.ExportRequest{
		QuoteID:    e.Request.PathValue("id"),
		TemplateID: q.Get("template"),
		Kind:       services.DocumentKind(q.Get("kind")),
		Format:     e.Request.PathValue("format"),
	}
}

// exportStatus maps an export error to an HTTP status and a message safe
// to show the client.
func exportStatus(err error) (int, string) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrQuoteNotFound):
		return http.StatusNotFound, "quote not found"
	case errors.Is(err, services.ErrTemplateNotFound):
		return http.StatusNotFound, "template not found"
	case errors.Is(err, services.ErrUnknownFormat):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "failed to generate document"
}

// HandleQuoteExport composes a quote with a template and streams the
// rendered file. HTML previews are served inline, other formats as
// attachments.
func HandleQuoteExport(app *pocketbase.PocketBase, composer *services.Composer) func(*core.RequestEvent) error {
	exporter := services.NewExporter(services.NewRecordStore(app), composer)
	return func(e *core.RequestEvent) error {
		req := exportRequest(e)
		if req.QuoteID == "" {
			return e.String(http.StatusBadRequest, "Missing quote ID")
		}

		res, err := exporter.Export(e.Request.Context(), req)
		if err != nil {
			status, msg := exportStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("export failed", "quote", req.QuoteID, "format", req.Format, "err", err)
			}
			return e.String(status, msg)
		}

		disposition := "attachment"
		if req.Format == "html" {
			disposition = "inline"
		}
		e.Response.Header().Set("Content-Type", res.ContentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, res.FileName))
		e.Response.WriteHeader(http.StatusOK)
		_, err = e.Response.Write(res.Data)
		return err
	}
}

package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedeck/services"
)

type documentForm struct {
	Format   string `json:"format" form:"format"`
	Template string `json:"template" form:"template"`
	Kind     string `json:"kind" form:"kind"`
}

// HandleDocumentCreate renders a quote and stores the result as a file on
// the documents collection.
func HandleDocumentCreate(app *pocketbase.PocketBase, composer *services.Composer) func(*core.RequestEvent) error {
	exporter := services.NewExporter(services.NewRecordStore(app), composer)
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		if quoteID == "" {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "missing quote id"})
		}

		var form documentForm
		if err := e.BindBody(&form); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
		if form.Format == "" {
			form.Format = "pdf"
		}

		res, err := exporter.Export(e.Request.Context(), services.ExportRequest{
			QuoteID:    quoteID,
			TemplateID: form.Template,
			Kind:       services.DocumentKind(form.Kind),
			Format:     form.Format,
		})
		if err != nil {
			status, msg := exportStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("document render failed", "quote", quoteID, "err", err)
			}
			return e.JSON(status, map[string]string{"error": msg})
		}

		doc, err := services.UploadDocument(app, quoteID, form.Template, form.Format, res.FileName, res.Data)
		if err != nil {
			log.Error("document upload failed", "quote", quoteID, "err", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store document"})
		}
		return e.JSON(http.StatusCreated, doc)
	}
}

// HandleDocumentList lists the stored documents of a quote.
func HandleDocumentList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		docs, err := services.ListDocuments(app, e.Request.PathValue("id"))
		if err != nil {
			log.Error("document list failed", "err", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list documents"})
		}
		return e.JSON(http.StatusOK, docs)
	}
}

// HandleDocumentDelete removes a stored document and its file.
func HandleDocumentDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("docId")
		if _, err := app.FindRecordById(services.CollectionDocuments, id); err != nil {
			return e.JSON(http.StatusNotFound, map[string]string{"error": "document not found"})
		}
		if err := services.DeleteDocument(app, id); err != nil {
			log.Error("document delete failed", "document", id, "err", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete document"})
		}
		return e.NoContent(http.StatusNoContent)
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedeck/services"
)

const maxImportSize = 10 << 20

// HandleLineItemImport validates an uploaded CSV/XLSX sheet of line items.
// With ?commit=1 and no row errors, the items are appended to the quote.
func HandleLineItemImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		store := services.NewRecordStore(app)
		ctx := e.Request.Context()

		q, err := store.LoadQuote(ctx, quoteID)
		if err != nil {
			if errors.Is(err, services.ErrQuoteNotFound) {
				return e.JSON(http.StatusNotFound, map[string]string{"error": "quote not found"})
			}
			log.Error("import: load quote failed", "quote", quoteID, "err", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load quote"})
		}

		if err := e.Request.ParseMultipartForm(maxImportSize); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "file too large or invalid form"})
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "no file uploaded"})
		}
		defer file.Close()

		result, err := services.ParseLineItems(file, header.Filename)
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		if e.Request.URL.Query().Get("commit") != "1" {
			return e.JSON(http.StatusOK, result)
		}
		if result.ErrorRows > 0 {
			return e.JSON(http.StatusUnprocessableEntity, result)
		}

		services.MergeSections(q, result.Sections)
		if err := store.SaveQuote(ctx, q); err != nil {
			log.Error("import: save quote failed", "quote", quoteID, "err", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save line items"})
		}
		log.Info("imported line items", "quote", quoteID, "rows", result.ValidRows)
		return e.JSON(http.StatusOK, result)
	}
}

package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

// StoredDocument is a rendered document attached to a quote.
type StoredDocument struct {
	ID       string `json:"id"`
	QuoteID  string `json:"quote"`
	Format   string `json:"format"`
	Template string `json:"template"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// UploadDocument stores rendered bytes as a file on a documents record. The
// file goes through PocketBase's configured filesystem, local or S3.
func UploadDocument(app core.App, quoteID, templateID, format, fileName string, data []byte) (*StoredDocument, error) {
	col, err := app.FindCollectionByNameOrId(CollectionDocuments)
	if err != nil {
		return nil, fmt.Errorf("find documents collection: %w", err)
	}
	file, err := filesystem.NewFileFromBytes(data, fileName)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", fileName, err)
	}

	rec := core.NewRecord(col)
	rec.Set("quote", quoteID)
	rec.Set("template", templateID)
	rec.Set("format", format)
	rec.Set("file", file)
	if err := app.Save(rec); err != nil {
		return nil, fmt.Errorf("save document %s: %w", fileName, err)
	}
	return documentFromRecord(rec), nil
}

// ListDocuments returns a quote's stored documents, newest first.
func ListDocuments(app core.App, quoteID string) ([]StoredDocument, error) {
	recs, err := app.FindRecordsByFilter(
		CollectionDocuments,
		"quote = {:quote}",
		"-created",
		0,
		0,
		dbx.Params{"quote": quoteID},
	)
	if err != nil {
		return nil, fmt.Errorf("list documents for quote %s: %w", quoteID, err)
	}
	docs := make([]StoredDocument, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, *documentFromRecord(rec))
	}
	return docs, nil
}

// DeleteDocument removes the record; PocketBase deletes the file with it.
func DeleteDocument(app core.App, id string) error {
	rec, err := app.FindRecordById(CollectionDocuments, id)
	if err != nil {
		return fmt.Errorf("find document %s: %w", id, err)
	}
	if err := app.Delete(rec); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// DocumentURL is the file download path relative to the server root.
func DocumentURL(rec *core.Record) string {
	name := rec.GetString("file")
	if name == "" {
		return ""
	}
	return "/api/files/" + rec.BaseFilesPath() + "/" + url.PathEscape(name)
}

func documentFromRecord(rec *core.Record) *StoredDocument {
	return &StoredDocument{
		ID:       rec.Id,
		QuoteID:  rec.GetString("quote"),
		Format:   rec.GetString("format"),
		Template: rec.GetString("template"),
		FileName: rec.GetString("file"),
		URL:      DocumentURL(rec),
	}
}

// DocumentFileName is the name a rendered document is stored and downloaded
// under, e.g. QT-2026-004.pdf.
func DocumentFileName(q *Quote, ext string) string {
	base := q.QuoteNumber
	if base == "" {
		base = "quote-" + q.ID
	}
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, base)
	return base + "." + ext
}

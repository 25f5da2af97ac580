package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quotedeck/testhelpers"
)

func newExportRequest(quoteID, format, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/quotes/%s/export/%s?%s", quoteID, format, query), nil)
	req.SetPathValue("id", quoteID)
	req.SetPathValue("format", format)
	return req
}

func TestHandleQuoteExport_Formats(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Export")
	testhelpers.CreateTestLineItem(t, app, quote.Id, "logistics", "Services", "Van", 1, 1, 100, 150)
	tpl := testhelpers.CreateTestTemplate(t, app, "Standard", "quote", testhelpers.StandardModules())

	tests := []struct {
		format      string
		contentType string
		disposition string
	}{
		{"pdf", "application/pdf", "attachment"},
		{"xlsx", "spreadsheetml", "attachment"},
		{"html", "text/html", "inline"},
	}
	handler := HandleQuoteExport(app, testComposer())
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, newExportRequest(quote.Id, tt.format, "template="+tpl.Id), rec)
			if err := handler(e); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			cd := rec.Header().Get("Content-Disposition")
			if !strings.HasPrefix(cd, tt.disposition) || !strings.Contains(cd, "."+tt.format) {
				t.Errorf("Content-Disposition = %q", cd)
			}
			if rec.Body.Len() == 0 {
				t.Error("expected non-empty body")
			}
		})
	}
}

func TestHandleQuoteExport_DefaultTemplate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Default")
	testhelpers.CreateTestLineItem(t, app, quote.Id, "creative", "Services", "Titles", 1, 1, 10, 20)
	testhelpers.CreateTestTemplate(t, app, "Standard", "quote", testhelpers.StandardModules())

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newExportRequest(quote.Id, "html", ""), rec)
	if err := HandleQuoteExport(app, testComposer())(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Titles", "$20.00", "Northlight Productions")
}

func TestHandleQuoteExport_Errors(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Errors")
	good := testhelpers.CreateTestTemplate(t, app, "Good", "quote", testhelpers.StandardModules())
	bad := testhelpers.CreateTestTemplate(t, app, "Bad", "quote", []map[string]any{
		{"id": "items", "type": "lineItems", "width": "huge"},
	})

	tests := []struct {
		name    string
		quoteID string
		format  string
		query   string
		want    int
	}{
		{"missing quote", "nonexistent", "pdf", "template=" + good.Id, http.StatusNotFound},
		{"missing template", quote.Id, "pdf", "template=nonexistent", http.StatusNotFound},
		{"unknown format", quote.Id, "docx", "template=" + good.Id, http.StatusBadRequest},
		{"invalid template", quote.Id, "pdf", "template=" + bad.Id, http.StatusUnprocessableEntity},
		{"no default for kind", quote.Id, "pdf", "kind=invoice", http.StatusNotFound},
	}
	handler := HandleQuoteExport(app, testComposer())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, newExportRequest(tt.quoteID, tt.format, tt.query), rec)
			if err := handler(e); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

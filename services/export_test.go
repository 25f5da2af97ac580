package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// memStore is an in-memory QuoteStore.
type memStore struct {
	mu        sync.Mutex
	quotes    map[string]*Quote
	templates map[string]*Template
}

func newMemStore() *memStore {
	return &memStore{quotes: map[string]*Quote{}, templates: map[string]*Template{}}
}

func (s *memStore) LoadQuote(_ context.Context, id string) (*Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", id, ErrQuoteNotFound)
	}
	return q, nil
}

func (s *memStore) SaveQuote(_ context.Context, q *Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.ID] = q
	return nil
}

func (s *memStore) LoadTemplate(_ context.Context, id string) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, ErrTemplateNotFound)
	}
	return tpl, nil
}

func (s *memStore) DefaultTemplate(_ context.Context, kind DocumentKind) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tpl := range s.templates {
		if tpl.Kind == kind && tpl.IsDefault {
			return tpl, nil
		}
	}
	return nil, ErrTemplateNotFound
}

func (s *memStore) SaveTemplate(_ context.Context, tpl *Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tpl.ID] = tpl
	return nil
}

func newTestExporter() *Exporter {
	store := newMemStore()
	q := testQuote()
	store.quotes[q.ID] = q

	inv := testTemplate(KindInvoice)
	inv.ID = "tpl-invoice"
	store.templates[inv.ID] = inv

	quote := testTemplate(KindQuote)
	quote.ID = "tpl-quote"
	quote.IsDefault = true
	store.templates[quote.ID] = quote

	return NewExporter(store, newTestComposer())
}

func TestExporter_Export(t *testing.T) {
	e := newTestExporter()
	res, err := e.Export(context.Background(), ExportRequest{QuoteID: "q1", TemplateID: "tpl-invoice", Format: "pdf"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.FileName != "QT-2026-001.pdf" {
		t.Errorf("FileName = %q", res.FileName)
	}
	if res.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q", res.ContentType)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF")) {
		t.Error("data is not a PDF")
	}
	if !approxEqual(res.Totals.TotalCharge, 4125) {
		t.Errorf("TotalCharge = %v, want 4125", res.Totals.TotalCharge)
	}
}

func TestExporter_DefaultTemplate(t *testing.T) {
	e := newTestExporter()
	res, err := e.Export(context.Background(), ExportRequest{QuoteID: "q1", Format: "html"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.FileName != "QT-2026-001.html" {
		t.Errorf("FileName = %q", res.FileName)
	}
}

func TestExporter_Errors(t *testing.T) {
	e := newTestExporter()
	tests := []struct {
		name string
		req  ExportRequest
		want error
	}{
		{"unknown format", ExportRequest{QuoteID: "q1", Format: "docx"}, ErrUnknownFormat},
		{"missing quote", ExportRequest{QuoteID: "nope", Format: "pdf"}, ErrQuoteNotFound},
		{"missing template", ExportRequest{QuoteID: "q1", TemplateID: "nope", Format: "pdf"}, ErrTemplateNotFound},
		{"no proposal default", ExportRequest{QuoteID: "q1", Kind: KindProposal, Format: "pdf"}, ErrTemplateNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Export(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Export() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComposeDocument(t *testing.T) {
	e := newTestExporter()
	data, err := ComposeDocument(context.Background(), e.Store, e.Composer, "tpl-invoice", "q1", "html")
	if err != nil {
		t.Fatalf("ComposeDocument() error = %v", err)
	}
	if !bytes.Contains(data, []byte("<!DOCTYPE html>")) {
		t.Error("expected an HTML page")
	}
	if _, err := ComposeDocument(context.Background(), e.Store, e.Composer, "tpl-invoice", "q1", "odt"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ComposeDocument(odt) error = %v", err)
	}
}

func TestExporter_ExportBatch(t *testing.T) {
	e := newTestExporter()
	reqs := []ExportRequest{
		{QuoteID: "q1", TemplateID: "tpl-invoice", Format: "pdf"},
		{QuoteID: "missing", Format: "pdf"},
		{QuoteID: "q1", Format: "xlsx"},
		{QuoteID: "q1", Format: "html"},
	}

	items, err := e.ExportBatch(context.Background(), reqs, 2)
	if !errors.Is(err, ErrQuoteNotFound) {
		t.Errorf("ExportBatch() error = %v, want ErrQuoteNotFound", err)
	}
	if len(items) != len(reqs) {
		t.Fatalf("got %d items, want %d", len(items), len(reqs))
	}
	for i, it := range items {
		if i == 1 {
			if it.Err == nil || it.Result != nil {
				t.Errorf("item 1 = %+v, want failure", it)
			}
			continue
		}
		if it.Err != nil {
			t.Errorf("item %d error = %v", i, it.Err)
			continue
		}
		if it.Result.Request != reqs[i] {
			t.Errorf("item %d out of order: %+v", i, it.Result.Request)
		}
	}
}

func TestExporter_ExportBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestExporter().ExportBatch(ctx, []ExportRequest{{QuoteID: "q1", Format: "pdf"}}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExportBatch() error = %v, want context.Canceled", err)
	}
}

func TestDocumentFileName(t *testing.T) {
	q := &Quote{ID: "abc", QuoteNumber: "QT/2026 01"}
	if got := DocumentFileName(q, "pdf"); got != "QT_2026_01.pdf" {
		t.Errorf("DocumentFileName() = %q", got)
	}
	q.QuoteNumber = ""
	if got := DocumentFileName(q, "xlsx"); got != "quote-abc.xlsx" {
		t.Errorf("DocumentFileName() = %q", got)
	}
}

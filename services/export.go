package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Renderer turns a composed document into bytes for one output format.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
	ContentType() string
	Extension() string
}

var renderers = map[string]Renderer{
	"pdf":  PDFRenderer{},
	"html": HTMLRenderer{},
	"xlsx": XLSXRenderer{},
}

// RendererFor returns the renderer registered for format.
func RendererFor(format string) (Renderer, error) {
	r, ok := renderers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return r, nil
}

// ExportRequest names a quote, a template and an output format. An empty
// TemplateID picks the default template for Kind, quote if Kind is empty.
type ExportRequest struct {
	QuoteID    string       `json:"quote"`
	TemplateID string       `json:"template,omitempty"`
	Kind       DocumentKind `json:"kind,omitempty"`
	Format     string       `json:"format"`
}

type ExportResult struct {
	Request     ExportRequest
	FileName    string
	ContentType string
	Data        []byte
	Totals      Totals
}

// Exporter loads quotes and templates from a store, composes them and
// renders the result.
type Exporter struct {
	Store    QuoteStore
	Composer *Composer
}

func NewExporter(store QuoteStore, composer *Composer) *Exporter {
	return &Exporter{Store: store, Composer: composer}
}

func (e *Exporter) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	renderer, err := RendererFor(req.Format)
	if err != nil {
		return nil, err
	}
	q, err := e.Store.LoadQuote(ctx, req.QuoteID)
	if err != nil {
		return nil, err
	}
	tpl, err := e.template(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := e.Composer.Compose(q, tpl)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := renderer.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", renderer.Extension(), err)
	}
	return &ExportResult{
		Request:     req,
		FileName:    DocumentFileName(q, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
		Totals:      doc.Totals,
	}, nil
}

func (e *Exporter) template(ctx context.Context, req ExportRequest) (*Template, error) {
	if req.TemplateID != "" {
		return e.Store.LoadTemplate(ctx, req.TemplateID)
	}
	kind := req.Kind
	if kind == "" {
		kind = KindQuote
	}
	return e.Store.DefaultTemplate(ctx, kind)
}

// ComposeDocument is the single-document entry point: it composes quoteID
// with templateID and returns the rendered bytes.
func ComposeDocument(ctx context.Context, store QuoteStore, composer *Composer, templateID, quoteID, format string) ([]byte, error) {
	res, err := NewExporter(store, composer).Export(ctx, ExportRequest{
		QuoteID:    quoteID,
		TemplateID: templateID,
		Format:     format,
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// BatchItem is the outcome of one request in ExportBatch.
type BatchItem struct {
	Result *ExportResult
	Err    error
}

// ExportBatch runs requests with at most workers in flight. Results keep
// the request order. A failed request does not stop the others; the
// returned error joins every failure.
func (e *Exporter) ExportBatch(ctx context.Context, reqs []ExportRequest, workers int) ([]BatchItem, error) {
	if workers < 1 {
		workers = 1
	}
	items := make([]BatchItem, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := e.Export(gctx, req)
			if err != nil {
				err = fmt.Errorf("quote %s (%s): %w", req.QuoteID, req.Format, err)
			}
			items[i] = BatchItem{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return items, err
	}

	var errs []error
	for _, it := range items {
		if it.Err != nil {
			errs = append(errs, it.Err)
		}
	}
	return items, errors.Join(errs...)
}

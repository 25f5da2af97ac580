package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"quotedeck/config"
)

// RenderContext is everything a module renderer may read. It is built once
// per Compose call and never shared between calls.
type RenderContext struct {
	Quote     *Quote
	Totals    Totals
	Currency  string
	Formatter CurrencyFormatter
	Settings  config.Settings
	QuoteDate time.Time
	DueDate   time.Time
	Styles    StyleTokens
	Kind      DocumentKind
}

// Money formats an amount in the document currency.
func (rc *RenderContext) Money(amount float64) string {
	return rc.Formatter.Format(amount, rc.Currency)
}

// RenderFunc renders one module. The alignment is the one resolved by the
// packer.
type RenderFunc func(m Module, align Alignment, rc *RenderContext) (*Block, error)

// Registry maps module types to renderers. Types without an entry render
// nothing.
type Registry map[ModuleType]RenderFunc

// Render runs the renderer for m.Type, or returns an empty block when there
// is none.
func (r Registry) Render(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	fn, ok := r[m.Type]
	if !ok {
		return &Block{ModuleID: m.ID, Type: m.Type}, nil
	}
	b, err := fn(m, align, rc)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = &Block{}
	}
	b.ModuleID = m.ID
	b.Type = m.Type
	return b, nil
}

// FormatRules are the structural checks a document kind imposes on a
// template before anything is rendered.
type FormatRules struct {
	RequireFooter        bool
	RequiredModules      []ModuleType
	RequireAllRegistered bool
}

var formatRules = map[DocumentKind]FormatRules{
	KindInvoice: {
		RequireFooter:        true,
		RequiredModules:      []ModuleType{ModuleTotals},
		RequireAllRegistered: true,
	},
	KindQuote: {
		RequiredModules: []ModuleType{ModuleLineItems},
	},
	KindProposal: {},
}

// RulesFor returns the checks for kind. Unknown kinds have none.
func RulesFor(kind DocumentKind) FormatRules {
	return formatRules[kind]
}

// Cell is one rendered module inside a composed row.
type Cell struct {
	Module Module
	Align  Alignment
	Block  *Block
}

type ComposedRow struct {
	Cells []Cell
}

// Document is the backend-neutral result of composition.
type Document struct {
	Kind     DocumentKind
	Title    string
	Page     PageSettings
	Styles   StyleTokens
	Rows     []ComposedRow
	Footer   *Block
	Currency string
	Quote    *Quote
	Totals   Totals
	// PageNumbers is the footer's page label pattern using {current} and
	// {total}. Empty means no page numbers.
	PageNumbers string
}

// Composer turns a quote and a template into a Document.
type Composer struct {
	Registry        Registry
	Formatter       CurrencyFormatter
	Settings        config.Settings
	DefaultCurrency string
	Now             func() time.Time
}

// NewComposer returns a composer with the built-in renderers.
func NewComposer(settings config.Settings, defaultCurrency string) *Composer {
	return &Composer{
		Registry:        DefaultRegistry(),
		Formatter:       DefaultFormatter{},
		Settings:        settings,
		DefaultCurrency: defaultCurrency,
		Now:             time.Now,
	}
}

// Validate runs every configuration check Compose would run, without
// rendering. Problems are joined into one error.
func (c *Composer) Validate(q *Quote, tpl *Template) error {
	if tpl == nil {
		return ErrTemplateNotFound
	}
	var errs []error
	if q != nil {
		if err := q.Fees.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := ValidateLayout(tpl.Modules); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, c.checkFormatRules(tpl)...)
	return errors.Join(errs...)
}

func (c *Composer) checkFormatRules(tpl *Template) []error {
	rules := RulesFor(tpl.Kind)
	var errs []error

	if rules.RequireFooter {
		if _, ok := FindFooter(tpl.Modules); !ok {
			errs = append(errs, &ValidationError{
				Err:     ErrMissingFooter,
				Field:   "modules",
				Details: fmt.Sprintf("%s documents need a footer", tpl.Kind),
			})
		}
	}
	for _, required := range rules.RequiredModules {
		if !slices.ContainsFunc(tpl.Modules, func(m Module) bool { return m.Type == required }) {
			errs = append(errs, &ValidationError{
				Err:     ErrMissingModule,
				Field:   "modules",
				Details: fmt.Sprintf("%s documents need a %s module", tpl.Kind, required),
			})
		}
	}
	if rules.RequireAllRegistered {
		for i, m := range tpl.Modules {
			if _, ok := c.Registry[m.Type]; !ok {
				errs = append(errs, moduleError(ErrUnregisteredModule, m, i, ""))
			}
		}
	}
	return errs
}

// Compose validates the quote fees and the template, prices the quote, packs
// the modules and renders every row and the footer. It returns either a
// complete document or an error naming the offending module or fee field.
func (c *Composer) Compose(q *Quote, tpl *Template) (*Document, error) {
	if q == nil {
		return nil, ErrQuoteNotFound
	}
	if tpl == nil {
		return nil, ErrTemplateNotFound
	}
	if err := c.Validate(q, tpl); err != nil {
		return nil, fmt.Errorf("template %q: %w", tpl.Name, err)
	}

	rc := c.renderContext(q, tpl)

	rows := PackModules(tpl.Modules)
	doc := &Document{
		Kind:     tpl.Kind,
		Title:    documentTitle(q, tpl.Kind),
		Page:     tpl.Page.withDefaults(),
		Styles:   rc.Styles,
		Rows:     make([]ComposedRow, 0, len(rows)),
		Currency: rc.Currency,
		Quote:    q,
		Totals:   rc.Totals,
	}

	for _, row := range rows {
		composed := ComposedRow{Cells: make([]Cell, 0, len(row.Placements))}
		for _, p := range row.Placements {
			block, err := c.Registry.Render(p.Module, p.Align, rc)
			if err != nil {
				return nil, fmt.Errorf("render module %s: %w", p.Module.Label(), err)
			}
			composed.Cells = append(composed.Cells, Cell{Module: p.Module, Align: p.Align, Block: block})
		}
		doc.Rows = append(doc.Rows, composed)
	}

	if footer, ok := FindFooter(tpl.Modules); ok {
		align, _ := footer.Alignment()
		if align == "" {
			align = AlignCenter
		}
		block, err := c.Registry.Render(footer, align, rc)
		if err != nil {
			return nil, fmt.Errorf("render module %s: %w", footer.Label(), err)
		}
		doc.Footer = block
		if footer.Config.Bool("showPageNumbers", false) {
			doc.PageNumbers = footer.Config.String("pageNumberFormat", "Page {current} of {total}")
		}
	}

	return doc, nil
}

func (c *Composer) renderContext(q *Quote, tpl *Template) *RenderContext {
	currency := q.Currency
	if currency == "" {
		currency = c.DefaultCurrency
	}

	quoteDate := q.QuoteDate
	if quoteDate.IsZero() {
		now := time.Now
		if c.Now != nil {
			now = c.Now
		}
		quoteDate = now()
	}
	validity := q.ValidityDays
	if validity <= 0 {
		validity = c.Settings.QuoteDefaults.ValidityDays
	}
	if validity <= 0 {
		validity = 30
	}

	formatter := c.Formatter
	if formatter == nil {
		formatter = DefaultFormatter{}
	}

	return &RenderContext{
		Quote:     q,
		Totals:    GrandTotalWithFees(q.Sections, q.Fees),
		Currency:  currency,
		Formatter: formatter,
		Settings:  c.Settings,
		QuoteDate: quoteDate,
		DueDate:   quoteDate.AddDate(0, 0, validity),
		Styles:    tpl.Styles.withDefaults(),
		Kind:      tpl.Kind,
	}
}

func documentTitle(q *Quote, kind DocumentKind) string {
	parts := []string{"Document"}
	if kind != "" {
		parts[0] = strings.ToUpper(string(kind[:1])) + string(kind[1:])
	}
	if q.QuoteNumber != "" {
		parts = append(parts, q.QuoteNumber)
	}
	if q.Title != "" {
		parts = append(parts, q.Title)
	}
	return strings.Join(parts, " ")
}

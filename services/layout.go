package services

import (
	"errors"
	"fmt"
	"strconv"
)

// Width is a module's width class.
type Width string

const (
	WidthFull      Width = "full"
	WidthHalf      Width = "half"
	WidthThird     Width = "third"
	WidthTwoThirds Width = "two-thirds"
	WidthQuarter   Width = "quarter"
)

var widthPercents = map[Width]float64{
	WidthFull:      100,
	WidthHalf:      50,
	WidthThird:     33.33,
	WidthTwoThirds: 66.66,
	WidthQuarter:   25,
}

// gridColumns is the column count of the PDF grid.
const gridColumns = 12

var widthSpans = map[Width]int{
	WidthFull:      12,
	WidthHalf:      6,
	WidthThird:     4,
	WidthTwoThirds: 8,
	WidthQuarter:   3,
}

// Percent returns the share of the row the width takes. Unknown or empty
// widths count as full.
func (w Width) Percent() float64 {
	if p, ok := widthPercents[w]; ok {
		return p
	}
	return 100
}

// Span returns the width in columns of a 12-column grid.
func (w Width) Span() int {
	if s, ok := widthSpans[w]; ok {
		return s
	}
	return gridColumns
}

// Valid reports whether w is empty or a known width class.
func (w Width) Valid() bool {
	if w == "" {
		return true
	}
	_, ok := widthPercents[w]
	return ok
}

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"

	// AlignSpaceBetween spreads footer entries across the page width. Only
	// footers accept it.
	AlignSpaceBetween Alignment = "space-between"
)

func (a Alignment) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// ModuleType names the renderer a module uses.
type ModuleType string

const (
	ModuleCompanyInfo     ModuleType = "companyInfo"
	ModuleClientInfo      ModuleType = "clientInfo"
	ModuleInvoiceHeader   ModuleType = "invoiceHeader"
	ModuleProjectInfo     ModuleType = "projectInfo"
	ModuleLineItems       ModuleType = "lineItems"
	ModuleTotals          ModuleType = "totals"
	ModulePaymentTerms    ModuleType = "paymentTerms"
	ModuleBankDetails     ModuleType = "bankDetails"
	ModuleTermsConditions ModuleType = "termsConditions"
	ModuleSignature       ModuleType = "signature"
	ModuleCustomText      ModuleType = "customText"
	ModuleDivider         ModuleType = "divider"
	ModuleSpacer          ModuleType = "spacer"
	ModuleImage           ModuleType = "image"
	ModuleFooter          ModuleType = "footer"
)

// Module is an immutable layout descriptor inside a template.
type Module struct {
	ID     string       `json:"id" toml:"id"`
	Type   ModuleType   `json:"type" toml:"type"`
	Width  Width        `json:"width,omitempty" toml:"width,omitempty"`
	Config ModuleConfig `json:"config,omitempty" toml:"config,omitempty"`
}

// Label identifies the module in error messages.
func (m Module) Label() string {
	if m.ID == "" {
		return string(m.Type)
	}
	return m.ID + "/" + string(m.Type)
}

// Alignment returns the explicit alignment override, if any.
func (m Module) Alignment() (Alignment, bool) {
	a := Alignment(m.Config.String("alignment", ""))
	return a, a != ""
}

// ModuleConfig holds type-specific module settings as decoded from JSON or
// TOML.
type ModuleConfig map[string]any

func (c ModuleConfig) String(key, def string) string {
	switch v := c[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case fmt.Stringer:
		return v.String()
	}
	return def
}

func (c ModuleConfig) Bool(key string, def bool) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func (c ModuleConfig) Float(key string, def float64) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (c ModuleConfig) Int(key string, def int) int {
	return int(c.Float(key, float64(def)))
}

// Has reports whether key is set at all.
func (c ModuleConfig) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Placement is a module inside a packed row with its resolved alignment.
type Placement struct {
	Module   Module
	Align    Alignment
	Explicit bool
}

// Row is one packed row of modules. Rows only exist for one compose pass.
type Row struct {
	Placements []Placement
}

// Width returns the summed width percentage of the row.
func (r Row) Width() float64 {
	var w float64
	for _, p := range r.Placements {
		w += p.Module.Width.Percent()
	}
	return w
}

// PackModules lays modules into rows first-fit, keeping their order. A module
// that would push the current row past 100% starts a new row. Footer modules
// are skipped. The input slice is not modified.
func PackModules(modules []Module) []Row {
	var (
		rows    []Row
		current []Module
		width   float64
	)
	for _, m := range modules {
		if m.Type == ModuleFooter {
			continue
		}
		w := m.Width.Percent()
		if width+w > 100 && len(current) > 0 {
			rows = append(rows, alignRow(current))
			current = []Module{m}
			width = w
			continue
		}
		current = append(current, m)
		width += w
	}
	if len(current) > 0 {
		rows = append(rows, alignRow(current))
	}
	return rows
}

// alignRow resolves alignment for a finished row: an explicit override wins,
// otherwise the last module of a multi-module row is right aligned and
// everything else is left aligned.
func alignRow(modules []Module) Row {
	row := Row{Placements: make([]Placement, len(modules))}
	for i, m := range modules {
		p := Placement{Module: m, Align: AlignLeft}
		if a, ok := m.Alignment(); ok {
			p.Align = a
			p.Explicit = true
		} else if len(modules) > 1 && i == len(modules)-1 {
			p.Align = AlignRight
		}
		row.Placements[i] = p
	}
	return row
}

// FindFooter returns the first footer module.
func FindFooter(modules []Module) (Module, bool) {
	for _, m := range modules {
		if m.Type == ModuleFooter {
			return m, true
		}
	}
	return Module{}, false
}

// ValidateLayout checks width tokens, alignment overrides and footer count.
// All problems are returned joined; each one is a *ValidationError naming the
// module.
func ValidateLayout(modules []Module) error {
	var (
		errs    []error
		footers int
	)
	for i, m := range modules {
		if !m.Width.Valid() {
			errs = append(errs, moduleError(ErrInvalidWidth, m, i, fmt.Sprintf("%q", m.Width)))
		}
		if a, ok := m.Alignment(); ok && !a.Valid() && !(m.Type == ModuleFooter && a == AlignSpaceBetween) {
			errs = append(errs, moduleError(ErrInvalidAlignment, m, i, fmt.Sprintf("%q", a)))
		}
		if m.Type == ModuleFooter {
			footers++
			if footers > 1 {
				errs = append(errs, moduleError(ErrDuplicateFooter, m, i, ""))
			}
		}
	}
	return errors.Join(errs...)
}

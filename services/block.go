package services

// ElementKind identifies a block primitive.
type ElementKind int

const (
	ElemText ElementKind = iota
	ElemPair
	ElemTable
	ElemRule
	ElemSpace
	ElemImage
)

// TextStyle is the typography of a text, pair or table element. Zero values
// mean "use the document default".
type TextStyle struct {
	Size       float64
	Bold       bool
	Italic     bool
	Uppercase  bool
	Color      string
	Background string
	// Align overrides the cell alignment for this element only.
	Align Alignment
}

// Element is one primitive inside a rendered block. Which fields are used
// depends on Kind.
type Element struct {
	Kind  ElementKind
	Style TextStyle

	// ElemText
	Text string

	// ElemPair
	Label      string
	Value      string
	ValueStyle TextStyle

	// ElemTable
	Table *Table

	// ElemRule and ElemSpace, in millimetres. Rules use Height as
	// thickness in points and Color/Dash for the stroke.
	Height float64
	Color  string
	Dash   string

	// ElemImage
	Src      string
	WidthPct float64
}

// Block is the rendered output of one module: a vertical stack of elements.
type Block struct {
	ModuleID   string
	Type       ModuleType
	Background string
	Elements   []Element
}

func (b *Block) Empty() bool {
	return b == nil || len(b.Elements) == 0
}

func (b *Block) text(s string, style TextStyle) {
	if s == "" {
		return
	}
	b.Elements = append(b.Elements, Element{Kind: ElemText, Text: s, Style: style})
}

func (b *Block) pair(label, value string, style, valueStyle TextStyle) {
	b.Elements = append(b.Elements, Element{Kind: ElemPair, Label: label, Value: value, Style: style, ValueStyle: valueStyle})
}

func (b *Block) table(t *Table) {
	b.Elements = append(b.Elements, Element{Kind: ElemTable, Table: t})
}

func (b *Block) rule(thickness float64, color, dash string) {
	b.Elements = append(b.Elements, Element{Kind: ElemRule, Height: thickness, Color: color, Dash: dash})
}

func (b *Block) space(mm float64) {
	b.Elements = append(b.Elements, Element{Kind: ElemSpace, Height: mm})
}

func (b *Block) image(src string, widthPct float64) {
	b.Elements = append(b.Elements, Element{Kind: ElemImage, Src: src, WidthPct: widthPct})
}

// Column is one column of a table. Weight is relative to the other columns.
type Column struct {
	Title  string
	Weight float64
	Align  Alignment
}

// RowKind marks how a table row should be drawn.
type RowKind int

const (
	RowItem RowKind = iota
	RowGroupHeader
	RowSubheader
	RowSubtotal
)

type TableRow struct {
	Kind  RowKind
	Cells []string
	Style TextStyle
}

type Table struct {
	Columns     []Column
	HeaderStyle TextStyle
	Rows        []TableRow
}

// Weights returns the column weights, in order.
func (t *Table) Weights() []float64 {
	w := make([]float64, len(t.Columns))
	for i, c := range t.Columns {
		w[i] = c.Weight
	}
	return w
}

package services

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/linestyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PDFRenderer lays a composed document out with maroto on a 12-column grid.
type PDFRenderer struct{}

func (PDFRenderer) ContentType() string { return "application/pdf" }
func (PDFRenderer) Extension() string   { return "pdf" }

// pageDimensions are portrait width and height in millimetres.
var pageDimensions = map[string]struct {
	size   pagesize.Type
	width  float64
	height float64
}{
	"A3":     {pagesize.A3, 297, 420},
	"A4":     {pagesize.A4, 210, 297},
	"A5":     {pagesize.A5, 148, 210},
	"LETTER": {pagesize.Letter, 215.9, 279.4},
	"LEGAL":  {pagesize.Legal, 215.9, 355.6},
}

// Render generates the PDF bytes for doc.
func (PDFRenderer) Render(doc *Document) ([]byte, error) {
	page := doc.Page.withDefaults()
	dims, ok := pageDimensions[strings.ToUpper(page.Size)]
	if !ok {
		dims = pageDimensions["A4"]
	}
	pageWidth := dims.width
	orient := orientation.Vertical
	if page.Orientation == "landscape" {
		orient = orientation.Horizontal
		pageWidth = dims.height
	}

	builder := config.NewBuilder().
		WithOrientation(orient).
		WithPageSize(dims.size).
		WithLeftMargin(page.MarginLeft).
		WithTopMargin(page.MarginTop).
		WithRightMargin(page.MarginRight).
		WithBottomMargin(page.MarginBottom)
	if doc.PageNumbers != "" {
		builder = builder.WithPageNumber(props.PageNumber{
			Pattern: doc.PageNumbers,
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		})
	}

	m := maroto.New(builder.Build())
	l := pdfLayout{
		m:         m,
		styles:    doc.Styles.withDefaults(),
		gridWidth: pageWidth - page.MarginLeft - page.MarginRight,
		moduleGap: 3,
	}

	if !doc.Footer.Empty() {
		if err := m.RegisterFooter(l.footerRows(doc.Footer)...); err != nil {
			return nil, fmt.Errorf("register footer: %w", err)
		}
	}

	for _, r := range doc.Rows {
		l.addRow(r)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return out.GetBytes(), nil
}

type pdfLayout struct {
	m         core.Maroto
	styles    StyleTokens
	gridWidth float64
	moduleGap float64
}

func (l pdfLayout) spanWidth(span int) float64 {
	return l.gridWidth * float64(span) / gridColumns
}

// addRow emits one composed row: a stacked row holding every cell's
// non-table elements, then one maroto row per table row at the cell's
// column offset.
func (l pdfLayout) addRow(r ComposedRow) {
	spans := make([]int, len(r.Cells))
	for i, c := range r.Cells {
		spans[i] = c.Module.Width.Span()
	}
	spans = fitSpans(spans)

	cols := make([]core.Col, 0, len(r.Cells)+1)
	var height, used float64
	var usedSpan int
	for i, c := range r.Cells {
		column, h := l.stackCol(c, spans[i])
		cols = append(cols, column)
		height = math.Max(height, h)
		usedSpan += spans[i]
	}
	if usedSpan < gridColumns {
		cols = append(cols, col.New(gridColumns-usedSpan))
	}
	if height > 0 {
		l.m.AddRows(row.New(height).Add(cols...))
		used += height
	}

	offset := 0
	for i, c := range r.Cells {
		if c.Block == nil {
			offset += spans[i]
			continue
		}
		for _, e := range c.Block.Elements {
			if e.Kind != ElemTable || e.Table == nil {
				continue
			}
			l.addTable(e.Table, offset, spans[i], c.Align)
			used++
		}
		offset += spans[i]
	}

	if used > 0 {
		l.m.AddRows(row.New(l.moduleGap))
	}
}

// stackCol stacks a cell's non-table elements top to bottom inside one col
// and returns the height they need.
func (l pdfLayout) stackCol(c Cell, span int) (core.Col, float64) {
	column := col.New(span)
	if c.Block == nil {
		return column, 0
	}
	width := l.spanWidth(span)
	var top float64

	for _, e := range c.Block.Elements {
		switch e.Kind {
		case ElemText:
			p := l.textProps(e.Style, c.Align, 9)
			p.Top = top
			column.Add(text.New(styledText(e.Text, e.Style), p))
			top += textHeight(e.Text, p.Size, width)
		case ElemPair:
			lp := l.textProps(e.Style, AlignLeft, 9)
			vp := l.textProps(e.ValueStyle, AlignRight, lp.Size)
			lp.Top, vp.Top = top, top
			column.Add(text.New(styledText(e.Label, e.Style), lp))
			column.Add(text.New(e.Value, vp))
			top += math.Max(textHeight(e.Label, lp.Size, width/2), textHeight(e.Value, vp.Size, width/2))
		case ElemRule:
			column.Add(line.New(props.Line{
				Color:       hexColor(e.Color),
				Style:       lineStyle(e.Dash),
				Thickness:   math.Max(e.Height, 0.2),
				Orientation: orientation.Horizontal,
				SizePercent: 100,
			}))
			top += 1
		case ElemSpace:
			top += e.Height
		case ElemImage:
			if _, err := os.Stat(e.Src); err != nil {
				continue
			}
			column.Add(image.NewFromFile(e.Src, props.Rect{
				Center:  e.Style.Align == AlignCenter || e.Style.Align == "",
				Percent: math.Min(math.Max(e.WidthPct, 10), 100),
				Top:     top,
			}))
			top += 20
		}
	}

	if top > 0 {
		top += 1
	}
	if bg := hexColor(c.Block.Background); bg != nil && top > 0 {
		column.WithStyle(&props.Cell{BackgroundColor: bg})
	}
	return column, top
}

// addTable emits a table as maroto rows inside the span starting at offset.
func (l pdfLayout) addTable(t *Table, offset, span int, cellAlign Alignment) {
	spans := distributeSpans(t.Weights(), span)

	emit := func(cells []string, style TextStyle, header bool) {
		var cols []core.Col
		if offset > 0 {
			cols = append(cols, col.New(offset))
		}
		size := style.Size
		if size == 0 {
			size = l.styles.FontSize
		}
		var height float64 = 6
		bg := hexColor(style.Background)

		if spans == nil {
			joined := strings.Join(nonEmpty(cells), " | ")
			p := l.textProps(style, cellAlign, size)
			p.Top = 1
			c := col.New(span).Add(text.New(styledText(joined, style), p))
			if bg != nil {
				c.WithStyle(&props.Cell{BackgroundColor: bg})
			}
			cols = append(cols, c)
			height = math.Max(height, textHeight(joined, size, l.spanWidth(span))+2)
		} else {
			for i, s := range spans {
				value := ""
				if i < len(cells) {
					value = cells[i]
				}
				colAlign := t.Columns[i].Align
				p := l.textProps(style, colAlign, size)
				if !header && style.Align == "" {
					p.Align = pdfAlign(colAlign)
				}
				p.Top = 1
				p.Left, p.Right = 1, 1
				c := col.New(s).Add(text.New(styledText(value, style), p))
				if bg != nil {
					c.WithStyle(&props.Cell{BackgroundColor: bg})
				}
				cols = append(cols, c)
				height = math.Max(height, textHeight(value, size, l.spanWidth(s))+2)
			}
		}
		if rest := gridColumns - offset - span; rest > 0 {
			cols = append(cols, col.New(rest))
		}
		l.m.AddRows(row.New(height).Add(cols...))
	}

	if titles := columnTitles(t.Columns); len(nonEmpty(titles)) > 0 {
		emit(titles, t.HeaderStyle, true)
	}
	for _, r := range t.Rows {
		emit(r.Cells, r.Style, false)
	}
}

func (l pdfLayout) footerRows(b *Block) []core.Row {
	var rows []core.Row
	for _, e := range b.Elements {
		if e.Kind != ElemText {
			continue
		}
		p := l.textProps(e.Style, AlignCenter, 8)
		rows = append(rows, row.New(textHeight(e.Text, p.Size, l.gridWidth)+2).Add(
			col.New(gridColumns).Add(text.New(e.Text, p)),
		))
	}
	return rows
}

func (l pdfLayout) textProps(s TextStyle, cellAlign Alignment, defaultSize float64) props.Text {
	size := s.Size
	if size == 0 {
		size = defaultSize
	}
	a := s.Align
	if a == "" {
		a = cellAlign
	}
	p := props.Text{
		Size:  size,
		Style: fontStyle(s),
		Align: pdfAlign(a),
	}
	color := s.Color
	if color == "" {
		color = l.styles.TextColor
	}
	p.Color = hexColor(color)
	return p
}

func fontStyle(s TextStyle) fontstyle.Type {
	switch {
	case s.Bold && s.Italic:
		return fontstyle.BoldItalic
	case s.Bold:
		return fontstyle.Bold
	case s.Italic:
		return fontstyle.Italic
	}
	return fontstyle.Normal
}

func pdfAlign(a Alignment) align.Type {
	switch a {
	case AlignCenter:
		return align.Center
	case AlignRight:
		return align.Right
	}
	return align.Left
}

func lineStyle(dash string) linestyle.Type {
	if dash == "dashed" || dash == "dotted" {
		return linestyle.Dashed
	}
	return linestyle.Solid
}

func styledText(s string, style TextStyle) string {
	if style.Uppercase {
		return strings.ToUpper(s)
	}
	return s
}

// textHeight estimates the height in millimetres of s set at size points in
// a column widthMM wide.
func textHeight(s string, size, widthMM float64) float64 {
	if s == "" {
		return 0
	}
	lineHeight := size*ptToMM*1.25 + 0.5
	charWidth := size * ptToMM * 0.5
	perLine := int(math.Max(1, math.Floor(widthMM/charWidth)))

	var lines int
	for _, part := range strings.Split(s, "\n") {
		n := utf8.RuneCountInString(part)
		lines += max(1, (n+perLine-1)/perLine)
	}
	return float64(lines) * lineHeight
}

// fitSpans shrinks spans from the right until they fit the grid. Packed rows
// never exceed 100%, but third widths round up to 4 columns.
func fitSpans(spans []int) []int {
	out := append([]int(nil), spans...)
	total := 0
	for _, s := range out {
		total += s
	}
	for i := len(out) - 1; total > gridColumns && i >= 0; i-- {
		for out[i] > 1 && total > gridColumns {
			out[i]--
			total--
		}
	}
	return out
}

// distributeSpans splits total grid columns between weighted table columns
// by largest remainder, giving every column at least one. It returns nil
// when there are more columns than grid columns.
func distributeSpans(weights []float64, total int) []int {
	n := len(weights)
	if n == 0 || n > total {
		return nil
	}

	var sum float64
	for _, w := range weights {
		sum += math.Max(w, 0)
	}
	spans := make([]int, n)
	if sum == 0 {
		for i := range spans {
			spans[i] = total / n
		}
		for i := 0; i < total%n; i++ {
			spans[i]++
		}
		return spans
	}

	remaining := total - n
	type rem struct {
		i    int
		frac float64
	}
	rems := make([]rem, n)
	assigned := 0
	for i, w := range weights {
		exact := math.Max(w, 0) / sum * float64(remaining)
		spans[i] = 1 + int(math.Floor(exact))
		assigned += int(math.Floor(exact))
		rems[i] = rem{i, exact - math.Floor(exact)}
	}
	for left := remaining - assigned; left > 0; left-- {
		best := 0
		for j := 1; j < n; j++ {
			if rems[j].frac > rems[best].frac {
				best = j
			}
		}
		spans[rems[best].i]++
		rems[best].frac = -1
	}
	return spans
}

func columnTitles(cols []Column) []string {
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.Title
	}
	return titles
}

func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// hexColor parses "#RRGGBB" or "#RGB". Anything else gives nil.
func hexColor(s string) *props.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil
	}
	return &props.Color{Red: int(v >> 16 & 0xFF), Green: int(v >> 8 & 0xFF), Blue: int(v & 0xFF)}
}

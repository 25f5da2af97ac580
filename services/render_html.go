package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// HTMLRenderer produces a self-contained preview page from the DocumentPage
// component in document.templ. Rows are flex containers with percentage widths
// and the footer is fixed to the bottom of the viewport.
type HTMLRenderer struct{}

func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }
func (HTMLRenderer) Extension() string   { return "html" }

func (h HTMLRenderer) Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := DocumentPage(doc).Render(context.Background(), &buf); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.Bytes(), nil
}

func pageCSS(s StyleTokens, p PageSettings) string {
	return fmt.Sprintf(`body{margin:0;font-family:Helvetica,Arial,sans-serif;color:%s;font-size:%spt}`+
		`.page{padding:%smm %smm %smm %smm}`+
		`.row{display:flex;gap:4mm;margin-bottom:3mm;align-items:flex-start}`+
		`.cell{box-sizing:border-box}`+
		`.pair{display:flex;justify-content:space-between;gap:3mm}`+
		`table{width:100%%;border-collapse:collapse}th,td{padding:1.5mm 2mm}`+
		`th{font-weight:normal;text-transform:uppercase;color:%s}`+
		`footer{position:fixed;bottom:0;left:0;right:0;padding:2mm %smm;border-top:1px solid %s;display:flex;justify-content:space-between}`,
		css(s.TextColor), num(s.FontSize),
		num(p.MarginTop), num(p.MarginRight), num(p.MarginBottom+10), num(p.MarginLeft),
		mutedColor, num(p.MarginLeft), borderColor)
}

func cellCSS(c Cell) string {
	style := fmt.Sprintf("flex:0 0 calc(%s%% - 4mm);text-align:%s", num(c.Module.Width.Percent()), c.Align)
	if c.Block != nil && c.Block.Background != "" {
		style += ";background:" + css(c.Block.Background) + ";padding:3mm"
	}
	return style
}

func ruleCSS(e Element) string {
	return fmt.Sprintf("border:0;border-top:%spt %s %s", num(e.Height), css(e.Dash), css(e.Color))
}

func columnAlign(t *Table, i int) Alignment {
	if i < len(t.Columns) {
		return t.Columns[i].Align
	}
	return AlignLeft
}

// pageLabel fills the page number pattern. The preview is always one page.
func pageLabel(pattern string) string {
	return strings.NewReplacer("{current}", "1", "{total}", "1").Replace(pattern)
}

func textCSS(s TextStyle) string {
	var parts []string
	if s.Size > 0 {
		parts = append(parts, "font-size:"+num(s.Size)+"pt")
	}
	if s.Bold {
		parts = append(parts, "font-weight:bold")
	}
	if s.Italic {
		parts = append(parts, "font-style:italic")
	}
	if s.Uppercase {
		parts = append(parts, "text-transform:uppercase")
	}
	if s.Color != "" {
		parts = append(parts, "color:"+css(s.Color))
	}
	if s.Background != "" {
		parts = append(parts, "background:"+css(s.Background))
	}
	if s.Align != "" {
		parts = append(parts, "text-align:"+string(s.Align))
	}
	return strings.Join(parts, ";")
}

// css keeps a template-supplied token from breaking out of a style
// attribute.
func css(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', ';', '<', '>', '{', '}', '\\':
			return -1
		}
		return r
	}, v)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package services

import (
	"bytes"
	"strings"
	"testing"
)

const sampleTemplate = `
name = "Sample"
kind = "invoice"

[page]
size = "A5"

[[modules]]
id = "items"
type = "lineItems"
width = "full"

[[modules]]
id = "totals"
type = "totals"
width = "half"
[modules.config]
taxRate = 10
showTax = true
alignment = "right"

[[modules]]
id = "footer"
type = "footer"
`

func TestDecodeTemplate(t *testing.T) {
	tpl, err := DecodeTemplate(strings.NewReader(sampleTemplate))
	if err != nil {
		t.Fatalf("DecodeTemplate() error = %v", err)
	}
	if tpl.Kind != KindInvoice || tpl.Page.Size != "A5" {
		t.Errorf("template = %+v", tpl)
	}
	if len(tpl.Modules) != 3 {
		t.Fatalf("got %d modules, want 3", len(tpl.Modules))
	}
	totals := tpl.Modules[1]
	if got := totals.Config.Float("taxRate", 0); got != 10 {
		t.Errorf("taxRate = %v, want 10", got)
	}
	if !totals.Config.Bool("showTax", false) {
		t.Error("showTax should be true")
	}
	if a, ok := totals.Alignment(); !ok || a != AlignRight {
		t.Errorf("alignment = %q, %v", a, ok)
	}
	if err := ValidateLayout(tpl.Modules); err != nil {
		t.Errorf("ValidateLayout() error = %v", err)
	}
}

func TestDecodeTemplate_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"syntax", "name = ", "decode template"},
		{"unknown key", "name = \"x\"\nkind = \"quote\"\ncolour = \"red\"\n", "unknown keys"},
		{"bad kind", "name = \"x\"\nkind = \"receipt\"\n", "unknown kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTemplate(strings.NewReader(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("DecodeTemplate() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestEncodeTemplate_RoundTrip(t *testing.T) {
	tpl, err := DecodeTemplate(strings.NewReader(sampleTemplate))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := EncodeTemplate(&buf, tpl); err != nil {
		t.Fatalf("EncodeTemplate() error = %v", err)
	}
	again, err := DecodeTemplate(&buf)
	if err != nil {
		t.Fatalf("decode encoded template: %v\n%s", err, buf.String())
	}
	if len(again.Modules) != 3 || again.Modules[1].Config.Float("taxRate", 0) != 10 {
		t.Errorf("round trip lost modules: %+v", again.Modules)
	}
}

package services

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func mod(id string, w Width) Module {
	return Module{ID: id, Type: ModuleCustomText, Width: w}
}

func rowWidths(rows []Row) [][]Width {
	out := make([][]Width, len(rows))
	for i, r := range rows {
		for _, p := range r.Placements {
			out[i] = append(out[i], p.Module.Width)
		}
	}
	return out
}

func TestWidthPercentAndSpan(t *testing.T) {
	tests := []struct {
		width   Width
		percent float64
		span    int
	}{
		{WidthFull, 100, 12},
		{WidthHalf, 50, 6},
		{WidthThird, 33.33, 4},
		{WidthTwoThirds, 66.66, 8},
		{WidthQuarter, 25, 3},
		{"", 100, 12},
		{"huge", 100, 12},
	}
	for _, tt := range tests {
		if got := tt.width.Percent(); got != tt.percent {
			t.Errorf("Width(%q).Percent() = %v, want %v", tt.width, got, tt.percent)
		}
		if got := tt.width.Span(); got != tt.span {
			t.Errorf("Width(%q).Span() = %v, want %v", tt.width, got, tt.span)
		}
	}
}

func TestPackModules(t *testing.T) {
	tests := []struct {
		name    string
		modules []Module
		want    [][]Width
	}{
		{
			name: "halves full thirds",
			modules: []Module{
				mod("a", WidthHalf), mod("b", WidthHalf), mod("c", WidthFull),
				mod("d", WidthThird), mod("e", WidthThird), mod("f", WidthThird),
			},
			want: [][]Width{{WidthHalf, WidthHalf}, {WidthFull}, {WidthThird, WidthThird, WidthThird}},
		},
		{
			name: "footer excluded",
			modules: []Module{
				mod("a", WidthFull),
				{ID: "foot", Type: ModuleFooter, Width: WidthFull},
				mod("b", WidthHalf), mod("c", WidthHalf),
			},
			want: [][]Width{{WidthFull}, {WidthHalf, WidthHalf}},
		},
		{
			name:    "two-thirds and third share a row",
			modules: []Module{mod("a", WidthTwoThirds), mod("b", WidthThird), mod("c", WidthQuarter)},
			want:    [][]Width{{WidthTwoThirds, WidthThird}, {WidthQuarter}},
		},
		{
			name:    "no reordering to fill gaps",
			modules: []Module{mod("a", WidthHalf), mod("b", WidthTwoThirds), mod("c", WidthQuarter)},
			want:    [][]Width{{WidthHalf}, {WidthTwoThirds, WidthQuarter}},
		},
		{
			name:    "unknown width counts as full",
			modules: []Module{mod("a", WidthQuarter), mod("b", "wide"), mod("c", WidthQuarter)},
			want:    [][]Width{{WidthQuarter}, {"wide"}, {WidthQuarter}},
		},
		{
			name:    "empty",
			modules: nil,
			want:    [][]Width{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowWidths(PackModules(tt.modules))
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("PackModules = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPackModules_Properties(t *testing.T) {
	widths := []Width{WidthFull, WidthHalf, WidthThird, WidthTwoThirds, WidthQuarter}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		n := rng.Intn(12)
		modules := make([]Module, n)
		for i := range modules {
			modules[i] = mod(fmt.Sprintf("m%d", i), widths[rng.Intn(len(widths))])
			if rng.Intn(8) == 0 {
				modules[i].Type = ModuleFooter
			}
		}

		rows := PackModules(modules)

		var packed []Module
		for i, row := range rows {
			if len(row.Placements) == 0 {
				t.Fatalf("run %d: row %d is empty", run, i)
			}
			if row.Width() > 100 {
				t.Errorf("run %d: row %d width %v exceeds 100", run, i, row.Width())
			}
			if i+1 < len(rows) {
				next := rows[i+1].Placements[0].Module.Width.Percent()
				if row.Width()+next <= 100 {
					t.Errorf("run %d: row %d could have taken the next module", run, i)
				}
			}
			for _, p := range row.Placements {
				if p.Module.Type == ModuleFooter {
					t.Errorf("run %d: footer packed into row %d", run, i)
				}
				packed = append(packed, p.Module)
			}
		}

		var want []Module
		for _, m := range modules {
			if m.Type != ModuleFooter {
				want = append(want, m)
			}
		}
		if len(packed) != len(want) {
			t.Fatalf("run %d: packed %d modules, want %d", run, len(packed), len(want))
		}
		for i := range want {
			if packed[i].ID != want[i].ID {
				t.Errorf("run %d: module order changed at %d: %s vs %s", run, i, packed[i].ID, want[i].ID)
			}
		}
	}
}

func TestPackModules_Alignment(t *testing.T) {
	tests := []struct {
		name    string
		modules []Module
		want    []Alignment
	}{
		{"single module", []Module{mod("a", WidthHalf)}, []Alignment{AlignLeft}},
		{"pair", []Module{mod("a", WidthHalf), mod("b", WidthHalf)}, []Alignment{AlignLeft, AlignRight}},
		{
			"three in a row",
			[]Module{mod("a", WidthThird), mod("b", WidthThird), mod("c", WidthThird)},
			[]Alignment{AlignLeft, AlignLeft, AlignRight},
		},
		{
			"explicit override",
			[]Module{
				{ID: "a", Type: ModuleTotals, Width: WidthHalf, Config: ModuleConfig{"alignment": "center"}},
				{ID: "b", Type: ModuleTotals, Width: WidthHalf, Config: ModuleConfig{"alignment": "left"}},
			},
			[]Alignment{AlignCenter, AlignLeft},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := PackModules(tt.modules)
			if len(rows) != 1 {
				t.Fatalf("got %d rows, want 1", len(rows))
			}
			for i, p := range rows[0].Placements {
				if p.Align != tt.want[i] {
					t.Errorf("module %s align = %s, want %s", p.Module.ID, p.Align, tt.want[i])
				}
			}
		})
	}
}

func TestPackModules_DoesNotMutateInput(t *testing.T) {
	modules := []Module{mod("a", WidthHalf), {ID: "f", Type: ModuleFooter}, mod("b", WidthHalf)}
	before := fmt.Sprint(modules)
	PackModules(modules)
	if fmt.Sprint(modules) != before {
		t.Error("PackModules modified its input")
	}
}

func TestFindFooter(t *testing.T) {
	modules := []Module{
		mod("a", WidthFull),
		{ID: "first", Type: ModuleFooter},
		{ID: "second", Type: ModuleFooter},
	}
	footer, ok := FindFooter(modules)
	if !ok || footer.ID != "first" {
		t.Errorf("FindFooter = %v, %v, want first footer", footer.ID, ok)
	}
	if _, ok := FindFooter(modules[:1]); ok {
		t.Error("FindFooter found a footer where there is none")
	}
}

func TestValidateLayout(t *testing.T) {
	tests := []struct {
		name     string
		modules  []Module
		wantErrs []error
	}{
		{
			name:    "valid",
			modules: []Module{mod("a", WidthHalf), mod("b", ""), {ID: "f", Type: ModuleFooter}},
		},
		{
			name:     "bad width",
			modules:  []Module{mod("a", "wide")},
			wantErrs: []error{ErrInvalidWidth},
		},
		{
			name:     "bad alignment",
			modules:  []Module{{ID: "a", Type: ModuleTotals, Config: ModuleConfig{"alignment": "justify"}}},
			wantErrs: []error{ErrInvalidAlignment},
		},
		{
			name: "duplicate footer and bad width",
			modules: []Module{
				{ID: "f1", Type: ModuleFooter},
				mod("a", "huge"),
				{ID: "f2", Type: ModuleFooter},
			},
			wantErrs: []error{ErrInvalidWidth, ErrDuplicateFooter},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayout(tt.modules)
			if len(tt.wantErrs) == 0 {
				if err != nil {
					t.Fatalf("ValidateLayout() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateLayout() = nil, want error")
			}
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("error %v should contain %v", err, want)
				}
			}
		})
	}
}

func TestValidateLayout_NamesModule(t *testing.T) {
	err := ValidateLayout([]Module{mod("a", WidthHalf), {ID: "f1", Type: ModuleFooter}, {ID: "f2", Type: ModuleFooter}})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not a ValidationError", err)
	}
	if ve.ModuleID != "f2/footer" || ve.Index != 2 {
		t.Errorf("ValidationError names %q at %d, want f2/footer at 2", ve.ModuleID, ve.Index)
	}
}

func TestModuleConfigGetters(t *testing.T) {
	cfg := ModuleConfig{
		"label":    "Prepared For",
		"show":     false,
		"fontSize": float64(11),
		"maxLines": int64(4),
		"strBool":  "true",
	}
	if got := cfg.String("label", "x"); got != "Prepared For" {
		t.Errorf("String = %q", got)
	}
	if got := cfg.String("missing", "x"); got != "x" {
		t.Errorf("String default = %q", got)
	}
	if cfg.Bool("show", true) {
		t.Error("Bool should read false")
	}
	if !cfg.Bool("missing", true) {
		t.Error("Bool default should be true")
	}
	if !cfg.Bool("strBool", false) {
		t.Error("Bool should parse string true")
	}
	if got := cfg.Float("fontSize", 9); got != 11 {
		t.Errorf("Float = %v", got)
	}
	if got := cfg.Int("maxLines", 0); got != 4 {
		t.Errorf("Int from int64 = %v", got)
	}
}

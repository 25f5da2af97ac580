package services

import (
	"math"
	"testing"
)

func TestDefaultFormatter_Format(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		expect   string
	}{
		{"usd zero", 0, "USD", "$0.00"},
		{"usd thousands", 1234.56, "USD", "$1,234.56"},
		{"usd millions", 12345678.9, "USD", "$12,345,678.90"},
		{"usd rounds half up", 2.005, "USD", "$2.01"},
		{"usd negative", -396, "USD", "-$396.00"},
		{"gbp", 3960, "GBP", "£3,960.00"},
		{"myr", 999.99, "MYR", "RM999.99"},
		{"idr has no decimals", 15850000.4, "IDR", "Rp15,850,000"},
		{"sgd", 100000, "SGD", "S$100,000.00"},
		{"inr lakhs", 123456.78, "INR", "₹1,23,456.78"},
		{"inr crores", 12345678.90, "INR", "₹1,23,45,678.90"},
		{"inr negative", -250000.50, "INR", "-₹2,50,000.50"},
		{"unknown code", 1234.5, "XYZ", "1234.50"},
		{"empty code", 7, "", "7.00"},
	}

	var f DefaultFormatter
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Format(tt.amount, tt.currency)
			if got != tt.expect {
				t.Errorf("Format(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.expect)
			}
		})
	}
}

func TestDefaultFormatter_HideSymbol(t *testing.T) {
	f := DefaultFormatter{HideSymbol: true}
	if got := f.Format(3564, "GBP"); got != "3,564.00" {
		t.Errorf("Format = %q, want 3,564.00", got)
	}
}

func TestSymbolFor(t *testing.T) {
	if got := SymbolFor("THB"); got != "฿" {
		t.Errorf("SymbolFor(THB) = %q", got)
	}
	if got := SymbolFor("CHF"); got != "CHF" {
		t.Errorf("SymbolFor(CHF) = %q, want the code back", got)
	}
}

func TestConvertCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		from   string
		to     string
		rates  map[string]float64
		expect float64
	}{
		{"same currency", 100, "GBP", "GBP", nil, 100},
		{"usd to myr fallback", 100, "USD", "MYR", nil, 447},
		{"myr to usd fallback", 447, "MYR", "USD", nil, 100},
		{"live rate wins", 100, "USD", "GBP", map[string]float64{"GBP": 0.8}, 80},
		{"cross via usd", 134, "SGD", "GBP", nil, 79},
		{"unknown currency unchanged", 50, "USD", "XYZ", nil, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertCurrency(tt.amount, tt.from, tt.to, tt.rates)
			if math.Abs(got-tt.expect) > 0.001 {
				t.Errorf("ConvertCurrency(%v, %s, %s) = %v, want %v", tt.amount, tt.from, tt.to, got, tt.expect)
			}
		})
	}
}

func TestApplyWesternGrouping(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"5", "5"},
		{"999", "999"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
	}
	for _, tt := range tests {
		if got := applyWesternGrouping(tt.input); got != tt.expect {
			t.Errorf("applyWesternGrouping(%q) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}

func TestApplyIndianGrouping(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"single digit", "5", "5"},
		{"three digits", "999", "999"},
		{"four digits", "1234", "1,234"},
		{"six digits", "123456", "1,23,456"},
		{"seven digits", "1234567", "12,34,567"},
		{"ten digits", "1234567890", "1,23,45,67,890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyIndianGrouping(tt.input)
			if got != tt.expect {
				t.Errorf("applyIndianGrouping(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestDefaultFormatter_NonFinite(t *testing.T) {
	f := DefaultFormatter{}
	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		for _, code := range []string{"USD", "INR", "XYZ"} {
			if got := f.Format(amount, code); got != "n/a" {
				t.Errorf("Format(%v, %s) = %q, want n/a", amount, code, got)
			}
		}
	}
	if got := f.Format(MaxAmount, "USD"); got != "$1,000,000,000,000,000.00" {
		t.Errorf("Format(MaxAmount) = %q", got)
	}
}

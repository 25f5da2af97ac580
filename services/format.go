package services

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyFormatter turns a raw amount into display text. The composer never
// formats money itself.
type CurrencyFormatter interface {
	Format(amount float64, currencyCode string) string
}

// Currency describes how one currency is displayed.
type Currency struct {
	Code     string
	Symbol   string
	Name     string
	Decimals int
	// Indian groups digits as 1,23,45,678 instead of 12,345,678.
	Indian bool
}

var Currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", Decimals: 2},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", Decimals: 2},
	"MYR": {Code: "MYR", Symbol: "RM", Name: "Malaysian Ringgit", Decimals: 2},
	"IDR": {Code: "IDR", Symbol: "Rp", Name: "Indonesian Rupiah", Decimals: 0},
	"KWD": {Code: "KWD", Symbol: "KD", Name: "Kuwaiti Dinar", Decimals: 2},
	"AED": {Code: "AED", Symbol: "د.إ", Name: "UAE Dirham", Decimals: 2},
	"SGD": {Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Decimals: 2},
	"THB": {Code: "THB", Symbol: "฿", Name: "Thai Baht", Decimals: 2},
	"QAR": {Code: "QAR", Symbol: "QR", Name: "Qatari Riyal", Decimals: 2},
	"SAR": {Code: "SAR", Symbol: "SR", Name: "Saudi Riyal", Decimals: 2},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee", Decimals: 2, Indian: true},
}

// FallbackRates are USD exchange rates used when no live rates are given.
var FallbackRates = map[string]float64{
	"USD": 1,
	"GBP": 0.79,
	"MYR": 4.47,
	"IDR": 15850,
	"KWD": 0.31,
	"AED": 3.67,
	"SGD": 1.34,
	"THB": 34.50,
	"QAR": 3.64,
	"SAR": 3.75,
	"INR": 83.2,
}

// DefaultFormatter formats amounts with the currency's symbol, rounding
// half away from zero.
type DefaultFormatter struct {
	// HideSymbol drops the currency symbol from the output.
	HideSymbol bool
}

// Format renders amount in currencyCode. Unknown codes give the bare amount
// with two decimals and no grouping. NaN and infinities render as "n/a".
func (f DefaultFormatter) Format(amount float64, currencyCode string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	cur, ok := Currencies[currencyCode]
	if !ok {
		return decimal.NewFromFloat(amount).StringFixed(2)
	}

	d := decimal.NewFromFloat(amount).Round(int32(cur.Decimals))
	negative := d.IsNegative()
	raw := d.Abs().StringFixed(int32(cur.Decimals))

	intPart, decPart, _ := strings.Cut(raw, ".")
	if cur.Indian {
		intPart = applyIndianGrouping(intPart)
	} else {
		intPart = applyWesternGrouping(intPart)
	}

	result := intPart
	if decPart != "" {
		result += "." + decPart
	}
	if !f.HideSymbol {
		result = cur.Symbol + result
	}
	if negative {
		result = "-" + result
	}
	return result
}

// SymbolFor returns the display symbol for a currency code, or the code
// itself when it is unknown.
func SymbolFor(currencyCode string) string {
	if cur, ok := Currencies[currencyCode]; ok {
		return cur.Symbol
	}
	return currencyCode
}

// ConvertCurrency converts amount between currencies through USD. Rates
// missing from rates fall back to FallbackRates; an unknown currency leaves
// the amount unchanged.
func ConvertCurrency(amount float64, from, to string, rates map[string]float64) float64 {
	if from == to {
		return amount
	}
	fromRate := rateFor(from, rates)
	toRate := rateFor(to, rates)
	if fromRate == 0 || toRate == 0 {
		return amount
	}
	return amount / fromRate * toRate
}

func rateFor(code string, rates map[string]float64) float64 {
	if r := rates[code]; r > 0 {
		return r
	}
	return FallbackRates[code]
}

// applyWesternGrouping inserts commas every three digits from the right.
func applyWesternGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// applyIndianGrouping inserts commas into an integer string using the
// Indian numbering system: the rightmost 3 digits form the first group,
// then every 2 digits form subsequent groups.
func applyIndianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]

	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}

	return result
}

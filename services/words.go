package services

import (
	"fmt"
	"math"
	"strings"
)

var currencyUnits = map[string]string{
	"USD": "US Dollars",
	"GBP": "Pounds Sterling",
	"MYR": "Ringgit",
	"IDR": "Rupiah",
	"KWD": "Kuwaiti Dinars",
	"AED": "UAE Dirhams",
	"SGD": "Singapore Dollars",
	"THB": "Baht",
	"QAR": "Qatari Riyals",
	"SAR": "Saudi Riyals",
	"INR": "Rupees",
}

// AmountToWords spells an amount for the totals block.
// INR uses lakhs and crores; every other currency uses thousands, millions
// and billions. Minor units are written as a fraction, e.g.
// 3960.5 USD → "Three Thousand Nine Hundred and Sixty US Dollars and 50/100 Only".
func AmountToWords(amount float64, currencyCode string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || math.Abs(amount) > MaxAmount {
		return ""
	}
	if amount < 0 {
		return "Negative " + AmountToWords(-amount, currencyCode)
	}

	decimals := 2
	if cur, ok := Currencies[currencyCode]; ok {
		decimals = cur.Decimals
	}
	scale := math.Pow10(decimals)
	minorTotal := int64(math.Round(amount * scale))
	major := minorTotal / int64(scale)
	minor := minorTotal % int64(scale)

	var words string
	switch {
	case major == 0:
		words = "Zero"
	case currencyCode == "INR":
		words = convertToIndianWords(major)
	default:
		words = convertToInternationalWords(major)
	}

	unit := currencyUnits[currencyCode]
	if unit == "" {
		unit = currencyCode
	}
	result := strings.TrimSpace(words + " " + unit)
	if minor > 0 {
		result += fmt.Sprintf(" and %0*d/%d", decimals, minor, int64(scale))
	}
	return result + " Only"
}

func convertToInternationalWords(n int64) string {
	scales := []struct {
		value int64
		name  string
	}{
		{1_000_000_000, "Billion"},
		{1_000_000, "Million"},
		{1_000, "Thousand"},
	}

	var parts []string
	for _, s := range scales {
		if n >= s.value {
			parts = append(parts, convertUnder1000(n/s.value)+" "+s.name)
			n %= s.value
		}
	}
	if n > 0 {
		rest := convertUnder1000(n)
		if len(parts) > 0 && n < 100 {
			rest = "and " + rest
		}
		parts = append(parts, rest)
	}
	return strings.Join(parts, " ")
}

func convertUnder1000(n int64) string {
	if n < 100 {
		return convertUnder100(n)
	}
	result := ones[n/100] + " Hundred"
	if n%100 != 0 {
		result += " and " + convertUnder100(n%100)
	}
	return result
}

func convertToIndianWords(n int64) string {
	if n == 0 {
		return ""
	}

	var parts []string

	if n >= 10000000 {
		parts = append(parts, convertUnder1000(n/10000000)+" Crore")
		n %= 10000000
	}
	if n >= 100000 {
		parts = append(parts, convertUnder100(n/100000)+" Lakh")
		n %= 100000
	}
	if n >= 1000 {
		parts = append(parts, convertUnder100(n/1000)+" Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, ones[n/100]+" Hundred")
		n %= 100
	}
	if n > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and "+convertUnder100(n))
		} else {
			parts = append(parts, convertUnder100(n))
		}
	}

	return strings.Join(parts, " ")
}

func convertUnder100(n int64) string {
	if n < 20 {
		return ones[n]
	}
	result := tens[n/10]
	if n%10 != 0 {
		result += " " + ones[n%10]
	}
	return result
}

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

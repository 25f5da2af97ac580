package services

import "testing"

func TestAmountToWords(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		expect   string
	}{
		{"zero", 0, "USD", "Zero US Dollars Only"},
		{"teens", 15, "USD", "Fifteen US Dollars Only"},
		{"hundred and", 150, "GBP", "One Hundred and Fifty Pounds Sterling Only"},
		{"thousands", 3960, "USD", "Three Thousand Nine Hundred and Sixty US Dollars Only"},
		{"thousand and units", 1005, "USD", "One Thousand and Five US Dollars Only"},
		{"with cents", 3564.5, "USD", "Three Thousand Five Hundred and Sixty Four US Dollars and 50/100 Only"},
		{"single cent", 10.01, "SGD", "Ten Singapore Dollars and 01/100 Only"},
		{"millions", 2500000, "MYR", "Two Million Five Hundred Thousand Ringgit Only"},
		{"no minor units", 15850000.4, "IDR", "Fifteen Million Eight Hundred and Fifty Thousand Rupiah Only"},
		{"indian lakhs", 913183, "INR", "Nine Lakh Thirteen Thousand One Hundred and Eighty Three Rupees Only"},
		{"indian crores", 12345678, "INR", "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred and Seventy Eight Rupees Only"},
		{"unknown currency", 7, "XYZ", "Seven XYZ Only"},
		{"negative", -20, "USD", "Negative Twenty US Dollars Only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmountToWords(tt.amount, tt.currency)
			if got != tt.expect {
				t.Errorf("AmountToWords(%v, %s) = %q, want %q", tt.amount, tt.currency, got, tt.expect)
			}
		})
	}
}

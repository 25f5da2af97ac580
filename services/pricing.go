// Package services holds the quote pricing engine, the document layout
// packer and composer, and the export backends built on top of them.
package services

import (
	"fmt"
	"math"
)

// LineItem is the atomic priced unit: a day-rate cost and charge multiplied
// by quantity and days.
type LineItem struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Days     float64 `json:"days"`
	Cost     float64 `json:"cost"`
	Charge   float64 `json:"charge"`
}

// Subsection is a named, ordered group of line items within a section.
type Subsection struct {
	Name  string     `json:"name"`
	Items []LineItem `json:"items"`
}

// Section groups subsections. A nil Subsections slice contributes nothing.
type Section struct {
	Subsections []Subsection `json:"subsections"`
}

// Sections maps a registry section id (see SectionDefs) to its contents.
type Sections map[string]Section

type Amounts struct {
	Cost   float64 `json:"cost"`
	Charge float64 `json:"charge"`
}

func (a Amounts) add(b Amounts) Amounts {
	return Amounts{Cost: capAmount(a.Cost + b.Cost), Charge: capAmount(a.Charge + b.Charge)}
}

// FeeConfig holds the quote-level fee rules. Management and commission are
// added to the base charge, then the discount is taken off the result.
type FeeConfig struct {
	ManagementFeePct float64 `json:"managementFee"`
	CommissionFeePct float64 `json:"commissionFee"`
	DiscountPct      float64 `json:"discount"`
	DistributeFees   bool    `json:"distributeFees"`
}

// HasFees reports whether any percentage is set.
func (f FeeConfig) HasFees() bool {
	return f.ManagementFeePct > 0 || f.CommissionFeePct > 0 || f.DiscountPct > 0
}

// Validate rejects negative, NaN or infinite percentages.
func (f FeeConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"managementFee", f.ManagementFeePct},
		{"commissionFee", f.CommissionFeePct},
		{"discount", f.DiscountPct},
	}
	for _, fl := range fields {
		if fl.value < 0 || math.IsNaN(fl.value) || math.IsInf(fl.value, 0) {
			return &ValidationError{
				Err:     ErrNegativeFee,
				Field:   "fees." + fl.name,
				Details: fmt.Sprintf("got %v", fl.value),
			}
		}
	}
	return nil
}

// Totals is the derived result of GrandTotalWithFees. It is never stored.
type Totals struct {
	BaseCost         float64   `json:"baseCost"`
	BaseCharge       float64   `json:"baseCharge"`
	ManagementAmount float64   `json:"managementAmount"`
	CommissionAmount float64   `json:"commissionAmount"`
	ChargeWithFees   float64   `json:"chargeWithFees"`
	DiscountAmount   float64   `json:"discountAmount"`
	TotalCost        float64   `json:"totalCost"`
	TotalCharge      float64   `json:"totalCharge"`
	Profit           float64   `json:"profit"`
	Margin           float64   `json:"margin"`
	Fees             FeeConfig `json:"fees"`
}

// DistributedRate inflates a per-line rate by the management and commission
// percentages when fees are distributed, so visible line totals sum to
// ChargeWithFees. The discount is never applied per line.
func (t Totals) DistributedRate(rawRate float64) float64 {
	if !t.Fees.DistributeFees {
		return rawRate
	}
	feePct := nonNegative(t.Fees.ManagementFeePct) + nonNegative(t.Fees.CommissionFeePct)
	return capAmount(rawRate * (1 + feePct/100))
}

// LineTotal returns cost and charge for one item. Missing or non-positive
// quantity and days count as 1; negative money counts as 0. Products that
// would overflow saturate at MaxAmount.
func LineTotal(item LineItem) Amounts {
	qty := atLeastOne(item.Quantity)
	days := atLeastOne(item.Days)
	return Amounts{
		Cost:   capAmount(nonNegative(item.Cost) * qty * days),
		Charge: capAmount(nonNegative(item.Charge) * qty * days),
	}
}

func SubsectionTotal(items []LineItem) Amounts {
	var total Amounts
	for _, item := range items {
		total = total.add(LineTotal(item))
	}
	return total
}

func SectionTotal(subsections []Subsection) Amounts {
	var total Amounts
	for _, sub := range subsections {
		total = total.add(SubsectionTotal(sub.Items))
	}
	return total
}

func GrandTotal(sections Sections) Amounts {
	var total Amounts
	for _, section := range sections {
		total = total.add(SectionTotal(section.Subsections))
	}
	return total
}

// GrandTotalWithFees applies the fee rules to the grand total. Fees and the
// discount only ever change the charge side; TotalCost always equals the base
// cost.
func GrandTotalWithFees(sections Sections, fees FeeConfig) Totals {
	base := GrandTotal(sections)

	management := capAmount(base.Charge * nonNegative(fees.ManagementFeePct) / 100)
	commission := capAmount(base.Charge * nonNegative(fees.CommissionFeePct) / 100)
	chargeWithFees := capAmount(base.Charge + management + commission)

	discount := capAmount(chargeWithFees * nonNegative(fees.DiscountPct) / 100)
	totalCharge := chargeWithFees - discount
	totalCost := base.Cost

	var margin float64
	if totalCharge > 0 {
		margin = (totalCharge - totalCost) / totalCharge * 100
	}

	return Totals{
		BaseCost:         base.Cost,
		BaseCharge:       base.Charge,
		ManagementAmount: management,
		CommissionAmount: commission,
		ChargeWithFees:   chargeWithFees,
		DiscountAmount:   discount,
		TotalCost:        totalCost,
		TotalCharge:      totalCharge,
		Profit:           totalCharge - totalCost,
		Margin:           margin,
		Fees:             fees,
	}
}

// PercentageItem is a contingency-style surcharge expressed as a percentage
// of the base totals.
type PercentageItem struct {
	Name         string  `json:"name"`
	IsPercentage bool    `json:"isPercentage"`
	PercentValue float64 `json:"percentValue"`
}

// TotalWithPercentages adds every percentage item to both base cost and base
// charge. Items that are not percentages, or have no value, are ignored.
func TotalWithPercentages(sections Sections, items []PercentageItem) Amounts {
	base := GrandTotal(sections)
	total := base
	for _, item := range items {
		pct := item.PercentValue
		if !item.IsPercentage || pct == 0 || math.IsNaN(pct) || math.IsInf(pct, 0) {
			continue
		}
		total.Cost = capAmount(total.Cost + base.Cost*pct/100)
		total.Charge = capAmount(total.Charge + base.Charge*pct/100)
	}
	return total
}

// CountItems counts line items across all sections.
func CountItems(sections Sections) int {
	var count int
	for _, section := range sections {
		count += CountSectionItems(section)
	}
	return count
}

// CountSectionItems counts line items across one section's subsections.
func CountSectionItems(section Section) int {
	var count int
	for _, sub := range section.Subsections {
		count += len(sub.Items)
	}
	return count
}

// TaxOn returns the tax on a charge and the charge including it.
func TaxOn(charge, ratePct float64) (tax, gross float64) {
	if ratePct <= 0 {
		return 0, charge
	}
	tax = capAmount(charge * nonNegative(ratePct) / 100)
	return tax, capAmount(charge + tax)
}

// MaxAmount bounds every derived money value so totals stay finite however
// large the inputs are.
const MaxAmount = 1e15

func capAmount(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > MaxAmount:
		return MaxAmount
	case v < -MaxAmount:
		return -MaxAmount
	}
	return v
}

func atLeastOne(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

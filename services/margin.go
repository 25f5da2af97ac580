package services

import (
	"math"
	"strconv"
)

// Margin is a profit margin percentage that may be undefined. A margin is
// undefined when there is cost but no charge: the work is a total loss and
// no percentage describes it.
type Margin struct {
	pct     float64
	defined bool
}

// UndefinedMargin is the total-loss sentinel.
var UndefinedMargin = Margin{}

func MarginPct(pct float64) Margin {
	return Margin{pct: pct, defined: true}
}

// MarginOf returns the margin of charge over cost. Both zero gives 0; cost
// with no charge gives UndefinedMargin.
func MarginOf(cost, charge float64) Margin {
	switch {
	case charge == 0 && cost == 0:
		return MarginPct(0)
	case charge == 0:
		return UndefinedMargin
	}
	return MarginPct((charge - cost) / charge * 100)
}

// LineMargin is MarginOf over a single item's totals.
func LineMargin(item LineItem) Margin {
	t := LineTotal(item)
	return MarginOf(t.Cost, t.Charge)
}

func (m Margin) Undefined() bool {
	return !m.defined
}

// Value returns the percentage and whether it is defined.
func (m Margin) Value() (float64, bool) {
	return m.pct, m.defined
}

func (m Margin) String() string {
	if !m.defined {
		return "n/a"
	}
	return strconv.FormatFloat(math.Round(m.pct*10)/10, 'f', 1, 64) + "%"
}

// Margin bands used to colour margins in exports.
const (
	BandHealthy   = "healthy"
	BandWarning   = "warning"
	BandLow       = "low"
	BandUndefined = "undefined"
)

// MarginBand classifies a margin: 30% and above is healthy, 20% and above is
// a warning, anything lower is low.
func MarginBand(m Margin) string {
	pct, ok := m.Value()
	switch {
	case !ok:
		return BandUndefined
	case pct >= 30:
		return BandHealthy
	case pct >= 20:
		return BandWarning
	default:
		return BandLow
	}
}

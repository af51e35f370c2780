package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Absent is the display string for zero/no-data values.
const Absent = "-"

const rupee = "₹"

var (
	crore    = decimal.NewFromInt(10_000_000)
	lakh     = decimal.NewFromInt(100_000)
	thousand = decimal.NewFromInt(1_000)
)

// IsAbsent is the "zero means no data" business rule. A true zero and a
// missing value both render as Absent.
func IsAbsent(v float64) bool {
	return v == 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// Format renders a raw value for its display class.
func Format(v float64, class DisplayClass) string {
	if IsAbsent(v) {
		return Absent
	}
	d := decimal.NewFromFloat(v)

	switch class {
	case DisplayCurrency:
		return rupee + scaled(d, 2)
	case DisplayPercentage:
		return d.StringFixed(1) + "%"
	case DisplayMultiplier:
		return d.StringFixed(2) + "x"
	case DisplayCount:
		return scaled(d, 0)
	default:
		return d.StringFixed(2)
	}
}

// scaled applies the Cr/L/K suffixes; below a thousand the value keeps
// plainPlaces decimals.
func scaled(d decimal.Decimal, plainPlaces int32) string {
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(crore):
		return d.Div(crore).StringFixed(2) + " Cr"
	case abs.GreaterThanOrEqual(lakh):
		return d.Div(lakh).StringFixed(2) + " L"
	case abs.GreaterThanOrEqual(thousand):
		return d.Div(thousand).StringFixed(2) + " K"
	default:
		return d.StringFixed(plainPlaces)
	}
}

// FormatDelta renders the signed percent change from prev to cur.
func FormatDelta(cur, prev float64) string {
	if IsAbsent(prev) || math.IsNaN(cur) || math.IsInf(cur, 0) {
		return Absent
	}
	change := decimal.NewFromFloat(cur).Sub(decimal.NewFromFloat(prev)).
		Div(decimal.NewFromFloat(prev).Abs()).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	if change.IsPositive() {
		return "+" + change.StringFixed(1) + "%"
	}
	if change.IsZero() {
		return "0.0%"
	}
	return change.StringFixed(1) + "%"
}

// SafeDivide returns 0 when the denominator is zero.
func SafeDivide(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	out := num / den
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0
	}
	return out
}

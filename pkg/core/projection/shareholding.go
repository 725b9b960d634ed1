package projection

import (
	"math"
	"strings"

	"finmodel/pkg/core/modelerr"
)

// ownershipSumTolerance is how far a year's fractions may drift from 1.
const ownershipSumTolerance = 1e-9

// ValidateOwnership rejects holders that cannot be attributed. Fractions that
// do not sum to one are allowed; OwnershipSumsToOne reports that case.
func ValidateOwnership(holders []Holder) error {
	seen := make(map[string]bool, len(holders))
	for _, h := range holders {
		name := strings.TrimSpace(h.Name)
		if name == "" {
			return modelerr.Invalid("ownership", "holder name is empty")
		}
		if seen[name] {
			return modelerr.Invalid("ownership", "holder %q listed twice", name)
		}
		seen[name] = true
		if h.Fraction < 0 || math.IsNaN(h.Fraction) || math.IsInf(h.Fraction, 0) {
			return modelerr.Invalid("ownership", "holder %q has invalid fraction %g", name, h.Fraction)
		}
	}
	return nil
}

// OwnershipSumsToOne reports whether the fractions add up to 1 and their sum.
func OwnershipSumsToOne(holders []Holder) (bool, float64) {
	sum := 0.0
	for _, h := range holders {
		sum += h.Fraction
	}
	return math.Abs(sum-1) <= ownershipSumTolerance, sum
}

// AttributeEquity splits each year's total equity across holders in the
// order given, one row per (year, holder).
func AttributeEquity(bs []BalanceSheetRow, holders []Holder) []ShareholdingRow {
	rows := make([]ShareholdingRow, 0, len(bs)*len(holders))
	for _, b := range bs {
		for _, h := range holders {
			rows = append(rows, ShareholdingRow{
				Year:             b.Year,
				Holder:           h.Name,
				OwnershipPct:     h.Fraction,
				EquityAttributed: b.TotalEquity * h.Fraction,
			})
		}
	}
	return rows
}

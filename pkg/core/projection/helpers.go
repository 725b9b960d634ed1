package projection

import "finmodel/pkg/core/modelerr"

// Years returns the contiguous forecast horizon.
func Years(startYear, termYears int) []int {
	years := make([]int, termYears)
	for i := range years {
		years[i] = startYear + i
	}
	return years
}

// floorZero clamps a rolling balance at zero.
func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// checkAligned verifies that a downstream table carries exactly the years of
// the income statement, in order.
func checkAligned(table string, is []IncomeStatementRow, years func(i int) int, n int) error {
	if n != len(is) {
		return modelerr.Invalid(table, "has %d rows, income statement has %d", n, len(is))
	}
	for i := range is {
		if years(i) != is[i].Year {
			return modelerr.Invalid(table, "row %d is year %d, expected %d", i, years(i), is[i].Year)
		}
	}
	return nil
}

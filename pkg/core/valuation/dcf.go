package valuation

import (
	"math"

	"finmodel/pkg/core/modelerr"
	"finmodel/pkg/core/projection"
)

// Row is one year of the valuation table.
type Row struct {
	Year          int     `json:"year"`
	FCF           float64 `json:"fcf"`
	DiscountedFCF float64 `json:"discounted_fcf"`
}

// FreeCashFlow returns FCF = OperatingCF + InvestingCF per year.
// DiscountedFCF is left at zero; see Discount.
func FreeCashFlow(cf []projection.CashFlowRow) []Row {
	rows := make([]Row, len(cf))
	for i, c := range cf {
		rows[i] = Row{Year: c.Year, FCF: c.OperatingCF + c.InvestingCF}
	}
	return rows
}

// Discount returns a copy of rows with DiscountedFCF filled in. The first
// forecast year is discounted one full period:
// DiscountedFCF[i] = FCF[i] / (1+rate)^(i+1).
func Discount(rows []Row, rate float64) ([]Row, error) {
	if err := checkRate(rate); err != nil {
		return nil, err
	}
	out := make([]Row, len(rows))
	factor := 1.0
	for i, r := range rows {
		factor /= 1 + rate
		out[i] = Row{Year: r.Year, FCF: r.FCF, DiscountedFCF: r.FCF * factor}
	}
	return out, nil
}

// EnterpriseValue sums the discounted cash flows of the explicit horizon.
// No terminal value is included.
func EnterpriseValue(rows []Row) float64 {
	ev := 0.0
	for _, r := range rows {
		ev += r.DiscountedFCF
	}
	return ev
}

// TerminalValue is the Gordon growth value at the end of the horizon:
// lastFCF x (1+g) / (rate - g). It is undiscounted.
func TerminalValue(lastFCF, rate, growth float64) (float64, error) {
	if err := checkRate(rate); err != nil {
		return 0, err
	}
	if rate <= growth {
		return 0, modelerr.Invalid("terminal_growth", "must be below the discount rate (%.4f >= %.4f)", growth, rate)
	}
	return lastFCF * (1 + growth) / (rate - growth), nil
}

func checkRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= -1 {
		return modelerr.Invalid("discount_rate", "unusable rate %g", rate)
	}
	return nil
}

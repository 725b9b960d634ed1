package projection

import (
	"math"

	"finmodel/pkg/core/assumption"
	"finmodel/pkg/core/modelerr"
)

// MaxTermYears bounds the projection horizon. Every table is sized by it.
const MaxTermYears = 100

// IncomeDrivers are the inputs of the income statement projection.
type IncomeDrivers struct {
	StartYear       int
	TermYears       int
	RevenueStart    float64
	GrowthRate      float64
	COGSPct         float64
	OpexPct         float64
	DepreciationPct float64
	TaxRate         float64
	InterestRate    float64
	// OpeningDebt is charged interest in every year. It is a fixed figure, not
	// the rolling balance sheet debt, which keeps the pipeline acyclic.
	OpeningDebt float64
}

// Validate rejects structurally unusable drivers.
func (d IncomeDrivers) Validate() error {
	if d.TermYears < 1 {
		return modelerr.Invalid(string(assumption.TermYears), "must be at least 1, got %d", d.TermYears)
	}
	if d.TermYears > MaxTermYears {
		return modelerr.Invalid(string(assumption.TermYears), "must be at most %d, got %d", MaxTermYears, d.TermYears)
	}
	for key, v := range map[assumption.Key]float64{
		assumption.RevenueStart:    d.RevenueStart,
		assumption.RevenueGrowth:   d.GrowthRate,
		assumption.COGSPctRevenue:  d.COGSPct,
		assumption.OpexPctRevenue:  d.OpexPct,
		assumption.DepreciationPct: d.DepreciationPct,
		assumption.TaxRate:         d.TaxRate,
		assumption.InterestRate:    d.InterestRate,
		assumption.DebtOpening:     d.OpeningDebt,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return modelerr.Invalid(string(key), "value is not finite")
		}
	}
	return nil
}

// IncomeDriversFrom reads the income drivers out of an assumption reader.
// openingDebt, when non-nil, is the explicit opening debt balance; otherwise
// debt_opening is used, and failing that revenue_start x leverage_proxy.
func IncomeDriversFrom(r *assumption.Reader, openingDebt *float64) (IncomeDrivers, error) {
	var d IncomeDrivers
	var err error
	if d.StartYear, err = r.RequiredInt(assumption.StartYear); err != nil {
		return d, err
	}
	if d.TermYears, err = r.RequiredInt(assumption.TermYears); err != nil {
		return d, err
	}
	if d.RevenueStart, err = r.Required(assumption.RevenueStart); err != nil {
		return d, err
	}
	d.GrowthRate = r.Ratio(assumption.RevenueGrowth)
	d.COGSPct = r.Ratio(assumption.COGSPctRevenue)
	d.OpexPct = r.Ratio(assumption.OpexPctRevenue)
	d.DepreciationPct = r.Ratio(assumption.DepreciationPct)
	d.TaxRate = r.Ratio(assumption.TaxRate)
	d.InterestRate = r.Ratio(assumption.InterestRate)

	switch v, ok := r.Optional(assumption.DebtOpening); {
	case openingDebt != nil:
		d.OpeningDebt = *openingDebt
	case ok:
		d.OpeningDebt = v
	default:
		d.OpeningDebt = d.RevenueStart * r.Ratio(assumption.LeverageProxy)
	}
	return d, d.Validate()
}

// ProjectIncome produces one income statement row per forecast year. Revenue
// compounds at a constant rate from RevenueStart; every cost line is a ratio
// of revenue; taxes are floored at zero (no loss carryforward).
func ProjectIncome(d IncomeDrivers) ([]IncomeStatementRow, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	interest := d.OpeningDebt * d.InterestRate
	rows := make([]IncomeStatementRow, 0, d.TermYears)
	revenue := d.RevenueStart
	for i, year := range Years(d.StartYear, d.TermYears) {
		if i > 0 {
			revenue *= 1 + d.GrowthRate
		}
		row := IncomeStatementRow{
			Year:         year,
			Revenue:      revenue,
			COGS:         revenue * d.COGSPct,
			Opex:         revenue * d.OpexPct,
			Depreciation: revenue * d.DepreciationPct,
			Interest:     interest,
		}
		row.EBIT = row.Revenue - row.COGS - row.Opex - row.Depreciation
		row.EBT = row.EBIT - row.Interest
		row.Taxes = math.Max(0, row.EBT*d.TaxRate)
		row.NetIncome = row.EBT - row.Taxes
		rows = append(rows, row)
	}
	return rows, nil
}

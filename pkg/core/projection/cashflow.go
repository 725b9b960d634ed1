package projection

import (
	"math"

	"finmodel/pkg/core/assumption"
	"finmodel/pkg/core/modelerr"
)

// FinancingPolicy drives the investing and financing sections.
type FinancingPolicy struct {
	CapexPctRevenue       float64
	DebtChange            assumption.Schedule
	EquityIssue           assumption.Schedule
	DividendsPctNetIncome float64
}

// FinancingPolicyFrom reads the policy, defaulting absent ratios. Schedules
// are sparse; missing years contribute zero.
func FinancingPolicyFrom(r *assumption.Reader) FinancingPolicy {
	return FinancingPolicy{
		CapexPctRevenue:       r.Ratio(assumption.CapexPctRevenue),
		DebtChange:            r.Schedule(assumption.DebtChangeSchedule),
		EquityIssue:           r.Schedule(assumption.EquityIssueSchedule),
		DividendsPctNetIncome: r.Ratio(assumption.DividendsPctNetIncome),
	}
}

// CashFlows builds the cash flow statement.
//
//	OperatingCF = NetIncome + Depreciation - dNWC
//	InvestingCF = Capex (negative, a share of revenue)
//	FinancingCF = DebtChange + EquityIssue + Dividends (dividends negative)
//
// dNWC in the first modelled year is that year's full NWC: the build from an
// unmodelled zero baseline.
func CashFlows(is []IncomeStatementRow, wc []WorkingCapitalRow, policy FinancingPolicy) ([]CashFlowRow, error) {
	if len(is) == 0 {
		return nil, modelerr.Invalid("income_statement", "no rows to derive cash flows from")
	}
	if err := checkAligned("working_capital", is, func(i int) int { return wc[i].Year }, len(wc)); err != nil {
		return nil, err
	}

	rows := make([]CashFlowRow, len(is))
	prevNWC := 0.0
	for i, r := range is {
		deltaNWC := wc[i].NetWorkingCapital - prevNWC
		prevNWC = wc[i].NetWorkingCapital

		cf := CashFlowRow{
			Year:                 r.Year,
			Capex:                -(r.Revenue * policy.CapexPctRevenue),
			DeltaNWC:             deltaNWC,
			FinancingDebtChange:  policy.DebtChange.At(r.Year),
			FinancingEquityIssue: policy.EquityIssue.At(r.Year),
			Dividends:            -(math.Max(0, r.NetIncome) * policy.DividendsPctNetIncome),
		}
		cf.OperatingCF = r.NetIncome + r.Depreciation - deltaNWC
		cf.InvestingCF = cf.Capex
		cf.FinancingCF = cf.FinancingDebtChange + cf.FinancingEquityIssue + cf.Dividends
		cf.NetChangeInCash = cf.OperatingCF + cf.InvestingCF + cf.FinancingCF
		rows[i] = cf
	}
	return rows, nil
}

package validate

import "finmodel/pkg/core/projection"

// =============================================================================
// CROSS-STATEMENT LINKAGE
// =============================================================================

// CashLinkage returns the gap between the balance sheet cash movement and the
// cash flow statement's net change: (Cash[t] - Cash[t-1]) - NetChangeInCash[t].
func CashLinkage(prevCash float64, bs projection.BalanceSheetRow, cf projection.CashFlowRow) float64 {
	return (bs.Cash - prevCash) - cf.NetChangeInCash
}

// RetainedEarningsLinkage returns the gap between the movement in retained
// earnings and the income it should carry:
// (RE[t] - RE[t-1]) - (NetIncome[t] + Dividends[t]). Dividends are negative.
// A binding zero floor on retained earnings surfaces here.
func RetainedEarningsLinkage(prevRE float64, bs projection.BalanceSheetRow, is projection.IncomeStatementRow, cf projection.CashFlowRow) float64 {
	return (bs.RetainedEarnings - prevRE) - (is.NetIncome + cf.Dividends)
}

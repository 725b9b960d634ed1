package projection

import (
	"finmodel/pkg/core/assumption"
)

// OpeningBalancesFrom resolves each opening balance from the explicit
// mapping first, then the assumption set, then zero.
func OpeningBalancesFrom(explicit map[string]float64, r *assumption.Reader) OpeningBalances {
	pick := func(k assumption.Key) float64 {
		if v, ok := explicit[string(k)]; ok {
			return v
		}
		if v, ok := r.Optional(k); ok {
			return v
		}
		return 0
	}
	return OpeningBalances{
		Cash:             pick(assumption.CashOpening),
		PPE:              pick(assumption.PPEOpening),
		Debt:             pick(assumption.DebtOpening),
		ShareCapital:     pick(assumption.EquityOpening),
		RetainedEarnings: pick(assumption.RetainedEarningsOpening),
	}
}

// rollState is the carried state of the balance sheet between years.
type rollState struct {
	cash             float64
	ppe              float64
	debt             float64
	shareCapital     float64
	retainedEarnings float64
}

// advance applies one year of activity. Capex and dividends arrive signed as
// outflows, so they are subtracted as magnitudes from PP&E and retained
// earnings respectively.
func (s rollState) advance(is IncomeStatementRow, cf CashFlowRow) rollState {
	return rollState{
		cash:             s.cash + cf.NetChangeInCash,
		ppe:              floorZero(s.ppe - cf.Capex - is.Depreciation),
		debt:             floorZero(s.debt + cf.FinancingDebtChange),
		shareCapital:     floorZero(s.shareCapital + cf.FinancingEquityIssue),
		retainedEarnings: floorZero(s.retainedEarnings + is.NetIncome + cf.Dividends),
	}
}

// Rollforward carries the five rolling balances through the horizon in a
// single ordered pass and derives the totals of every row. PP&E, debt, share
// capital and retained earnings are floored at zero; accumulated deficits are
// not modelled, so a binding floor shows up as a non-zero AssetsMinusLiabEq.
func Rollforward(is []IncomeStatementRow, wc []WorkingCapitalRow, cf []CashFlowRow, opening OpeningBalances) ([]BalanceSheetRow, error) {
	if err := checkAligned("working_capital", is, func(i int) int { return wc[i].Year }, len(wc)); err != nil {
		return nil, err
	}
	if err := checkAligned("cash_flow", is, func(i int) int { return cf[i].Year }, len(cf)); err != nil {
		return nil, err
	}

	state := rollState{
		cash:             opening.Cash,
		ppe:              opening.PPE,
		debt:             opening.Debt,
		shareCapital:     opening.ShareCapital,
		retainedEarnings: opening.RetainedEarnings,
	}
	rows := make([]BalanceSheetRow, len(is))
	for i := range is {
		state = state.advance(is[i], cf[i])

		row := BalanceSheetRow{
			Year:               is[i].Year,
			Cash:               state.cash,
			AccountsReceivable: wc[i].AccountsReceivable,
			Inventory:          wc[i].Inventory,
			PPE:                state.ppe,
			AccountsPayable:    wc[i].AccountsPayable,
			Debt:               state.debt,
			ShareCapital:       state.shareCapital,
			RetainedEarnings:   state.retainedEarnings,
		}
		row.TotalAssets = row.Cash + row.AccountsReceivable + row.Inventory + row.PPE
		row.TotalLiabilities = row.AccountsPayable + row.Debt
		row.TotalEquity = row.ShareCapital + row.RetainedEarnings
		row.AssetsMinusLiabEq = row.TotalAssets - (row.TotalLiabilities + row.TotalEquity)
		rows[i] = row
	}
	return rows, nil
}

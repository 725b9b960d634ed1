package projection

import (
	"fmt"

	"finmodel/pkg/core/assumption"
)

// Drivers gathers every input the articulation needs.
type Drivers struct {
	Income         IncomeDrivers
	WorkingCapital WorkingCapitalRatios
	Financing      FinancingPolicy
	Opening        OpeningBalances
}

// DriversFrom reads all drivers from r. explicitOpening carries the opening
// balances supplied alongside the assumptions and takes precedence over the
// matching assumption keys.
func DriversFrom(r *assumption.Reader, explicitOpening map[string]float64) (Drivers, error) {
	var openingDebt *float64
	if v, ok := explicitOpening[string(assumption.DebtOpening)]; ok {
		openingDebt = &v
	}
	income, err := IncomeDriversFrom(r, openingDebt)
	if err != nil {
		return Drivers{}, err
	}
	return Drivers{
		Income:         income,
		WorkingCapital: WorkingCapitalRatiosFrom(r),
		Financing:      FinancingPolicyFrom(r),
		Opening:        OpeningBalancesFrom(explicitOpening, r),
	}, nil
}

// Statements are the articulated statements of one run.
type Statements struct {
	IncomeStatement []IncomeStatementRow
	WorkingCapital  []WorkingCapitalRow
	CashFlow        []CashFlowRow
	BalanceSheet    []BalanceSheetRow
}

// Articulate runs income -> working capital -> cash flow -> balance sheet.
// Each stage consumes the previous tables and returns new ones; nothing is
// mutated in place and no stage calls back upstream.
func Articulate(d Drivers) (*Statements, error) {
	is, err := ProjectIncome(d.Income)
	if err != nil {
		return nil, fmt.Errorf("income statement: %w", err)
	}
	wc, err := WorkingCapital(is, d.WorkingCapital)
	if err != nil {
		return nil, fmt.Errorf("working capital: %w", err)
	}
	cf, err := CashFlows(is, wc, d.Financing)
	if err != nil {
		return nil, fmt.Errorf("cash flow: %w", err)
	}
	bs, err := Rollforward(is, wc, cf, d.Opening)
	if err != nil {
		return nil, fmt.Errorf("balance sheet: %w", err)
	}
	return &Statements{
		IncomeStatement: is,
		WorkingCapital:  wc,
		CashFlow:        cf,
		BalanceSheet:    bs,
	}, nil
}

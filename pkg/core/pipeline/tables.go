package pipeline

import (
	"finmodel/pkg/core/store"
)

// Table labels, matching the persisted file names.
const (
	LabelIncomeStatement = "income_statement"
	LabelWorkingCapital  = "working_capital"
	LabelCashFlow        = "cash_flow_statement"
	LabelBalanceSheet    = "balance_sheet"
	LabelShareholding    = "shareholding_pattern"
	LabelFreeCashFlow    = "free_cash_flow"
	LabelDiscountedFCF   = "discounted_fcf"
)

// Tables converts a result into its named output tables. The shareholding
// table is present only when the run had ownership.
func Tables(res *Result) []store.Table {
	tables := make([]store.Table, 0, 7)

	is := store.Table{Name: LabelIncomeStatement, Columns: []string{
		"Year", "Revenue", "COGS", "Opex", "Depreciation", "EBIT", "Interest", "EBT", "Taxes", "NetIncome",
	}}
	for _, r := range res.IncomeStatement {
		is.Rows = append(is.Rows, []any{r.Year, r.Revenue, r.COGS, r.Opex, r.Depreciation, r.EBIT, r.Interest, r.EBT, r.Taxes, r.NetIncome})
	}
	tables = append(tables, is)

	wc := store.Table{Name: LabelWorkingCapital, Columns: []string{
		"Year", "AccountsReceivable", "Inventory", "AccountsPayable", "NetWorkingCapital",
	}}
	for _, r := range res.WorkingCapital {
		wc.Rows = append(wc.Rows, []any{r.Year, r.AccountsReceivable, r.Inventory, r.AccountsPayable, r.NetWorkingCapital})
	}
	tables = append(tables, wc)

	cf := store.Table{Name: LabelCashFlow, Columns: []string{
		"Year", "OperatingCF", "InvestingCF", "FinancingCF", "NetChangeInCash",
		"Capex", "DeltaNWC", "Financing_DebtChange", "Financing_EquityIssue", "Dividends",
	}}
	for _, r := range res.CashFlow {
		cf.Rows = append(cf.Rows, []any{r.Year, r.OperatingCF, r.InvestingCF, r.FinancingCF, r.NetChangeInCash,
			r.Capex, r.DeltaNWC, r.FinancingDebtChange, r.FinancingEquityIssue, r.Dividends})
	}
	tables = append(tables, cf)

	bs := store.Table{Name: LabelBalanceSheet, Columns: []string{
		"Year", "Cash", "AccountsReceivable", "Inventory", "PP&E", "TotalAssets",
		"AccountsPayable", "Debt", "ShareCapital", "RetainedEarnings",
		"TotalLiabilities", "TotalEquity", "AssetsMinusLiabEq",
	}}
	for _, r := range res.BalanceSheet {
		bs.Rows = append(bs.Rows, []any{r.Year, r.Cash, r.AccountsReceivable, r.Inventory, r.PPE, r.TotalAssets,
			r.AccountsPayable, r.Debt, r.ShareCapital, r.RetainedEarnings,
			r.TotalLiabilities, r.TotalEquity, r.AssetsMinusLiabEq})
	}
	tables = append(tables, bs)

	if len(res.Shareholding) > 0 {
		sh := store.Table{
			Name:    LabelShareholding,
			Columns: []string{"Year", "Holder", "OwnershipPct", "EquityAttributed"},
			Places:  map[string]int32{"OwnershipPct": 6},
		}
		for _, r := range res.Shareholding {
			sh.Rows = append(sh.Rows, []any{r.Year, r.Holder, r.OwnershipPct, r.EquityAttributed})
		}
		tables = append(tables, sh)
	}

	fcf := store.Table{Name: LabelFreeCashFlow, Columns: []string{"Year", "FCF"}}
	dcf := store.Table{Name: LabelDiscountedFCF, Columns: []string{"Year", "FCF", "DiscountedFCF"}}
	for _, r := range res.Valuation {
		fcf.Rows = append(fcf.Rows, []any{r.Year, r.FCF})
		dcf.Rows = append(dcf.Rows, []any{r.Year, r.FCF, r.DiscountedFCF})
	}
	tables = append(tables, fcf, dcf)

	return tables
}

package projection

// IncomeStatementRow is one projected year of the income statement.
type IncomeStatementRow struct {
	Year         int     `json:"year"`
	Revenue      float64 `json:"revenue"`
	COGS         float64 `json:"cogs"`
	Opex         float64 `json:"opex"`
	Depreciation float64 `json:"depreciation"`
	EBIT         float64 `json:"ebit"`
	Interest     float64 `json:"interest"`
	EBT          float64 `json:"ebt"`
	Taxes        float64 `json:"taxes"`
	NetIncome    float64 `json:"net_income"`
}

// WorkingCapitalRow holds the working capital accounts of one year.
type WorkingCapitalRow struct {
	Year               int     `json:"year"`
	AccountsReceivable float64 `json:"accounts_receivable"`
	Inventory          float64 `json:"inventory"`
	AccountsPayable    float64 `json:"accounts_payable"`
	NetWorkingCapital  float64 `json:"net_working_capital"`
}

// CashFlowRow is one year of the cash flow statement. Capex and Dividends
// are signed as outflows (zero or negative).
type CashFlowRow struct {
	Year                 int     `json:"year"`
	OperatingCF          float64 `json:"operating_cf"`
	InvestingCF          float64 `json:"investing_cf"`
	FinancingCF          float64 `json:"financing_cf"`
	NetChangeInCash      float64 `json:"net_change_in_cash"`
	Capex                float64 `json:"capex"`
	DeltaNWC             float64 `json:"delta_nwc"`
	FinancingDebtChange  float64 `json:"financing_debt_change"`
	FinancingEquityIssue float64 `json:"financing_equity_issue"`
	Dividends            float64 `json:"dividends"`
}

// BalanceSheetRow is the closing balance sheet of one year.
type BalanceSheetRow struct {
	Year               int     `json:"year"`
	Cash               float64 `json:"cash"`
	AccountsReceivable float64 `json:"accounts_receivable"`
	Inventory          float64 `json:"inventory"`
	PPE                float64 `json:"ppe"`
	TotalAssets        float64 `json:"total_assets"`
	AccountsPayable    float64 `json:"accounts_payable"`
	Debt               float64 `json:"debt"`
	ShareCapital       float64 `json:"share_capital"`
	RetainedEarnings   float64 `json:"retained_earnings"`
	TotalLiabilities   float64 `json:"total_liabilities"`
	TotalEquity        float64 `json:"total_equity"`
	AssetsMinusLiabEq  float64 `json:"assets_minus_liab_eq"`
}

// ShareholdingRow attributes one year's equity to one holder.
type ShareholdingRow struct {
	Year             int     `json:"year"`
	Holder           string  `json:"holder"`
	OwnershipPct     float64 `json:"ownership_pct"`
	EquityAttributed float64 `json:"equity_attributed"`
}

// Holder is a named ownership class and its fraction of total equity.
type Holder struct {
	Name     string  `json:"name" yaml:"name"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
}

// OpeningBalances seeds the rolling balance sheet state.
type OpeningBalances struct {
	Cash             float64 `json:"cash_opening"`
	PPE              float64 `json:"ppne_opening"`
	Debt             float64 `json:"debt_opening"`
	ShareCapital     float64 `json:"equity_opening"`
	RetainedEarnings float64 `json:"retained_earnings_opening"`
}

// Assets is the opening asset side (cash and PP&E; working capital starts at zero).
func (o OpeningBalances) Assets() float64 { return o.Cash + o.PPE }

// Claims is the opening liabilities-plus-equity side.
func (o OpeningBalances) Claims() float64 { return o.Debt + o.ShareCapital + o.RetainedEarnings }

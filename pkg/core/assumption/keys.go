package assumption

// Key names a single model assumption.
type Key string

// Structural keys. A run cannot proceed without them.
const (
	StartYear    Key = "start_year"
	TermYears    Key = "term_years"
	RevenueStart Key = "revenue_start"
)

// Ratio keys. Absent ratios fall back to DefaultRatios with a warning.
const (
	RevenueGrowth         Key = "revenue_growth_pct"
	COGSPctRevenue        Key = "cogs_pct_revenue"
	OpexPctRevenue        Key = "opex_pct_revenue"
	DepreciationPct       Key = "depreciation_pct_revenue"
	CapexPctRevenue       Key = "capex_pct_revenue"
	TaxRate               Key = "tax_rate"
	InterestRate          Key = "interest_rate"
	LeverageProxy         Key = "leverage_proxy"
	ARPctRevenue          Key = "ar_pct_revenue"
	InventoryPctCOGS      Key = "inv_pct_cogs"
	APPctCOGS             Key = "ap_pct_cogs"
	DividendsPctNetIncome Key = "dividends_pct_net_income"
	DiscountRate          Key = "discount_rate"
	RiskFreeRate          Key = "risk_free_rate"
	MarketReturn          Key = "market_return"
	Beta                  Key = "beta"
	TerminalGrowth        Key = "terminal_growth"
)

// Opening balance keys.
const (
	CashOpening             Key = "cash_opening"
	PPEOpening              Key = "ppne_opening"
	DebtOpening             Key = "debt_opening"
	EquityOpening           Key = "equity_opening"
	RetainedEarningsOpening Key = "retained_earnings_opening"
)

// Year-keyed schedules.
const (
	DebtChangeSchedule  Key = "debt_change_schedule"
	EquityIssueSchedule Key = "equity_issue_schedule"
)

// DefaultRatios are the engine-internal fallbacks for ratio assumptions.
var DefaultRatios = map[Key]float64{
	RevenueGrowth:         0.10,
	COGSPctRevenue:        0.55,
	OpexPctRevenue:        0.25,
	DepreciationPct:       0.04,
	CapexPctRevenue:       0.05,
	TaxRate:               0.25,
	InterestRate:          0.08,
	LeverageProxy:         0.15,
	ARPctRevenue:          0.12,
	InventoryPctCOGS:      0.08,
	APPctCOGS:             0.15,
	DividendsPctNetIncome: 0.0,
	DiscountRate:          0.12,
	RiskFreeRate:          0.07,
	MarketReturn:          0.12,
	TerminalGrowth:        0.02,
}

// OpeningKeys lists the rolling balances that may be seeded explicitly.
var OpeningKeys = []Key{CashOpening, PPEOpening, DebtOpening, EquityOpening, RetainedEarningsOpening}

// IsSchedule reports whether k is read as a year-keyed schedule.
func IsSchedule(k Key) bool {
	return k == DebtChangeSchedule || k == EquityIssueSchedule
}

package projection

import (
	"errors"
	"math"
	"testing"

	"finmodel/pkg/core/assumption"
	"finmodel/pkg/core/modelerr"
)

func TestRollforward_SingleYearFromZero(t *testing.T) {
	is := []IncomeStatementRow{{Year: 2026, Depreciation: 400_000}}
	wc := []WorkingCapitalRow{{Year: 2026}}
	cf := []CashFlowRow{{Year: 2026, Capex: -500_000, NetChangeInCash: 500_000}}

	bs, err := Rollforward(is, wc, cf, OpeningBalances{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bs[0].Cash != 500_000 {
		t.Errorf("expected cash 500000, got %.2f", bs[0].Cash)
	}
	if bs[0].PPE != 100_000 {
		t.Errorf("expected PP&E 100000, got %.2f", bs[0].PPE)
	}
}

func balancedDrivers() Drivers {
	return Drivers{
		Income:         baseIncomeDrivers(),
		WorkingCapital: standardRatios(),
		Financing: FinancingPolicy{
			CapexPctRevenue:       0.05,
			DebtChange:            assumption.Schedule{2027: 750_000, 2029: -300_000},
			EquityIssue:           assumption.Schedule{2028: 1_000_000},
			DividendsPctNetIncome: 0.25,
		},
		Opening: OpeningBalances{
			Cash:             1_000_000,
			PPE:              3_500_000,
			Debt:             2_000_000,
			ShareCapital:     2_000_000,
			RetainedEarnings: 500_000,
		},
	}
}

func TestRollforward_BalancesEveryYear(t *testing.T) {
	st, err := Articulate(balancedDrivers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range st.BalanceSheet {
		tol := 1e-6 * math.Max(1, math.Abs(row.TotalAssets))
		if math.Abs(row.AssetsMinusLiabEq) > tol {
			t.Errorf("year %d: assets - (liabilities + equity) = %.6f exceeds %.6f", row.Year, row.AssetsMinusLiabEq, tol)
		}
		if row.TotalAssets != row.Cash+row.AccountsReceivable+row.Inventory+row.PPE {
			t.Errorf("year %d: total assets do not sum", row.Year)
		}
	}
}

func TestRollforward_CashAndRetainedEarningsLink(t *testing.T) {
	d := balancedDrivers()
	st, err := Articulate(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prevCash := d.Opening.Cash
	prevRE := d.Opening.RetainedEarnings
	for i, row := range st.BalanceSheet {
		if !approxEqual(row.Cash, prevCash+st.CashFlow[i].NetChangeInCash) {
			t.Errorf("year %d: cash %.2f does not roll from %.2f", row.Year, row.Cash, prevCash)
		}
		wantRE := prevRE + st.IncomeStatement[i].NetIncome + st.CashFlow[i].Dividends
		if !approxEqual(row.RetainedEarnings, wantRE) {
			t.Errorf("year %d: retained earnings %.2f, expected %.2f", row.Year, row.RetainedEarnings, wantRE)
		}
		prevCash, prevRE = row.Cash, row.RetainedEarnings
	}
}

func TestRollforward_FloorsHoldUnderStress(t *testing.T) {
	d := balancedDrivers()
	d.Income.OpexPct = 0.9
	d.Financing.CapexPctRevenue = 0
	d.Financing.DebtChange = assumption.Schedule{2026: -10_000_000}
	d.Financing.EquityIssue = assumption.Schedule{2027: -10_000_000}
	d.Income.DepreciationPct = 0.5

	st, err := Articulate(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range st.BalanceSheet {
		if row.PPE < 0 || row.Debt < 0 || row.ShareCapital < 0 || row.RetainedEarnings < 0 {
			t.Errorf("year %d: floored balance went negative: %+v", row.Year, row)
		}
	}
	// The floors absorb real flows, so the identity must visibly break.
	if st.BalanceSheet[0].AssetsMinusLiabEq == 0 {
		t.Errorf("expected a binding floor to surface as an imbalance")
	}
}

func TestRollforward_MisalignedTables(t *testing.T) {
	is := []IncomeStatementRow{{Year: 2026}, {Year: 2027}}
	wc := []WorkingCapitalRow{{Year: 2026}, {Year: 2027}}
	cf := []CashFlowRow{{Year: 2026}}

	_, err := Rollforward(is, wc, cf, OpeningBalances{})
	if !errors.Is(err, modelerr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOpeningBalancesFrom_Precedence(t *testing.T) {
	set := assumption.New(map[assumption.Key]float64{
		assumption.CashOpening: 10,
		assumption.PPEOpening:  20,
	}, nil)
	got := OpeningBalancesFrom(map[string]float64{"cash_opening": 99}, assumption.NewReader(set))

	if got.Cash != 99 {
		t.Errorf("explicit cash should win, got %.2f", got.Cash)
	}
	if got.PPE != 20 {
		t.Errorf("expected PP&E from assumptions, got %.2f", got.PPE)
	}
	if got.Debt != 0 || got.ShareCapital != 0 || got.RetainedEarnings != 0 {
		t.Errorf("absent balances should be zero, got %+v", got)
	}
}

package validate

import (
	"errors"
	"strings"
	"testing"

	"finmodel/pkg/core/assumption"
	"finmodel/pkg/core/modelerr"
	"finmodel/pkg/core/projection"
)

func articulated(t *testing.T, mutate func(*projection.Drivers)) (*projection.Statements, projection.OpeningBalances) {
	t.Helper()
	d := projection.Drivers{
		Income: projection.IncomeDrivers{
			StartYear: 2026, TermYears: 5, RevenueStart: 10_000_000, GrowthRate: 0.08,
			COGSPct: 0.55, OpexPct: 0.25, DepreciationPct: 0.04, TaxRate: 0.25,
			InterestRate: 0.08, OpeningDebt: 2_000_000,
		},
		WorkingCapital: projection.WorkingCapitalRatios{ARPctRevenue: 0.12, InventoryPctCOGS: 0.08, APPctCOGS: 0.15},
		Financing: projection.FinancingPolicy{
			CapexPctRevenue:       0.05,
			DebtChange:            assumption.Schedule{2028: -500_000},
			DividendsPctNetIncome: 0.2,
		},
		Opening: projection.OpeningBalances{Cash: 1_000_000, PPE: 3_500_000, Debt: 2_000_000, ShareCapital: 2_000_000, RetainedEarnings: 500_000},
	}
	if mutate != nil {
		mutate(&d)
	}
	st, err := projection.Articulate(d)
	if err != nil {
		t.Fatalf("articulate: %v", err)
	}
	return st, d.Opening
}

func TestStatements_BalancedRun(t *testing.T) {
	st, opening := articulated(t, nil)

	report := Statements(st, opening, DefaultRelativeTolerance)
	if !report.AllBalanced {
		t.Fatalf("expected a balanced run, got violations: %v", report.Violations)
	}
	if len(report.Years) != 5 {
		t.Errorf("expected 5 year reports, got %d", len(report.Years))
	}
	if err := report.Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	for _, yr := range report.Years {
		t.Logf("✓ %d: gap %.9f (tolerance %.4f)", yr.Year, yr.Gap, yr.Tolerance)
	}
}

func TestStatements_BindingFloorIsReported(t *testing.T) {
	st, opening := articulated(t, func(d *projection.Drivers) {
		d.Income.OpexPct = 0.8
		d.Opening.RetainedEarnings = 0
		d.Opening.ShareCapital = 2_500_000
	})

	report := Statements(st, opening, DefaultRelativeTolerance)
	if report.AllBalanced {
		t.Fatalf("expected the retained earnings floor to break the identity")
	}
	checks := map[string]bool{}
	for _, v := range report.Violations {
		checks[v.Check] = true
	}
	if !checks[CheckBalanceIdentity] || !checks[CheckRetainedEarnings] {
		t.Errorf("expected balance and retained earnings violations, got %v", report.Violations)
	}
	if checks[CheckCashLinkage] {
		t.Errorf("cash is never floored, cash linkage should hold")
	}

	err := report.Err()
	if !errors.Is(err, modelerr.ErrInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
	var vs modelerr.InvariantViolations
	if !errors.As(err, &vs) || len(vs) != len(report.Violations) {
		t.Errorf("expected InvariantViolations with %d entries", len(report.Violations))
	}
}

func TestStatements_TamperedCash(t *testing.T) {
	st, opening := articulated(t, nil)
	st.BalanceSheet[2].Cash += 1_000

	report := Statements(st, opening, DefaultRelativeTolerance)
	var years []int
	for _, v := range report.Violations {
		if v.Check == CheckCashLinkage {
			years = append(years, v.Year)
		}
	}
	// The tampered year and the year after both misstate the movement.
	if len(years) != 2 || years[0] != 2028 || years[1] != 2029 {
		t.Errorf("expected cash linkage failures in 2028 and 2029, got %v", years)
	}
}

func TestBalanceIdentity_RelativeTolerance(t *testing.T) {
	row := projection.BalanceSheetRow{Year: 2026, TotalAssets: 1e9, TotalLiabilities: 4e8, TotalEquity: 6e8 - 500}
	if v := BalanceIdentity(row, DefaultRelativeTolerance); v != nil {
		t.Errorf("gap 500 on 1e9 assets is within tolerance, got %v", v)
	}
	row.TotalEquity = 6e8 - 5_000
	v := BalanceIdentity(row, DefaultRelativeTolerance)
	if v == nil {
		t.Fatalf("gap 5000 on 1e9 assets should fail")
	}
	if v.Gap != 5_000 || v.Check != CheckBalanceIdentity {
		t.Errorf("unexpected violation %+v", v)
	}
}

func TestTolerance_FloorsAtOne(t *testing.T) {
	if got := Tolerance(1e-6, 0.5); got != 1e-6 {
		t.Errorf("expected 1e-6 for small balance sheets, got %g", got)
	}
	if got := Tolerance(0, 2); got != 2*DefaultRelativeTolerance {
		t.Errorf("non-positive tolerance should fall back to default, got %g", got)
	}
}

func TestOpening(t *testing.T) {
	balanced := projection.OpeningBalances{Cash: 1_000_000, PPE: 3_500_000, Debt: 2_000_000, ShareCapital: 2_000_000, RetainedEarnings: 500_000}
	if err := Opening(balanced, DefaultRelativeTolerance); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Opening(projection.OpeningBalances{}, DefaultRelativeTolerance); err != nil {
		t.Errorf("all-zero openings balance, got %v", err)
	}

	unbalanced := balanced
	unbalanced.RetainedEarnings = 0
	err := Opening(unbalanced, DefaultRelativeTolerance)
	var cfgErr *modelerr.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "opening_balances" {
		t.Fatalf("expected opening_balances configuration error, got %v", err)
	}
	if !strings.Contains(cfgErr.Reason, "set retained_earnings_opening to 500000.00") {
		t.Errorf("expected a retained earnings hint, got %q", cfgErr.Reason)
	}
}

// Package validate checks the articulated statements for the accounting
// identity and for cross-statement linkage. Failures are reported as
// modelerr.InvariantViolation values; deciding whether they abort a run is
// left to the caller.
package validate

import (
	"math"

	"finmodel/pkg/core/modelerr"
	"finmodel/pkg/core/projection"
)

// DefaultRelativeTolerance scales with the size of the balance sheet.
const DefaultRelativeTolerance = 1e-6

// Check names, used as InvariantViolation.Check.
const (
	CheckBalanceIdentity  = "balance_identity"
	CheckCashLinkage      = "cash_linkage"
	CheckRetainedEarnings = "retained_earnings_linkage"
)

// Tolerance is the absolute tolerance for a year whose total assets are
// totalAssets: rel x max(1, |totalAssets|).
func Tolerance(rel, totalAssets float64) float64 {
	if rel <= 0 {
		rel = DefaultRelativeTolerance
	}
	return rel * math.Max(1, math.Abs(totalAssets))
}

// =============================================================================
// REPORT
// =============================================================================

// YearReport holds the outcome of every check for one year.
type YearReport struct {
	Year         int      `json:"year"`
	Gap          float64  `json:"gap"` // assets - (liabilities + equity)
	Tolerance    float64  `json:"tolerance"`
	AllPassed    bool     `json:"all_passed"`
	FailedChecks []string `json:"failed_checks,omitempty"`
}

// Report is the validation outcome of a whole run.
type Report struct {
	AllBalanced bool                         `json:"all_balanced"`
	Years       []YearReport                 `json:"years"`
	Violations  modelerr.InvariantViolations `json:"violations,omitempty"`
}

// Err returns the violations as an error, or nil when every check passed.
func (r Report) Err() error {
	if len(r.Violations) == 0 {
		return nil
	}
	return r.Violations
}

// Statements runs the balance identity and both linkage checks over every
// year. opening is the state the first year rolls from.
func Statements(st *projection.Statements, opening projection.OpeningBalances, rel float64) Report {
	report := Report{AllBalanced: true, Years: make([]YearReport, 0, len(st.BalanceSheet))}

	prevCash := opening.Cash
	prevRE := opening.RetainedEarnings
	for i, bs := range st.BalanceSheet {
		tol := Tolerance(rel, bs.TotalAssets)
		yr := YearReport{Year: bs.Year, Gap: bs.AssetsMinusLiabEq, Tolerance: tol, AllPassed: true}

		fail := func(check string, gap float64) {
			yr.AllPassed = false
			yr.FailedChecks = append(yr.FailedChecks, check)
			report.Violations = append(report.Violations, modelerr.InvariantViolation{
				Year: bs.Year, Check: check, Gap: gap, Tolerance: tol,
			})
		}

		if v := BalanceIdentity(bs, rel); v != nil {
			fail(v.Check, v.Gap)
		}
		if i < len(st.CashFlow) {
			if gap := CashLinkage(prevCash, bs, st.CashFlow[i]); math.Abs(gap) > tol {
				fail(CheckCashLinkage, gap)
			}
			if i < len(st.IncomeStatement) {
				if gap := RetainedEarningsLinkage(prevRE, bs, st.IncomeStatement[i], st.CashFlow[i]); math.Abs(gap) > tol {
					fail(CheckRetainedEarnings, gap)
				}
			}
		}

		if !yr.AllPassed {
			report.AllBalanced = false
		}
		report.Years = append(report.Years, yr)
		prevCash, prevRE = bs.Cash, bs.RetainedEarnings
	}
	return report
}

// BalanceIdentity returns a violation when assets differ from liabilities
// plus equity by more than the tolerance, nil otherwise.
func BalanceIdentity(bs projection.BalanceSheetRow, rel float64) *modelerr.InvariantViolation {
	gap := bs.TotalAssets - (bs.TotalLiabilities + bs.TotalEquity)
	tol := Tolerance(rel, bs.TotalAssets)
	if math.Abs(gap) <= tol {
		return nil
	}
	return &modelerr.InvariantViolation{Year: bs.Year, Check: CheckBalanceIdentity, Gap: gap, Tolerance: tol}
}

// Opening rejects opening balances whose asset side differs from their
// claims. Working capital starts at zero, so only cash and PP&E count.
func Opening(o projection.OpeningBalances, rel float64) error {
	gap := o.Assets() - o.Claims()
	if math.Abs(gap) <= Tolerance(rel, o.Assets()) {
		return nil
	}
	return modelerr.Invalid("opening_balances",
		"cash + ppne (%.2f) must equal debt + equity + retained earnings (%.2f); set retained_earnings_opening to %.2f or adjust the openings",
		o.Assets(), o.Claims(), o.RetainedEarnings+gap)
}

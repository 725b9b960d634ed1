package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"finmodel/pkg/core/assumption"
	"finmodel/pkg/core/modelerr"
	"finmodel/pkg/core/projection"
	"finmodel/pkg/core/store"
	"finmodel/pkg/core/validate"
	"finmodel/pkg/core/valuation"
)

// ValidationConfig controls how accounting checks affect a run.
type ValidationConfig struct {
	EnableStrictValidation bool    // If true, invariant violations abort the run
	BalanceSheetTolerance  float64 // Relative tolerance for A = L + E and the linkage checks
}

// DefaultValidationConfig is strict with a 1e-6 relative tolerance.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		EnableStrictValidation: true,
		BalanceSheetTolerance:  validate.DefaultRelativeTolerance,
	}
}

// Input is everything a single model run consumes.
type Input struct {
	Name            string              `json:"name"`
	BenchmarkTicker string              `json:"benchmark_ticker,omitempty"`
	LookbackYears   int                 `json:"lookback_years,omitempty"`
	Overrides       assumption.Set      `json:"assumptions"`
	OpeningBalances map[string]float64  `json:"opening_balances,omitempty"`
	Ownership       []projection.Holder `json:"ownership,omitempty"`
}

// Result is the full bundle of one run.
type Result struct {
	RunID     uuid.UUID `json:"run_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	Assumptions    assumption.Set                `json:"assumptions_effective"`
	Warnings       []modelerr.DataQualityWarning `json:"warnings,omitempty"`
	BenchmarkError string                        `json:"benchmark_error,omitempty"`

	IncomeStatement []projection.IncomeStatementRow `json:"income_statement"`
	WorkingCapital  []projection.WorkingCapitalRow  `json:"working_capital"`
	CashFlow        []projection.CashFlowRow        `json:"cash_flow"`
	BalanceSheet    []projection.BalanceSheetRow    `json:"balance_sheet"`
	Shareholding    []projection.ShareholdingRow    `json:"shareholding,omitempty"`

	Valuation       []valuation.Row      `json:"valuation"`
	DiscountRate    float64              `json:"discount_rate"`
	RateSource      valuation.RateSource `json:"rate_source"`
	EnterpriseValue float64              `json:"enterprise_value"`
	NetPresentValue float64              `json:"net_present_value"`

	Balance validate.Report `json:"balance"`
}

// Orchestrator sequences resolution, projection, validation and valuation.
// It holds no per-run state, so one instance may serve concurrent runs as
// long as its fetcher and writer are safe for concurrent use.
type Orchestrator struct {
	fetcher          assumption.Fetcher
	writer           store.TableWriter
	validationConfig ValidationConfig
	concurrency      int
	now              func() time.Time
}

// NewOrchestrator creates an orchestrator. fetcher may be nil, in which case
// benchmark tickers are ignored.
func NewOrchestrator(fetcher assumption.Fetcher) *Orchestrator {
	return &Orchestrator{
		fetcher:          fetcher,
		validationConfig: DefaultValidationConfig(),
		concurrency:      4,
		now:              time.Now,
	}
}

// SetWriter sets the collaborator used by Persist.
func (o *Orchestrator) SetWriter(w store.TableWriter) {
	o.writer = w
}

// SetValidationConfig updates the validation configuration.
func (o *Orchestrator) SetValidationConfig(config ValidationConfig) {
	o.validationConfig = config
}

// SetConcurrency bounds the number of scenarios RunBatch evaluates at once.
func (o *Orchestrator) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	o.concurrency = n
}

// Run executes one model run. Configuration errors are returned unchanged;
// invariant violations are returned as modelerr.InvariantViolations when
// strict validation is on.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Result, error) {
	logger := log.With().Str("component", "pipeline").Str("scenario", in.Name).Logger()
	start := o.now()

	if err := projection.ValidateOwnership(in.Ownership); err != nil {
		return nil, err
	}

	// 1. Assumptions: benchmark baseline under explicit overrides
	resolution := assumption.Resolve(ctx, o.fetcher, in.BenchmarkTicker, in.LookbackYears, in.Overrides)
	reader := assumption.NewReader(resolution.Effective)

	// 2. Drivers; structural keys are required
	drivers, err := projection.DriversFrom(reader, in.OpeningBalances)
	if err != nil {
		return nil, err
	}
	tol := o.validationConfig.BalanceSheetTolerance
	if err := validate.Opening(drivers.Opening, tol); err != nil {
		return nil, err
	}

	// 3. Statements
	st, err := projection.Articulate(drivers)
	if err != nil {
		return nil, err
	}

	// 4. Accounting checks
	report := validate.Statements(st, drivers.Opening, tol)
	if !report.AllBalanced {
		if o.validationConfig.EnableStrictValidation {
			logger.Error().Int("violations", len(report.Violations)).Err(report.Err()).Msg("statements do not balance")
			return nil, report.Err()
		}
		logger.Warn().Int("violations", len(report.Violations)).Err(report.Err()).Msg("statements do not balance, continuing")
	}

	res := &Result{
		RunID:           uuid.New(),
		Name:            in.Name,
		CreatedAt:       start,
		Assumptions:     resolution.Effective,
		IncomeStatement: st.IncomeStatement,
		WorkingCapital:  st.WorkingCapital,
		CashFlow:        st.CashFlow,
		BalanceSheet:    st.BalanceSheet,
		Balance:         report,
	}
	if resolution.FetchErr != nil {
		res.BenchmarkError = resolution.FetchErr.Error()
	}

	// 5. Shareholding, only when ownership is given
	if len(in.Ownership) > 0 {
		if ok, sum := projection.OwnershipSumsToOne(in.Ownership); !ok {
			reader.Note(modelerr.DataQualityWarning{
				Key:     "ownership_sum",
				Default: sum,
				Note:    fmt.Sprintf("ownership fractions sum to %.6f, not 1", sum),
			})
		}
		res.Shareholding = projection.AttributeEquity(st.BalanceSheet, in.Ownership)
	}

	// 6. Valuation
	rate, source := valuation.DiscountRate(reader)
	summary, err := valuation.Value(st.CashFlow, rate, source)
	if err != nil {
		return nil, err
	}
	res.Valuation = summary.Rows
	res.DiscountRate = summary.DiscountRate
	res.RateSource = summary.RateSource
	res.EnterpriseValue = summary.EnterpriseValue
	res.NetPresentValue = summary.NetPresentValue

	res.Warnings = reader.Warnings()
	for _, w := range res.Warnings {
		logger.Warn().Str("key", w.Key).Float64("default", w.Default).Msg(w.String())
	}

	logger.Info().
		Str("run_id", res.RunID.String()).
		Int("years", len(res.IncomeStatement)).
		Float64("enterprise_value", res.EnterpriseValue).
		Dur("elapsed", o.now().Sub(start)).
		Msg("model run complete")
	return res, nil
}

// Persist hands every result table to the configured writer.
func (o *Orchestrator) Persist(ctx context.Context, res *Result) error {
	if o.writer == nil {
		return fmt.Errorf("no table writer configured")
	}
	run := store.Run{
		ID:        res.RunID,
		Name:      res.Name,
		CreatedAt: res.CreatedAt,
		Summary: map[string]float64{
			"enterprise_value":  res.EnterpriseValue,
			"net_present_value": res.NetPresentValue,
			"discount_rate":     res.DiscountRate,
		},
	}
	for _, t := range Tables(res) {
		if err := o.writer.WriteTable(ctx, run, t.Name, t); err != nil {
			return fmt.Errorf("persist %s: %w", t.Name, err)
		}
	}
	log.Info().Str("component", "pipeline").Str("run_id", res.RunID.String()).Msg("results persisted")
	return nil
}

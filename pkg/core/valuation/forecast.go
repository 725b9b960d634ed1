package valuation

import (
	"math"

	"finmodel/pkg/core/modelerr"
	"finmodel/pkg/core/projection"
)

// FlatForecastInput parameterises the standalone forecaster.
type FlatForecastInput struct {
	StartYear      int     `json:"start_year"`
	TermYears      int     `json:"term_years"`
	Revenue        float64 `json:"revenue"`
	FCFMargin      float64 `json:"fcf_margin"`
	DiscountRate   float64 `json:"discount_rate"`
	TerminalGrowth float64 `json:"terminal_growth"`
}

// FlatForecastResult is the output of FlatForecast.
type FlatForecastResult struct {
	Rows            []Row   `json:"rows"`
	PVExplicit      float64 `json:"pv_explicit"`
	TerminalValue   float64 `json:"terminal_value"`
	PVTerminal      float64 `json:"pv_terminal"`
	EnterpriseValue float64 `json:"enterprise_value"`
}

// FlatForecast values a flat revenue line at a constant FCF margin and adds
// a Gordon terminal value discounted from the last forecast year. This is a
// separate policy from the three-statement valuation, which carries no
// terminal value.
func FlatForecast(in FlatForecastInput) (*FlatForecastResult, error) {
	if in.TermYears < 1 {
		return nil, modelerr.Invalid("term_years", "must be at least 1, got %d", in.TermYears)
	}
	if in.TermYears > projection.MaxTermYears {
		return nil, modelerr.Invalid("term_years", "must be at most %d, got %d", projection.MaxTermYears, in.TermYears)
	}

	rows := make([]Row, 0, in.TermYears)
	fcf := in.Revenue * in.FCFMargin
	for _, year := range projection.Years(in.StartYear, in.TermYears) {
		rows = append(rows, Row{Year: year, FCF: fcf})
	}
	rows, err := Discount(rows, in.DiscountRate)
	if err != nil {
		return nil, err
	}

	tv, err := TerminalValue(fcf, in.DiscountRate, in.TerminalGrowth)
	if err != nil {
		return nil, err
	}
	pvTV := tv / math.Pow(1+in.DiscountRate, float64(in.TermYears))

	pv := EnterpriseValue(rows)
	return &FlatForecastResult{
		Rows:            rows,
		PVExplicit:      pv,
		TerminalValue:   tv,
		PVTerminal:      pvTV,
		EnterpriseValue: pv + pvTV,
	}, nil
}

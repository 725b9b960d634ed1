package valuation

import (
	"finmodel/pkg/core/assumption"
)

// RateSource records where the discount rate came from.
type RateSource string

const (
	RateExplicit RateSource = "explicit"
	RateCAPM     RateSource = "capm"
	RateDefault  RateSource = "default"
)

// CostOfEquity is the CAPM rate: Rf + Beta x (Rm - Rf).
func CostOfEquity(riskFree, beta, marketReturn float64) float64 {
	return riskFree + beta*(marketReturn-riskFree)
}

// DiscountRate picks the rate used for discounting. An explicit
// discount_rate always wins. Otherwise, when a beta is known, the CAPM rate is
// built from risk_free_rate and market_return (each defaulted if absent).
// Failing both, the engine default applies and is reported as a warning.
func DiscountRate(r *assumption.Reader) (float64, RateSource) {
	if v, ok := r.Optional(assumption.DiscountRate); ok {
		return v, RateExplicit
	}
	if beta, ok := r.Optional(assumption.Beta); ok {
		rf := r.Ratio(assumption.RiskFreeRate)
		rm := r.Ratio(assumption.MarketReturn)
		return CostOfEquity(rf, beta, rm), RateCAPM
	}
	return r.Ratio(assumption.DiscountRate), RateDefault
}

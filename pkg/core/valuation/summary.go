package valuation

import (
	"finmodel/pkg/core/projection"
)

// Summary is the valuation of a three-statement run.
type Summary struct {
	Rows            []Row      `json:"rows"`
	DiscountRate    float64    `json:"discount_rate"`
	RateSource      RateSource `json:"rate_source"`
	EnterpriseValue float64    `json:"enterprise_value"`
	NetPresentValue float64    `json:"net_present_value"`
}

// Value discounts the run's free cash flows at rate. Enterprise value is
// the explicit-horizon sum, and net present value equals it.
func Value(cf []projection.CashFlowRow, rate float64, source RateSource) (*Summary, error) {
	rows, err := Discount(FreeCashFlow(cf), rate)
	if err != nil {
		return nil, err
	}
	ev := EnterpriseValue(rows)
	return &Summary{
		Rows:            rows,
		DiscountRate:    rate,
		RateSource:      source,
		EnterpriseValue: ev,
		NetPresentValue: ev,
	}, nil
}

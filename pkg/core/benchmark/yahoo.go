// Package benchmark supplies baseline assumptions derived from market data.
// Every fetcher here satisfies assumption.Fetcher.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"finmodel/pkg/core/assumption"
)

// ErrNoHistory is returned when the price series is too short to derive a
// growth rate.
var ErrNoHistory = errors.New("no usable price history")

// CloseSource returns the closing prices of symbol between start and end in
// chronological order.
type CloseSource func(ctx context.Context, symbol string, start, end time.Time) ([]decimal.Decimal, error)

// Yahoo derives revenue_growth_pct from the price CAGR of a benchmark ticker
// over the lookback window, using monthly closes from the Yahoo chart API.
type Yahoo struct {
	closes CloseSource
	now    func() time.Time
}

// NewYahoo creates a fetcher backed by the Yahoo chart API.
func NewYahoo() *Yahoo {
	return &Yahoo{closes: chartCloses, now: time.Now}
}

// NewYahooWithSource is NewYahoo with an injected price source and clock.
func NewYahooWithSource(src CloseSource, now func() time.Time) *Yahoo {
	if now == nil {
		now = time.Now
	}
	return &Yahoo{closes: src, now: now}
}

// Fetch implements assumption.Fetcher.
func (y *Yahoo) Fetch(ctx context.Context, ticker string, lookbackYears int) (assumption.Set, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return assumption.New(nil, nil), nil
	}
	if lookbackYears < 1 {
		lookbackYears = 1
	}

	end := y.now()
	start := end.AddDate(-lookbackYears, 0, 0)
	closes, err := y.closes(ctx, symbol, start, end)
	if err != nil {
		return assumption.Set{}, fmt.Errorf("price history for %s: %w", symbol, err)
	}

	growth, err := GrowthFromCloses(closes, lookbackYears)
	if err != nil {
		return assumption.Set{}, fmt.Errorf("growth for %s: %w", symbol, err)
	}
	return assumption.New(map[assumption.Key]float64{
		assumption.RevenueGrowth: growth,
	}, nil), nil
}

// GrowthFromCloses is the compound annual growth of the first to the last
// positive close over years: (last/first)^(1/years) - 1.
func GrowthFromCloses(closes []decimal.Decimal, years int) (float64, error) {
	if len(closes) < 2 {
		return 0, ErrNoHistory
	}
	first, last := closes[0], closes[len(closes)-1]
	if !first.IsPositive() || !last.IsPositive() {
		return 0, fmt.Errorf("%w: non-positive close", ErrNoHistory)
	}
	if years < 1 {
		years = 1
	}
	ratio, _ := last.Div(first).Float64()
	growth := math.Pow(ratio, 1/float64(years)) - 1
	if math.IsNaN(growth) || math.IsInf(growth, 0) {
		return 0, fmt.Errorf("%w: growth is not finite", ErrNoHistory)
	}
	return growth, nil
}

func chartCloses(ctx context.Context, symbol string, start, end time.Time) ([]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneMonth,
	}

	iter := chart.Get(params)
	var closes []decimal.Decimal
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := iter.Bar()
		if bar.Close.IsZero() {
			continue
		}
		closes = append(closes, bar.Close)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return closes, nil
}

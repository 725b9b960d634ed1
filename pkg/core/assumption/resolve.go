package assumption

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"finmodel/pkg/core/modelerr"
)

// Fetcher supplies benchmark-derived baseline assumptions for a ticker.
// Implementations may return an empty Set.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, lookbackYears int) (Set, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, ticker string, lookbackYears int) (Set, error)

func (f FetcherFunc) Fetch(ctx context.Context, ticker string, lookbackYears int) (Set, error) {
	return f(ctx, ticker, lookbackYears)
}

// DefaultLookbackYears is used when a request does not name a window.
const DefaultLookbackYears = 5

// Resolution is the outcome of merging a baseline with overrides.
type Resolution struct {
	Effective Set
	Baseline  Set
	// Shadowed lists baseline keys replaced by an explicit override.
	Shadowed []Key
	// FetchErr is set when the benchmark source failed. The run continues.
	FetchErr *modelerr.ExternalFetchFailure
}

// Resolve merges the benchmark baseline for ticker with overrides. A failed
// or empty fetch degrades to overrides plus engine defaults; it never aborts.
func Resolve(ctx context.Context, fetcher Fetcher, ticker string, lookbackYears int, overrides Set) Resolution {
	res := Resolution{Baseline: New(nil, nil)}
	if ticker != "" && fetcher != nil {
		if lookbackYears <= 0 {
			lookbackYears = DefaultLookbackYears
		}
		baseline, err := guardedFetch(ctx, fetcher, ticker, lookbackYears)
		if err != nil {
			res.FetchErr = &modelerr.ExternalFetchFailure{Ticker: ticker, Err: err}
			log.Warn().Str("component", "assumption").Str("ticker", ticker).Err(err).
				Msg("benchmark unavailable, continuing with overrides and defaults")
		} else {
			res.Baseline = baseline
			for _, k := range baseline.Keys() {
				if overrides.Has(k) {
					res.Shadowed = append(res.Shadowed, k)
				}
			}
			log.Debug().Str("component", "assumption").Str("ticker", ticker).
				Int("keys", baseline.Len()).Int("overridden", len(res.Shadowed)).Msg("benchmark baseline fetched")
		}
	}
	res.Effective = Merge(res.Baseline, overrides)
	return res
}

func guardedFetch(ctx context.Context, fetcher Fetcher, ticker string, lookbackYears int) (set Set, err error) {
	defer func() {
		if r := recover(); r != nil {
			set, err = Set{}, fmt.Errorf("fetcher panicked: %v", r)
		}
	}()
	return fetcher.Fetch(ctx, ticker, lookbackYears)
}

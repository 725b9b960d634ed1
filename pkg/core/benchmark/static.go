package benchmark

import (
	"context"
	"strings"

	"finmodel/pkg/core/assumption"
)

// Static serves fixed baselines per ticker. It is used when network fetches
// are disabled and in tests. Unknown tickers yield an empty set.
type Static map[string]assumption.Set

// Fetch implements assumption.Fetcher.
func (s Static) Fetch(_ context.Context, ticker string, _ int) (assumption.Set, error) {
	if set, ok := s[strings.ToUpper(strings.TrimSpace(ticker))]; ok {
		return set, nil
	}
	return assumption.New(nil, nil), nil
}

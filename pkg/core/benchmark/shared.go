package benchmark

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"finmodel/pkg/core/assumption"
)

// Shared wraps a Fetcher so that concurrent requests for the same ticker and
// window share a single upstream call. It keeps no cache: once a call
// returns, the next request fetches again.
type Shared struct {
	next  assumption.Fetcher
	group singleflight.Group
}

// NewShared wraps next.
func NewShared(next assumption.Fetcher) *Shared {
	return &Shared{next: next}
}

// Fetch implements assumption.Fetcher.
func (s *Shared) Fetch(ctx context.Context, ticker string, lookbackYears int) (assumption.Set, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker)) + "/" + strconv.Itoa(lookbackYears)
	// The upstream call outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.next.Fetch(detached, ticker, lookbackYears)
	})
	select {
	case <-ctx.Done():
		return assumption.Set{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return assumption.Set{}, r.Err
		}
		// Set accessors copy, so sharing the value across callers is safe.
		return r.Val.(assumption.Set), nil
	}
}

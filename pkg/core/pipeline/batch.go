package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// BatchOutcome is the result of one scenario in a batch.
type BatchOutcome struct {
	Name   string
	Result *Result
	Err    error
}

// RunBatch evaluates independent scenarios concurrently, at most
// SetConcurrency at a time. A failing scenario does not stop the others.
// Outcomes are returned in input order.
func (o *Orchestrator) RunBatch(ctx context.Context, inputs []Input) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(inputs))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			outcomes[i].Name = in.Name
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			res, err := o.Run(ctx, in)
			outcomes[i].Result, outcomes[i].Err = res, err
			if err != nil {
				log.Warn().Str("component", "pipeline").Str("scenario", in.Name).Err(err).Msg("scenario failed")
			}
			return nil // non-fatal
		})
	}
	_ = g.Wait()
	return outcomes
}

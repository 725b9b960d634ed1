package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"finmodel/pkg/config"
	"finmodel/pkg/core/assumption"
	"finmodel/pkg/core/benchmark"
	"finmodel/pkg/core/pipeline"
	"finmodel/pkg/core/report"
	"finmodel/pkg/core/store"
)

// engine is an orchestrator plus whatever must be closed after it.
type engine struct {
	cfg     *config.Config
	orch    *pipeline.Orchestrator
	html    *report.HTMLWriter
	persist bool
	closers []func()
}

// Run delegates to the orchestrator.
func (e *engine) Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error) {
	return e.orch.Run(ctx, withDefaults(in, e.cfg))
}

// RunBatch delegates to the orchestrator.
func (e *engine) RunBatch(ctx context.Context, inputs []pipeline.Input) []pipeline.BatchOutcome {
	for i := range inputs {
		inputs[i] = withDefaults(inputs[i], e.cfg)
	}
	return e.orch.RunBatch(ctx, inputs)
}

// Persist writes every table of res and releases the HTML writer's copy.
func (e *engine) Persist(ctx context.Context, res *pipeline.Result) error {
	if e.html != nil {
		defer e.html.Forget(res.RunID)
	}
	return e.orch.Persist(ctx, res)
}

func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// newEngine wires the benchmark source, table writers and validation
// settings from cfg. noPersist skips every writer.
func newEngine(ctx context.Context, cfg *config.Config, noPersist bool) (*engine, error) {
	var fetcher assumption.Fetcher
	if cfg.Benchmark.Enabled {
		fetcher = benchmark.NewShared(benchmark.NewYahoo())
	}

	orch := pipeline.NewOrchestrator(fetcher)
	orch.SetValidationConfig(pipeline.ValidationConfig{
		EnableStrictValidation: cfg.Engine.Strict,
		BalanceSheetTolerance:  cfg.Engine.Tolerance,
	})
	orch.SetConcurrency(cfg.Engine.Concurrency)

	e := &engine{cfg: cfg, orch: orch}
	if noPersist {
		return e, nil
	}

	var writers store.Multi
	if cfg.Output.HasFormat("csv") {
		writers = append(writers, store.NewCSVWriter(cfg.Output.Dir, cfg.Output.Archive))
	}
	if cfg.Output.HasFormat("html") {
		e.html = report.NewHTMLWriter(cfg.Output.Dir)
		writers = append(writers, e.html)
	}
	if cfg.Output.HasFormat("postgres") {
		db, err := store.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		e.closers = append(e.closers, db.Close)
		writers = append(writers, store.NewPostgresWriter(db))
	}
	if len(writers) > 0 {
		orch.SetWriter(writers)
		e.persist = true
	}
	log.Debug().Str("component", "cli").Strs("formats", cfg.Output.Formats).Bool("benchmark", fetcher != nil).Msg("engine wired")
	return e, nil
}

// withDefaults fills per-scenario settings the document left out.
func withDefaults(in pipeline.Input, cfg *config.Config) pipeline.Input {
	if in.LookbackYears < 1 {
		in.LookbackYears = cfg.Benchmark.LookbackYears
	}
	return in
}

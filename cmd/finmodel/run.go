package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finmodel/pkg/core/report"
	"finmodel/pkg/core/scenario"
	"finmodel/pkg/core/valuation"
)

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run [scenario-file]",
	Short: "Run one scenario and write its tables",
	Long: `Run one scenario (YAML or HJSON) through the model, print a summary
and hand every table to the configured writers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		noPersist, _ := cmd.Flags().GetBool("no-persist")
		asJSON, _ := cmd.Flags().GetBool("json")
		ticker, _ := cmd.Flags().GetString("ticker")
		mdOut, _ := cmd.Flags().GetString("markdown")

		in, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		if ticker != "" {
			in.BenchmarkTicker = ticker
		}

		e, err := newEngine(ctx, cfg, noPersist)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.Run(ctx, in)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", in.Name, err)
		}
		if e.persist {
			if err := e.Persist(ctx, res); err != nil {
				return err
			}
		}
		if mdOut != "" {
			if err := os.WriteFile(mdOut, []byte(report.Markdown(res)), 0o644); err != nil {
				return fmt.Errorf("write markdown: %w", err)
			}
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderResult(res))
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("no-persist", false, "skip every table writer")
	runCmd.Flags().Bool("json", false, "print the full result as JSON")
	runCmd.Flags().String("ticker", "", "benchmark ticker, overrides the scenario")
	runCmd.Flags().String("markdown", "", "also write a Markdown report to this path")
}

// --- Batch Command ---

var batchCmd = &cobra.Command{
	Use:   "batch [scenario-file...]",
	Short: "Run several scenarios concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		noPersist, _ := cmd.Flags().GetBool("no-persist")

		inputs, err := scenario.LoadAll(args)
		if err != nil {
			return err
		}

		e, err := newEngine(ctx, cfg, noPersist)
		if err != nil {
			return err
		}
		defer e.Close()

		outcomes := e.RunBatch(ctx, inputs)
		failed := 0
		for i, o := range outcomes {
			if o.Err != nil {
				failed++
				continue
			}
			if e.persist {
				if err := e.Persist(ctx, o.Result); err != nil {
					outcomes[i].Err = err
					failed++
				}
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderOutcomes(outcomes))
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(outcomes))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().Bool("no-persist", false, "skip every table writer")
}

// --- Forecast Command ---

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Value a flat revenue line with a terminal value",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in valuation.FlatForecastInput
		in.StartYear, _ = cmd.Flags().GetInt("start-year")
		in.TermYears, _ = cmd.Flags().GetInt("years")
		in.Revenue, _ = cmd.Flags().GetFloat64("revenue")
		in.FCFMargin, _ = cmd.Flags().GetFloat64("fcf-margin")
		in.DiscountRate, _ = cmd.Flags().GetFloat64("discount-rate")
		in.TerminalGrowth, _ = cmd.Flags().GetFloat64("terminal-growth")

		res, err := valuation.FlatForecast(in)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderForecast(res))
		return nil
	},
}

func init() {
	forecastCmd.Flags().Int("start-year", 2026, "first forecast year")
	forecastCmd.Flags().Int("years", 5, "number of forecast years")
	forecastCmd.Flags().Float64("revenue", 0, "annual revenue")
	forecastCmd.Flags().Float64("fcf-margin", 0.10, "free cash flow as a share of revenue")
	forecastCmd.Flags().Float64("discount-rate", 0.12, "discount rate")
	forecastCmd.Flags().Float64("terminal-growth", 0.02, "perpetual growth after the last year")
	forecastCmd.MarkFlagRequired("revenue")
}

package main

import (
	"context"
	"encoding/csv"
	"fmt"

	"github.com/fuegopro/retiresim/internal/calculation"
	"github.com/fuegopro/retiresim/internal/config"
	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/fuegopro/retiresim/internal/output"
	"github.com/spf13/cobra"
)

func newDebugCmd() *cobra.Command {
	var planPath, runConfigPath, historicalPath, band string
	var newestFirst bool
	var runIndex int

	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Replay a single run's year-by-year trace: one deterministic run index, or a band's aggregator-selected representative run",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := config.LoadPlanFile(planPath)
			if err != nil {
				return err
			}

			runConfig := domain.RunConfig{}.WithDefaults()
			if runConfigPath != "" {
				runConfig, err = config.LoadRunConfigFile(runConfigPath)
				if err != nil {
					return err
				}
			}

			historical, err := loadHistorical(historicalPath, newestFirst)
			if err != nil {
				return err
			}

			if band != "" {
				return runDebugBand(cmd, &plan, runConfig, historical, domain.Band(band))
			}
			return runDebugIndex(cmd, &plan, runConfig, historical, runIndex)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to the YAML plan file (required)")
	cmd.Flags().StringVar(&runConfigPath, "run-config", "", "path to the TOML run-configuration file")
	cmd.Flags().StringVar(&historicalPath, "historical", "", "path to the historical monthly-return data file (required)")
	cmd.Flags().BoolVar(&newestFirst, "newest-first", false, "historical data rows are ordered newest-first")
	cmd.Flags().IntVar(&runIndex, "run-index", 0, "deterministic run index to replay (ignored if --band is set)")
	cmd.Flags().StringVar(&band, "band", "", "replay the full batch and print the named band's representative run (lower, median, upper)")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("historical")

	return cmd
}

// runDebugIndex replays one deterministic run by index, bypassing the
// aggregator entirely.
func runDebugIndex(cmd *cobra.Command, plan *domain.Plan, runConfig domain.RunConfig, historical *calculation.HistoricalReturnService, runIndex int) error {
	yearEngine := calculation.NewYearEngine(historical, calculation.NewTaxCalculator(), calculation.NewRMDCalculator())
	runEngine := calculation.NewRunEngine(yearEngine)

	result, err := runEngine.RunOne(plan, runConfig, runIndex)
	if err != nil {
		return err
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{"age", "total_portfolio", "tax_total", "shortfall"}); err != nil {
		return err
	}
	for _, rec := range result.Trace {
		if err := w.Write([]string{
			intToString(rec.Age),
			rec.TotalPortfolio().StringFixed(2),
			rec.Tax.Total().StringFixed(2),
			rec.Shortfall.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nfinal portfolio: %s, success: %t\n", result.FinalPortfolio.StringFixed(2), result.Success)
	return nil
}

// runDebugBand runs the full batch through Engine.Simulate and prints the
// requested band's aggregator-selected representative run via
// CSVDetailFormatter, matching what a caller of the band-scoped debug
// endpoint would receive.
func runDebugBand(cmd *cobra.Command, plan *domain.Plan, runConfig domain.RunConfig, historical *calculation.HistoricalReturnService, band domain.Band) error {
	switch band {
	case domain.BandLower, domain.BandMedian, domain.BandUpper:
	default:
		return fmt.Errorf("unrecognized band %q: want lower, median, or upper", band)
	}

	engine := calculation.NewEngine(historical)
	result, err := engine.Simulate(context.Background(), *plan, runConfig)
	if err != nil {
		return err
	}

	out, err := output.CSVDetailFormatter{Band: band}.Format(&result)
	if err != nil {
		return fmt.Errorf("formatting band detail: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func intToString(n int) string {
	return fmt.Sprintf("%d", n)
}

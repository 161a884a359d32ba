package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fuegopro/retiresim/internal/calculation"
	"github.com/fuegopro/retiresim/internal/config"
	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/fuegopro/retiresim/internal/output"
	"github.com/fuegopro/retiresim/internal/store"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	var planPath, runConfigPath, historicalPath, format, storePath, planID string
	var newestFirst bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a Monte Carlo simulation for a plan and print the aggregate result",
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

			engine := calculation.NewEngine(historical)
			result, err := engine.Simulate(context.Background(), plan, runConfig)
			if err != nil {
				return err
			}

			formatter, err := pickFormatter(format)
			if err != nil {
				return err
			}
			out, err := formatter.Format(&result)
			if err != nil {
				return fmt.Errorf("formatting result: %w", err)
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}

			if storePath != "" {
				if planID == "" {
					planID = planPath
				}
				s, err := store.Open(storePath)
				if err != nil {
					return err
				}
				defer func() { _ = s.Close() }()
				if err := s.SaveResult(planID, &result); err != nil {
					return fmt.Errorf("persisting result: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to the YAML plan file (required)")
	cmd.Flags().StringVar(&runConfigPath, "run-config", "", "path to the TOML run-configuration file")
	cmd.Flags().StringVar(&historicalPath, "historical", "", "path to the historical monthly-return data file (required)")
	cmd.Flags().BoolVar(&newestFirst, "newest-first", false, "historical data rows are ordered newest-first")
	cmd.Flags().StringVar(&format, "format", "console", "output format: console, json, csv")
	cmd.Flags().StringVar(&storePath, "store", "", "optional sqlite database path to persist the result")
	cmd.Flags().StringVar(&planID, "plan-id", "", "plan identifier to persist under (defaults to --plan path)")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("historical")

	return cmd
}

func loadHistorical(path string, newestFirst bool) (*calculation.HistoricalReturnService, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening historical data file: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := calculation.NewHistoricalReturnService()
	if err := h.Load(f, newestFirst, calculation.NopLogger{}); err != nil {
		return nil, err
	}
	return h, nil
}

func pickFormatter(name string) (output.Formatter, error) {
	switch name {
	case "console", "":
		return output.ConsoleFormatter{}, nil
	case "json":
		return output.JSONFormatter{Indent: true}, nil
	case "csv":
		return output.CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unrecognized format %q", name)
	}
}

package main

import (
	"fmt"

	"github.com/fuegopro/retiresim/internal/store"
	"github.com/spf13/cobra"
)

func newResultsCmd() *cobra.Command {
	var storePath, planID, format string

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Print a previously persisted aggregate result",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(storePath)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			result, err := s.LoadResult(planID)
			if err != nil {
				return fmt.Errorf("loading result for plan %q: %w", planID, err)
			}

			formatter, err := pickFormatter(format)
			if err != nil {
				return err
			}
			out, err := formatter.Format(result)
			if err != nil {
				return fmt.Errorf("formatting result: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "sqlite database path (required)")
	cmd.Flags().StringVar(&planID, "plan-id", "", "plan identifier to retrieve (required)")
	cmd.Flags().StringVar(&format, "format", "console", "output format: console, json, csv")
	_ = cmd.MarkFlagRequired("store")
	_ = cmd.MarkFlagRequired("plan-id")

	return cmd
}

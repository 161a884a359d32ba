// Command retiresim runs the Monte Carlo retirement-planning engine
// from the command line: simulate a plan, print a stored result, and
// dump a single deterministic run's year-by-year trace.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "retiresim",
		Short: "Monte Carlo retirement withdrawal simulator",
	}
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newResultsCmd())
	root.AddCommand(newDebugCmd())
	return root
}

package output

import (
	"bytes"
	"fmt"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders a short human-readable summary.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(result *domain.AggregateResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "Simulation: %d runs, %d-%d percentile band\n", result.NumRuns, result.LowerPct, result.UpperPct)
	fmt.Fprintf(buf, "Success rate: %s%%\n", result.SuccessRate.Mul(decimal.NewFromInt(100)).StringFixed(1))
	fmt.Fprintln(buf, "")
	fmt.Fprintln(buf, "Age   P-Lower        P50            P-Upper")
	for _, pt := range result.PortfolioTimeline {
		fmt.Fprintf(buf, "%-5d %-14s %-14s %-14s\n", pt.Age, pt.PLower.StringFixed(2), pt.P50.StringFixed(2), pt.PUpper.StringFixed(2))
	}
	return buf.Bytes(), nil
}

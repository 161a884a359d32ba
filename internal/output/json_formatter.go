package output

import (
	"encoding/json"

	"github.com/fuegopro/retiresim/internal/domain"
)

// JSONFormatter renders an AggregateResult's summary fields (success rate,
// run count, percentiles) and its portfolio timeline as a single JSON
// payload. The account timeline and the per-band detail series are not
// included.
type JSONFormatter struct {
	Indent bool
}

func (JSONFormatter) Name() string { return "json" }

type jsonPortfolioPoint struct {
	Age    int    `json:"age"`
	PLower string `json:"p_lower"`
	P50    string `json:"p50"`
	PUpper string `json:"p_upper"`
}

type jsonResult struct {
	SuccessRate       string               `json:"success_rate"`
	NumRuns           int                  `json:"num_runs"`
	LowerPercentile   int                  `json:"lower_percentile"`
	UpperPercentile   int                  `json:"upper_percentile"`
	PortfolioTimeline []jsonPortfolioPoint `json:"portfolio_timeline"`
}

func (f JSONFormatter) Format(result *domain.AggregateResult) ([]byte, error) {
	out := jsonResult{
		SuccessRate:     result.SuccessRate.StringFixed(4),
		NumRuns:         result.NumRuns,
		LowerPercentile: result.LowerPct,
		UpperPercentile: result.UpperPct,
	}
	for _, pt := range result.PortfolioTimeline {
		out.PortfolioTimeline = append(out.PortfolioTimeline, jsonPortfolioPoint{
			Age: pt.Age, PLower: pt.PLower.StringFixed(2), P50: pt.P50.StringFixed(2), PUpper: pt.PUpper.StringFixed(2),
		})
	}
	if f.Indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

package output

import (
	"bytes"
	"encoding/csv"

	"github.com/fuegopro/retiresim/internal/domain"
)

// CSVFormatter renders a header row plus normalized child rows for the
// portfolio timeline. The per-band detail series are rendered separately
// by CSVDetailFormatter.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(result *domain.AggregateResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"num_runs", "lower_percentile", "upper_percentile", "success_rate"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.Write([]string{
		intToString(result.NumRuns),
		intToString(result.LowerPct),
		intToString(result.UpperPct),
		result.SuccessRate.StringFixed(4),
	}); err != nil {
		return nil, err
	}

	if err := w.Write(nil); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"age", "p_lower", "p50", "p_upper"}); err != nil {
		return nil, err
	}
	for _, pt := range result.PortfolioTimeline {
		if err := w.Write([]string{
			intToString(pt.Age),
			pt.PLower.StringFixed(2),
			pt.P50.StringFixed(2),
			pt.PUpper.StringFixed(2),
		}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// CSVDetailFormatter renders one band's account timeline, tax detail,
// income detail, expense detail, and return detail as normalized rows.
type CSVDetailFormatter struct {
	Band domain.Band
}

func (f CSVDetailFormatter) Name() string { return "csv-detail-" + string(f.Band) }

func (f CSVDetailFormatter) Format(result *domain.AggregateResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"section", "age", "field", "value"}); err != nil {
		return nil, err
	}
	for _, at := range result.AccountTimeline {
		if at.Band != f.Band {
			continue
		}
		if err := w.Write([]string{"account", intToString(at.Age), at.AccountName, at.Balance.StringFixed(2)}); err != nil {
			return nil, err
		}
	}
	for _, d := range result.AnnualDetail[f.Band] {
		rows := [][2]string{
			{"tax_federal_ordinary", d.TaxFederalOrdinary.StringFixed(2)},
			{"tax_federal_ltcg", d.TaxFederalLTCG.StringFixed(2)},
			{"tax_state", d.TaxState.StringFixed(2)},
			{"effective_tax_rate", d.EffectiveTaxRate.StringFixed(4)},
			{"shortfall", d.Shortfall.StringFixed(2)},
		}
		for _, r := range rows {
			if err := w.Write([]string{"annual", intToString(d.Age), r[0], r[1]}); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range result.IncomeDetail[f.Band] {
		if err := w.Write([]string{"income", intToString(d.Age), d.SourceName, d.Amount.StringFixed(2)}); err != nil {
			return nil, err
		}
	}
	for _, d := range result.ExpenseDetail[f.Band] {
		if err := w.Write([]string{"expense", intToString(d.Age), d.ExpenseName, d.Amount.StringFixed(2)}); err != nil {
			return nil, err
		}
	}
	for _, d := range result.ReturnDetail[f.Band] {
		if err := w.Write([]string{"return", intToString(d.Age), d.AccountName, d.ReturnRate.StringFixed(4)}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

package calculation

import (
	"math"
	"sort"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregator consumes a batch of run results and produces the
// cross-sectional percentile series, success rate, and per-band
// representative traces.
type Aggregator struct{}

// NewAggregator returns an Aggregator. It carries no state: the
// historical-return service and the per-run traces it consumes are all
// owned elsewhere.
func NewAggregator() *Aggregator { return &Aggregator{} }

// interpolatedPercentile returns the p-th percentile (0..100) of sorted
// values by linear interpolation between order statistics.
func interpolatedPercentile(sorted []decimal.Decimal, p float64) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	if n == 1 {
		return sorted[0]
	}
	idx := p / 100.0 * float64(n-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := decimal.NewFromFloat(idx - float64(lo))
	return sorted[lo].Add(sorted[hi].Sub(sorted[lo]).Mul(frac))
}

// rankIndex returns round(pct/100 * (n-1)), the representative-run rank
// used for band selection.
func rankIndex(pct int, n int) int {
	if n <= 1 {
		return 0
	}
	idx := math.Round(float64(pct) / 100.0 * float64(n-1))
	if idx < 0 {
		idx = 0
	}
	if idx > float64(n-1) {
		idx = float64(n - 1)
	}
	return int(idx)
}

// Aggregate folds a batch of run results into the final AggregateResult.
func (ag *Aggregator) Aggregate(runs []domain.RunResult, plan *domain.Plan, config domain.RunConfig) domain.AggregateResult {
	n := len(runs)
	result := domain.AggregateResult{
		NumRuns:  n,
		LowerPct: config.LowerPct,
		UpperPct: config.UpperPct,
	}
	if n == 0 {
		return result
	}

	successCount := 0
	for _, r := range runs {
		if r.Success {
			successCount++
		}
	}
	result.SuccessRate = decimal.NewFromInt(int64(successCount)).Div(decimal.NewFromInt(int64(n)))

	horizon := plan.PlanningHorizonYears

	// Portfolio percentile series: one entry per age, ascending.
	for y := 0; y < horizon; y++ {
		age := plan.CurrentAge + y
		values := make([]decimal.Decimal, n)
		for i, r := range runs {
			if y < len(r.Trace) {
				values[i] = r.Trace[y].TotalPortfolio()
			}
		}
		sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
		result.PortfolioTimeline = append(result.PortfolioTimeline, domain.PortfolioPoint{
			Age:    age,
			PLower: interpolatedPercentile(values, float64(config.LowerPct)),
			P50:    interpolatedPercentile(values, 50),
			PUpper: interpolatedPercentile(values, float64(config.UpperPct)),
		})
	}

	// Representative-run selection: rank all runs by final portfolio
	// total ascending, ties broken by smaller run index.
	byFinal := make([]domain.RunResult, n)
	copy(byFinal, runs)
	sort.SliceStable(byFinal, func(i, j int) bool {
		if byFinal[i].FinalPortfolio.Equal(byFinal[j].FinalPortfolio) {
			return byFinal[i].RunIndex < byFinal[j].RunIndex
		}
		return byFinal[i].FinalPortfolio.LessThan(byFinal[j].FinalPortfolio)
	})

	bandRank := map[domain.Band]int{
		domain.BandLower:  rankIndex(config.LowerPct, n),
		domain.BandMedian: rankIndex(50, n),
		domain.BandUpper:  rankIndex(config.UpperPct, n),
	}

	result.AnnualDetail = make(map[domain.Band][]domain.YearAnnualDetail)
	result.IncomeDetail = make(map[domain.Band][]domain.YearIncomeDetail)
	result.ExpenseDetail = make(map[domain.Band][]domain.YearExpenseDetail)
	result.ReturnDetail = make(map[domain.Band][]domain.YearReturnDetail)

	for _, band := range domain.AllBands {
		run := byFinal[bandRank[band]]
		for _, rec := range run.Trace {
			result.AnnualDetail[band] = append(result.AnnualDetail[band], domain.YearAnnualDetail{
				Age:                rec.Age,
				TaxFederalOrdinary: rec.Tax.FederalOrdinary,
				TaxFederalLTCG:     rec.Tax.FederalLTCG,
				TaxState:           rec.Tax.State,
				EffectiveTaxRate:   rec.Tax.EffectiveRate,
				Shortfall:          rec.Shortfall,
			})
			for _, inc := range rec.Incomes {
				result.IncomeDetail[band] = append(result.IncomeDetail[band], domain.YearIncomeDetail{
					Age: rec.Age, SourceName: inc.SourceName, Amount: inc.Amount,
				})
			}
			for _, exp := range rec.Expenses {
				result.ExpenseDetail[band] = append(result.ExpenseDetail[band], domain.YearExpenseDetail{
					Age: rec.Age, ExpenseName: exp.ExpenseName, Amount: exp.Amount,
				})
			}
			for _, acc := range rec.Accounts {
				result.ReturnDetail[band] = append(result.ReturnDetail[band], domain.YearReturnDetail{
					Age: rec.Age, AccountID: acc.AccountID, AccountName: acc.AccountName, ReturnRate: acc.RealizedGrowthRate,
				})
				result.AccountTimeline = append(result.AccountTimeline, domain.AccountTimelinePoint{
					Band: band, AccountID: acc.AccountID, AccountName: acc.AccountName, Age: rec.Age, Balance: acc.EndBalance,
				})
			}
		}
	}

	return result
}

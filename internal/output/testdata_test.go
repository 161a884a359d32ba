package output

import (
	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

func buildSampleResult() *domain.AggregateResult {
	return &domain.AggregateResult{
		SuccessRate: decimal.NewFromFloat(0.9),
		NumRuns:     100,
		LowerPct:    10,
		UpperPct:    90,
		PortfolioTimeline: []domain.PortfolioPoint{
			{Age: 65, PLower: decimal.NewFromInt(100000), P50: decimal.NewFromInt(200000), PUpper: decimal.NewFromInt(300000)},
			{Age: 66, PLower: decimal.NewFromInt(90000), P50: decimal.NewFromInt(210000), PUpper: decimal.NewFromInt(310000)},
		},
		AccountTimeline: []domain.AccountTimelinePoint{
			{Band: domain.BandMedian, AccountID: "cash", AccountName: "Cash", Age: 65, Balance: decimal.NewFromInt(50000)},
		},
		AnnualDetail: map[domain.Band][]domain.YearAnnualDetail{
			domain.BandMedian: {
				{Age: 65, TaxFederalOrdinary: decimal.NewFromInt(1000), TaxFederalLTCG: decimal.NewFromInt(200), TaxState: decimal.NewFromInt(50), EffectiveTaxRate: decimal.NewFromFloat(0.12), Shortfall: decimal.Zero},
			},
		},
		IncomeDetail: map[domain.Band][]domain.YearIncomeDetail{
			domain.BandMedian: {{Age: 65, SourceName: "Social Security", Amount: decimal.NewFromInt(24000)}},
		},
		ExpenseDetail: map[domain.Band][]domain.YearExpenseDetail{
			domain.BandMedian: {{Age: 65, ExpenseName: "Living", Amount: decimal.NewFromInt(40000)}},
		},
		ReturnDetail: map[domain.Band][]domain.YearReturnDetail{
			domain.BandMedian: {{Age: 65, AccountID: "cash", AccountName: "Cash", ReturnRate: decimal.NewFromFloat(0.01)}},
		},
	}
}

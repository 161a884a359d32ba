package calculation

import (
	"context"
	"strings"
	"testing"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	h := NewHistoricalReturnService()
	require.NoError(t, h.Load(strings.NewReader(syntheticMonthlyData(240)), false, NopLogger{}))
	return NewEngine(h)
}

func TestEngineSimulate_TrivialSurvivalAllRunsSucceed(t *testing.T) {
	engine := newTestEngine(t)
	plan := domain.Plan{
		CurrentAge:           65,
		PlanningHorizonYears: 5,
		FilingStatus:         domain.FilingSingle,
		StateTax:             domain.StateTaxConfig{Mode: domain.StateTaxNone},
		Accounts: []domain.Account{
			{ID: "cash", TaxTreatment: domain.TreatmentCashSavings, AssetClass: domain.AssetSavings, StartBalance: decimal.NewFromInt(10_000_000), AnnualReturnRate: dec("0.01")},
		},
		Expenses: []domain.Expense{
			{ID: "living", Name: "living", AnnualAmount: decimal.NewFromInt(40000), StartAge: 65, EndAge: 69, InflationRate: dec("0.02")},
		},
	}
	config := domain.RunConfig{NumRuns: 20, LowerPct: 10, UpperPct: 90, MasterSeed: 1}

	result, err := engine.Simulate(context.Background(), plan, config)
	require.NoError(t, err)
	assert.True(t, result.SuccessRate.Equal(decimal.NewFromInt(1)), "got %s", result.SuccessRate)
}

func TestEngineSimulate_ForcedDepletionAllRunsFail(t *testing.T) {
	engine := newTestEngine(t)
	plan := domain.Plan{
		CurrentAge:           65,
		PlanningHorizonYears: 5,
		FilingStatus:         domain.FilingSingle,
		StateTax:             domain.StateTaxConfig{Mode: domain.StateTaxNone},
		Accounts: []domain.Account{
			{ID: "cash", TaxTreatment: domain.TreatmentCashSavings, AssetClass: domain.AssetSavings, StartBalance: decimal.NewFromInt(1000)},
		},
		Expenses: []domain.Expense{
			{ID: "living", Name: "living", AnnualAmount: decimal.NewFromInt(10_000_000), StartAge: 65, EndAge: 69},
		},
	}
	config := domain.RunConfig{NumRuns: 20, LowerPct: 10, UpperPct: 90, MasterSeed: 1}

	result, err := engine.Simulate(context.Background(), plan, config)
	require.NoError(t, err)
	assert.True(t, result.SuccessRate.IsZero(), "got %s", result.SuccessRate)
}

func TestEngineSimulate_RejectsInvalidPlan(t *testing.T) {
	engine := newTestEngine(t)
	plan := domain.Plan{CurrentAge: 0, PlanningHorizonYears: 5, FilingStatus: domain.FilingSingle}
	config := domain.RunConfig{NumRuns: 20, LowerPct: 10, UpperPct: 90}

	_, err := engine.Simulate(context.Background(), plan, config)
	require.Error(t, err)
}

func TestEngineSimulate_RejectsWhenHistoricalServiceNotLoaded(t *testing.T) {
	engine := NewEngine(NewHistoricalReturnService())
	plan := domain.Plan{CurrentAge: 65, PlanningHorizonYears: 5, FilingStatus: domain.FilingSingle}
	config := domain.RunConfig{NumRuns: 20, LowerPct: 10, UpperPct: 90}

	_, err := engine.Simulate(context.Background(), plan, config)
	require.Error(t, err)
}

func TestEngineSimulate_RejectsInvalidRunConfig(t *testing.T) {
	engine := newTestEngine(t)
	plan := domain.Plan{
		CurrentAge: 65, PlanningHorizonYears: 5, FilingStatus: domain.FilingSingle,
		Accounts: []domain.Account{{ID: "cash", TaxTreatment: domain.TreatmentCashSavings, AssetClass: domain.AssetSavings, StartBalance: decimal.NewFromInt(1000)}},
	}
	config := domain.RunConfig{NumRuns: 2, LowerPct: 10, UpperPct: 90}

	_, err := engine.Simulate(context.Background(), plan, config)
	require.Error(t, err)
}

func basicViablePlan() domain.Plan {
	return domain.Plan{
		CurrentAge:           70,
		PlanningHorizonYears: 10,
		FilingStatus:         domain.FilingMarriedJointly,
		StateTax:             domain.StateTaxConfig{Mode: domain.StateTaxFlat, FlatRate: dec("0.04")},
		Accounts: []domain.Account{
			{ID: "cash", TaxTreatment: domain.TreatmentCashSavings, AssetClass: domain.AssetSavings, StartBalance: decimal.NewFromInt(50000), AnnualReturnRate: dec("0.01")},
			{ID: "ira", TaxTreatment: domain.TreatmentTraditional, AssetClass: domain.AssetStocks, StartBalance: decimal.NewFromInt(400000)},
			{ID: "brokerage", TaxTreatment: domain.TreatmentTaxableBrokerage, AssetClass: domain.AssetStocks, StartBalance: decimal.NewFromInt(200000), GainsFraction: dec("0.5")},
		},
		IncomeSources: []domain.IncomeSource{
			{ID: "ss", Name: "Social Security", Kind: domain.IncomeSocialSecurity, AnnualAmount: decimal.NewFromInt(30000), StartAge: 70, EndAge: 95},
		},
		Expenses: []domain.Expense{
			{ID: "living", Name: "living", AnnualAmount: decimal.NewFromInt(60000), StartAge: 70, EndAge: 95, InflationRate: dec("0.025")},
		},
	}
}

func TestEngineSimulate_MedianBandDetailIncludesRMDStartAge(t *testing.T) {
	engine := newTestEngine(t)
	plan := basicViablePlan()
	plan.CurrentAge = RMDStartAge
	config := domain.RunConfig{NumRuns: 30, LowerPct: 10, UpperPct: 90, MasterSeed: 7}

	result, err := engine.Simulate(context.Background(), plan, config)
	require.NoError(t, err)
	found := false
	for _, d := range result.AnnualDetail[domain.BandMedian] {
		if d.Age == RMDStartAge {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func TestEngineSimulate_DeterministicAcrossRepeatedCalls(t *testing.T) {
	engine := newTestEngine(t)
	plan := basicViablePlan()
	config := domain.RunConfig{NumRuns: 30, LowerPct: 10, UpperPct: 90, MasterSeed: 123}

	a, err := engine.Simulate(context.Background(), plan, config)
	require.NoError(t, err)
	b, err := engine.Simulate(context.Background(), plan, config)
	require.NoError(t, err)

	assert.True(t, a.SuccessRate.Equal(b.SuccessRate))
	require.Equal(t, len(a.PortfolioTimeline), len(b.PortfolioTimeline))
	for i := range a.PortfolioTimeline {
		assert.True(t, a.PortfolioTimeline[i].P50.Equal(b.PortfolioTimeline[i].P50))
	}
}

func TestEngineSimulate_SequentialAndParallelPathsAgree(t *testing.T) {
	engine := newTestEngine(t)
	plan := basicViablePlan()

	sequential := domain.RunConfig{NumRuns: 30, LowerPct: 10, UpperPct: 90, MasterSeed: 55, ParallelismThreshold: 1000}
	parallel := domain.RunConfig{NumRuns: 30, LowerPct: 10, UpperPct: 90, MasterSeed: 55, ParallelismThreshold: 1, MaxWorkers: 4}

	a, err := engine.Simulate(context.Background(), plan, sequential)
	require.NoError(t, err)
	b, err := engine.Simulate(context.Background(), plan, parallel)
	require.NoError(t, err)

	assert.True(t, a.SuccessRate.Equal(b.SuccessRate), "sequential=%s parallel=%s", a.SuccessRate, b.SuccessRate)
	require.Equal(t, len(a.PortfolioTimeline), len(b.PortfolioTimeline))
	for i := range a.PortfolioTimeline {
		assert.True(t, a.PortfolioTimeline[i].P50.Equal(b.PortfolioTimeline[i].P50), "age %d diverged", a.PortfolioTimeline[i].Age)
	}
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleAggregateResult() *domain.AggregateResult {
	return &domain.AggregateResult{
		SuccessRate: decimal.NewFromFloat(0.87),
		NumRuns:     250,
		LowerPct:    10,
		UpperPct:    90,
		PortfolioTimeline: []domain.PortfolioPoint{
			{Age: 65, PLower: decimal.NewFromInt(100000), P50: decimal.NewFromInt(200000), PUpper: decimal.NewFromInt(300000)},
		},
		AccountTimeline: []domain.AccountTimelinePoint{
			{Band: domain.BandMedian, AccountID: "cash", AccountName: "Cash", Age: 65, Balance: decimal.NewFromInt(50000)},
		},
		AnnualDetail: map[domain.Band][]domain.YearAnnualDetail{
			domain.BandMedian: {{Age: 65, TaxFederalOrdinary: decimal.NewFromInt(1000), TaxFederalLTCG: decimal.NewFromInt(100), TaxState: decimal.NewFromInt(50), EffectiveTaxRate: decimal.NewFromFloat(0.11), Shortfall: decimal.Zero}},
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

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	original := sampleAggregateResult()

	require.NoError(t, s.SaveResult("plan-1", original))

	loaded, err := s.LoadResult("plan-1")
	require.NoError(t, err)

	assert.True(t, loaded.SuccessRate.Equal(original.SuccessRate))
	assert.Equal(t, original.NumRuns, loaded.NumRuns)
	assert.Equal(t, original.LowerPct, loaded.LowerPct)
	assert.Equal(t, original.UpperPct, loaded.UpperPct)

	require.Len(t, loaded.PortfolioTimeline, 1)
	assert.True(t, loaded.PortfolioTimeline[0].P50.Equal(decimal.NewFromInt(200000)))

	require.Len(t, loaded.AccountTimeline, 1)
	assert.Equal(t, "cash", loaded.AccountTimeline[0].AccountID)

	require.Len(t, loaded.AnnualDetail[domain.BandMedian], 1)
	require.Len(t, loaded.IncomeDetail[domain.BandMedian], 1)
	require.Len(t, loaded.ExpenseDetail[domain.BandMedian], 1)
	require.Len(t, loaded.ReturnDetail[domain.BandMedian], 1)
}

func TestStore_SaveResultReplacesPriorResultForSamePlan(t *testing.T) {
	s := openTestStore(t)
	first := sampleAggregateResult()
	require.NoError(t, s.SaveResult("plan-1", first))

	second := sampleAggregateResult()
	second.NumRuns = 999
	second.PortfolioTimeline = nil
	require.NoError(t, s.SaveResult("plan-1", second))

	loaded, err := s.LoadResult("plan-1")
	require.NoError(t, err)
	assert.Equal(t, 999, loaded.NumRuns)
	assert.Empty(t, loaded.PortfolioTimeline)
}

func TestStore_LoadResultMissingPlanReturnsError(t *testing.T) {
	s := openTestStore(t)
	_, err := s.LoadResult("does-not-exist")
	require.Error(t, err)
}

func TestStore_SeparatePlansDoNotCollide(t *testing.T) {
	s := openTestStore(t)
	a := sampleAggregateResult()
	b := sampleAggregateResult()
	b.NumRuns = 10
	require.NoError(t, s.SaveResult("plan-a", a))
	require.NoError(t, s.SaveResult("plan-b", b))

	loadedA, err := s.LoadResult("plan-a")
	require.NoError(t, err)
	loadedB, err := s.LoadResult("plan-b")
	require.NoError(t, err)

	assert.Equal(t, 250, loadedA.NumRuns)
	assert.Equal(t, 10, loadedB.NumRuns)
}

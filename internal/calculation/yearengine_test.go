package calculation

import (
	"strings"
	"testing"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestYearEngine(t *testing.T) *YearEngine {
	t.Helper()
	h := NewHistoricalReturnService()
	require.NoError(t, h.Load(strings.NewReader(syntheticMonthlyData(24)), false, NopLogger{}))
	return NewYearEngine(h, NewTaxCalculator(), NewRMDCalculator())
}

func basePlan() domain.Plan {
	return domain.Plan{
		CurrentAge:           65,
		PlanningHorizonYears: 20,
		FilingStatus:         domain.FilingSingle,
		StateTax:             domain.StateTaxConfig{Mode: domain.StateTaxNone},
	}
}

func TestYearEngineStep_NonStockAccountGrowsByFixedRate(t *testing.T) {
	ye := newTestYearEngine(t)
	plan := basePlan()
	accounts := []*AccountState{
		{ID: "savings", TaxTreatment: domain.TreatmentCashSavings, AssetClass: domain.AssetSavings, Balance: decimal.NewFromInt(10000), AnnualReturnRate: dec("0.05")},
	}
	rec, err := ye.Step(yearInput{plan: &plan, accounts: accounts, age: 65, stockMultiplier: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.Len(t, rec.Accounts, 1)
	assert.True(t, rec.Accounts[0].EndBalance.Equal(decimal.NewFromInt(10500)), "got %s", rec.Accounts[0].EndBalance)
	assert.True(t, rec.Accounts[0].RealizedGrowthRate.Equal(dec("0.05")))
}

func TestYearEngineStep_StockAccountGrowsByStockMultiplier(t *testing.T) {
	ye := newTestYearEngine(t)
	plan := basePlan()
	accounts := []*AccountState{
		{ID: "stocks", TaxTreatment: domain.TreatmentTaxableBrokerage, AssetClass: domain.AssetStocks, Balance: decimal.NewFromInt(10000), GainsFraction: dec("0.5")},
	}
	rec, err := ye.Step(yearInput{plan: &plan, accounts: accounts, age: 65, stockMultiplier: dec("1.10")})
	require.NoError(t, err)
	assert.True(t, rec.Accounts[0].EndBalance.Equal(decimal.NewFromInt(11000)), "got %s", rec.Accounts[0].EndBalance)
}

func TestYearEngineStep_NoRMDBeforeStartAge(t *testing.T) {
	ye := newTestYearEngine(t)
	plan := basePlan()
	accounts := []*AccountState{
		{ID: "ira", TaxTreatment: domain.TreatmentTraditional, AssetClass: domain.AssetSavings, Balance: decimal.NewFromInt(500000)},
	}
	rec, err := ye.Step(yearInput{plan: &plan, accounts: accounts, age: RMDStartAge - 1, stockMultiplier: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.True(t, rec.RequiredDistributionTotal.IsZero())
	assert.True(t, rec.Accounts[0].EndBalance.Equal(decimal.NewFromInt(500000)))
}

func TestYearEngineStep_RMDRealizedAtStartAge(t *testing.T) {
	ye := newTestYearEngine(t)
	plan := basePlan()
	balance := decimal.NewFromInt(500000)
	accounts := []*AccountState{
		{ID: "ira", TaxTreatment: domain.TreatmentTraditional, AssetClass: domain.AssetSavings, Balance: balance},
	}
	rec, err := ye.Step(yearInput{plan: &plan, accounts: accounts, age: RMDStartAge, stockMultiplier: decimal.NewFromInt(1)})
	require.NoError(t, err)
	expectedRMD := balance.Div(uniformLifetimeTable[RMDStartAge])
	assert.True(t, rec.RequiredDistributionTotal.Equal(expectedRMD), "got %s want %s", rec.RequiredDistributionTotal, expectedRMD)
	assert.True(t, rec.Accounts[0].EndBalance.Equal(balance.Sub(expectedRMD)))
	assert.True(t, rec.Accounts[0].RequiredDistribution.Equal(expectedRMD))
}

func TestYearEngineStep_ShortfallWhenResourcesExhausted(t *testing.T) {
	ye := newTestYearEngine(t)
	plan := basePlan()
	plan.Expenses = []domain.Expense{{ID: "e1", Name: "living", AnnualAmount: decimal.NewFromInt(10000), StartAge: 65, EndAge: 65}}
	accounts := []*AccountState{
		{ID: "cash", TaxTreatment: domain.TreatmentCashSavings, AssetClass: domain.AssetSavings, Balance: decimal.NewFromInt(100)},
	}
	rec, err := ye.Step(yearInput{plan: &plan, accounts: accounts, age: 65, stockMultiplier: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.True(t, rec.Shortfall.IsPositive())
	assert.True(t, rec.Accounts[0].EndBalance.IsZero())
}

func TestYearEngineStep_SocialSecurityUntaxedBelowLowerThreshold(t *testing.T) {
	ye := newTestYearEngine(t)
	plan := basePlan()
	plan.IncomeSources = []domain.IncomeSource{
		{ID: "ss", Name: "Social Security", Kind: domain.IncomeSocialSecurity, AnnualAmount: decimal.NewFromInt(20000), StartAge: 65, EndAge: 90},
	}
	accounts := []*AccountState{{ID: "cash", TaxTreatment: domain.TreatmentCashSavings, AssetClass: domain.AssetSavings, Balance: decimal.NewFromInt(1000)}}
	rec, err := ye.Step(yearInput{plan: &plan, accounts: accounts, age: 65, stockMultiplier: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.True(t, rec.TaxableSS.IsZero(), "got %s", rec.TaxableSS)
}

func TestYearEngineStep_SocialSecurityFullyTaxedAboveUpperThreshold(t *testing.T) {
	ye := newTestYearEngine(t)
	plan := basePlan()
	plan.IncomeSources = []domain.IncomeSource{
		{ID: "ss", Name: "Social Security", Kind: domain.IncomeSocialSecurity, AnnualAmount: decimal.NewFromInt(20000), StartAge: 65, EndAge: 90},
		{ID: "pension", Name: "Pension", Kind: domain.IncomePension, AnnualAmount: decimal.NewFromInt(60000), StartAge: 65, EndAge: 90},
	}
	accounts := []*AccountState{{ID: "cash", TaxTreatment: domain.TreatmentCashSavings, AssetClass: domain.AssetSavings, Balance: decimal.NewFromInt(1000)}}
	rec, err := ye.Step(yearInput{plan: &plan, accounts: accounts, age: 65, stockMultiplier: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.True(t, rec.TaxableSS.Equal(decimal.NewFromInt(20000).Mul(dec("0.85"))), "got %s", rec.TaxableSS)
}

func TestYearEngineStep_ExpenseInflatesFromCurrentAge(t *testing.T) {
	ye := newTestYearEngine(t)
	plan := basePlan()
	plan.Expenses = []domain.Expense{{ID: "e1", Name: "living", AnnualAmount: decimal.NewFromInt(1000), StartAge: 65, EndAge: 90, InflationRate: dec("0.10")}}
	accounts := []*AccountState{{ID: "cash", TaxTreatment: domain.TreatmentCashSavings, AssetClass: domain.AssetSavings, Balance: decimal.NewFromInt(1_000_000)}}
	rec, err := ye.Step(yearInput{plan: &plan, accounts: accounts, age: 67, stockMultiplier: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.Len(t, rec.Expenses, 1)
	assert.True(t, rec.Expenses[0].Amount.Equal(decimal.NewFromFloat(1210)), "got %s", rec.Expenses[0].Amount)
}

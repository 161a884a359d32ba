package domain

import "github.com/shopspring/decimal"

// AccountYearRecord captures one account's state transition for one
// simulated age.
type AccountYearRecord struct {
	AccountID            string
	AccountName          string
	StartBalance         decimal.Decimal
	EndBalance           decimal.Decimal
	RealizedGrowthRate   decimal.Decimal
	WithdrawnExpense     decimal.Decimal
	WithdrawnTax         decimal.Decimal
	RequiredDistribution decimal.Decimal
}

// IncomeYearRecord captures one income source's gross amount for one age.
type IncomeYearRecord struct {
	SourceID   string
	SourceName string
	Amount     decimal.Decimal
}

// ExpenseYearRecord captures one expense's inflation-adjusted amount.
type ExpenseYearRecord struct {
	ExpenseID   string
	ExpenseName string
	Amount      decimal.Decimal
}

// TaxBreakdown is the tax decomposition computed in year-engine phase 9.
type TaxBreakdown struct {
	FederalOrdinary decimal.Decimal
	FederalLTCG     decimal.Decimal
	State           decimal.Decimal
	EffectiveRate   decimal.Decimal
}

// Total returns the sum of the three tax components.
func (t TaxBreakdown) Total() decimal.Decimal {
	return t.FederalOrdinary.Add(t.FederalLTCG).Add(t.State)
}

// YearRecord is the full per-age trace record.
type YearRecord struct {
	Age                       int
	Accounts                  []AccountYearRecord
	Incomes                   []IncomeYearRecord
	Expenses                  []ExpenseYearRecord
	TaxableSS                 decimal.Decimal
	ProvisionalIncome         decimal.Decimal
	RequiredDistributionTotal decimal.Decimal
	NetCashNeed               decimal.Decimal
	OrdinaryIncome            decimal.Decimal
	LTCGIncome                decimal.Decimal
	Tax                       TaxBreakdown
	Shortfall                 decimal.Decimal
}

// TotalPortfolio sums end balances across all accounts for this year.
func (r YearRecord) TotalPortfolio() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Accounts {
		total = total.Add(a.EndBalance)
	}
	return total
}

// RunResult is the complete output of driving the year engine across a
// run's full horizon.
type RunResult struct {
	RunIndex       int
	Trace          []YearRecord
	FinalPortfolio decimal.Decimal
	Success        bool
}

package domain

import "github.com/shopspring/decimal"

// Band is one of the three labeled representative-run slots.
type Band string

const (
	BandLower  Band = "lower"
	BandMedian Band = "median"
	BandUpper  Band = "upper"
)

// AllBands lists the bands in a stable, canonical order.
var AllBands = [3]Band{BandLower, BandMedian, BandUpper}

// PortfolioPoint is one age's cross-sectional percentile summary of the
// total portfolio value across all runs.
type PortfolioPoint struct {
	Age     int
	PLower  decimal.Decimal
	P50     decimal.Decimal
	PUpper  decimal.Decimal
}

// AccountTimelinePoint is one band's representative balance for one
// account at one age.
type AccountTimelinePoint struct {
	Band        Band
	AccountID   string
	AccountName string
	Age         int
	Balance     decimal.Decimal
}

// AggregateResult is the complete output of Simulate.
type AggregateResult struct {
	SuccessRate       decimal.Decimal
	NumRuns           int
	LowerPct          int
	UpperPct          int
	PortfolioTimeline []PortfolioPoint
	AccountTimeline   []AccountTimelinePoint
	// AnnualDetail, IncomeDetail, ExpenseDetail, and ReturnDetail are the
	// per-band, age-indexed detail series, each keyed by Band so a caller
	// can retrieve a single band's trace.
	AnnualDetail  map[Band][]YearAnnualDetail
	IncomeDetail  map[Band][]YearIncomeDetail
	ExpenseDetail map[Band][]YearExpenseDetail
	ReturnDetail  map[Band][]YearReturnDetail
}

// YearAnnualDetail is one age's tax/shortfall summary for a band.
type YearAnnualDetail struct {
	Age                   int
	TaxFederalOrdinary    decimal.Decimal
	TaxFederalLTCG        decimal.Decimal
	TaxState              decimal.Decimal
	EffectiveTaxRate      decimal.Decimal
	Shortfall             decimal.Decimal
}

// YearIncomeDetail is one age's per-source income amount for a band.
type YearIncomeDetail struct {
	Age        int
	SourceName string
	Amount     decimal.Decimal
}

// YearExpenseDetail is one age's per-expense amount for a band.
type YearExpenseDetail struct {
	Age         int
	ExpenseName string
	Amount      decimal.Decimal
}

// YearReturnDetail is one age's per-account realized return for a band.
type YearReturnDetail struct {
	Age         int
	AccountID   string
	AccountName string
	ReturnRate  decimal.Decimal
}

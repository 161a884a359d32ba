// Package domain holds the plan, run-configuration, and result value
// types the calculation engine operates over. Every type here is a tree:
// a plan owns its accounts, income sources, and expenses by value, and
// never references another plan.
package domain

import "github.com/shopspring/decimal"

// FilingStatus is a closed enumeration of federal filing statuses.
type FilingStatus string

const (
	FilingSingle         FilingStatus = "single"
	FilingMarriedJointly FilingStatus = "married_jointly"
)

// StateTaxMode selects which of the three state-tax regimes applies.
type StateTaxMode string

const (
	StateTaxNone       StateTaxMode = "none"
	StateTaxFlat       StateTaxMode = "flat"
	StateTaxCalifornia StateTaxMode = "california"
)

// TaxTreatment is a closed enumeration of account tax treatments.
type TaxTreatment string

const (
	TreatmentCashSavings      TaxTreatment = "cash_savings"
	TreatmentTaxableBrokerage TaxTreatment = "taxable_brokerage"
	TreatmentTraditional      TaxTreatment = "traditional"
)

// AssetClass is a closed enumeration of account asset classes.
type AssetClass string

const (
	AssetStocks  AssetClass = "stocks"
	AssetBonds   AssetClass = "bonds"
	AssetSavings AssetClass = "savings"
)

// IncomeKind is a closed enumeration of income-source kinds.
type IncomeKind string

const (
	IncomeEmployment             IncomeKind = "employment"
	IncomeSocialSecurity         IncomeKind = "social_security"
	IncomePension                IncomeKind = "pension"
	IncomeRental                 IncomeKind = "rental"
	IncomeTraditionalDistribution IncomeKind = "traditional_distribution"
	IncomeOther                  IncomeKind = "other"
)

// Regime is a closed enumeration of market-regime directives used to
// seed the first simulated year's historical sampling.
type Regime string

const (
	RegimeBear Regime = "bear"
	RegimeBull Regime = "bull"
	RegimeNone Regime = "none"
)

// Account is one plan-owned investment account. Balance is mutated only
// inside a run's copy, never on the plan itself.
type Account struct {
	ID            string
	Name          string
	TaxTreatment  TaxTreatment
	AssetClass    AssetClass
	StartBalance  decimal.Decimal
	// AnnualReturnRate is required for non-stock accounts and ignored for
	// stocks, whose growth is drawn from the historical-return service.
	AnnualReturnRate decimal.Decimal
	// GainsFraction applies only to taxable_brokerage accounts: the
	// portion of a withdrawal realized as long-term capital gain. It is
	// forced to zero for taxable_brokerage+bonds accounts, and a zero value
	// is treated as 1 for other taxable_brokerage+non-stocks accounts.
	GainsFraction decimal.Decimal
}

// IncomeSource is a plan-owned, age-bounded income stream.
type IncomeSource struct {
	ID            string
	Name          string
	Kind          IncomeKind
	AnnualAmount  decimal.Decimal
	StartAge      int
	EndAge        int
	// ExplicitTaxable is consulted only when Kind == IncomeOther.
	ExplicitTaxable bool
}

// Active reports whether the income source pays at the given age.
func (s IncomeSource) Active(age int) bool {
	return age >= s.StartAge && age <= s.EndAge
}

// Expense is a plan-owned, age-bounded, self-inflating expense.
type Expense struct {
	ID            string
	Name          string
	AnnualAmount  decimal.Decimal
	StartAge      int
	EndAge        int
	InflationRate decimal.Decimal
}

// Active reports whether the expense is incurred at the given age.
func (e Expense) Active(age int) bool {
	return age >= e.StartAge && age <= e.EndAge
}

// AdjustedAmount returns the expense amount inflated from currentAge to age.
func (e Expense) AdjustedAmount(currentAge, age int) decimal.Decimal {
	years := age - currentAge
	if years <= 0 {
		return e.AnnualAmount
	}
	growth := decimal.NewFromInt(1).Add(e.InflationRate)
	factor := decimal.NewFromInt(1)
	for i := 0; i < years; i++ {
		factor = factor.Mul(growth)
	}
	return e.AnnualAmount.Mul(factor)
}

// Plan is the complete, immutable input to a simulation.
type Plan struct {
	CurrentAge           int
	PlanningHorizonYears int
	FilingStatus         FilingStatus
	StateTax             StateTaxConfig
	Accounts             []Account
	IncomeSources        []IncomeSource
	Expenses             []Expense
}

// StateTaxConfig bundles the state-tax mode with its one parameter.
type StateTaxConfig struct {
	Mode     StateTaxMode
	FlatRate decimal.Decimal // consulted only when Mode == StateTaxFlat
}

// LastSimulatedAge returns the final age included in the simulation.
func (p Plan) LastSimulatedAge() int {
	return p.CurrentAge + p.PlanningHorizonYears - 1
}

// ValidationError reports a single invalid input field as a structured
// 4xx-equivalent with the offending field named.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the plan-level invariants. It does not validate
// RunConfig; see RunConfig.Validate.
func (p Plan) Validate() error {
	if p.CurrentAge <= 0 {
		return &ValidationError{Field: "current_age", Message: "must be positive"}
	}
	if p.PlanningHorizonYears <= 0 {
		return &ValidationError{Field: "planning_horizon_years", Message: "must be positive"}
	}
	switch p.FilingStatus {
	case FilingSingle, FilingMarriedJointly:
	default:
		return &ValidationError{Field: "filing_status", Message: "must be single or married_jointly"}
	}
	switch p.StateTax.Mode {
	case StateTaxNone, StateTaxFlat, StateTaxCalifornia:
	default:
		return &ValidationError{Field: "state_tax.mode", Message: "must be none, flat, or california"}
	}
	for _, a := range p.Accounts {
		if a.StartBalance.IsNegative() {
			return &ValidationError{Field: "account[" + a.ID + "].start_balance", Message: "must be non-negative"}
		}
		switch a.TaxTreatment {
		case TreatmentCashSavings, TreatmentTaxableBrokerage, TreatmentTraditional:
		default:
			return &ValidationError{Field: "account[" + a.ID + "].tax_treatment", Message: "unrecognized tax treatment"}
		}
		switch a.AssetClass {
		case AssetStocks, AssetBonds, AssetSavings:
		default:
			return &ValidationError{Field: "account[" + a.ID + "].asset_class", Message: "unrecognized asset class"}
		}
	}
	for _, s := range p.IncomeSources {
		if s.StartAge > s.EndAge {
			return &ValidationError{Field: "income_source[" + s.ID + "]", Message: "start_age must not exceed end_age"}
		}
	}
	for _, e := range p.Expenses {
		if e.StartAge > e.EndAge {
			return &ValidationError{Field: "expense[" + e.ID + "]", Message: "start_age must not exceed end_age"}
		}
	}
	return nil
}

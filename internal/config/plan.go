// Package config loads plan definitions and run configuration from disk,
// using a YAML-plus-decimal-string loading pattern so financial fields
// never pass through a float.
package config

import (
	"fmt"
	"os"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// decimalString unmarshals a YAML scalar (quoted or bare) into a
// decimal.Decimal, so plan files can write "0.05" or 0.05 interchangeably
// without floating-point drift creeping in during YAML parsing.
type decimalString struct {
	decimal.Decimal
}

func (d *decimalString) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		d.Decimal = decimal.Zero
		return nil
	}
	parsed, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parsing decimal %q: %w", s, err)
	}
	d.Decimal = parsed
	return nil
}

type accountFile struct {
	ID               string        `yaml:"id"`
	Name             string        `yaml:"name"`
	TaxTreatment     string        `yaml:"tax_treatment"`
	AssetClass       string        `yaml:"asset_class"`
	StartBalance     decimalString `yaml:"start_balance"`
	AnnualReturnRate decimalString `yaml:"annual_return_rate"`
	GainsFraction    decimalString `yaml:"gains_fraction"`
}

type incomeSourceFile struct {
	ID              string        `yaml:"id"`
	Name            string        `yaml:"name"`
	Kind            string        `yaml:"kind"`
	AnnualAmount    decimalString `yaml:"annual_amount"`
	StartAge        int           `yaml:"start_age"`
	EndAge          int           `yaml:"end_age"`
	ExplicitTaxable bool          `yaml:"explicit_taxable"`
}

type expenseFile struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	AnnualAmount  decimalString `yaml:"annual_amount"`
	StartAge      int           `yaml:"start_age"`
	EndAge        int           `yaml:"end_age"`
	InflationRate decimalString `yaml:"inflation_rate"`
}

type stateTaxFile struct {
	Mode     string        `yaml:"mode"`
	FlatRate decimalString `yaml:"flat_rate"`
}

// planFile is the on-disk YAML shape of a Plan.
type planFile struct {
	CurrentAge           int                `yaml:"current_age"`
	PlanningHorizonYears int                `yaml:"planning_horizon_years"`
	FilingStatus         string             `yaml:"filing_status"`
	StateTax             stateTaxFile       `yaml:"state_tax"`
	Accounts             []accountFile      `yaml:"accounts"`
	IncomeSources        []incomeSourceFile `yaml:"income_sources"`
	Expenses             []expenseFile      `yaml:"expenses"`
}

// LoadPlanFile reads and validates a YAML plan file, returning the
// domain.Plan it describes.
func LoadPlanFile(path string) (domain.Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("reading plan file: %w", err)
	}
	return ParsePlan(raw)
}

// ParsePlan decodes YAML bytes into a domain.Plan and validates it.
func ParsePlan(raw []byte) (domain.Plan, error) {
	var pf planFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return domain.Plan{}, fmt.Errorf("parsing plan file: %w", err)
	}

	plan := domain.Plan{
		CurrentAge:           pf.CurrentAge,
		PlanningHorizonYears: pf.PlanningHorizonYears,
		FilingStatus:         domain.FilingStatus(pf.FilingStatus),
		StateTax: domain.StateTaxConfig{
			Mode:     domain.StateTaxMode(pf.StateTax.Mode),
			FlatRate: pf.StateTax.FlatRate.Decimal,
		},
	}
	for _, a := range pf.Accounts {
		gainsFraction := a.GainsFraction.Decimal
		plan.Accounts = append(plan.Accounts, domain.Account{
			ID:               a.ID,
			Name:             a.Name,
			TaxTreatment:     domain.TaxTreatment(a.TaxTreatment),
			AssetClass:       domain.AssetClass(a.AssetClass),
			StartBalance:     a.StartBalance.Decimal,
			AnnualReturnRate: a.AnnualReturnRate.Decimal,
			GainsFraction:    gainsFraction,
		})
	}
	for _, s := range pf.IncomeSources {
		plan.IncomeSources = append(plan.IncomeSources, domain.IncomeSource{
			ID:              s.ID,
			Name:            s.Name,
			Kind:            domain.IncomeKind(s.Kind),
			AnnualAmount:    s.AnnualAmount.Decimal,
			StartAge:        s.StartAge,
			EndAge:          s.EndAge,
			ExplicitTaxable: s.ExplicitTaxable,
		})
	}
	for _, e := range pf.Expenses {
		plan.Expenses = append(plan.Expenses, domain.Expense{
			ID:            e.ID,
			Name:          e.Name,
			AnnualAmount:  e.AnnualAmount.Decimal,
			StartAge:      e.StartAge,
			EndAge:        e.EndAge,
			InflationRate: e.InflationRate.Decimal,
		})
	}

	if err := plan.Validate(); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}

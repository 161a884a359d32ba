package calculation

import (
	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxBracket is one (rate, upper-bound) rung of a progressive schedule.
// Brackets for a filing status must be sorted ascending by Ceiling, and
// the final entry's Ceiling should be a very large sentinel value.
type TaxBracket struct {
	Rate    decimal.Decimal
	Ceiling decimal.Decimal
}

// BracketTable holds ordinary and long-term-capital-gains brackets plus
// the standard deduction, per filing status. Bracket constants live in
// configuration, never hard-coded into calculation logic.
type BracketTable struct {
	StandardDeduction map[domain.FilingStatus]decimal.Decimal
	Ordinary          map[domain.FilingStatus][]TaxBracket
	LTCG              map[domain.FilingStatus][]TaxBracket
	SSThresholdLower  map[domain.FilingStatus]decimal.Decimal
	SSThresholdUpper  map[domain.FilingStatus]decimal.Decimal
}

// CaliforniaBrackets holds the state-specific progressive schedule used
// only when a plan's StateTax.Mode is california.
type CaliforniaBrackets struct {
	StandardDeduction map[domain.FilingStatus]decimal.Decimal
	Brackets          map[domain.FilingStatus][]TaxBracket
}

// FederalTaxCalculator2024 returns the 2024 federal bracket table.
func FederalTaxCalculator2024() BracketTable {
	huge := decimal.NewFromInt(1_000_000_000)
	return BracketTable{
		StandardDeduction: map[domain.FilingStatus]decimal.Decimal{
			domain.FilingSingle:         decimal.NewFromInt(14600),
			domain.FilingMarriedJointly: decimal.NewFromInt(29200),
		},
		Ordinary: map[domain.FilingStatus][]TaxBracket{
			domain.FilingSingle: {
				{Rate: dec("0.10"), Ceiling: decimal.NewFromInt(11600)},
				{Rate: dec("0.12"), Ceiling: decimal.NewFromInt(47150)},
				{Rate: dec("0.22"), Ceiling: decimal.NewFromInt(100525)},
				{Rate: dec("0.24"), Ceiling: decimal.NewFromInt(191950)},
				{Rate: dec("0.32"), Ceiling: decimal.NewFromInt(243725)},
				{Rate: dec("0.35"), Ceiling: decimal.NewFromInt(609350)},
				{Rate: dec("0.37"), Ceiling: huge},
			},
			domain.FilingMarriedJointly: {
				{Rate: dec("0.10"), Ceiling: decimal.NewFromInt(23200)},
				{Rate: dec("0.12"), Ceiling: decimal.NewFromInt(94300)},
				{Rate: dec("0.22"), Ceiling: decimal.NewFromInt(201050)},
				{Rate: dec("0.24"), Ceiling: decimal.NewFromInt(383900)},
				{Rate: dec("0.32"), Ceiling: decimal.NewFromInt(487450)},
				{Rate: dec("0.35"), Ceiling: decimal.NewFromInt(731200)},
				{Rate: dec("0.37"), Ceiling: huge},
			},
		},
		LTCG: map[domain.FilingStatus][]TaxBracket{
			domain.FilingSingle: {
				{Rate: decimal.Zero, Ceiling: decimal.NewFromInt(47025)},
				{Rate: dec("0.15"), Ceiling: decimal.NewFromInt(518900)},
				{Rate: dec("0.20"), Ceiling: huge},
			},
			domain.FilingMarriedJointly: {
				{Rate: decimal.Zero, Ceiling: decimal.NewFromInt(94050)},
				{Rate: dec("0.15"), Ceiling: decimal.NewFromInt(583750)},
				{Rate: dec("0.20"), Ceiling: huge},
			},
		},
		SSThresholdLower: map[domain.FilingStatus]decimal.Decimal{
			domain.FilingSingle:         decimal.NewFromInt(25000),
			domain.FilingMarriedJointly: decimal.NewFromInt(32000),
		},
		SSThresholdUpper: map[domain.FilingStatus]decimal.Decimal{
			domain.FilingSingle:         decimal.NewFromInt(34000),
			domain.FilingMarriedJointly: decimal.NewFromInt(44000),
		},
	}
}

// CaliforniaBrackets2024 returns the 2024 California state schedule.
func CaliforniaBrackets2024() CaliforniaBrackets {
	huge := decimal.NewFromInt(1_000_000_000)
	return CaliforniaBrackets{
		StandardDeduction: map[domain.FilingStatus]decimal.Decimal{
			domain.FilingSingle:         decimal.NewFromInt(5202),
			domain.FilingMarriedJointly: decimal.NewFromInt(10404),
		},
		Brackets: map[domain.FilingStatus][]TaxBracket{
			domain.FilingSingle: {
				{Rate: dec("0.01"), Ceiling: decimal.NewFromInt(10412)},
				{Rate: dec("0.02"), Ceiling: decimal.NewFromInt(24684)},
				{Rate: dec("0.04"), Ceiling: decimal.NewFromInt(38959)},
				{Rate: dec("0.06"), Ceiling: decimal.NewFromInt(54081)},
				{Rate: dec("0.08"), Ceiling: decimal.NewFromInt(68350)},
				{Rate: dec("0.093"), Ceiling: decimal.NewFromInt(349137)},
				{Rate: dec("0.103"), Ceiling: decimal.NewFromInt(418961)},
				{Rate: dec("0.113"), Ceiling: decimal.NewFromInt(698271)},
				{Rate: dec("0.123"), Ceiling: decimal.NewFromInt(1000000)},
				{Rate: dec("0.133"), Ceiling: huge},
			},
			domain.FilingMarriedJointly: {
				{Rate: dec("0.01"), Ceiling: decimal.NewFromInt(20824)},
				{Rate: dec("0.02"), Ceiling: decimal.NewFromInt(49368)},
				{Rate: dec("0.04"), Ceiling: decimal.NewFromInt(77918)},
				{Rate: dec("0.06"), Ceiling: decimal.NewFromInt(108162)},
				{Rate: dec("0.08"), Ceiling: decimal.NewFromInt(136700)},
				{Rate: dec("0.093"), Ceiling: decimal.NewFromInt(698274)},
				{Rate: dec("0.103"), Ceiling: decimal.NewFromInt(837922)},
				{Rate: dec("0.113"), Ceiling: decimal.NewFromInt(1396542)},
				{Rate: dec("0.123"), Ceiling: decimal.NewFromInt(2000000)},
				{Rate: dec("0.133"), Ceiling: huge},
			},
		},
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// TaxCalculator bundles the federal and state bracket tables and exposes
// the pure tax functions built on top of them.
type TaxCalculator struct {
	Federal    BracketTable
	California CaliforniaBrackets
}

// NewTaxCalculator returns a calculator backed by the 2024 bracket tables.
func NewTaxCalculator() *TaxCalculator {
	return &TaxCalculator{Federal: FederalTaxCalculator2024(), California: CaliforniaBrackets2024()}
}

// progressiveTax applies a progressive bracket schedule to income.
func progressiveTax(income decimal.Decimal, brackets []TaxBracket) decimal.Decimal {
	tax := decimal.Zero
	prevCeiling := decimal.Zero
	for _, b := range brackets {
		if income.LessThanOrEqual(prevCeiling) {
			break
		}
		taxableInBand := decimal.Min(income, b.Ceiling).Sub(prevCeiling)
		tax = tax.Add(taxableInBand.Mul(b.Rate))
		prevCeiling = b.Ceiling
	}
	return tax
}

// ltcgStackedTax stacks LTCG on top of taxable ordinary income when
// determining bracket rates.
func ltcgStackedTax(taxableOrdinary, ltcgIncome decimal.Decimal, brackets []TaxBracket) decimal.Decimal {
	if !ltcgIncome.IsPositive() {
		return decimal.Zero
	}
	tax := decimal.Zero
	ltcgStart := taxableOrdinary
	ltcgEnd := taxableOrdinary.Add(ltcgIncome)
	prevCeiling := decimal.Zero
	for _, b := range brackets {
		bracketStart := decimal.Max(ltcgStart, prevCeiling)
		bracketEnd := decimal.Min(ltcgEnd, b.Ceiling)
		if bracketEnd.GreaterThan(bracketStart) {
			tax = tax.Add(bracketEnd.Sub(bracketStart).Mul(b.Rate))
		}
		prevCeiling = b.Ceiling
		if ltcgEnd.LessThanOrEqual(b.Ceiling) {
			break
		}
	}
	return tax
}

// FederalTax returns (ordinaryTax, ltcgTax) for the given filing status.
func (tc *TaxCalculator) FederalTax(ordinaryIncome, ltcgIncome decimal.Decimal, status domain.FilingStatus) (ordinaryTax, ltcgTax decimal.Decimal) {
	deduction := tc.Federal.StandardDeduction[status]
	taxableOrdinary := decimal.Max(decimal.Zero, ordinaryIncome.Sub(deduction))
	ordinaryTax = progressiveTax(taxableOrdinary, tc.Federal.Ordinary[status])
	ltcgTax = ltcgStackedTax(taxableOrdinary, decimal.Max(decimal.Zero, ltcgIncome), tc.Federal.LTCG[status])
	return ordinaryTax, ltcgTax
}

// StateTax returns state income tax under one of three modes: none, flat,
// or california. ltcgIncome is folded in by the caller for California (which taxes LTCG
// as ordinary income); for flat-rate states the caller decides what to
// include in ordinaryIncomeState.
func (tc *TaxCalculator) StateTax(cfg domain.StateTaxConfig, ordinaryIncomeState, ltcgIncome decimal.Decimal, status domain.FilingStatus) decimal.Decimal {
	switch cfg.Mode {
	case domain.StateTaxNone:
		return decimal.Zero
	case domain.StateTaxFlat:
		return decimal.Max(decimal.Zero, ordinaryIncomeState).Mul(cfg.FlatRate)
	case domain.StateTaxCalifornia:
		deduction := tc.California.StandardDeduction[status]
		taxable := decimal.Max(decimal.Zero, ordinaryIncomeState.Add(ltcgIncome).Sub(deduction))
		return progressiveTax(taxable, tc.California.Brackets[status])
	default:
		return decimal.Zero
	}
}

// SocialSecurityTaxableFraction returns 0, 0.5, or 0.85 per the
// two-threshold IRS provisional-income rule.
func (tc *TaxCalculator) SocialSecurityTaxableFraction(provisionalIncome decimal.Decimal, status domain.FilingStatus) decimal.Decimal {
	lower := tc.Federal.SSThresholdLower[status]
	upper := tc.Federal.SSThresholdUpper[status]
	switch {
	case provisionalIncome.LessThanOrEqual(lower):
		return decimal.Zero
	case provisionalIncome.LessThanOrEqual(upper):
		return dec("0.5")
	default:
		return dec("0.85")
	}
}

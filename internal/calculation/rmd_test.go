package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRMDCalculator_ZeroBeforeStartAge(t *testing.T) {
	r := NewRMDCalculator()
	rmd := r.Calculate(decimal.NewFromInt(500000), RMDStartAge-1)
	assert.True(t, rmd.IsZero())
}

func TestRMDCalculator_UsesTableDivisorAtStartAge(t *testing.T) {
	r := NewRMDCalculator()
	balance := decimal.NewFromInt(500000)
	rmd := r.Calculate(balance, RMDStartAge)
	expected := balance.Div(uniformLifetimeTable[RMDStartAge])
	assert.True(t, rmd.Equal(expected), "got %s want %s", rmd, expected)
}

func TestRMDCalculator_UsesConfigurableTerminalDivisorBeyondTable(t *testing.T) {
	r := NewRMDCalculator()
	r.TerminalDivisor = dec("3.0")
	balance := decimal.NewFromInt(90000)
	rmd := r.Calculate(balance, 125)
	assert.True(t, rmd.Equal(decimal.NewFromInt(30000)), "got %s", rmd)
}

func TestRMDCalculator_CappedAtBalance(t *testing.T) {
	r := NewRMDCalculator()
	balance := decimal.NewFromInt(1)
	rmd := r.Calculate(balance, 95)
	assert.True(t, rmd.LessThanOrEqual(balance))
}

func TestRMDCalculator_ZeroForZeroBalance(t *testing.T) {
	r := NewRMDCalculator()
	rmd := r.Calculate(decimal.Zero, 90)
	assert.True(t, rmd.IsZero())
}

func TestRMDCalculator_DivisorDecreasesAsAgeIncreases(t *testing.T) {
	r := NewRMDCalculator()
	prev := r.Divisor(RMDStartAge)
	for age := RMDStartAge + 1; age <= 120; age++ {
		cur := r.Divisor(age)
		assert.True(t, cur.LessThanOrEqual(prev), "divisor increased at age %d", age)
		prev = cur
	}
}

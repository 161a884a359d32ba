package calculation

import (
	"fmt"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// WithdrawalBucket labels which trace bucket a withdrawal is attributed
// to.
type WithdrawalBucket string

const (
	BucketExpense WithdrawalBucket = "expense"
	BucketTax     WithdrawalBucket = "tax"
)

// AccountState is a run's mutable view of one plan account: current
// balance plus the immutable metadata needed to classify withdrawals.
type AccountState struct {
	ID               string
	Name             string
	TaxTreatment     domain.TaxTreatment
	AssetClass       domain.AssetClass
	Balance          decimal.Decimal
	AnnualReturnRate decimal.Decimal
	GainsFraction    decimal.Decimal
}

// WithdrawalLineItem records one account's debit during a single
// WithdrawalSequencer.Withdraw call, for trace attribution.
type WithdrawalLineItem struct {
	AccountID string
	Bucket    WithdrawalBucket
	Amount    decimal.Decimal
}

// WithdrawalResult is the outcome of satisfying one cash need.
type WithdrawalResult struct {
	LineItems      []WithdrawalLineItem
	TotalWithdrawn decimal.Decimal
	OrdinaryIncome decimal.Decimal
	LTCGIncome     decimal.Decimal
	Shortfall      decimal.Decimal
}

// priorityRank returns the tier index for an account in the fixed
// four-tier priority order. Lower ranks are drained first.
func priorityRank(a *AccountState) int {
	switch {
	case a.TaxTreatment == domain.TreatmentCashSavings:
		return 0
	case a.TaxTreatment == domain.TreatmentTaxableBrokerage && a.AssetClass == domain.AssetStocks:
		return 1
	case a.TaxTreatment == domain.TreatmentTaxableBrokerage:
		return 2
	case a.TaxTreatment == domain.TreatmentTraditional:
		return 3
	default:
		return 4
	}
}

// Withdraw satisfies a cash need by draining accounts in the fixed
// priority order, mutating each AccountState's balance in place. Ties
// within a tier are resolved by input order.
func Withdraw(accounts []*AccountState, amount decimal.Decimal, bucket WithdrawalBucket) (WithdrawalResult, error) {
	if amount.IsNegative() {
		return WithdrawalResult{}, fmt.Errorf("withdrawal sequencer: negative need %s", amount)
	}

	ordered := make([]*AccountState, len(accounts))
	copy(ordered, accounts)
	// Stable sort by tier, preserving input order within a tier.
	for i := 1; i < len(ordered); i++ {
		j := i
		for j > 0 && priorityRank(ordered[j-1]) > priorityRank(ordered[j]) {
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
			j--
		}
	}

	remaining := amount
	result := WithdrawalResult{}
	for _, acct := range ordered {
		if !remaining.IsPositive() {
			break
		}
		if !acct.Balance.IsPositive() {
			continue
		}
		take := decimal.Min(acct.Balance, remaining)
		acct.Balance = acct.Balance.Sub(take)
		remaining = remaining.Sub(take)

		result.LineItems = append(result.LineItems, WithdrawalLineItem{AccountID: acct.ID, Bucket: bucket, Amount: take})
		result.TotalWithdrawn = result.TotalWithdrawn.Add(take)

		switch {
		case acct.TaxTreatment == domain.TreatmentCashSavings:
			// no tax event
		case acct.TaxTreatment == domain.TreatmentTaxableBrokerage && acct.AssetClass == domain.AssetStocks:
			gainsFraction := acct.GainsFraction
			result.LTCGIncome = result.LTCGIncome.Add(take.Mul(gainsFraction))
		case acct.TaxTreatment == domain.TreatmentTaxableBrokerage:
			result.LTCGIncome = result.LTCGIncome.Add(take.Mul(acct.GainsFraction))
		case acct.TaxTreatment == domain.TreatmentTraditional:
			result.OrdinaryIncome = result.OrdinaryIncome.Add(take)
		}
	}

	result.Shortfall = decimal.Max(decimal.Zero, remaining)
	return result, nil
}

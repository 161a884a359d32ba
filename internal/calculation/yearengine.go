package calculation

import (
	"fmt"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// InvariantError reports a violated internal invariant: a condition that
// should be impossible under correct arithmetic. It fails the run,
// annotates the result with the violating age/account, and aborts the
// batch.
type InvariantError struct {
	Age       int
	AccountID string
	Message   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated at age %d, account %q: %s", e.Age, e.AccountID, e.Message)
}

// YearEngine composes the tax module, RMD module, and withdrawal
// sequencer into one per-year state transition. Its phase ordering is
// load-bearing and must not change.
type YearEngine struct {
	Historical *HistoricalReturnService
	Tax        *TaxCalculator
	RMD        *RMDCalculator
}

// NewYearEngine wires the three leaf modules into a year engine.
func NewYearEngine(historical *HistoricalReturnService, tax *TaxCalculator, rmd *RMDCalculator) *YearEngine {
	return &YearEngine{Historical: historical, Tax: tax, RMD: rmd}
}

// yearInput bundles the per-year invocation arguments. stockMultiplier is
// precomputed once per run (see RunEngine) by sampling the whole path up
// front via the historical-return service, honoring the run's regime
// directive for year 0 and the Markov chain thereafter; the year engine
// itself performs no sampling.
type yearInput struct {
	plan            *domain.Plan
	accounts        []*AccountState
	age             int
	stockMultiplier decimal.Decimal
}

// Step drives one simulated age through the eleven (plus one supplemental)
// ordered phases of the per-year transition and returns the year's trace
// record.
func (ye *YearEngine) Step(in yearInput) (domain.YearRecord, error) {
	rec := domain.YearRecord{Age: in.age}

	// Phase 1: opening snapshot.
	startBalances := make(map[string]decimal.Decimal, len(in.accounts))
	for _, a := range in.accounts {
		startBalances[a.ID] = a.Balance
	}

	// Phase 2: growth.
	growthRate := make(map[string]decimal.Decimal, len(in.accounts))
	bondInterestIncome := decimal.Zero
	for _, a := range in.accounts {
		if a.AssetClass == domain.AssetStocks {
			a.Balance = a.Balance.Mul(in.stockMultiplier)
			growthRate[a.ID] = in.stockMultiplier.Sub(decimal.NewFromInt(1))
			continue
		}
		rate := a.AnnualReturnRate
		growth := a.Balance.Mul(rate)
		a.Balance = a.Balance.Add(growth)
		growthRate[a.ID] = rate
		if a.TaxTreatment == domain.TreatmentTaxableBrokerage && a.AssetClass == domain.AssetBonds {
			// Phase 2.5 (supplemental): bond interest is recognized as
			// ordinary income in the year it accrues, per SPEC_FULL.md's
			// "bond-interest-as-ordinary-income" supplement. GainsFraction
			// is forced to zero elsewhere so a later withdrawal of this
			// same principal is not taxed again as a capital gain.
			bondInterestIncome = bondInterestIncome.Add(startBalances[a.ID].Mul(rate))
		}
	}

	// Phase 3: income collection.
	ssGross := decimal.Zero
	otherOrdinaryTaxable := bondInterestIncome
	otherNontaxable := decimal.Zero
	for _, s := range in.plan.IncomeSources {
		if !s.Active(in.age) {
			continue
		}
		rec.Incomes = append(rec.Incomes, domain.IncomeYearRecord{SourceID: s.ID, SourceName: s.Name, Amount: s.AnnualAmount})
		switch s.Kind {
		case domain.IncomeSocialSecurity:
			ssGross = ssGross.Add(s.AnnualAmount)
		case domain.IncomeEmployment, domain.IncomePension, domain.IncomeRental, domain.IncomeTraditionalDistribution:
			otherOrdinaryTaxable = otherOrdinaryTaxable.Add(s.AnnualAmount)
		case domain.IncomeOther:
			if s.ExplicitTaxable {
				otherOrdinaryTaxable = otherOrdinaryTaxable.Add(s.AnnualAmount)
			} else {
				otherNontaxable = otherNontaxable.Add(s.AnnualAmount)
			}
		}
	}

	// Phase 4: required distributions.
	rmdTotal := decimal.Zero
	rmdByAccount := make(map[string]decimal.Decimal, len(in.accounts))
	for _, a := range in.accounts {
		if a.TaxTreatment != domain.TreatmentTraditional {
			continue
		}
		rmd := ye.RMD.Calculate(a.Balance, in.age)
		if rmd.IsPositive() {
			a.Balance = a.Balance.Sub(rmd)
			rmdByAccount[a.ID] = rmd
			rmdTotal = rmdTotal.Add(rmd)
		}
	}
	otherOrdinaryTaxable = otherOrdinaryTaxable.Add(rmdTotal)
	rec.RequiredDistributionTotal = rmdTotal

	// Phase 5: Social-Security taxability.
	provisional := otherOrdinaryTaxable.Add(otherNontaxable).Add(ssGross.Mul(dec("0.5")))
	ssFraction := ye.Tax.SocialSecurityTaxableFraction(provisional, in.plan.FilingStatus)
	taxableSS := ssGross.Mul(ssFraction)
	rec.ProvisionalIncome = provisional
	rec.TaxableSS = taxableSS

	// Phase 6: available cash. RMD cash is counted exactly once: it was
	// folded into otherOrdinaryTaxable in phase 4.
	availableIncome := ssGross.Add(otherOrdinaryTaxable).Add(otherNontaxable)

	// Phase 7: expenses.
	totalExpenses := decimal.Zero
	for _, e := range in.plan.Expenses {
		if !e.Active(in.age) {
			continue
		}
		amt := e.AdjustedAmount(in.plan.CurrentAge, in.age)
		rec.Expenses = append(rec.Expenses, domain.ExpenseYearRecord{ExpenseID: e.ID, ExpenseName: e.Name, Amount: amt})
		totalExpenses = totalExpenses.Add(amt)
	}

	// Running taxable tallies, seeded with RMD and taxable SS already
	// folded into otherOrdinaryTaxable/taxableSS above.
	totalOrdinary := otherOrdinaryTaxable.Add(taxableSS)
	totalLTCG := decimal.Zero

	// Phase 8: expense withdrawal.
	netNeed := decimal.Max(decimal.Zero, totalExpenses.Sub(availableIncome))
	rec.NetCashNeed = netNeed
	expenseResult, err := Withdraw(in.accounts, netNeed, BucketExpense)
	if err != nil {
		return rec, err
	}
	totalOrdinary = totalOrdinary.Add(expenseResult.OrdinaryIncome)
	totalLTCG = totalLTCG.Add(expenseResult.LTCGIncome)

	// Phase 9: tax computation.
	fedOrdinary, fedLTCG := ye.Tax.FederalTax(totalOrdinary, totalLTCG, in.plan.FilingStatus)
	stateLTCGInput := decimal.Zero
	if in.plan.StateTax.Mode == domain.StateTaxCalifornia {
		stateLTCGInput = totalLTCG
	}
	stateTax := ye.Tax.StateTax(in.plan.StateTax, totalOrdinary, stateLTCGInput, in.plan.FilingStatus)
	totalTax := fedOrdinary.Add(fedLTCG).Add(stateTax)
	denom := totalOrdinary.Add(totalLTCG)
	effRate := decimal.Zero
	if denom.IsPositive() {
		effRate = totalTax.Div(denom)
	}
	rec.Tax = domain.TaxBreakdown{FederalOrdinary: fedOrdinary, FederalLTCG: fedLTCG, State: stateTax, EffectiveRate: effRate}
	rec.OrdinaryIncome = totalOrdinary
	rec.LTCGIncome = totalLTCG

	// Phase 10: tax withdrawal.
	surplus := decimal.Max(decimal.Zero, availableIncome.Add(expenseResult.TotalWithdrawn).Sub(totalExpenses))
	taxNeed := decimal.Max(decimal.Zero, totalTax.Sub(surplus))
	taxResult, err := Withdraw(in.accounts, taxNeed, BucketTax)
	if err != nil {
		return rec, err
	}
	// Tax-withdrawal realizations do not feed back into the current
	// year's tax basis: single-pass, no fixed-point iteration.
	shortfall := expenseResult.Shortfall.Add(taxResult.Shortfall)
	rec.Shortfall = shortfall

	// Assemble per-account records and Phase 11: failure check.
	withdrawnExpense := make(map[string]decimal.Decimal, len(in.accounts))
	withdrawnTax := make(map[string]decimal.Decimal, len(in.accounts))
	for _, li := range expenseResult.LineItems {
		withdrawnExpense[li.AccountID] = withdrawnExpense[li.AccountID].Add(li.Amount)
	}
	for _, li := range taxResult.LineItems {
		withdrawnTax[li.AccountID] = withdrawnTax[li.AccountID].Add(li.Amount)
	}

	total := decimal.Zero
	for _, a := range in.accounts {
		if a.Balance.IsNegative() {
			return rec, &InvariantError{Age: in.age, AccountID: a.ID, Message: "negative balance " + a.Balance.String()}
		}
		total = total.Add(a.Balance)
	}
	failed := !total.IsPositive()

	for _, a := range in.accounts {
		end := a.Balance
		if failed {
			end = decimal.Zero
			a.Balance = decimal.Zero
		}
		rec.Accounts = append(rec.Accounts, domain.AccountYearRecord{
			AccountID:            a.ID,
			AccountName:          a.Name,
			StartBalance:         startBalances[a.ID],
			EndBalance:           end,
			RealizedGrowthRate:   growthRate[a.ID],
			WithdrawnExpense:     withdrawnExpense[a.ID],
			WithdrawnTax:         withdrawnTax[a.ID],
			RequiredDistribution: rmdByAccount[a.ID],
		})
	}

	return rec, nil
}

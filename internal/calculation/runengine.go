package calculation

import (
	"math/rand"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// RunEngine initializes account balances, drives the year engine across
// the plan's full horizon (or until depletion), and returns the run's
// trace.
type RunEngine struct {
	Year *YearEngine
}

// NewRunEngine wires a year engine into a run engine.
func NewRunEngine(year *YearEngine) *RunEngine {
	return &RunEngine{Year: year}
}

// childRNG derives a per-run random source deterministically from the
// master seed and run index: the same (master, run_index) pair always
// yields the same stream, regardless of which worker or in which order
// runs execute.
func childRNG(master int64, runIndex int) *rand.Rand {
	// splitmix64 mixing so adjacent run indices do not produce
	// correlated seeds under a weak linear-congruential source.
	seed := uint64(master) + uint64(runIndex)*0x9E3779B97F4A7C15
	seed ^= seed >> 30
	seed *= 0xBF58476D1CE4E5B9
	seed ^= seed >> 27
	seed *= 0x94D049BB133111EB
	seed ^= seed >> 31
	return rand.New(rand.NewSource(int64(seed)))
}

// newAccountStates creates a run's mutable account copies from the plan.
// taxable_brokerage+bonds accounts have GainsFraction forced to zero:
// their annual return is already recognized as ordinary income each
// year, so a later withdrawal of that principal is return of basis, not
// a fresh capital gain.
func newAccountStates(plan *domain.Plan) []*AccountState {
	states := make([]*AccountState, len(plan.Accounts))
	for i, a := range plan.Accounts {
		gainsFraction := a.GainsFraction
		if a.TaxTreatment == domain.TreatmentTaxableBrokerage {
			switch a.AssetClass {
			case domain.AssetBonds:
				gainsFraction = decimal.Zero
			case domain.AssetStocks:
				// use configured GainsFraction as-is
			default:
				if gainsFraction.IsZero() {
					gainsFraction = decimal.NewFromInt(1)
				}
			}
		}
		states[i] = &AccountState{
			ID:               a.ID,
			Name:             a.Name,
			TaxTreatment:     a.TaxTreatment,
			AssetClass:       a.AssetClass,
			Balance:          a.StartBalance,
			AnnualReturnRate: a.AnnualReturnRate,
			GainsFraction:    gainsFraction,
		}
	}
	return states
}

// RunOne drives a single simulation run from y=0 to horizon-1 (or until
// failure), returning its trace plus final portfolio total and success
// flag.
func (re *RunEngine) RunOne(plan *domain.Plan, config domain.RunConfig, runIndex int) (domain.RunResult, error) {
	rng := childRNG(config.MasterSeed, runIndex)

	stockPath, err := re.Year.Historical.SampleAnnualReturns(plan.PlanningHorizonYears, rng, config.InitialRegime)
	if err != nil {
		return domain.RunResult{}, err
	}

	accounts := newAccountStates(plan)

	result := domain.RunResult{RunIndex: runIndex, Success: true}
	failed := false
	for y := 0; y < plan.PlanningHorizonYears; y++ {
		age := plan.CurrentAge + y
		if failed {
			rec := zeroedYearRecord(accounts, age)
			result.Trace = append(result.Trace, rec)
			continue
		}
		rec, err := re.Year.Step(yearInput{
			plan:            plan,
			accounts:        accounts,
			age:             age,
			stockMultiplier: stockPath[y],
		})
		if err != nil {
			return domain.RunResult{}, err
		}
		result.Trace = append(result.Trace, rec)

		total := rec.TotalPortfolio()
		if !total.IsPositive() {
			failed = true
		}
	}

	result.Success = !failed
	if len(result.Trace) > 0 {
		result.FinalPortfolio = result.Trace[len(result.Trace)-1].TotalPortfolio()
	}
	return result, nil
}

// zeroedYearRecord emits a trace record for a year after the run has
// already failed: all balances stay at zero once a run has failed.
func zeroedYearRecord(accounts []*AccountState, age int) domain.YearRecord {
	rec := domain.YearRecord{Age: age}
	for _, a := range accounts {
		rec.Accounts = append(rec.Accounts, domain.AccountYearRecord{
			AccountID:   a.ID,
			AccountName: a.Name,
		})
	}
	return rec
}

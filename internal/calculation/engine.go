package calculation

import (
	"context"
	"fmt"
	"sync"

	"github.com/fuegopro/retiresim/internal/domain"
)

// Engine ties the historical-return service, tax module, required-
// distribution module, withdrawal sequencer, year engine, run engine,
// and aggregator together behind a single entry point.
type Engine struct {
	Historical *HistoricalReturnService
	Tax        *TaxCalculator
	RMD        *RMDCalculator
	Logger     Logger
}

// NewEngine wires a ready-to-use Engine from a loaded historical-return
// service. Tax and RMD calculators use their standard 2024/IRS defaults.
func NewEngine(historical *HistoricalReturnService) *Engine {
	return &Engine{
		Historical: historical,
		Tax:        NewTaxCalculator(),
		RMD:        NewRMDCalculator(),
		Logger:     NopLogger{},
	}
}

// SetLogger overrides the engine's logger.
func (e *Engine) SetLogger(l Logger) {
	if l != nil {
		e.Logger = l
	}
}

// Simulate is the engine's in-process entry point:
// `simulate(plan, config, seed) -> AggregateResult`. It validates
// inputs, drives config.NumRuns independent runs (in parallel above
// config.ParallelismThreshold, sequentially below it), and folds the
// results through the aggregator.
//
// ctx is checked for cancellation between runs (never within a run);
// on cancellation Simulate returns the partial aggregate computed from
// whichever runs completed, along with ctx.Err().
func (e *Engine) Simulate(ctx context.Context, plan domain.Plan, config domain.RunConfig) (domain.AggregateResult, error) {
	if !e.Historical.IsLoaded() {
		return domain.AggregateResult{}, fmt.Errorf("engine: historical return service not loaded")
	}
	if err := plan.Validate(); err != nil {
		return domain.AggregateResult{}, err
	}
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return domain.AggregateResult{}, err
	}

	yearEngine := NewYearEngine(e.Historical, e.Tax, e.RMD)
	runEngine := NewRunEngine(yearEngine)

	results := make([]domain.RunResult, config.NumRuns)

	var runErr error
	var cancelled bool

	if config.NumRuns < config.ParallelismThreshold {
		for i := 0; i < config.NumRuns; i++ {
			select {
			case <-ctx.Done():
				cancelled = true
			default:
			}
			if cancelled {
				break
			}
			r, err := runEngine.RunOne(&plan, config, i)
			if err != nil {
				runErr = err
				e.Logger.Errorf("run %d failed: %v", i, err)
				break
			}
			results[i] = r
		}
	} else {
		var wg sync.WaitGroup
		semaphore := make(chan struct{}, config.MaxWorkers)
		var mu sync.Mutex
		for i := 0; i < config.NumRuns; i++ {
			select {
			case <-ctx.Done():
				cancelled = true
			default:
			}
			if cancelled {
				break
			}
			wg.Add(1)
			semaphore <- struct{}{}
			go func(runIndex int) {
				defer wg.Done()
				defer func() { <-semaphore }()
				r, err := runEngine.RunOne(&plan, config, runIndex)
				if err != nil {
					mu.Lock()
					if runErr == nil {
						runErr = err
					}
					mu.Unlock()
					e.Logger.Errorf("run %d failed: %v", runIndex, err)
					return
				}
				results[runIndex] = r
			}(i)
		}
		wg.Wait()
	}

	if runErr != nil {
		return domain.AggregateResult{}, runErr
	}

	completed := results
	if cancelled {
		// Trim trailing zero-value results from runs that never executed.
		last := 0
		for i, r := range results {
			if len(r.Trace) > 0 {
				last = i + 1
			}
		}
		completed = results[:last]
	}

	agg := NewAggregator().Aggregate(completed, &plan, config)
	if cancelled {
		return agg, ctx.Err()
	}
	return agg, nil
}

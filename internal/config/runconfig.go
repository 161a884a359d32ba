package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/fuegopro/retiresim/internal/domain"
)

// runConfigFile is the on-disk TOML shape of a domain.RunConfig, kept
// separate from the YAML plan file since num_runs/percentiles/seed are
// run-level knobs a caller sweeps far more often than the plan itself.
type runConfigFile struct {
	NumRuns              int    `toml:"num_runs"`
	LowerPercentile      int    `toml:"lower_percentile"`
	UpperPercentile      int    `toml:"upper_percentile"`
	InitialMarketRegime  string `toml:"initial_market_regime"`
	MasterSeed           int64  `toml:"master_seed"`
	ParallelismThreshold int    `toml:"parallelism_threshold"`
	MaxWorkers           int    `toml:"max_workers"`
}

// LoadRunConfigFile reads a TOML run-configuration file.
func LoadRunConfigFile(path string) (domain.RunConfig, error) {
	var rf runConfigFile
	if _, err := toml.DecodeFile(path, &rf); err != nil {
		return domain.RunConfig{}, fmt.Errorf("parsing run config file: %w", err)
	}
	cfg := domain.RunConfig{
		NumRuns:              rf.NumRuns,
		LowerPct:             rf.LowerPercentile,
		UpperPct:             rf.UpperPercentile,
		InitialRegime:        domain.Regime(rf.InitialMarketRegime),
		MasterSeed:           rf.MasterSeed,
		ParallelismThreshold: rf.ParallelismThreshold,
		MaxWorkers:           rf.MaxWorkers,
	}
	return cfg.WithDefaults(), nil
}

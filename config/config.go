// Package config loads run configuration from TOML files and maps it onto
// engine options. Command-line flags override file values; the file covers
// the settings that rarely change between runs.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"ccnd/benders"
	"ccnd/deq"
)

// Duration wraps time.Duration for TOML decoding ("30s", "5m").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", text, err)
	}
	*d = Duration(parsed)

	return nil
}

// Config is the on-disk run configuration.
type Config struct {
	// Alpha is the acceptable risk level in [0, 1].
	Alpha float64 `toml:"alpha"`

	// Family names the subproblem formulation: bb, mis, snc or flowmis.
	Family string `toml:"family"`

	// Cut toggles, mirroring the engine options.
	MetricCuts        bool `toml:"metric_cuts"`
	CutsetCuts        bool `toml:"cutset_cuts"`
	CombinatorialCuts bool `toml:"combinatorial_cuts"`
	MasterScenario    bool `toml:"master_scenario"`

	// Tolerances and limits.
	GapTol        float64  `toml:"gap_tol"`
	FeasTol       float64  `toml:"feas_tol"`
	MaxIterations int      `toml:"max_iterations"`
	TimeLimit     Duration `toml:"time_limit"`
	Workers       int      `toml:"workers"`

	// OutputDir receives one JSON record per solved instance; empty
	// disables recording.
	OutputDir string `toml:"output_dir"`

	// Verbose switches the logger from production to development mode.
	Verbose bool `toml:"verbose"`
}

// Default returns the configuration matching the engine defaults.
func Default() Config {
	opts := benders.DefaultOptions()

	return Config{
		Alpha:             opts.Alpha,
		Family:            opts.Family.String(),
		MetricCuts:        opts.MetricCuts,
		CutsetCuts:        opts.CutsetCuts,
		CombinatorialCuts: opts.CombinatorialCuts,
		MasterScenario:    opts.MasterScenario,
		GapTol:            opts.GapTol,
		FeasTol:           opts.FeasTol,
		MaxIterations:     opts.MaxIterations,
		Workers:           0,
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return cfg, fmt.Errorf("config: %s: unknown key %q", path, undec[0])
	}

	return cfg, nil
}

// BendersOptions maps the configuration onto engine options. The logger is
// left nil for the caller to attach.
func (c Config) BendersOptions() (benders.Options, error) {
	family, err := benders.ParseFamily(c.Family)
	if err != nil {
		return benders.Options{}, err
	}

	opts := benders.DefaultOptions()
	opts.Alpha = c.Alpha
	opts.Family = family
	opts.MetricCuts = c.MetricCuts
	opts.CutsetCuts = c.CutsetCuts
	opts.CombinatorialCuts = c.CombinatorialCuts
	opts.MasterScenario = c.MasterScenario
	opts.GapTol = c.GapTol
	opts.FeasTol = c.FeasTol
	opts.MaxIterations = c.MaxIterations
	opts.TimeLimit = time.Duration(c.TimeLimit)
	opts.Workers = c.Workers
	opts.Logger = nil

	return opts, nil
}

// DeqOptions maps the configuration onto baseline options.
func (c Config) DeqOptions() deq.Options {
	return deq.Options{
		Alpha:     c.Alpha,
		FeasTol:   c.FeasTol,
		TimeLimit: time.Duration(c.TimeLimit),
	}
}

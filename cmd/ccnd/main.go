// Command ccnd solves chance-constrained capacitated fixed-charge network
// design instances, either by Benders-style decomposition (decomp) or by
// the monolithic deterministic equivalent (deq). The root subcommand
// reports the master's root-node relaxation instead of solving.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ccnd/config"
)

var (
	// Global flags.
	cfgPath   string
	alpha     float64
	family    string
	timeLimit time.Duration
	outputDir string
	workers   int
	verbose   bool

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ccnd",
	Short: "Chance-constrained capacitated network design solver",
	Long: `ccnd designs minimum-cost networks whose arcs must carry uncertain
multicommodity demand. A design is acceptable when the scenarios it cannot
route carry at most alpha probability mass.

The decomp subcommand runs the feasibility-cut decomposition; deq solves
the monolithic deterministic equivalent as an exact baseline; root reports
the LP and MIP objectives at the master's root node.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg = zap.NewDevelopmentConfig()
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		cfg = config.Default()
		if cfgPath != "" {
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
		}
		applyFlagOverrides(cmd)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// applyFlagOverrides lets explicit flags win over the config file.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("alpha") {
		cfg.Alpha = alpha
	}
	if flags.Changed("family") {
		cfg.Family = family
	}
	if flags.Changed("time-limit") {
		cfg.TimeLimit = config.Duration(timeLimit)
	}
	if flags.Changed("output") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if verbose {
		cfg.Verbose = true
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "TOML configuration file")
	pf.Float64VarP(&alpha, "alpha", "a", 0, "acceptable infeasibility probability mass")
	pf.StringVarP(&family, "family", "f", "flowmis", "cut family: bb, mis, snc or flowmis")
	pf.DurationVar(&timeLimit, "time-limit", 0, "wall-clock budget per instance (0 = unlimited)")
	pf.StringVarP(&outputDir, "output", "o", "", "directory for JSON result records")
	pf.IntVarP(&workers, "workers", "w", 0, "scenario evaluation workers (0 = NumCPU)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(decompCmd, deqCmd, rootNodeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

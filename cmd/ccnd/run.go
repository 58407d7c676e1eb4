package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ccnd/benders"
	"ccnd/deq"
	"ccnd/ndp"
	"ccnd/record"
	"ccnd/solver/highs"
)

var decompCmd = &cobra.Command{
	Use:   "decomp INSTANCE...",
	Short: "Solve instances by feasibility-cut decomposition",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAll(cmd.Context(), args, solveDecomp)
	},
}

var deqCmd = &cobra.Command{
	Use:   "deq INSTANCE...",
	Short: "Solve instances via the monolithic deterministic equivalent",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAll(cmd.Context(), args, solveDeq)
	},
}

var rootNodeCmd = &cobra.Command{
	Use:   "root INSTANCE...",
	Short: "Report the master's root-node LP and MIP objectives",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAllRoot(cmd.Context(), args)
	},
}

// runAll solves the given instance files, one goroutine per instance. The
// engine parallelizes over scenarios internally, so instance-level
// concurrency is capped to keep the machine responsive.
func runAll(ctx context.Context, paths []string, solve func(context.Context, *ndp.Instance, *zap.Logger) (*benders.Result, error)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2)

	for _, path := range paths {
		g.Go(func() error {
			log := logger.With(zap.String("instance", path))

			inst, err := ndp.ParseFile(path)
			if err != nil {
				return err
			}

			res, err := solve(ctx, inst, log)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			fmt.Println(res)
			if cfg.OutputDir != "" {
				if err := writeRecord(res, path); err != nil {
					return err
				}
			}

			return nil
		})
	}

	return g.Wait()
}

// runAllRoot mirrors runAll for the root relaxation, whose result type has
// its own rendering and record format.
func runAllRoot(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2)

	for _, path := range paths {
		g.Go(func() error {
			inst, err := ndp.ParseFile(path)
			if err != nil {
				return err
			}

			opts, err := cfg.BendersOptions()
			if err != nil {
				return err
			}
			opts.Logger = logger.With(zap.String("instance", path))

			res, err := benders.SolveRoot(ctx, inst, highs.New(), opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			fmt.Println(res)
			if cfg.OutputDir != "" {
				if err := writeRootRecord(res, path); err != nil {
					return err
				}
			}

			return nil
		})
	}

	return g.Wait()
}

func solveDecomp(ctx context.Context, inst *ndp.Instance, log *zap.Logger) (*benders.Result, error) {
	opts, err := cfg.BendersOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = log

	sess, err := benders.NewSession(inst, highs.New(), opts)
	if err != nil {
		return nil, err
	}

	return sess.Solve(ctx)
}

func solveDeq(ctx context.Context, inst *ndp.Instance, log *zap.Logger) (*benders.Result, error) {
	opts := cfg.DeqOptions()
	opts.Logger = log

	return deq.Solve(ctx, inst, highs.New(), opts)
}

func writeRecord(res *benders.Result, instancePath string) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(instancePath), filepath.Ext(instancePath))
	out := filepath.Join(cfg.OutputDir, base+".json")
	rec := record.FromResult(res, instancePath, cfg.Alpha, cfg.Family)

	return rec.ToFile(out)
}

func writeRootRecord(res *benders.RootResult, instancePath string) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(instancePath), filepath.Ext(instancePath))
	out := filepath.Join(cfg.OutputDir, base+"_root.json")

	return record.FromRootResult(res).ToFile(out)
}

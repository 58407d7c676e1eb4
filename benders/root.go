package benders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ccnd/ndp"
	"ccnd/solver"
)

// RootResult reports the progress available at the root node of the master
// problem: the LP relaxation objective against the MIP objective, with the
// wall time of each solve.
type RootResult struct {
	LPObjective  float64
	LPRunTime    time.Duration
	MIPObjective float64
	MIPRunTime   time.Duration
}

// IntegralityGap is the relative distance between the two objectives.
func (r *RootResult) IntegralityGap() float64 {
	if r.MIPObjective == 0 {
		return 0
	}

	return (r.MIPObjective - r.LPObjective) / r.MIPObjective
}

// String renders the root results the way Result renders a run.
func (r *RootResult) String() string {
	var b strings.Builder
	b.WriteString("Root results\n")
	b.WriteString("============\n")
	fmt.Fprintf(&b, "       LP objective: %.2f\n", r.LPObjective)
	fmt.Fprintf(&b, "      MIP objective: %.2f\n", r.MIPObjective)
	fmt.Fprintf(&b, " LP run-time (wall): %.2fs\n", r.LPRunTime.Seconds())
	fmt.Fprintf(&b, "MIP run-time (wall): %.2fs", r.MIPRunTime.Seconds())

	return b.String()
}

// SolveRoot measures the master's root node on its own: the full first-stage
// model (budget, valid inequalities, mean-value block per the options, no
// feasibility cuts) is solved once as an LP and once as a MIP.
// ErrMasterInfeasible means even the relaxation admits no design.
func SolveRoot(ctx context.Context, inst *ndp.Instance, slv solver.Interface, opts Options) (*RootResult, error) {
	if inst == nil {
		return nil, ErrNilInstance
	}
	if slv == nil {
		return nil, ErrNilSolver
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}

	m := NewMaster(inst, effectiveCapacities(inst), opts, slv)

	return m.RootRelaxation(ctx, opts.TimeLimit)
}

// RootRelaxation solves the current master as an LP, then as a MIP, and
// reports both objectives. The time limit applies to each solve separately.
func (m *Master) RootRelaxation(ctx context.Context, limit time.Duration) (*RootResult, error) {
	relaxed := m.prob
	relaxed.Types = make([]solver.ColType, len(m.prob.Types))
	for i := range relaxed.Types {
		relaxed.Types[i] = solver.Continuous
	}
	relaxed.TimeLimit = limit

	start := time.Now()
	lp, err := m.slv.Solve(ctx, &relaxed)
	if err != nil {
		return nil, fmt.Errorf("benders: root relaxation: %w", err)
	}
	lpTime := time.Since(start)
	switch {
	case lp.Status == solver.StatusInfeasible:
		return nil, ErrMasterInfeasible
	case !lp.IsOptimal():
		return nil, fmt.Errorf("benders: root relaxation: %w: status %v", solver.ErrSolver, lp.Status)
	}

	m.prob.TimeLimit = limit
	start = time.Now()
	mip, err := m.slv.Solve(ctx, &m.prob)
	if err != nil {
		return nil, fmt.Errorf("benders: root MIP: %w", err)
	}
	mipTime := time.Since(start)
	if !mip.HasSolution() {
		return nil, fmt.Errorf("benders: root MIP: %w: status %v", solver.ErrSolver, mip.Status)
	}

	return &RootResult{
		LPObjective:  lp.Objective,
		LPRunTime:    lpTime,
		MIPObjective: mip.Objective,
		MIPRunTime:   mipTime,
	}, nil
}

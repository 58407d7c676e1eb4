// Package deq solves the deterministic equivalent of the chance-constrained
// network design problem: one monolithic MIP holding the first-stage design,
// the exclusion variables, and a full flow block per scenario. It is the
// exact baseline the decomposition is measured against, practical only for
// small instances.
package deq

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"ccnd/benders"
	"ccnd/ndp"
	"ccnd/solver"
)

// ErrNoSolution is returned when the solver finds no feasible point within
// its budget.
var ErrNoSolution = errors.New("deq: no solution found")

// relaxFactor scales the demand coefficient on the exclusion variable so
// that z_s = 1 slackens the scenario rows with a margin, avoiding rows that
// bind at exactly zero residual.
const relaxFactor = 1.01

// Options configures a deterministic equivalent solve.
type Options struct {
	// Alpha is the acceptable risk level, as for the decomposition.
	Alpha float64

	// FeasTol is the solver feasibility tolerance.
	FeasTol float64

	// TimeLimit bounds the single MIP solve; zero means unlimited.
	TimeLimit time.Duration

	// Logger receives progress; nil means no logging.
	Logger *zap.Logger
}

// DefaultOptions returns the baseline defaults.
func DefaultOptions() Options {
	return Options{Alpha: 0, FeasTol: 1e-6}
}

// Solve builds and optimizes the deterministic equivalent.
func Solve(ctx context.Context, inst *ndp.Instance, slv solver.Interface, opts Options) (*benders.Result, error) {
	if inst == nil {
		return nil, fmt.Errorf("deq: %w", ndp.ErrMalformedInstance)
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FeasTol <= 0 {
		opts.FeasTol = 1e-6
	}

	prob, yCols := build(inst, opts)
	opts.Logger.Info("solving deterministic equivalent",
		zap.Int("cols", prob.NumCols()),
		zap.Int("rows", prob.NumRows()),
		zap.Float64("alpha", opts.Alpha),
	)

	start := time.Now()
	sol, err := slv.Solve(ctx, prob)
	if err != nil {
		return nil, fmt.Errorf("deq: %w", err)
	}

	res := &benders.Result{
		Decisions:     make(map[string]float64, inst.NumArcs()),
		DecisionCosts: make(map[string]float64, inst.NumArcs()),
		LowerBound:    math.Inf(-1),
		UpperBound:    math.Inf(1),
		CutKinds:      make(map[string]int),
		Runtime:       time.Since(start),
	}

	switch sol.Status {
	case solver.StatusInfeasible:
		res.Status = benders.StatusInfeasible
		for _, arc := range inst.Arcs {
			res.Decisions[arc.String()] = 0
			res.DecisionCosts[arc.String()] = arc.FixedCost
		}
		return res, nil
	case solver.StatusOptimal:
		res.Status = benders.StatusOptimal
	case solver.StatusTimeLimit:
		if !sol.HasSolution() {
			return nil, ErrNoSolution
		}
		res.Status = benders.StatusTimeLimit
	default:
		return nil, fmt.Errorf("deq: %w: status %v", solver.ErrSolver, sol.Status)
	}

	for a, arc := range inst.Arcs {
		name := arc.String()
		v := 0.0
		if sol.X[yCols[a]] >= 0.5 {
			v = 1
		}
		res.Decisions[name] = v
		res.DecisionCosts[name] = arc.FixedCost
		res.Cost += arc.FixedCost * v
	}
	res.UpperBound = res.Cost
	if res.Status == benders.StatusOptimal {
		res.LowerBound = res.Cost
	}
	zBase := inst.NumArcs()
	for s := range inst.Scenarios {
		if sol.X[zBase+s] >= 0.5 {
			res.ExcludedScenarios = append(res.ExcludedScenarios, s)
			res.ExcludedProbability += inst.Scenarios[s].Probability
		}
	}
	res.History = []benders.BoundRecord{{
		Lower:   res.LowerBound,
		Upper:   res.UpperBound,
		Runtime: res.Runtime,
	}}

	opts.Logger.Info("deterministic equivalent finished",
		zap.Stringer("status", res.Status),
		zap.Float64("cost", res.Cost),
		zap.Duration("runtime", res.Runtime),
	)

	return res, nil
}

// build assembles the monolithic MIP. Column order: y, z, then one flow
// block per scenario.
func build(inst *ndp.Instance, opts Options) (*solver.Problem, []int) {
	prob := &solver.Problem{FeasTol: opts.FeasTol, TimeLimit: opts.TimeLimit}

	effCap := effectiveCapacities(inst)
	numCom := inst.NumCommodities()

	yCols := make([]int, inst.NumArcs())
	for a, arc := range inst.Arcs {
		yCols[a] = prob.AddCol(arc.FixedCost, 0, 1, solver.Binary, arc.String())
	}
	zCols := make([]int, inst.NumScenarios())
	for s := range inst.Scenarios {
		zCols[s] = prob.AddCol(0, 0, 1, solver.Binary, fmt.Sprintf("z[%d]", s))
	}

	coefs := make([]solver.Nz, 0, len(zCols))
	for s, col := range zCols {
		coefs = append(coefs, solver.Nz{Col: col, Val: inst.Scenarios[s].Probability})
	}
	prob.AddRow(coefs, solver.LE, opts.Alpha, "scenarios")

	for s := range inst.Scenarios {
		xCols := make([]int, inst.NumArcs()*numCom)
		for a, arc := range inst.Arcs {
			for k := 0; k < numCom; k++ {
				name := fmt.Sprintf("x%d[%s,%d]", s, arc.String(), k)
				xCols[a*numCom+k] = prob.AddCol(0, 0, math.Inf(1), solver.Continuous, name)
			}
		}
		for k, c := range inst.Commodities {
			for _, a := range inst.ArcsTo(c.From) {
				prob.Ub[xCols[a*numCom+k]] = 0
			}
			for _, a := range inst.ArcsFrom(c.To) {
				prob.Ub[xCols[a*numCom+k]] = 0
			}
		}

		for a := range inst.Arcs {
			row := make([]solver.Nz, 0, numCom+1)
			for k := 0; k < numCom; k++ {
				row = append(row, solver.Nz{Col: xCols[a*numCom+k], Val: 1})
			}
			row = append(row, solver.Nz{Col: yCols[a], Val: -effCap[a]})
			prob.AddRow(row, solver.LE, 0, fmt.Sprintf("capacity%d[%d]", s, a))
		}

		for k, c := range inst.Commodities {
			demand := inst.CommodityDemand(s, k)
			for node := 1; node <= inst.NumNodes; node++ {
				if node == c.From {
					continue
				}
				var row []solver.Nz
				for _, a := range inst.ArcsTo(node) {
					row = append(row, solver.Nz{Col: xCols[a*numCom+k], Val: 1})
				}
				if node == c.To {
					// z_s = 1 relaxes the demand row entirely.
					row = append(row, solver.Nz{Col: zCols[s], Val: relaxFactor * demand})
					prob.AddRow(row, solver.GE, demand, fmt.Sprintf("demand%d[%d]", s, k))

					continue
				}
				for _, a := range inst.ArcsFrom(node) {
					row = append(row, solver.Nz{Col: xCols[a*numCom+k], Val: -1})
				}
				prob.AddRow(row, solver.EQ, 0, fmt.Sprintf("balance%d[%d,%d]", s, node, k))
			}
		}
	}

	return prob, yCols
}

// effectiveCapacities clamps infinite and oversized capacities to the
// largest total scenario demand, as the decomposition does.
func effectiveCapacities(inst *ndp.Instance) []float64 {
	var maxTotal float64
	for s := range inst.Scenarios {
		if d := inst.TotalDemand(s); d > maxTotal {
			maxTotal = d
		}
	}
	caps := make([]float64, inst.NumArcs())
	for a, arc := range inst.Arcs {
		caps[a] = arc.Capacity
		if math.IsInf(caps[a], 1) || caps[a] > maxTotal {
			caps[a] = maxTotal
		}
	}

	return caps
}

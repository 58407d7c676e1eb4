package benders

import (
	"context"
	"fmt"

	"ccnd/mincut"
	"ccnd/ndp"
	"ccnd/solver"
)

// illCondBand is the multiple of FeasTol below which a positive phase-1
// objective counts as numerically ambiguous rather than as a clear
// infeasibility verdict.
const illCondBand = 10

// tightenFactor divides FeasTol on the single ill-conditioning retry.
const tightenFactor = 100

// Certificate is the outcome of evaluating one (design, scenario) pair.
// At least one of the infeasibility witnesses (Duals, MinCut) is set when
// Feasible is false, unless the scenario is structurally Unroutable; both
// are set when the screening fires with cut-set separation disabled.
type Certificate struct {
	// Feasible reports whether the scenario's demands can be routed
	// within the capacities of the candidate design.
	Feasible bool

	// Objective is the phase-1 slack objective (zero when feasible). For
	// screening verdicts it is the uncovered demand.
	Objective float64

	// Witness holds the aggregate per-arc flow of a feasible routing.
	Witness []float64

	// Duals are the phase-1 row duals of an infeasible LP solve.
	Duals []float64

	// MinCut is a combinatorial infeasibility certificate produced by the
	// aggregate max-flow screening.
	MinCut *mincut.Result

	// Unroutable marks a scenario no design can route (the instance graph
	// itself lacks the required paths or capacity).
	Unroutable bool

	// Warning carries a numerical ill-conditioning note attached to the
	// iteration record; it never fails the run.
	Warning string
}

// SubProblem evaluates one scenario against candidate designs. It owns a
// warm phase-1 LP and is driven by exactly one evaluation task at a time;
// distinct scenarios evaluate concurrently without shared state.
type SubProblem struct {
	inst    *ndp.Instance
	scen    int
	model   *subModel
	solver  solver.Interface
	effCap  []float64
	feasTol float64
	cutset  bool
}

// newSubProblem builds the evaluator for scenario scen. When cutset is off,
// infeasibility certificates always carry LP duals so the cut generator can
// fall back to the family's dual cut.
func newSubProblem(inst *ndp.Instance, scen int, family Family, effCap []float64, slv solver.Interface, feasTol float64, cutset bool) *SubProblem {
	return &SubProblem{
		inst:    inst,
		scen:    scen,
		model:   newSubModel(inst, scen, family, effCap),
		solver:  slv,
		effCap:  effCap,
		feasTol: feasTol,
		cutset:  cutset,
	}
}

// Scenario returns the scenario index this evaluator checks.
func (sp *SubProblem) Scenario() int { return sp.scen }

// Evaluate decides whether the scenario is routable under design y.
// Deterministic: a fixed (design, scenario) pair always produces the same
// verdict and the same certificate.
//
// The aggregate max-flow screening runs first: it proves infeasibility
// combinatorially (with a minimum cut as certificate) whenever total
// demand cannot cross the built capacities, and for single-commodity
// instances its positive answer is exact too. Only multicommodity
// scenarios that pass the screening reach the phase-1 LP.
func (sp *SubProblem) Evaluate(ctx context.Context, y []float64) (*Certificate, error) {
	caps := make([]float64, sp.inst.NumArcs())
	for a := range caps {
		caps[a] = sp.effCap[a] * y[a]
	}

	res, err := mincut.Compute(sp.inst, caps, sp.inst.Scenarios[sp.scen].Demands)
	if err != nil {
		return nil, fmt.Errorf("benders: scenario %d screening: %w", sp.scen, err)
	}
	if !res.Feasible() {
		if sp.cutset {
			return &Certificate{
				Objective: res.Demand - res.MaxFlow,
				MinCut:    &res,
			}, nil
		}
		// Cut-set separation is disabled: the cut must come from the
		// configured family's duals, so the LP runs even though the
		// verdict is already known. The minimum cut still rides along to
		// sharpen any combinatorial cut.
		cert, err := sp.evaluateLP(ctx, y)
		if err != nil || cert.Feasible {
			return cert, err
		}
		cert.MinCut = &res

		return cert, nil
	}
	if sp.inst.NumCommodities() == 1 {
		return &Certificate{Feasible: true, Objective: 0, Witness: res.ArcFlows}, nil
	}

	return sp.evaluateLP(ctx, y)
}

// evaluateLP poses the scenario's phase-1 LP for design y, with a single
// tightened retry when the verdict is numerically marginal.
func (sp *SubProblem) evaluateLP(ctx context.Context, y []float64) (*Certificate, error) {
	sp.model.setDesign(y)
	sp.model.prob.FeasTol = 0

	sol, err := sp.solver.Solve(ctx, &sp.model.prob)
	if err != nil {
		return nil, fmt.Errorf("benders: subproblem scenario %d: %w", sp.scen, err)
	}

	var warning string
	if sol.IsOptimal() && sp.marginal(sol.Objective) {
		// Ambiguous verdict: retry once with tightened tolerances before
		// escalating (bounded retry; never more than one).
		sp.model.prob.FeasTol = sp.feasTol / tightenFactor
		retried, rerr := sp.solver.Solve(ctx, &sp.model.prob)
		if rerr != nil {
			return nil, fmt.Errorf("benders: subproblem scenario %d (retry): %w", sp.scen, rerr)
		}
		if retried.IsOptimal() {
			if sp.marginal(retried.Objective) {
				warning = fmt.Sprintf("scenario %d: marginal phase-1 objective %.3e after tightened retry", sp.scen, retried.Objective)
			}
			sol = retried
		}
	}

	switch {
	case sol.Status == solver.StatusInfeasible:
		// The relaxed LP itself has no solution: no design can route this
		// scenario (the graph lacks the necessary paths).
		return &Certificate{Unroutable: true, Warning: warning}, nil
	case !sol.IsOptimal():
		return nil, fmt.Errorf("benders: subproblem scenario %d: %w: status %v", sp.scen, solver.ErrSolver, sol.Status)
	}

	if sol.Objective <= sp.feasTol {
		return &Certificate{Feasible: true, Witness: sp.aggregateFlow(sol.X), Warning: warning}, nil
	}

	return &Certificate{Objective: sol.Objective, Duals: sol.RowDuals, Warning: warning}, nil
}

// marginal reports whether a phase-1 objective falls in the ambiguous band
// just above the feasibility tolerance.
func (sp *SubProblem) marginal(obj float64) bool {
	return obj > sp.feasTol && obj <= illCondBand*sp.feasTol
}

// aggregateFlow folds the per-commodity LP flows into per-arc totals.
func (sp *SubProblem) aggregateFlow(x []float64) []float64 {
	numCom := sp.inst.NumCommodities()
	flow := make([]float64, sp.inst.NumArcs())
	for a := range flow {
		for k := 0; k < numCom; k++ {
			flow[a] += x[a*numCom+k]
		}
	}

	return flow
}

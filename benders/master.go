package benders

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"ccnd/ndp"
	"ccnd/solver"
)

// Master owns the first-stage MIP: binary construction variables y, binary
// scenario-exclusion variables z, the chance-constraint budget row, and the
// growing pool of feasibility cuts. Not safe for concurrent use; the
// session drives it from the coordinating goroutine only.
type Master struct {
	inst   *ndp.Instance
	effCap []float64
	opts   Options
	slv    solver.Interface

	prob  solver.Problem
	yCols []int
	zCols []int

	pool []Cut
	seen map[string]struct{}
}

// NewMaster assembles the first-stage problem: columns, the probability
// budget, the static valid inequalities, and (when enabled) the embedded
// mean-value scenario.
func NewMaster(inst *ndp.Instance, effCap []float64, opts Options, slv solver.Interface) *Master {
	m := &Master{
		inst:   inst,
		effCap: effCap,
		opts:   opts,
		slv:    slv,
		seen:   make(map[string]struct{}),
	}
	m.prob.FeasTol = opts.FeasTol

	for _, arc := range inst.Arcs {
		m.yCols = append(m.yCols, m.prob.AddCol(arc.FixedCost, 0, 1, solver.Binary, arc.String()))
	}
	for s := range inst.Scenarios {
		m.zCols = append(m.zCols, m.prob.AddCol(0, 0, 1, solver.Binary, fmt.Sprintf("z[%d]", s)))
	}

	m.addBudgetRow()
	if opts.CutsetCuts {
		m.addValidInequalities()
	}
	if opts.MasterScenario && opts.Alpha < 1 {
		m.embedMeanScenario()
	}

	return m
}

// addBudgetRow bounds the total probability mass of excluded scenarios:
//
//	sum_s p_s * z_s <= alpha
func (m *Master) addBudgetRow() {
	coefs := make([]solver.Nz, 0, len(m.zCols))
	for s, col := range m.zCols {
		coefs = append(coefs, solver.Nz{Col: col, Val: m.inst.Scenarios[s].Probability})
	}
	m.prob.AddRow(coefs, solver.LE, m.opts.Alpha, "scenarios")
}

// addValidInequalities seeds per-scenario cut-set rows that any feasible
// design must satisfy: enough capacity must leave the origins and reach the
// destinations, in aggregate and per terminal node. Redundant for the
// relaxation's optimum but they tighten the early masters considerably.
func (m *Master) addValidInequalities() {
	capRow := func(arcs []int, demand float64, s int, name string) {
		if demand <= 0 || len(arcs) == 0 {
			return
		}
		coefs := make([]solver.Nz, 0, len(arcs)+1)
		for _, a := range arcs {
			coefs = append(coefs, solver.Nz{Col: m.yCols[a], Val: m.effCap[a]})
		}
		coefs = append(coefs, solver.Nz{Col: m.zCols[s], Val: demand})
		m.prob.AddRow(coefs, solver.GE, demand, name)
	}

	for s := range m.inst.Scenarios {
		total := m.inst.TotalDemand(s)

		var fromOrig, toDest []int
		for _, node := range m.inst.Origins() {
			fromOrig = append(fromOrig, m.inst.ArcsFrom(node)...)
		}
		for _, node := range m.inst.Destinations() {
			toDest = append(toDest, m.inst.ArcsTo(node)...)
		}
		capRow(fromOrig, total, s, fmt.Sprintf("vi_orig[%d]", s))
		capRow(toDest, total, s, fmt.Sprintf("vi_dest[%d]", s))

		for _, node := range m.inst.Origins() {
			var demand float64
			for k, c := range m.inst.Commodities {
				if c.From == node {
					demand += m.inst.CommodityDemand(s, k)
				}
			}
			capRow(m.inst.ArcsFrom(node), demand, s, fmt.Sprintf("vi_orig[%d,%d]", s, node))
		}
		for _, node := range m.inst.Destinations() {
			var demand float64
			for k, c := range m.inst.Commodities {
				if c.To == node {
					demand += m.inst.CommodityDemand(s, k)
				}
			}
			capRow(m.inst.ArcsTo(node), demand, s, fmt.Sprintf("vi_dest[%d,%d]", s, node))
		}
	}
}

// embedMeanScenario adds a full second-stage flow block for the mean-value
// demands directly into the master (partial Benders, after Crainic et al.).
// Any design the master proposes then already routes the averaged demand
// vector, which removes many hopeless candidates before they reach the
// scenario evaluators.
func (m *Master) embedMeanScenario() {
	demands := m.inst.MeanValueDemands(m.opts.Alpha)
	numCom := m.inst.NumCommodities()

	xCols := make([]int, m.inst.NumArcs()*numCom)
	for a, arc := range m.inst.Arcs {
		for k := 0; k < numCom; k++ {
			name := fmt.Sprintf("xm[%s,%d]", arc.String(), k)
			xCols[a*numCom+k] = m.prob.AddCol(0, 0, math.Inf(1), solver.Continuous, name)
		}
	}
	// Superfluous flows: into an origin or out of a destination.
	for k, c := range m.inst.Commodities {
		for _, a := range m.inst.ArcsTo(c.From) {
			m.prob.Ub[xCols[a*numCom+k]] = 0
		}
		for _, a := range m.inst.ArcsFrom(c.To) {
			m.prob.Ub[xCols[a*numCom+k]] = 0
		}
	}

	for a := range m.inst.Arcs {
		coefs := make([]solver.Nz, 0, numCom+1)
		for k := 0; k < numCom; k++ {
			coefs = append(coefs, solver.Nz{Col: xCols[a*numCom+k], Val: 1})
		}
		coefs = append(coefs, solver.Nz{Col: m.yCols[a], Val: -m.effCap[a]})
		m.prob.AddRow(coefs, solver.LE, 0, fmt.Sprintf("mv_capacity[%d]", a))
	}

	for k, c := range m.inst.Commodities {
		for node := 1; node <= m.inst.NumNodes; node++ {
			var coefs []solver.Nz
			for _, a := range m.inst.ArcsTo(node) {
				coefs = append(coefs, solver.Nz{Col: xCols[a*numCom+k], Val: 1})
			}
			switch node {
			case c.To:
				m.prob.AddRow(coefs, solver.GE, demands[k], fmt.Sprintf("mv_demand[%d]", k))
			case c.From:
				// Outflow is unconstrained at the origin.
			default:
				for _, a := range m.inst.ArcsFrom(node) {
					coefs = append(coefs, solver.Nz{Col: xCols[a*numCom+k], Val: -1})
				}
				m.prob.AddRow(coefs, solver.EQ, 0, fmt.Sprintf("mv_balance[%d,%d]", node, k))
			}
		}
	}
}

// AddCut appends the cut to the pool and the problem. Duplicate cuts are
// dropped; the return value reports whether the cut was new.
func (m *Master) AddCut(c Cut) bool {
	fp := c.fingerprint()
	if _, ok := m.seen[fp]; ok {
		return false
	}
	m.seen[fp] = struct{}{}
	m.pool = append(m.pool, c)
	r := c.row(m.yCols, m.zCols)
	m.prob.AddRow(r.Coefs, r.Sense, r.RHS, r.Name)

	return true
}

// NumCuts reports the pool size.
func (m *Master) NumCuts() int { return len(m.pool) }

// Cuts returns the pooled cuts in insertion order.
func (m *Master) Cuts() []Cut { return m.pool }

// MasterSolution is one first-stage solve: a candidate design, the chosen
// exclusions, and its fixed-cost objective. Proven reports whether the
// solver certified optimality; only proven objectives are valid lower
// bounds on the full problem.
type MasterSolution struct {
	Y         []float64
	Z         []float64
	Objective float64
	Proven    bool
}

// Solve optimizes the current master. ErrMasterInfeasible means the cut
// pool and budget admit no design at all.
func (m *Master) Solve(ctx context.Context, remaining time.Duration) (*MasterSolution, error) {
	m.prob.TimeLimit = remaining

	sol, err := m.slv.Solve(ctx, &m.prob)
	if err != nil {
		return nil, fmt.Errorf("benders: master: %w", err)
	}
	switch {
	case sol.Status == solver.StatusInfeasible:
		return nil, ErrMasterInfeasible
	case !sol.HasSolution():
		return nil, fmt.Errorf("benders: master: %w: status %v", solver.ErrSolver, sol.Status)
	}

	ms := &MasterSolution{
		Y:         make([]float64, len(m.yCols)),
		Z:         make([]float64, len(m.zCols)),
		Objective: sol.Objective,
		Proven:    sol.IsOptimal(),
	}
	for i, col := range m.yCols {
		ms.Y[i] = round01(sol.X[col])
	}
	for i, col := range m.zCols {
		ms.Z[i] = round01(sol.X[col])
	}

	return ms, nil
}

// round01 snaps a relaxed binary to its nearest bound.
func round01(v float64) float64 {
	if v >= 0.5 {
		return 1
	}
	return 0
}

// fingerprint canonicalizes a cut for duplicate detection.
func (c *Cut) fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%.9g|", c.Scenario, c.Gamma)
	for a, v := range c.Beta {
		if v > coefEps || v < -coefEps {
			fmt.Fprintf(&b, "%d:%.9g,", a, v)
		}
	}
	return b.String()
}

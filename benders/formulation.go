package benders

import (
	"fmt"
	"math"

	"ccnd/ndp"
	"ccnd/solver"
)

// subModel is the phase-1 flow LP of one scenario, kept warm across
// iterations: the coefficient matrix never changes, only the right-hand
// sides of the design-linked rows move with the candidate design.
//
// Layout: one continuous column per (arc, commodity) flow, followed by the
// family's slack columns. One capacity row per arc (linked to y through
// tArc/tCap), then per commodity one demand row at its destination and one
// balance row per remaining intermediate node.
//
// The split mirrors the textbook h - T y right-hand side: tArc[i] names the
// design variable whose construction relaxes row i, tCap[i] its capacity.
type subModel struct {
	prob solver.Problem

	h         []float64 // base right-hand side
	tArc      []int     // per row: linked arc index, or -1
	tCap      []float64 // per row: effective capacity of the linked arc
	demandRow []bool
	sign      []float64 // per row: +1 (>=), -1 (<=), 0 (=)

	scen   int
	family Family
}

// newSubModel builds the scenario's phase-1 LP under the given family.
// effCap must hold the finite effective capacity of every arc.
func newSubModel(inst *ndp.Instance, scen int, family Family, effCap []float64) *subModel {
	numArcs := inst.NumArcs()
	numCom := inst.NumCommodities()

	m := &subModel{scen: scen, family: family}

	// Flow columns x[a,k], column index a*K + k.
	xCol := func(a, k int) int { return a*numCom + k }
	for a := 0; a < numArcs; a++ {
		for k := 0; k < numCom; k++ {
			m.prob.AddCol(0, 0, math.Inf(1), solver.Continuous, fmt.Sprintf("x[%s,%d]", inst.Arcs[a], k))
		}
	}

	// Superfluous flows are pinned to zero: into a commodity's origin or
	// out of its destination.
	for k, c := range inst.Commodities {
		for _, a := range inst.ArcsTo(c.From) {
			m.prob.Ub[xCol(a, k)] = 0
		}
		for _, a := range inst.ArcsFrom(c.To) {
			m.prob.Ub[xCol(a, k)] = 0
		}
	}

	addRow := func(coefs []solver.Nz, sense solver.Sense, rhs float64, arc int, demand bool, name string) {
		m.prob.AddRow(coefs, sense, rhs, name)
		m.h = append(m.h, rhs)
		m.tArc = append(m.tArc, arc)
		if arc >= 0 {
			m.tCap = append(m.tCap, effCap[arc])
		} else {
			m.tCap = append(m.tCap, 0)
		}
		m.demandRow = append(m.demandRow, demand)
		switch sense {
		case solver.GE:
			m.sign = append(m.sign, 1)
		case solver.LE:
			m.sign = append(m.sign, -1)
		default:
			m.sign = append(m.sign, 0)
		}
	}

	// Capacity rows: sum_k x[a,k] <= effCap_a * y_a. The y term lives on
	// the right-hand side; setDesign moves it.
	for a := 0; a < numArcs; a++ {
		coefs := make([]solver.Nz, numCom)
		for k := 0; k < numCom; k++ {
			coefs[k] = solver.Nz{Col: xCol(a, k), Val: 1}
		}
		addRow(coefs, solver.LE, 0, a, false, fmt.Sprintf("capacity[%s]", inst.Arcs[a]))
	}

	// Demand and balance rows per commodity.
	for k, c := range inst.Commodities {
		for n := 1; n <= inst.NumNodes; n++ {
			if n == c.From {
				continue
			}
			if n == c.To {
				var coefs []solver.Nz
				for _, a := range inst.ArcsTo(n) {
					coefs = append(coefs, solver.Nz{Col: xCol(a, k), Val: 1})
				}
				addRow(coefs, solver.GE, inst.CommodityDemand(scen, k), -1, true, fmt.Sprintf("demand[%d,%d]", n, k))

				continue
			}
			var coefs []solver.Nz
			for _, a := range inst.ArcsTo(n) {
				coefs = append(coefs, solver.Nz{Col: xCol(a, k), Val: 1})
			}
			for _, a := range inst.ArcsFrom(n) {
				coefs = append(coefs, solver.Nz{Col: xCol(a, k), Val: -1})
			}
			addRow(coefs, solver.EQ, 0, -1, false, fmt.Sprintf("balance[%d,%d]", n, k))
		}
	}

	m.addSlacks()

	return m
}

// addSlacks appends the family's slack columns and their row coefficients.
// Slacks carry the whole phase-1 objective: the scenario is routable for a
// design exactly when the optimum is zero.
func (m *subModel) addSlacks() {
	switch m.family {
	case BB:
		// One slack per inequality row.
		for i := range m.prob.Rows {
			if m.sign[i] == 0 {
				continue
			}
			col := m.prob.AddCol(1, 0, math.Inf(1), solver.Continuous, fmt.Sprintf("s[%d]", i))
			m.prob.Rows[i].Coefs = append(m.prob.Rows[i].Coefs, solver.Nz{Col: col, Val: m.sign[i]})
		}
	case SNC:
		// One normalized slack across all inequality rows.
		col := m.prob.AddCol(1, 0, math.Inf(1), solver.Continuous, "s")
		for i := range m.prob.Rows {
			if m.sign[i] != 0 {
				m.prob.Rows[i].Coefs = append(m.prob.Rows[i].Coefs, solver.Nz{Col: col, Val: m.sign[i]})
			}
		}
	case MIS:
		// Single slack on the design-linked rows only.
		col := m.prob.AddCol(1, 0, math.Inf(1), solver.Continuous, "s")
		for i := range m.prob.Rows {
			if m.tArc[i] >= 0 {
				m.prob.Rows[i].Coefs = append(m.prob.Rows[i].Coefs, solver.Nz{Col: col, Val: m.sign[i]})
			}
		}
	case FlowMIS:
		// Single slack on the demand rows only.
		col := m.prob.AddCol(1, 0, math.Inf(1), solver.Continuous, "s")
		for i := range m.prob.Rows {
			if m.demandRow[i] {
				m.prob.Rows[i].Coefs = append(m.prob.Rows[i].Coefs, solver.Nz{Col: col, Val: 1})
			}
		}
	}
}

// setDesign re-points the design-linked right-hand sides at candidate y.
// Rounding noise is clamped at zero, matching the h - T y >= 0 invariant.
func (m *subModel) setDesign(y []float64) {
	for i := range m.prob.Rows {
		if a := m.tArc[i]; a >= 0 {
			rhs := m.tCap[i] * y[a]
			if rhs < 0 {
				rhs = 0
			}
			m.prob.SetRHS(i, rhs)
		}
	}
}

// dualPrices extracts the nonnegative arc prices pi_a = max(0, -lambda_a)
// from the capacity-row duals of an infeasible phase-1 solve.
func (m *subModel) dualPrices(duals []float64) []float64 {
	var numArcs int
	for _, a := range m.tArc {
		if a >= 0 {
			numArcs++
		}
	}
	pi := make([]float64, numArcs)
	for i, a := range m.tArc {
		if a < 0 {
			continue
		}
		if p := -duals[i]; p > 0 {
			pi[a] = p
		}
	}

	return pi
}

// cutFromDuals turns row duals of an infeasible phase-1 solve into the
// feasibility cut beta.y + gamma*z >= gamma with beta = lambda^T T and
// gamma = lambda^T h.
func (m *subModel) cutFromDuals(duals []float64, effCap []float64) Cut {
	beta := make([]float64, len(effCap))
	var gamma float64
	for i, lambda := range duals {
		gamma += lambda * m.h[i]
		if a := m.tArc[i]; a >= 0 {
			// T[i][a] = -effCap_a.
			beta[a] += -lambda * m.tCap[i]
		}
	}
	// Dual noise on the capacity rows can leave marginally negative
	// coefficients; clamp so the cut stays vacuous at z = 1.
	for a := range beta {
		if beta[a] < 0 {
			beta[a] = 0
		}
	}

	return Cut{Beta: beta, Gamma: gamma, Scenario: m.scen, Kind: m.family.dualKind()}
}

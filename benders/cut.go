package benders

import (
	"math"

	"ccnd/solver"
)

// coefEps drops vanishing cut coefficients when rendering master rows.
const coefEps = 1e-12

// Cut is one valid inequality over the design variables y and a single
// scenario exclusion indicator z:
//
//	beta . y + gamma * z_scen >= gamma.
//
// At z = 1 the inequality is vacuous (beta >= 0 always), so excluding the
// scenario releases it; at z = 0 it forces enough capacity to route the
// scenario. Gamma and beta are derived from the instance data (duals of a
// scenario subproblem or a minimum cut), never from a particular design,
// which is what keeps every pooled cut valid for all future candidates.
type Cut struct {
	Beta     []float64 // dense, one coefficient per arc
	Gamma    float64
	Scenario int
	Kind     CutKind

	// Strengthened marks a dual cut whose constant was lifted by the
	// metric (shortest-path) argument.
	Strengthened bool
}

// Violated reports whether the cut separates the point (y, z) by more than
// tol, i.e. beta.y + gamma*z < gamma - tol.
func (c *Cut) Violated(y []float64, z float64, tol float64) bool {
	return c.activity(y, z) < c.Gamma-tol
}

func (c *Cut) activity(y []float64, z float64) float64 {
	lhs := c.Gamma * z
	for a, b := range c.Beta {
		lhs += b * y[a]
	}

	return lhs
}

// row renders the cut as a sparse master row, given the master's column
// layout.
func (c *Cut) row(yCols, zCols []int) solver.Row {
	coefs := make([]solver.Nz, 0, len(c.Beta)+1)
	for a, b := range c.Beta {
		if math.Abs(b) > coefEps {
			coefs = append(coefs, solver.Nz{Col: yCols[a], Val: b})
		}
	}
	coefs = append(coefs, solver.Nz{Col: zCols[c.Scenario], Val: c.Gamma})

	return solver.Row{Coefs: coefs, Sense: solver.GE, RHS: c.Gamma, Name: "cut"}
}

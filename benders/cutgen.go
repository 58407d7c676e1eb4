package benders

import (
	"math"

	"ccnd/mincut"
	"ccnd/ndp"
)

// cutGenerator converts infeasibility certificates into master cuts. One
// generator serves the whole run; it holds no mutable state and is safe to
// call from concurrent evaluation tasks.
type cutGenerator struct {
	inst   *ndp.Instance
	effCap []float64
	opts   Options
}

func newCutGenerator(inst *ndp.Instance, effCap []float64, opts Options) *cutGenerator {
	return &cutGenerator{inst: inst, effCap: effCap, opts: opts}
}

// cutsFor derives every cut the certificate supports. The primary
// feasibility cut comes from the family's duals when the certificate
// carries them, and from the minimum cut only while cut-set separation is
// enabled; combinatorial cuts follow when switched on. Feasible
// certificates yield nothing.
func (g *cutGenerator) cutsFor(cert *Certificate, model *subModel, y []float64, scen int) []Cut {
	if cert.Feasible {
		return nil
	}
	if cert.Unroutable {
		// No design routes this scenario: force its exclusion outright.
		return []Cut{{
			Beta:     make([]float64, g.inst.NumArcs()),
			Gamma:    1,
			Scenario: scen,
			Kind:     KindCombinatorial,
		}}
	}

	var cuts []Cut
	switch {
	case cert.Duals != nil:
		cut := model.cutFromDuals(cert.Duals, g.effCap)
		if g.opts.MetricCuts {
			cut = g.strengthen(cut, model, cert.Duals, scen)
		}
		cuts = append(cuts, cut)
	case cert.MinCut != nil && g.opts.CutsetCuts:
		cuts = append(cuts, g.cutsetCut(cert.MinCut, scen))
	}

	if g.opts.CombinatorialCuts {
		cuts = append(cuts, g.combinatorialCut(cert, y, scen))
	}

	return cuts
}

// cutsetCut renders a minimum-cut certificate as the inequality
//
//	sum_{a in cut} cap_a * y_a >= (demand - artificial) * (1 - z_s)
//
// valid for every design because CutArcs lists all arcs crossing the cut
// partition, built or not.
func (g *cutGenerator) cutsetCut(res *mincut.Result, scen int) Cut {
	beta := make([]float64, g.inst.NumArcs())
	for _, a := range res.CutArcs {
		beta[a] = g.effCap[a]
	}

	return Cut{
		Beta:     beta,
		Gamma:    res.Demand - res.ArtificialCut,
		Scenario: scen,
		Kind:     KindMetric,
	}
}

// strengthen replaces the dual cut with a metric inequality when the
// shortest-path closure of the dual prices gives a strictly larger
// right-hand side. Unreachable commodities leave the dual cut as is.
func (g *cutGenerator) strengthen(cut Cut, model *subModel, duals []float64, scen int) Cut {
	pi := model.dualPrices(duals)
	gamma := metricGamma(g.inst, scen, pi)
	if math.IsInf(gamma, 1) || !(gamma > cut.Gamma) {
		return cut
	}

	beta := make([]float64, g.inst.NumArcs())
	for a := range beta {
		beta[a] = g.effCap[a] * pi[a]
	}

	return Cut{
		Beta:         beta,
		Gamma:        gamma,
		Scenario:     scen,
		Kind:         KindMetric,
		Strengthened: true,
	}
}

// combinatorialCut emits the no-good inequality
//
//	sum_{a : y_a = 0} y_a + z_s >= 1
//
// restricted to cut-crossing arcs when a minimum-cut certificate is at
// hand, since opening an arc outside the cut cannot restore feasibility.
func (g *cutGenerator) combinatorialCut(cert *Certificate, y []float64, scen int) Cut {
	beta := make([]float64, g.inst.NumArcs())
	if cert.MinCut != nil {
		for _, a := range cert.MinCut.CutArcs {
			if y[a] <= 0.5 {
				beta[a] = 1
			}
		}
	} else {
		for a := range beta {
			if y[a] <= 0.5 {
				beta[a] = 1
			}
		}
	}

	return Cut{
		Beta:     beta,
		Gamma:    1,
		Scenario: scen,
		Kind:     KindCombinatorial,
	}
}

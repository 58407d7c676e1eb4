package benders

import "ccnd/ndp"

// diamond: 1->2->4 and 1->3->4 with cross arc 2->3, one commodity 1->4.
// Arc indices: 0: 1->2, 1: 1->3, 2: 2->4, 3: 3->4, 4: 2->3.
func diamond() *ndp.Instance {
	return &ndp.Instance{
		NumNodes: 4,
		Arcs: []ndp.Arc{
			{From: 1, To: 2, Capacity: 10, FixedCost: 4},
			{From: 1, To: 3, Capacity: 6, FixedCost: 3},
			{From: 2, To: 4, Capacity: 8, FixedCost: 5},
			{From: 3, To: 4, Capacity: 6, FixedCost: 2},
			{From: 2, To: 3, Capacity: 4, FixedCost: 1},
		},
		Commodities: []ndp.Commodity{{From: 1, To: 4}},
		Scenarios: []ndp.Scenario{
			{Probability: 0.75, Demands: []float64{8}},
			{Probability: 0.25, Demands: []float64{14}},
		},
	}
}

// twoCommodity shares the diamond arcs but routes two commodities, so its
// subproblems must go through the LP rather than the exact screening.
func twoCommodity() *ndp.Instance {
	inst := diamond()
	inst.Commodities = []ndp.Commodity{
		{From: 1, To: 4},
		{From: 2, To: 4},
	}
	inst.Scenarios = []ndp.Scenario{
		{Probability: 1, Demands: []float64{5, 3}},
	}

	return inst
}

func capacities(inst *ndp.Instance) []float64 {
	out := make([]float64, inst.NumArcs())
	for a, arc := range inst.Arcs {
		out[a] = arc.Capacity
	}

	return out
}

func design(inst *ndp.Instance, built ...int) []float64 {
	y := make([]float64, inst.NumArcs())
	for _, a := range built {
		y[a] = 1
	}

	return y
}

package mincut_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"ccnd/mincut"
	"ccnd/ndp"
)

// diamond: 1->2->4 and 1->3->4 with cross arc 2->3, one commodity 1->4.
func diamond() *ndp.Instance {
	inst := &ndp.Instance{
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

	return inst
}

func caps(inst *ndp.Instance, built ...int) []float64 {
	out := make([]float64, inst.NumArcs())
	for _, idx := range built {
		out[idx] = inst.Arcs[idx].Capacity
	}

	return out
}

func TestFullNetworkRoutesLowDemand(t *testing.T) {
	inst := diamond()
	res, err := mincut.Compute(inst, caps(inst, 0, 1, 2, 3, 4), []float64{8})
	require.NoError(t, err)
	require.True(t, res.Feasible())
	require.Equal(t, 8.0, res.MaxFlow)
}

func TestFullNetworkCapsAtFourteen(t *testing.T) {
	inst := diamond()
	res, err := mincut.Compute(inst, caps(inst, 0, 1, 2, 3, 4), []float64{14})
	require.NoError(t, err)
	// 2->4 and 3->4 together carry at most 14.
	require.Equal(t, 14.0, res.MaxFlow)
	require.True(t, res.Feasible())
}

func TestMinCutCertificate(t *testing.T) {
	inst := diamond()
	// Only the upper path is built: 1->2->4 bottlenecked at 8.
	res, err := mincut.Compute(inst, caps(inst, 0, 2), []float64{14})
	require.NoError(t, err)
	require.False(t, res.Feasible())
	require.Equal(t, 8.0, res.MaxFlow)

	// Strong duality: cut capacity equals the max flow. The residual
	// reachable side is {1, 2}, so the crossing arcs are 1->3, 2->4 and
	// 2->3 (the latter two unbuilt, contributing zero capacity).
	require.Equal(t, []int{1, 2, 4}, res.CutArcs)
	require.InDelta(t, res.MaxFlow, res.CutCapacity+res.ArtificialCut, 1e-9)
}

func TestEmptyDesignCutsAtSource(t *testing.T) {
	inst := diamond()
	res, err := mincut.Compute(inst, caps(inst), []float64{8})
	require.NoError(t, err)
	require.Equal(t, 0.0, res.MaxFlow)
	require.False(t, res.Feasible())
	// Nothing is built, so the cut sits right after the origin: both arcs
	// out of node 1 cross it with zero built capacity.
	require.Equal(t, []int{0, 1}, res.CutArcs)
	require.Zero(t, res.CutCapacity)
	require.Zero(t, res.ArtificialCut)
}

func TestInfiniteCapacity(t *testing.T) {
	inst := diamond()
	capacities := caps(inst, 0, 1, 2, 3, 4)
	capacities[0] = math.Inf(1)
	res, err := mincut.Compute(inst, capacities, []float64{14})
	require.NoError(t, err)
	require.Equal(t, 14.0, res.MaxFlow)
}

func TestArcFlowsConserve(t *testing.T) {
	inst := diamond()
	res, err := mincut.Compute(inst, caps(inst, 0, 1, 2, 3, 4), []float64{14})
	require.NoError(t, err)

	// Flow out of node 1 equals total routed flow.
	require.InDelta(t, res.MaxFlow, res.ArcFlows[0]+res.ArcFlows[1], 1e-9)
	// Flow into node 4 equals total routed flow.
	require.InDelta(t, res.MaxFlow, res.ArcFlows[2]+res.ArcFlows[3], 1e-9)
	for idx, f := range res.ArcFlows {
		require.LessOrEqual(t, f, inst.Arcs[idx].Capacity+1e-9)
	}
}

func TestBadInputs(t *testing.T) {
	inst := diamond()
	_, err := mincut.Compute(inst, []float64{1, 2}, []float64{8})
	require.ErrorIs(t, err, mincut.ErrBadCapacities)

	_, err = mincut.Compute(inst, caps(inst), []float64{8, 9})
	require.ErrorIs(t, err, mincut.ErrBadDemands)
}

package benders

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ccnd/solver"
)

// The two-commodity diamond has 10 flow columns and 11 rows: one capacity
// row per arc, then per commodity a demand row at the destination and a
// balance row per remaining non-origin node.
func TestSubModelLayout(t *testing.T) {
	inst := twoCommodity()
	m := newSubModel(inst, 0, BB, capacities(inst))

	require.Equal(t, 11, m.prob.NumRows())
	require.Len(t, m.h, 11)
	require.Len(t, m.tArc, 11)

	// Capacity rows first, linked to their arcs.
	for a := 0; a < 5; a++ {
		require.Equal(t, a, m.tArc[a])
		require.Equal(t, inst.Arcs[a].Capacity, m.tCap[a])
		require.Equal(t, solver.LE, m.prob.Rows[a].Sense)
	}

	// Two demand rows, one per commodity, carrying the scenario demands.
	var demands []float64
	for i, isDemand := range m.demandRow {
		if isDemand {
			demands = append(demands, m.h[i])
			require.Equal(t, solver.GE, m.prob.Rows[i].Sense)
			require.Equal(t, -1, m.tArc[i])
		}
	}
	require.Equal(t, []float64{5, 3}, demands)
}

func TestSubModelSuperfluousFlowsPinned(t *testing.T) {
	inst := twoCommodity()
	m := newSubModel(inst, 0, BB, capacities(inst))

	// Arc 0 (1->2) enters commodity 1's origin: its flow is pinned.
	require.Equal(t, 0.0, m.prob.Ub[0*2+1])

	// Commodity 0's flow on the same arc is free.
	require.Greater(t, m.prob.Ub[0*2+0], 0.0)
}

func TestSlackPlacementPerFamily(t *testing.T) {
	inst := twoCommodity()
	flowCols := inst.NumArcs() * inst.NumCommodities()

	countSlackRefs := func(m *subModel) (cols, refs int) {
		cols = m.prob.NumCols() - flowCols
		for _, row := range m.prob.Rows {
			for _, nz := range row.Coefs {
				if nz.Col >= flowCols {
					refs++
				}
			}
		}
		return cols, refs
	}

	// 7 inequality rows: 5 capacity, 2 demand.
	tests := []struct {
		family Family
		cols   int
		refs   int
	}{
		{BB, 7, 7},
		{SNC, 1, 7},
		{MIS, 1, 5},
		{FlowMIS, 1, 2},
	}
	for _, tc := range tests {
		t.Run(tc.family.String(), func(t *testing.T) {
			m := newSubModel(inst, 0, tc.family, capacities(inst))
			cols, refs := countSlackRefs(m)
			require.Equal(t, tc.cols, cols)
			require.Equal(t, tc.refs, refs)

			// Slacks carry the whole objective.
			for col, obj := range m.prob.Obj {
				if col < flowCols {
					require.Zero(t, obj)
				} else {
					require.Equal(t, 1.0, obj)
				}
			}
		})
	}
}

func TestSetDesignMovesCapacityRHS(t *testing.T) {
	inst := diamond()
	m := newSubModel(inst, 0, FlowMIS, capacities(inst))

	m.setDesign(design(inst, 0, 2))
	require.Equal(t, []float64{10, 0, 8, 0, 0}, []float64{
		m.prob.Rows[0].RHS,
		m.prob.Rows[1].RHS,
		m.prob.Rows[2].RHS,
		m.prob.Rows[3].RHS,
		m.prob.Rows[4].RHS,
	})

	// Demand rows keep their base right-hand side.
	require.Equal(t, 8.0, m.prob.Rows[7].RHS)
}

// Row order on the single-commodity diamond: 5 capacity rows, balance at
// node 2, balance at node 3, demand at node 4.
func TestCutFromDuals(t *testing.T) {
	inst := diamond()
	effCap := capacities(inst)
	m := newSubModel(inst, 0, BB, effCap)

	// Duals of the sink-side cut {2->4, 3->4}.
	duals := []float64{0, 0, -1, -1, 0, 0, 0, 1}
	cut := m.cutFromDuals(duals, effCap)

	require.Equal(t, []float64{0, 0, 8, 6, 0}, cut.Beta)
	require.Equal(t, 8.0, cut.Gamma)
	require.Equal(t, 0, cut.Scenario)
	require.Equal(t, KindClassical, cut.Kind)
}

func TestDualPricesClampPositivePart(t *testing.T) {
	inst := diamond()
	m := newSubModel(inst, 0, BB, capacities(inst))

	duals := []float64{0.5, 0, -1, -2, 0, 0, 0, 1}
	pi := m.dualPrices(duals)

	// Only negative capacity duals yield positive prices.
	require.Equal(t, []float64{0, 0, 1, 2, 0}, pi)
}

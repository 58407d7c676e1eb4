package deq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ccnd/benders"
	"ccnd/ndp"
	"ccnd/solver"
	"ccnd/solver/solvertest"
)

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

func TestBuildLayout(t *testing.T) {
	inst := diamond()
	prob, yCols := build(inst, Options{Alpha: 0.25, FeasTol: 1e-6})

	// 5 design + 2 exclusion + two 5-column flow blocks.
	require.Equal(t, 17, prob.NumCols())
	require.Equal(t, []int{0, 1, 2, 3, 4}, yCols)

	// Budget row first, probability weighted.
	budget := prob.Rows[0]
	require.Equal(t, solver.LE, budget.Sense)
	require.Equal(t, 0.25, budget.RHS)
	require.Equal(t, []solver.Nz{{Col: 5, Val: 0.75}, {Col: 6, Val: 0.25}}, budget.Coefs)

	// Per scenario: 5 capacity rows, 1 demand row, 2 balance rows.
	require.Equal(t, 1+2*8, prob.NumRows())
}

func TestBuildRelaxesDemandThroughExclusion(t *testing.T) {
	inst := diamond()
	prob, _ := build(inst, Options{Alpha: 0, FeasTol: 1e-6})

	var seen int
	for _, row := range prob.Rows {
		if row.Sense != solver.GE {
			continue
		}
		seen++
		demand := row.RHS
		var zCoef float64
		for _, nz := range row.Coefs {
			if nz.Col == 5 || nz.Col == 6 {
				zCoef = nz.Val
			}
		}
		// Switching z on over-satisfies the row by one percent.
		require.InDelta(t, 1.01*demand, zCoef, 1e-12)
	}
	require.Equal(t, 2, seen)
}

func TestSolveMapsSolution(t *testing.T) {
	inst := diamond()
	x := make([]float64, 17)
	x[0], x[1], x[2], x[3] = 1, 1, 1, 1 // design
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusOptimal, Objective: 14, X: x},
	}}

	res, err := Solve(context.Background(), inst, stub, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, benders.StatusOptimal, res.Status)
	require.Equal(t, 14.0, res.Cost)
	require.Equal(t, res.Cost, res.LowerBound)
	require.Empty(t, res.ExcludedScenarios)
	require.Equal(t, 1.0, res.Decisions["1->2"])
	require.Equal(t, 0.0, res.Decisions["2->3"])
}

func TestSolveMapsExclusions(t *testing.T) {
	inst := diamond()
	x := make([]float64, 17)
	x[0], x[2] = 1, 1 // 1->2 and 2->4
	x[6] = 1          // exclude the peak scenario
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusOptimal, Objective: 9, X: x},
	}}

	opts := DefaultOptions()
	opts.Alpha = 0.25
	res, err := Solve(context.Background(), inst, stub, opts)
	require.NoError(t, err)
	require.Equal(t, 9.0, res.Cost)
	require.Equal(t, []int{1}, res.ExcludedScenarios)
	require.InDelta(t, 0.25, res.ExcludedProbability, 1e-9)
}

func TestSolveInfeasible(t *testing.T) {
	inst := diamond()
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusInfeasible},
	}}

	res, err := Solve(context.Background(), inst, stub, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, benders.StatusInfeasible, res.Status)
	require.Zero(t, res.Cost)
}

func TestSolveTimeLimitWithoutIncumbent(t *testing.T) {
	inst := diamond()
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusTimeLimit},
	}}

	_, err := Solve(context.Background(), inst, stub, DefaultOptions())
	require.ErrorIs(t, err, ErrNoSolution)
}

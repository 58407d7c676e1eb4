package benders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ccnd/solver"
	"ccnd/solver/solvertest"
)

func rootOptions() Options {
	opts := DefaultOptions()
	opts.Alpha = 0.25
	opts.MasterScenario = false

	return opts
}

func TestSolveRootRelaxesThenSolvesMIP(t *testing.T) {
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusOptimal, Objective: 7.5, X: make([]float64, 7)},
		{Status: solver.StatusOptimal, Objective: 9, X: make([]float64, 7)},
	}}

	res, err := SolveRoot(context.Background(), diamond(), stub, rootOptions())
	require.NoError(t, err)
	require.Equal(t, 7.5, res.LPObjective)
	require.Equal(t, 9.0, res.MIPObjective)
	require.InDelta(t, 1.0/6.0, res.IntegralityGap(), 1e-9)

	require.Len(t, stub.Problems, 2)
	for _, typ := range stub.Problems[0].Types {
		require.Equal(t, solver.Continuous, typ)
	}
	require.Equal(t, solver.Binary, stub.Problems[1].Types[0])
}

func TestSolveRootInfeasibleRelaxation(t *testing.T) {
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusInfeasible},
	}}

	_, err := SolveRoot(context.Background(), diamond(), stub, rootOptions())
	require.ErrorIs(t, err, ErrMasterInfeasible)
	require.Len(t, stub.Problems, 1)
}

func TestSolveRootValidation(t *testing.T) {
	_, err := SolveRoot(context.Background(), nil, &solvertest.Stub{}, rootOptions())
	require.ErrorIs(t, err, ErrNilInstance)

	_, err = SolveRoot(context.Background(), diamond(), nil, rootOptions())
	require.ErrorIs(t, err, ErrNilSolver)
}

func TestRootResultString(t *testing.T) {
	res := &RootResult{LPObjective: 7.5, MIPObjective: 9}

	out := res.String()
	require.Contains(t, out, "Root results")
	require.Contains(t, out, "LP objective: 7.50")
	require.Contains(t, out, "MIP objective: 9.00")
}

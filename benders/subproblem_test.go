package benders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ccnd/solver"
	"ccnd/solver/solvertest"
)

// Single-commodity instances are settled by the max-flow screening alone;
// the stub solver must never be consulted.
func TestEvaluateScreeningFeasible(t *testing.T) {
	inst := diamond()
	stub := &solvertest.Stub{}
	sp := newSubProblem(inst, 0, FlowMIS, capacities(inst), stub, 1e-6, true)

	cert, err := sp.Evaluate(context.Background(), design(inst, 0, 2))
	require.NoError(t, err)
	require.True(t, cert.Feasible)
	require.Equal(t, []float64{8, 0, 8, 0, 0}, cert.Witness)
	require.Empty(t, stub.Problems)
}

func TestEvaluateScreeningInfeasibleCarriesMinCut(t *testing.T) {
	inst := diamond()
	stub := &solvertest.Stub{}
	sp := newSubProblem(inst, 1, FlowMIS, capacities(inst), stub, 1e-6, true)

	cert, err := sp.Evaluate(context.Background(), design(inst, 0, 2))
	require.NoError(t, err)
	require.False(t, cert.Feasible)
	require.NotNil(t, cert.MinCut)
	require.Equal(t, 6.0, cert.Objective) // 14 demanded, 8 routable
	require.Equal(t, []int{1, 2, 4}, cert.MinCut.CutArcs)
	require.Empty(t, stub.Problems)
}

// With cut-set separation disabled the screening verdict alone is not
// enough: the LP must still run so the configured family's duals are
// available, with the minimum cut riding along.
func TestEvaluateWithoutCutsetSeparationRunsLP(t *testing.T) {
	inst := diamond()
	duals := make([]float64, 8)
	duals[7] = 1
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusOptimal, Objective: 6, RowDuals: duals},
	}}
	sp := newSubProblem(inst, 1, BB, capacities(inst), stub, 1e-6, false)

	cert, err := sp.Evaluate(context.Background(), design(inst, 0, 2))
	require.NoError(t, err)
	require.False(t, cert.Feasible)
	require.Equal(t, duals, cert.Duals)
	require.NotNil(t, cert.MinCut)
	require.Len(t, stub.Problems, 1)
}

func TestEvaluateLPFeasible(t *testing.T) {
	inst := twoCommodity()
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusOptimal, Objective: 0, X: make([]float64, 11)},
	}}
	sp := newSubProblem(inst, 0, FlowMIS, capacities(inst), stub, 1e-6, true)

	cert, err := sp.Evaluate(context.Background(), design(inst, 0, 1, 2, 3, 4))
	require.NoError(t, err)
	require.True(t, cert.Feasible)
	require.Len(t, stub.Problems, 1)

	// The design moved the capacity right-hand sides.
	require.Equal(t, 10.0, stub.Problems[0].Rows[0].RHS)
}

func TestEvaluateLPInfeasibleReturnsDuals(t *testing.T) {
	inst := twoCommodity()
	duals := make([]float64, 11)
	duals[2] = -1
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusOptimal, Objective: 3, RowDuals: duals},
	}}
	sp := newSubProblem(inst, 0, FlowMIS, capacities(inst), stub, 1e-6, true)

	cert, err := sp.Evaluate(context.Background(), design(inst, 0, 1, 2, 3, 4))
	require.NoError(t, err)
	require.False(t, cert.Feasible)
	require.Equal(t, 3.0, cert.Objective)
	require.Equal(t, duals, cert.Duals)
	require.Empty(t, cert.Warning)
}

func TestEvaluateMarginalObjectiveRetriesOnce(t *testing.T) {
	inst := twoCommodity()
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusOptimal, Objective: 5e-6}, // ambiguous band
		{Status: solver.StatusOptimal, Objective: 0, X: make([]float64, 11)},
	}}
	sp := newSubProblem(inst, 0, FlowMIS, capacities(inst), stub, 1e-6, true)

	cert, err := sp.Evaluate(context.Background(), design(inst, 0, 1, 2, 3, 4))
	require.NoError(t, err)
	require.True(t, cert.Feasible)
	require.Empty(t, cert.Warning)
	require.Len(t, stub.Problems, 2)

	// The retry ran with a tightened tolerance.
	require.Equal(t, 1e-8, stub.Problems[1].FeasTol)
}

func TestEvaluateMarginalAfterRetryWarns(t *testing.T) {
	inst := twoCommodity()
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusOptimal, Objective: 5e-6},
		{Status: solver.StatusOptimal, Objective: 4e-6, RowDuals: make([]float64, 11)},
	}}
	sp := newSubProblem(inst, 0, FlowMIS, capacities(inst), stub, 1e-6, true)

	cert, err := sp.Evaluate(context.Background(), design(inst, 0, 1, 2, 3, 4))
	require.NoError(t, err)
	require.False(t, cert.Feasible)
	require.NotEmpty(t, cert.Warning)
	require.Len(t, stub.Problems, 2)
}

func TestEvaluateStructurallyUnroutable(t *testing.T) {
	inst := twoCommodity()
	stub := &solvertest.Stub{Script: []*solver.Solution{
		{Status: solver.StatusInfeasible},
	}}
	sp := newSubProblem(inst, 0, FlowMIS, capacities(inst), stub, 1e-6, true)

	cert, err := sp.Evaluate(context.Background(), design(inst, 0, 1, 2, 3, 4))
	require.NoError(t, err)
	require.False(t, cert.Feasible)
	require.True(t, cert.Unroutable)
}

func TestEvaluateSolverErrorIsFatal(t *testing.T) {
	inst := twoCommodity()
	sp := newSubProblem(inst, 0, FlowMIS, capacities(inst), &solvertest.Stub{}, 1e-6, true)

	_, err := sp.Evaluate(context.Background(), design(inst, 0, 1, 2, 3, 4))
	require.ErrorIs(t, err, solvertest.ErrScriptExhausted)
	require.ErrorContains(t, err, "scenario 0")
}

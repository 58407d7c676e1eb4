package record_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ccnd/benders"
	"ccnd/record"
)

func sampleResult() *benders.Result {
	return &benders.Result{
		Status:              benders.StatusOptimal,
		Decisions:           map[string]float64{"1->2": 1, "2->3": 0},
		DecisionCosts:       map[string]float64{"1->2": 4, "2->3": 1},
		Cost:                9.004,
		LowerBound:          9.004,
		UpperBound:          9.004,
		ExcludedScenarios:   []int{1},
		ExcludedProbability: 0.25,
		NumCuts:             3,
		CutKinds:            map[string]int{"metric": 3},
		History: []benders.BoundRecord{
			{Iteration: 0, Lower: 7.119, Upper: math.Inf(1), Cuts: 3, Evaluated: 2, Runtime: 1250 * time.Millisecond},
			{Iteration: 1, Lower: 9.004, Upper: 9.004, Evaluated: 1, Runtime: 400 * time.Millisecond},
		},
		Runtime: 1650 * time.Millisecond,
	}
}

func TestFromResultRoundsToTwoDecimals(t *testing.T) {
	rec := record.FromResult(sampleResult(), "instances/d1.txt", 0.25, "FlowMIS")

	require.Equal(t, "instances/d1.txt", rec.Instance)
	require.Equal(t, 9.0, rec.Objective)
	require.NotNil(t, rec.LowerBound)
	require.Equal(t, 9.0, *rec.LowerBound)
	require.Equal(t, 1.65, rec.RunTime)
	require.True(t, rec.Optimal)
	require.Len(t, rec.Iterations, 2)
	require.NotNil(t, rec.Iterations[0].Lower)
	require.Equal(t, 7.12, *rec.Iterations[0].Lower)
	require.Equal(t, 1.25, rec.Iterations[0].RunTime)
}

// An infeasible run never tightens its bounds. The stored record must keep
// them distinguishable from a genuine zero-cost bound.
func TestNonFiniteBoundsSerializeAsNull(t *testing.T) {
	res := &benders.Result{
		Status:     benders.StatusInfeasible,
		LowerBound: math.Inf(-1),
		UpperBound: math.Inf(1),
		Runtime:    80 * time.Millisecond,
	}

	rec := record.FromResult(res, "instances/d1.txt", 0, "FlowMIS")
	require.Nil(t, rec.LowerBound)
	require.Nil(t, rec.UpperBound)

	path := filepath.Join(t.TempDir(), "infeasible.json")
	require.NoError(t, rec.ToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"lower_bound": null`)
	require.Contains(t, string(data), `"upper_bound": null`)
}

func TestRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")

	rec := record.FromResult(sampleResult(), "instances/d1.txt", 0.25, "FlowMIS")
	require.NoError(t, rec.ToFile(path))

	got, err := record.FromFile(path)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestRootRecordRoundTrip(t *testing.T) {
	res := &benders.RootResult{
		LPObjective:  7.504,
		LPRunTime:    250 * time.Millisecond,
		MIPObjective: 9,
		MIPRunTime:   1800 * time.Millisecond,
	}

	rec := record.FromRootResult(res)
	require.Equal(t, 7.5, rec.LPObjective)
	require.Equal(t, 0.25, rec.LPRunTime)
	require.Equal(t, 9.0, rec.MIPObjective)
	require.Equal(t, 1.8, rec.MIPRunTime)

	path := filepath.Join(t.TempDir(), "root.json")
	require.NoError(t, rec.ToFile(path))

	got, err := record.RootFromFile(path)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestFromFileErrors(t *testing.T) {
	_, err := record.FromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

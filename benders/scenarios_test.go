package benders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEagerManagerRequiresEverything(t *testing.T) {
	sm := newScenarioManager(3, false)

	picked := sm.selectScenarios([]float64{0, 0, 0})
	require.Equal(t, []int{0, 1, 2}, picked)
	for s := 0; s < 3; s++ {
		require.Equal(t, Required, sm.state(s))
	}
}

func TestLazyManagerPromotesOnCoverage(t *testing.T) {
	sm := newScenarioManager(3, true)

	// Scenario 1 is excluded by the master: stays unchecked.
	picked := sm.selectScenarios([]float64{0, 1, 0})
	require.Equal(t, []int{0, 2}, picked)
	require.Equal(t, Required, sm.state(0))
	require.Equal(t, Unchecked, sm.state(1))
	require.Equal(t, Required, sm.state(2))

	// Once the master covers it, scenario 1 joins the required set.
	picked = sm.selectScenarios([]float64{0, 0, 1})
	require.Equal(t, []int{0, 1}, picked)
	require.Equal(t, Required, sm.state(1))

	// Promotion is monotone: scenario 2 stays required even while its
	// exclusion variable is on, it is just not evaluated this iteration.
	require.Equal(t, Required, sm.state(2))
}

func TestFinalizeAssignsExcluded(t *testing.T) {
	sm := newScenarioManager(3, true)
	sm.selectScenarios([]float64{0, 1, 1})

	sm.finalize([]float64{0, 1, 1})
	require.Equal(t, Required, sm.state(0))
	require.Equal(t, Excluded, sm.state(1))
	require.Equal(t, Excluded, sm.state(2))
	require.Equal(t, []int{1, 2}, sm.excluded())
}

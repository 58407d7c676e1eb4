package benders

// ScenarioState tracks what the decomposition knows about a scenario.
type ScenarioState int

const (
	// Unchecked: never selected for evaluation yet.
	Unchecked ScenarioState = iota
	// Required: the master has at some point committed to covering the
	// scenario; it is evaluated whenever its exclusion variable is off.
	Required
	// Excluded: assigned at finalization from the terminal master
	// solution; the scenario's demands need not be routable.
	Excluded
)

// String renders the state for logs.
func (s ScenarioState) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Required:
		return "required"
	case Excluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// scenarioManager decides which scenarios each iteration evaluates.
// Promotion is monotone: a scenario moves Unchecked to Required at most
// once and never back; Excluded is assigned only at finalization.
//
// In lazy mode the required set grows with the master's choices, so early
// iterations evaluate only the scenarios the master actually commits to.
// In eager mode every scenario is required from the start.
type scenarioManager struct {
	states []ScenarioState
}

func newScenarioManager(n int, lazy bool) *scenarioManager {
	sm := &scenarioManager{states: make([]ScenarioState, n)}
	if !lazy {
		for s := range sm.states {
			sm.states[s] = Required
		}
	}

	return sm
}

// selectScenarios promotes every scenario the master currently covers and
// returns, in ascending index order, the required scenarios whose exclusion
// variable is off. Those are the ones this iteration must certify.
func (sm *scenarioManager) selectScenarios(z []float64) []int {
	var picked []int
	for s := range sm.states {
		if z[s] <= 0.5 && sm.states[s] == Unchecked {
			sm.states[s] = Required
		}
		if sm.states[s] == Required && z[s] <= 0.5 {
			picked = append(picked, s)
		}
	}

	return picked
}

// finalize fixes the excluded set from the terminal master solution.
func (sm *scenarioManager) finalize(z []float64) {
	for s := range sm.states {
		if z[s] > 0.5 {
			sm.states[s] = Excluded
		}
	}
}

// state reports a scenario's current classification.
func (sm *scenarioManager) state(s int) ScenarioState { return sm.states[s] }

// excluded lists the excluded scenario indices in ascending order.
func (sm *scenarioManager) excluded() []int {
	var out []int
	for s, st := range sm.states {
		if st == Excluded {
			out = append(out, s)
		}
	}

	return out
}

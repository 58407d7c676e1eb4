package benders

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Result is the outcome of a decomposition run.
type Result struct {
	// Status tells how the run terminated.
	Status TerminationStatus `json:"status"`

	// Decisions maps arc names to their construction values in the final
	// design. Zero entries are included; String hides them.
	Decisions map[string]float64 `json:"decisions"`

	// DecisionCosts maps arc names to their fixed costs.
	DecisionCosts map[string]float64 `json:"decision_costs"`

	// Cost is the total fixed cost of the final design.
	Cost float64 `json:"cost"`

	// LowerBound and UpperBound are the terminal bounds. For an optimal
	// run they agree to within the gap tolerance.
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`

	// ExcludedScenarios lists, in ascending order, the scenarios the final
	// design does not cover; ExcludedProbability is their total mass.
	ExcludedScenarios   []int   `json:"excluded_scenarios"`
	ExcludedProbability float64 `json:"excluded_probability"`

	// NumCuts is the final cut pool size; CutKinds breaks it down.
	NumCuts  int            `json:"num_cuts"`
	CutKinds map[string]int `json:"cut_kinds"`

	// History holds one record per iteration.
	History []BoundRecord `json:"history"`

	// Runtime is the total wall time of the run.
	Runtime time.Duration `json:"runtime"`
}

// Iterations reports how many iterations ran.
func (r *Result) Iterations() int { return len(r.History) }

// Optimal reports whether the run closed the gap.
func (r *Result) Optimal() bool { return r.Status == StatusOptimal }

// Gap is the terminal relative optimality gap.
func (r *Result) Gap() float64 {
	if math.IsInf(r.UpperBound, 1) || math.IsInf(r.LowerBound, -1) {
		return math.Inf(1)
	}

	return (r.UpperBound - r.LowerBound) / math.Max(1, math.Abs(r.UpperBound))
}

// String renders a run summary followed by the non-zero decisions.
func (r *Result) String() string {
	lines := []string{
		"Solution results",
		"================",
		fmt.Sprintf("         status: %s", r.Status),
		fmt.Sprintf("   # iterations: %d", r.Iterations()),
		fmt.Sprintf("      objective: %.2f", r.Cost),
		fmt.Sprintf("    lower bound: %.2f", r.LowerBound),
		fmt.Sprintf("         # cuts: %d", r.NumCuts),
		fmt.Sprintf("run-time (wall): %.2fs", r.Runtime.Seconds()),
		fmt.Sprintf("       optimal? %t", r.Optimal()),
	}

	if len(r.ExcludedScenarios) > 0 {
		ex := make([]string, len(r.ExcludedScenarios))
		for i, s := range r.ExcludedScenarios {
			ex[i] = fmt.Sprintf("%d", s)
		}
		lines = append(lines, fmt.Sprintf("       excluded: %s (p = %.4f)",
			strings.Join(ex, ", "), r.ExcludedProbability))
	}

	lines = append(lines,
		"",
		"Decisions",
		"---------",
		"(only non-zero decisions)",
		"",
	)

	names := make([]string, 0, len(r.Decisions))
	for name, value := range r.Decisions {
		if value > 1e-9 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%32s: %.2f", name, r.Decisions[name]))
	}

	return strings.Join(lines, "\n")
}

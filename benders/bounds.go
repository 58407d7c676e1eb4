package benders

import (
	"math"
	"time"
)

// BoundRecord captures one iteration of the decomposition for reporting.
type BoundRecord struct {
	// Iteration counts from zero.
	Iteration int `json:"iteration"`

	// Lower is the master objective, a valid lower bound on the optimum.
	Lower float64 `json:"lower"`

	// Upper is the best incumbent cost so far (+Inf until one exists).
	Upper float64 `json:"upper"`

	// Cuts is the number of new cuts this iteration added.
	Cuts int `json:"cuts"`

	// Evaluated is the number of scenarios certified this iteration.
	Evaluated int `json:"evaluated"`

	// Runtime is the wall time the iteration took.
	Runtime time.Duration `json:"runtime"`

	// Warnings carries numerical notes from the scenario evaluations.
	Warnings []string `json:"warnings,omitempty"`
}

// boundTracker maintains the monotone bound pair. The lower bound never
// decreases (each master solves a relaxation of its successor) and the
// upper bound never increases (incumbents only improve).
type boundTracker struct {
	lower   float64
	upper   float64
	history []BoundRecord
}

func newBoundTracker() *boundTracker {
	return &boundTracker{lower: math.Inf(-1), upper: math.Inf(1)}
}

// observeLower folds in a master objective. Values below the current lower
// bound are clamped rather than accepted: the bound must not regress.
func (b *boundTracker) observeLower(v float64) {
	if v > b.lower {
		b.lower = v
	}
}

// observeUpper folds in an incumbent cost.
func (b *boundTracker) observeUpper(v float64) {
	if v < b.upper {
		b.upper = v
	}
}

// gap is the relative optimality gap, +Inf while either bound is trivial.
func (b *boundTracker) gap() float64 {
	if math.IsInf(b.upper, 1) || math.IsInf(b.lower, -1) {
		return math.Inf(1)
	}
	denom := math.Max(1, math.Abs(b.upper))

	return (b.upper - b.lower) / denom
}

// converged reports whether the bounds meet within tol.
func (b *boundTracker) converged(tol float64) bool { return b.gap() <= tol }

// record appends an iteration snapshot with the current bounds.
func (b *boundTracker) record(iter, cuts, evaluated int, runtime time.Duration, warnings []string) {
	b.history = append(b.history, BoundRecord{
		Iteration: iter,
		Lower:     b.lower,
		Upper:     b.upper,
		Cuts:      cuts,
		Evaluated: evaluated,
		Runtime:   runtime,
		Warnings:  warnings,
	})
}

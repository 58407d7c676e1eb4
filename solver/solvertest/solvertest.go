// Package solvertest provides deterministic solver.Interface backends for
// tests: a scripted Stub that replays canned solutions, and Enumerate, an
// exhaustive search for small pure-integer problems. Neither is a
// general-purpose solver; both exist so the decomposition logic can be
// exercised without linking a real LP/MIP backend.
package solvertest

import (
	"context"
	"errors"
	"fmt"
	"math"

	"ccnd/solver"
)

// ErrScriptExhausted is returned by Stub when more solves are requested
// than solutions were scripted.
var ErrScriptExhausted = errors.New("solvertest: scripted solutions exhausted")

// ErrNotEnumerable is returned by Enumerate for problems it cannot handle:
// continuous columns, unbounded integer columns, or search spaces larger
// than MaxPoints.
var ErrNotEnumerable = errors.New("solvertest: problem not enumerable")

// Stub replays a fixed sequence of solutions and records every problem it
// was asked to solve.
type Stub struct {
	Script   []*solver.Solution
	Problems []solver.Problem // shallow copies, in call order

	next int
}

// Solve returns the next scripted solution.
func (s *Stub) Solve(_ context.Context, p *solver.Problem) (*solver.Solution, error) {
	s.Problems = append(s.Problems, *p)
	if s.next >= len(s.Script) {
		return nil, fmt.Errorf("%w: call %d", ErrScriptExhausted, s.next)
	}
	sol := s.Script[s.next]
	s.next++

	return sol, nil
}

// Enumerate solves pure-integer problems by exhaustive search over the
// integer boxes. Ties on the objective keep the lexicographically first
// assignment in DFS order, so results are fully deterministic.
type Enumerate struct {
	// MaxPoints caps the search space; 0 means 1<<22.
	MaxPoints int

	// Tol is the feasibility tolerance for row checks; 0 means 1e-9.
	Tol float64
}

// Solve implements solver.Interface.
func (e *Enumerate) Solve(_ context.Context, p *solver.Problem) (*solver.Solution, error) {
	maxPoints := e.MaxPoints
	if maxPoints == 0 {
		maxPoints = 1 << 22
	}
	tol := e.Tol
	if tol == 0 {
		tol = 1e-9
	}

	lo := make([]int, p.NumCols())
	hi := make([]int, p.NumCols())
	points := 1
	for i := 0; i < p.NumCols(); i++ {
		switch p.Types[i] {
		case solver.Binary:
			lo[i], hi[i] = 0, 1
		case solver.Integer:
			if math.IsInf(p.Lb[i], 0) || math.IsInf(p.Ub[i], 0) {
				return nil, fmt.Errorf("%w: unbounded integer column %d", ErrNotEnumerable, i)
			}
			lo[i] = int(math.Ceil(p.Lb[i] - tol))
			hi[i] = int(math.Floor(p.Ub[i] + tol))
		default:
			return nil, fmt.Errorf("%w: continuous column %d", ErrNotEnumerable, i)
		}
		if hi[i] < lo[i] {
			return &solver.Solution{Status: solver.StatusInfeasible}, nil
		}
		points *= hi[i] - lo[i] + 1
		if points > maxPoints {
			return nil, fmt.Errorf("%w: search space exceeds %d points", ErrNotEnumerable, maxPoints)
		}
	}

	var (
		best    []float64
		bestObj = math.Inf(1)
		x       = make([]float64, p.NumCols())
	)

	var walk func(col int)
	walk = func(col int) {
		if col == p.NumCols() {
			for _, row := range p.Rows {
				if !solver.Satisfied(row, x, tol) {
					return
				}
			}
			var obj float64
			for i, c := range p.Obj {
				obj += c * x[i]
			}
			if obj < bestObj-tol {
				bestObj = obj
				best = append(best[:0], x...)
			}

			return
		}
		for v := lo[col]; v <= hi[col]; v++ {
			x[col] = float64(v)
			walk(col + 1)
		}
	}
	walk(0)

	if best == nil {
		return &solver.Solution{Status: solver.StatusInfeasible}, nil
	}

	return &solver.Solution{
		Status:    solver.StatusOptimal,
		X:         best,
		Objective: bestObj,
	}, nil
}

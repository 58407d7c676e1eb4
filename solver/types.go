package solver

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrSolver wraps backend failures (out of memory, license, numerical
// breakdown). It is distinct from model infeasibility, which is a regular
// Status, not an error.
var ErrSolver = errors.New("solver: backend failure")

// Sense is a row comparison sense.
type Sense byte

const (
	// LE is "left-hand side <= rhs".
	LE Sense = '<'
	// GE is "left-hand side >= rhs".
	GE Sense = '>'
	// EQ is "left-hand side == rhs".
	EQ Sense = '='
)

// ColType declares a column's domain.
type ColType byte

const (
	// Continuous columns range over [Lb, Ub].
	Continuous ColType = 'C'
	// Binary columns are integer with implied bounds [0, 1].
	Binary ColType = 'B'
	// Integer columns are integral within [Lb, Ub].
	Integer ColType = 'I'
)

// Status reports the outcome of a solve.
type Status int

const (
	// StatusOptimal: an optimal solution was found.
	StatusOptimal Status = iota
	// StatusInfeasible: the model admits no feasible point.
	StatusInfeasible
	// StatusUnbounded: the objective is unbounded below.
	StatusUnbounded
	// StatusTimeLimit: the time budget expired; Solution may carry the
	// incumbent found so far (HasSolution reports whether it does).
	StatusTimeLimit
)

// String renders the status for logs.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimeLimit:
		return "time-limit"
	default:
		return "unknown"
	}
}

// Nz is one nonzero coefficient of a sparse row.
type Nz struct {
	Col int
	Val float64
}

// Row is a sparse linear constraint: sum(Coef) Sense RHS.
type Row struct {
	Coefs []Nz
	Sense Sense
	RHS   float64
	Name  string
}

// Problem is a sparse minimization problem.
//
// Columns are described positionally: Obj, Lb, Ub and Types all have length
// NumCols(). Rows reference columns by index. The zero value is an empty
// problem ready for AddCol/AddRow.
type Problem struct {
	Obj   []float64
	Lb    []float64
	Ub    []float64
	Types []ColType
	Names []string

	Rows []Row

	// FeasTol is the primal feasibility tolerance the backend should use;
	// zero means backend default. Tightened on ill-conditioning retries.
	FeasTol float64

	// TimeLimit bounds a single solve; zero means unlimited.
	TimeLimit time.Duration
}

// NumCols returns the number of columns.
func (p *Problem) NumCols() int { return len(p.Obj) }

// NumRows returns the number of rows.
func (p *Problem) NumRows() int { return len(p.Rows) }

// AddCol appends a column and returns its index.
func (p *Problem) AddCol(obj, lb, ub float64, typ ColType, name string) int {
	p.Obj = append(p.Obj, obj)
	p.Lb = append(p.Lb, lb)
	p.Ub = append(p.Ub, ub)
	p.Types = append(p.Types, typ)
	p.Names = append(p.Names, name)

	return len(p.Obj) - 1
}

// AddRow appends a row and returns its index.
func (p *Problem) AddRow(coefs []Nz, sense Sense, rhs float64, name string) int {
	p.Rows = append(p.Rows, Row{Coefs: coefs, Sense: sense, RHS: rhs, Name: name})

	return len(p.Rows) - 1
}

// SetRHS updates the right-hand side of row i in place. Used to re-point a
// warm subproblem at a new candidate design without rebuilding the matrix.
func (p *Problem) SetRHS(i int, rhs float64) { p.Rows[i].RHS = rhs }

// IsMIP reports whether any column is integral.
func (p *Problem) IsMIP() bool {
	for _, t := range p.Types {
		if t != Continuous {
			return true
		}
	}

	return false
}

// Solution carries the results from one solve.
//
// RowDuals is populated for pure LPs only; MIP solves leave it nil.
type Solution struct {
	Status    Status
	X         []float64 // primal column values
	RowDuals  []float64 // dual multipliers per row (LP only)
	Objective float64
}

// IsOptimal reports whether the solve finished with an optimal solution.
func (s *Solution) IsOptimal() bool { return s.Status == StatusOptimal }

// HasSolution reports whether X carries a usable (not necessarily optimal)
// primal point.
func (s *Solution) HasSolution() bool {
	return len(s.X) > 0 && (s.Status == StatusOptimal || s.Status == StatusTimeLimit)
}

// Value returns the primal value of column i, or 0 when out of range.
func (s *Solution) Value(i int) float64 {
	if i < 0 || i >= len(s.X) {
		return 0
	}

	return s.X[i]
}

// Interface is the LP/MIP collaborator contract.
//
// Solve must be deterministic for a fixed problem, and must not retain p or
// the returned solution (the caller owns both).
type Interface interface {
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

// Activity computes the left-hand-side value of row r at point x.
func Activity(r Row, x []float64) float64 {
	var lhs float64
	for _, nz := range r.Coefs {
		lhs += nz.Val * x[nz.Col]
	}

	return lhs
}

// Satisfied reports whether row r holds at x within tolerance tol.
func Satisfied(r Row, x []float64, tol float64) bool {
	lhs := Activity(r, x)
	switch r.Sense {
	case LE:
		return lhs <= r.RHS+tol
	case GE:
		return lhs >= r.RHS-tol
	default:
		return math.Abs(lhs-r.RHS) <= tol
	}
}

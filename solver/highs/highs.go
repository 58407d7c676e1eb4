// Package highs binds the HiGHS C API as the production solver.Interface
// backend. HiGHS handles both the LP subproblems (with row duals for cut
// extraction) and the mixed-integer master resolves.
//
// Linking requires the HiGHS shared library and headers to be installed.
package highs

// #cgo LDFLAGS: -lhighs
// #include <stdlib.h>
// #include <interfaces/highs_c_api.h>
import "C"

import (
	"context"
	"fmt"
	"math"
	"unsafe"

	"ccnd/solver"
)

// Solver is a stateless HiGHS-backed solver. Each Solve builds a fresh
// HiGHS model, so concurrent Solve calls are safe.
type Solver struct{}

// New returns a HiGHS-backed solver.
func New() *Solver { return &Solver{} }

// Solve implements solver.Interface.
func (s *Solver) Solve(ctx context.Context, p *solver.Problem) (*solver.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := C.Highs_create()
	if h == nil {
		return nil, fmt.Errorf("%w: Highs_create failed", solver.ErrSolver)
	}
	defer C.Highs_destroy(h)

	silence(h)
	if p.TimeLimit > 0 {
		setDouble(h, "time_limit", p.TimeLimit.Seconds())
	}
	if p.FeasTol > 0 {
		setDouble(h, "primal_feasibility_tolerance", p.FeasTol)
		setDouble(h, "dual_feasibility_tolerance", p.FeasTol)
	}

	for i := 0; i < p.NumCols(); i++ {
		lb, ub := p.Lb[i], p.Ub[i]
		if p.Types[i] == solver.Binary {
			lb, ub = 0, 1
		}
		if C.Highs_addCol(h, C.double(p.Obj[i]), C.double(lb), C.double(ub), 0, nil, nil) != C.kHighsStatusOk {
			return nil, fmt.Errorf("%w: Highs_addCol %d", solver.ErrSolver, i)
		}
		if p.Types[i] != solver.Continuous {
			if C.Highs_changeColIntegrality(h, C.HighsInt(i), C.kHighsVarTypeInteger) != C.kHighsStatusOk {
				return nil, fmt.Errorf("%w: Highs_changeColIntegrality %d", solver.ErrSolver, i)
			}
		}
	}

	for i, row := range p.Rows {
		lower, upper := rowBounds(row)
		nnz := len(row.Coefs)
		idx := make([]C.HighsInt, nnz)
		val := make([]C.double, nnz)
		for j, nz := range row.Coefs {
			idx[j] = C.HighsInt(nz.Col)
			val[j] = C.double(nz.Val)
		}
		var pi *C.HighsInt
		var pv *C.double
		if nnz > 0 {
			pi, pv = &idx[0], &val[0]
		}
		if C.Highs_addRow(h, C.double(lower), C.double(upper), C.HighsInt(nnz), pi, pv) != C.kHighsStatusOk {
			return nil, fmt.Errorf("%w: Highs_addRow %d", solver.ErrSolver, i)
		}
	}

	if status := C.Highs_run(h); status == C.kHighsStatusError {
		return nil, fmt.Errorf("%w: Highs_run", solver.ErrSolver)
	}

	sol := &solver.Solution{}
	switch C.Highs_getModelStatus(h) {
	case C.kHighsModelStatusOptimal:
		sol.Status = solver.StatusOptimal
	case C.kHighsModelStatusInfeasible:
		sol.Status = solver.StatusInfeasible
	case C.kHighsModelStatusUnbounded, C.kHighsModelStatusUnboundedOrInfeasible:
		sol.Status = solver.StatusUnbounded
	case C.kHighsModelStatusTimeLimit:
		sol.Status = solver.StatusTimeLimit
	default:
		return nil, fmt.Errorf("%w: model status %d", solver.ErrSolver, int(C.Highs_getModelStatus(h)))
	}

	if sol.Status == solver.StatusInfeasible || sol.Status == solver.StatusUnbounded {
		return sol, nil
	}

	var primalStatus C.HighsInt
	getIntInfo(h, "primal_solution_status", &primalStatus)
	if primalStatus != C.kHighsSolutionStatusFeasible {
		// Time limit hit before any incumbent.
		return sol, nil
	}

	nCols, nRows := p.NumCols(), p.NumRows()
	colVal := make([]C.double, max(nCols, 1))
	colDual := make([]C.double, max(nCols, 1))
	rowVal := make([]C.double, max(nRows, 1))
	rowDual := make([]C.double, max(nRows, 1))
	if C.Highs_getSolution(h, &colVal[0], &colDual[0], &rowVal[0], &rowDual[0]) != C.kHighsStatusOk {
		return nil, fmt.Errorf("%w: Highs_getSolution", solver.ErrSolver)
	}

	sol.X = make([]float64, nCols)
	for i := range sol.X {
		sol.X[i] = float64(colVal[i])
	}
	if !p.IsMIP() {
		sol.RowDuals = make([]float64, nRows)
		for i := range sol.RowDuals {
			sol.RowDuals[i] = float64(rowDual[i])
		}
	}
	sol.Objective = float64(C.Highs_getObjectiveValue(h))

	return sol, nil
}

func rowBounds(r solver.Row) (lower, upper float64) {
	switch r.Sense {
	case solver.LE:
		return math.Inf(-1), r.RHS
	case solver.GE:
		return r.RHS, math.Inf(1)
	default:
		return r.RHS, r.RHS
	}
}

func silence(h unsafe.Pointer) {
	name := C.CString("output_flag")
	defer C.free(unsafe.Pointer(name))
	C.Highs_setBoolOptionValue(h, name, 0)
}

func setDouble(h unsafe.Pointer, option string, value float64) {
	name := C.CString(option)
	defer C.free(unsafe.Pointer(name))
	C.Highs_setDoubleOptionValue(h, name, C.double(value))
}

func getIntInfo(h unsafe.Pointer, info string, out *C.HighsInt) {
	name := C.CString(info)
	defer C.free(unsafe.Pointer(name))
	C.Highs_getIntInfoValue(h, name, out)
}

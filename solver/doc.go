// Package solver defines the interface the decomposition core requires from
// an external linear / mixed-integer programming solver, together with the
// sparse problem description exchanged across that interface.
//
// The core never implements simplex or branch-and-bound itself; it only
// needs a collaborator that can
//
//   - solve a (mixed-integer) linear minimization problem and return primal
//     column values plus the objective, and
//   - for an LP solved as a phase-1 feasibility problem, return row duals so
//     that infeasibility certificates can be turned into Benders cuts.
//
// Problems are built column-wise (objective, bounds, integrality) and
// row-wise (sparse coefficient lists, sense, right-hand side). Rows support
// in-place right-hand-side updates so per-scenario subproblems can be kept
// warm across iterations.
//
// Backends:
//
//   - solver/highs: production backend binding the HiGHS C API via cgo.
//   - solver/solvertest: deterministic test backends (a scripted stub, and
//     exhaustive enumeration for small pure-integer problems).
//
// All solves are blocking; cancellation is honored between solves only,
// matching the decomposition's iteration-boundary time-limit policy.
package solver

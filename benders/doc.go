// Package benders implements the Benders-style decomposition engine for
// chance-constrained, multicommodity, capacitated, fixed-charge network
// design.
//
// The engine alternates between a restricted master problem over the binary
// construction decisions y (plus one binary exclusion indicator z per
// scenario) and per-scenario flow-feasibility subproblems:
//
//	master:  min  sum_a fixed_a * y_a
//	         s.t. sum_s p_s * z_s <= alpha          (risk budget)
//	              accumulated cuts                  (monotone pool)
//	              cut-set valid inequalities        (optional, default on)
//	              mean-value scenario rows          (master-scenario technique)
//
// Each iteration the master proposes a design, the scenario manager selects
// which scenarios must currently hold (z_s = 0), selected scenarios are
// evaluated in parallel, and every infeasible one contributes a cut
//
//	beta . y + gamma * z_s >= gamma,
//
// valid for every design because it is derived from duals or minimum cuts
// of the scenario data, not from the candidate itself. Cuts accumulate and
// are never removed.
//
// Subproblem formulations (slack placement in the phase-1 LP) follow the
// four classical families: BB (slack per constraint), SNC (single
// normalized slack), MIS (slack on design-linked rows only) and FlowMIS
// (slack on demand rows only). Before any LP is posed, an aggregate
// max-flow screening decides clearly unroutable scenarios combinatorially
// and yields sparse cut-set cuts; for single-commodity instances the
// screening is exact and no LP is needed at all.
//
// Determinism: subproblems are evaluated by a worker pool but merged in
// ascending scenario order behind a barrier, so a fixed instance, option
// set and solver always reproduce the same iteration sequence.
//
// Termination: optimal (gap within tolerance), time limit or iteration
// limit (best incumbent returned), or infeasible (the master admits no
// design at the requested risk level).
package benders

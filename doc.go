// Package ccnd solves chance-constrained, multicommodity, capacitated,
// fixed-charge network design problems by Benders-style decomposition.
//
// Given a directed graph, a set of commodities and a finite set of demand
// scenarios with probabilities, the engine picks the cheapest set of arcs
// to build such that the scenarios the design cannot route carry at most
// alpha probability mass.
//
// The module is organized as:
//
//	ndp/        instance model: arcs, commodities, scenarios, parsing
//	benders/    the decomposition engine: master MIP, scenario
//	              subproblems, feasibility cuts, metric strengthening
//	mincut/     aggregate max-flow screening with minimum-cut certificates
//	deq/        the monolithic deterministic equivalent baseline
//	solver/     LP/MIP solver abstraction; solver/highs links HiGHS,
//	              solver/solvertest provides deterministic test backends
//	record/     JSON result persistence
//	config/     TOML run configuration
//	cmd/ccnd    the command-line front end
//
// Start with benders.NewSession for the decomposition or deq.Solve for the
// exact baseline.
package ccnd

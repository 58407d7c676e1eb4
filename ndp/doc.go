// Package ndp defines the immutable data model for chance-constrained,
// multicommodity, capacitated, fixed-charge network design instances, and a
// reader for the whitespace-separated ".ndp" instance format.
//
// Data model:
//
//   - Instance: node count, directed arcs, commodities, demand scenarios.
//     Immutable once loaded; all solver components share one *Instance.
//   - Arc: directed (From, To) with per-unit flow cost, capacity and a
//     construction fixed cost. Capacity may be math.Inf(1) (unconstrained).
//   - Commodity: an (origin, destination) pair.
//   - Scenario: an occurrence probability plus one demand value per
//     commodity. Probabilities sum to one across the instance.
//
// Nodes are numbered 1..NumNodes, matching the on-disk format.
//
// Instance format (all tokens whitespace-separated):
//
//	<nodes> <arcs> <commodities> <scenarios>
//	<from> <to> <flow-cost> <capacity> <fixed-cost>     (one line per arc)
//	<from> <to>                                         (one line per commodity)
//	<probability> <demand-1> ... <demand-K>             (one line per scenario)
//
// Errors (sentinel):
//
//   - ErrMalformedInstance wraps every structural violation: truncated
//     input, out-of-range node references, negative capacities or costs,
//     probabilities not summing to one. Callers test with errors.Is.
//
// Validation is strict and fatal: a malformed instance is surfaced
// immediately and never repaired (the decomposition core assumes a
// validated instance).
package ndp

// Package mincut computes maximum flows and minimum cuts on ndp networks
// using Dinic's algorithm (level graph + blocking flows).
//
// The decomposition core uses it in three places:
//
//   - Evaluator screening: the aggregate single-commodity relaxation of a
//     scenario. A super source feeds every commodity origin with that
//     origin's total scenario demand, every destination drains into a super
//     sink, and inner arcs carry the capacity implied by the candidate
//     design. Max flow below total demand proves the scenario unroutable,
//     and the minimum cut is the certificate. For single-commodity
//     instances the relaxation is exact in both directions.
//   - Cut-set separation: violated cut-set inequalities for the master are
//     read directly off the minimum cut.
//   - Combinatorial cut strengthening: no-good cuts are restricted to the
//     unbuilt arcs crossing the violated cut.
//
// Determinism: arcs are relaxed in index order throughout, so the same
// inputs always yield the same flow and the same cut.
//
// Complexity: O(V^2 * E) worst case, far below that on the sparse design
// networks this package sees.
package mincut

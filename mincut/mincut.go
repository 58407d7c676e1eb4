package mincut

import (
	"errors"
	"math"

	"ccnd/ndp"
)

// Epsilon below which capacities are treated as zero.
const Epsilon = 1e-9

var (
	// ErrBadCapacities is returned when the capacity vector does not have
	// one entry per instance arc, or an entry is negative.
	ErrBadCapacities = errors.New("mincut: capacity vector does not match instance arcs")

	// ErrBadDemands is returned when the demand vector does not have one
	// entry per commodity, or an entry is negative.
	ErrBadDemands = errors.New("mincut: demand vector does not match instance commodities")
)

// Result of one aggregate max-flow computation.
type Result struct {
	// MaxFlow is the total flow routed from the super source.
	MaxFlow float64

	// Demand is the total demand the flow was asked to route.
	Demand float64

	// ArcFlows holds the flow carried by each instance arc, indexed like
	// Instance.Arcs.
	ArcFlows []float64

	// CutArcs lists, in ascending index order, every instance arc crossing
	// the minimum cut (tail reachable from the super source in the final
	// residual network, head not) - including arcs the candidate design has
	// not built. Inequalities derived from the cut stay valid for every
	// design only if the unbuilt crossing arcs are present.
	CutArcs []int

	// CutCapacity is the summed capacity of CutArcs under the capacities
	// the computation was given.
	CutCapacity float64

	// ArtificialCut is the capacity of super-source/super-sink edges that
	// fall on the minimum cut. A design-independent term: any valid
	// cut-set inequality derived from this cut must require the CutArcs to
	// cover Demand - ArtificialCut rather than the full Demand.
	ArtificialCut float64
}

// Feasible reports whether the routed flow covers the demand.
func (r Result) Feasible() bool { return r.MaxFlow >= r.Demand-Epsilon }

// internal edge of the residual network.
type edge struct {
	to   int
	rev  int     // index of the reverse edge in adj[to]
	cap  float64 // remaining capacity
	orig float64 // initial capacity
	arc  int     // instance arc index, or -1 for artificial edges
}

// Compute runs the aggregate max-flow screening for one scenario.
//
// capacities must hold the effective capacity of every instance arc (the
// arc capacity scaled by the candidate design). demands must hold the
// scenario demand per commodity. Infinite capacities are supported.
func Compute(inst *ndp.Instance, capacities, demands []float64) (Result, error) {
	if len(capacities) != inst.NumArcs() {
		return Result{}, ErrBadCapacities
	}
	for _, c := range capacities {
		if c < -Epsilon || math.IsNaN(c) {
			return Result{}, ErrBadCapacities
		}
	}
	if len(demands) != inst.NumCommodities() {
		return Result{}, ErrBadDemands
	}

	// Node layout: 0 = super source, 1..NumNodes = instance nodes,
	// NumNodes+1 = super sink.
	source := 0
	sink := inst.NumNodes + 1
	n := inst.NumNodes + 2
	adj := make([][]edge, n)

	addEdge := func(u, v int, cap float64, arc int) {
		adj[u] = append(adj[u], edge{to: v, rev: len(adj[v]), cap: cap, orig: cap, arc: arc})
		adj[v] = append(adj[v], edge{to: u, rev: len(adj[u]) - 1, cap: 0, orig: 0, arc: -1})
	}

	// Inner arcs in index order keeps the computation deterministic.
	for idx, a := range inst.Arcs {
		if capacities[idx] > Epsilon {
			addEdge(a.From, a.To, capacities[idx], idx)
		}
	}

	var total float64
	supply := make(map[int]float64)
	drain := make(map[int]float64)
	for k, c := range inst.Commodities {
		supply[c.From] += demands[k]
		drain[c.To] += demands[k]
		total += demands[k]
	}
	for _, node := range inst.Origins() {
		if supply[node] > Epsilon {
			addEdge(source, node, supply[node], -1)
		}
	}
	for _, node := range inst.Destinations() {
		if drain[node] > Epsilon {
			addEdge(node, sink, drain[node], -1)
		}
	}

	maxFlow := dinic(adj, source, sink)

	res := Result{
		MaxFlow:  maxFlow,
		Demand:   total,
		ArcFlows: make([]float64, inst.NumArcs()),
	}

	// Recover per-arc flows from residual capacities.
	for u := range adj {
		for _, e := range adj[u] {
			if e.arc >= 0 {
				res.ArcFlows[e.arc] = e.orig - e.cap
			}
		}
	}

	// Minimum cut: instance arcs leaving the residual-reachable side. Note
	// that unbuilt arcs (zero capacity here) crossing the partition are
	// listed too; they contribute nothing to CutCapacity but carry their
	// full capacity in any inequality built from this cut.
	reach := reachable(adj, source)
	for idx, a := range inst.Arcs {
		if reach[a.From] && !reach[a.To] {
			res.CutArcs = append(res.CutArcs, idx)
			res.CutCapacity += capacities[idx]
		}
	}

	// The sink is never residual-reachable once the flow is maximum, so an
	// artificial edge crosses the cut when the origin it feeds is
	// unreachable, or the destination it drains is reachable.
	for node, cap := range supply {
		if cap > Epsilon && !reach[node] {
			res.ArtificialCut += cap
		}
	}
	for node, cap := range drain {
		if cap > Epsilon && reach[node] {
			res.ArtificialCut += cap
		}
	}

	return res, nil
}

// dinic computes max flow over the residual adjacency in place.
func dinic(adj [][]edge, source, sink int) float64 {
	var maxFlow float64
	level := make([]int, len(adj))
	iter := make([]int, len(adj))

	for {
		if !bfsLevels(adj, source, sink, level) {
			break
		}
		for i := range iter {
			iter[i] = 0
		}
		for {
			pushed := dfsPush(adj, level, iter, source, sink, math.Inf(1))
			if pushed <= Epsilon {
				break
			}
			maxFlow += pushed
		}
	}

	return maxFlow
}

func bfsLevels(adj [][]edge, source, sink int, level []int) bool {
	for i := range level {
		level[i] = -1
	}
	level[source] = 0
	queue := []int{source}
	for i := 0; i < len(queue); i++ {
		u := queue[i]
		for _, e := range adj[u] {
			if e.cap > Epsilon && level[e.to] < 0 {
				level[e.to] = level[u] + 1
				queue = append(queue, e.to)
			}
		}
	}

	return level[sink] >= 0
}

func dfsPush(adj [][]edge, level, iter []int, u, sink int, available float64) float64 {
	if u == sink {
		return available
	}
	for ; iter[u] < len(adj[u]); iter[u]++ {
		e := &adj[u][iter[u]]
		if e.cap <= Epsilon || level[e.to] != level[u]+1 {
			continue
		}
		send := math.Min(available, e.cap)
		pushed := dfsPush(adj, level, iter, e.to, sink, send)
		if pushed > Epsilon {
			e.cap -= pushed
			adj[e.to][e.rev].cap += pushed

			return pushed
		}
	}

	return 0
}

func reachable(adj [][]edge, source int) []bool {
	reach := make([]bool, len(adj))
	reach[source] = true
	queue := []int{source}
	for i := 0; i < len(queue); i++ {
		u := queue[i]
		for _, e := range adj[u] {
			if e.cap > Epsilon && !reach[e.to] {
				reach[e.to] = true
				queue = append(queue, e.to)
			}
		}
	}

	return reach
}

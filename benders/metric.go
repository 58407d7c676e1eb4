package benders

import (
	"container/heap"
	"math"

	"ccnd/ndp"
)

// metricGamma computes the metric lower bound on the cut constant:
//
//	gamma = sum_k d_k * SP_k(pi),
//
// where SP_k is the shortest origin->destination path length of commodity k
// under the nonnegative arc prices pi (Costa et al. 2009). A commodity with
// positive demand but no path at all yields +Inf; callers must fall back to
// the plain dual constant in that case.
func metricGamma(inst *ndp.Instance, scen int, pi []float64) float64 {
	var gamma float64
	for k, c := range inst.Commodities {
		demand := inst.CommodityDemand(scen, k)
		if demand <= 0 {
			continue
		}
		dist := shortestPath(inst, c.From, c.To, pi)
		if math.IsInf(dist, 1) {
			return math.Inf(1)
		}
		gamma += demand * dist
	}

	return gamma
}

// shortestPath runs Dijkstra from node `from` to node `to` under the
// nonnegative per-arc weights. Arcs are relaxed in index order, so ties are
// broken deterministically.
//
// Complexity: O((V + E) log V) with a lazy-decrease-key binary heap.
func shortestPath(inst *ndp.Instance, from, to int, weights []float64) float64 {
	dist := make([]float64, inst.NumNodes+1)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[from] = 0

	pq := &nodeHeap{{node: from, dist: 0}}
	for pq.Len() > 0 {
		item := heap.Pop(pq).(nodeItem)
		if item.dist > dist[item.node] {
			continue // stale queue entry
		}
		if item.node == to {
			return item.dist
		}
		for _, a := range inst.ArcsFrom(item.node) {
			next := inst.Arcs[a].To
			if d := item.dist + weights[a]; d < dist[next] {
				dist[next] = d
				heap.Push(pq, nodeItem{node: next, dist: d})
			}
		}
	}

	return dist[to]
}

type nodeItem struct {
	node int
	dist float64
}

type nodeHeap []nodeItem

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}

	return h[i].node < h[j].node
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(nodeItem)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

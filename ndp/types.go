package ndp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrMalformedInstance is returned (wrapped, with detail) whenever a
// structural invariant of the instance data is violated.
var ErrMalformedInstance = errors.New("ndp: malformed instance")

// probSumTol bounds the allowed drift of the scenario probability sum from 1.
const probSumTol = 1e-6

// Arc is a directed, capacitated arc with a construction fixed cost.
// FlowCost is the per-unit routing cost; the feasibility-driven
// decomposition core does not price flows, but the field is carried for
// completeness (it appears in the instance format).
type Arc struct {
	From      int     // tail node, 1-based
	To        int     // head node, 1-based
	FlowCost  float64 // per-unit variable flow cost
	Capacity  float64 // non-negative; math.Inf(1) means unconstrained
	FixedCost float64 // cost of constructing the arc
}

// String renders the arc as "from->to", the form used for decision names.
func (a Arc) String() string { return fmt.Sprintf("%d->%d", a.From, a.To) }

// Commodity is an (origin, destination) pair.
type Commodity struct {
	From int
	To   int
}

// Scenario couples an occurrence probability with one demand per commodity.
type Scenario struct {
	Probability float64
	Demands     []float64 // indexed by commodity
}

// Instance is a fully validated problem instance. Treat as immutable.
type Instance struct {
	NumNodes    int
	Arcs        []Arc
	Commodities []Commodity
	Scenarios   []Scenario

	out [][]int // out[node] = indices of arcs leaving node
	in  [][]int // in[node]  = indices of arcs entering node
}

// NumArcs returns the number of arcs.
func (inst *Instance) NumArcs() int { return len(inst.Arcs) }

// NumCommodities returns the number of commodities.
func (inst *Instance) NumCommodities() int { return len(inst.Commodities) }

// NumScenarios returns the number of demand scenarios.
func (inst *Instance) NumScenarios() int { return len(inst.Scenarios) }

// ArcsFrom returns the indices of arcs leaving node (1-based).
// The returned slice is shared; callers must not mutate it.
func (inst *Instance) ArcsFrom(node int) []int {
	inst.buildIndex()

	return inst.out[node]
}

// ArcsTo returns the indices of arcs entering node (1-based).
// The returned slice is shared; callers must not mutate it.
func (inst *Instance) ArcsTo(node int) []int {
	inst.buildIndex()

	return inst.in[node]
}

// Origins returns the sorted distinct commodity origin nodes.
func (inst *Instance) Origins() []int {
	return distinctNodes(inst.Commodities, func(c Commodity) int { return c.From })
}

// Destinations returns the sorted distinct commodity destination nodes.
func (inst *Instance) Destinations() []int {
	return distinctNodes(inst.Commodities, func(c Commodity) int { return c.To })
}

// TotalDemand returns the demand summed over all commodities in scenario s.
func (inst *Instance) TotalDemand(s int) float64 {
	var total float64
	for _, d := range inst.Scenarios[s].Demands {
		total += d
	}

	return total
}

// CommodityDemand returns the demand of commodity k in scenario s.
func (inst *Instance) CommodityDemand(s, k int) float64 {
	return inst.Scenarios[s].Demands[k]
}

// MeanValueDemands computes, per commodity, the probability-weighted mean of
// the demand values at or below the marginal (1-alpha)-quantile of that
// commodity's demand distribution. This is the chance-constrained analogue
// of the mean-value scenario used by the master-scenario technique: a design
// that routes these demands is a valid relaxation requirement at risk level
// alpha.
//
// The quantile is the smallest demand value whose cumulative probability
// reaches 1-alpha.
func (inst *Instance) MeanValueDemands(alpha float64) []float64 {
	k := inst.NumCommodities()
	n := inst.NumScenarios()
	demands := make([]float64, k)

	for c := 0; c < k; c++ {
		order := make([]int, n)
		for s := range order {
			order[s] = s
		}
		sort.Slice(order, func(i, j int) bool {
			return inst.Scenarios[order[i]].Demands[c] < inst.Scenarios[order[j]].Demands[c]
		})

		// Walk the sorted demands until the cumulative probability covers
		// 1-alpha; that value is the marginal quantile.
		quantile := inst.Scenarios[order[n-1]].Demands[c]
		var cum float64
		for _, s := range order {
			cum += inst.Scenarios[s].Probability
			if cum >= 1-alpha-probSumTol {
				quantile = inst.Scenarios[s].Demands[c]

				break
			}
		}

		var sum, mass float64
		for _, s := range order {
			if d := inst.Scenarios[s].Demands[c]; d <= quantile {
				sum += d * inst.Scenarios[s].Probability
				mass += inst.Scenarios[s].Probability
			}
		}
		if mass > 0 {
			demands[c] = sum / mass
		}
	}

	return demands
}

// Validate checks every structural invariant of the instance and returns a
// wrapped ErrMalformedInstance on the first violation found.
func (inst *Instance) Validate() error {
	if inst.NumNodes < 2 {
		return fmt.Errorf("%w: need at least two nodes, have %d", ErrMalformedInstance, inst.NumNodes)
	}
	if len(inst.Arcs) == 0 {
		return fmt.Errorf("%w: no arcs", ErrMalformedInstance)
	}
	if len(inst.Commodities) == 0 {
		return fmt.Errorf("%w: no commodities", ErrMalformedInstance)
	}
	if len(inst.Scenarios) == 0 {
		return fmt.Errorf("%w: no scenarios", ErrMalformedInstance)
	}

	for i, a := range inst.Arcs {
		if !inst.validNode(a.From) || !inst.validNode(a.To) {
			return fmt.Errorf("%w: arc %d references node outside 1..%d", ErrMalformedInstance, i, inst.NumNodes)
		}
		if a.From == a.To {
			return fmt.Errorf("%w: arc %d is a self-loop at node %d", ErrMalformedInstance, i, a.From)
		}
		if a.Capacity < 0 || math.IsNaN(a.Capacity) {
			return fmt.Errorf("%w: arc %d has negative capacity %g", ErrMalformedInstance, i, a.Capacity)
		}
		if a.FixedCost < 0 || math.IsNaN(a.FixedCost) || math.IsInf(a.FixedCost, 0) {
			return fmt.Errorf("%w: arc %d has invalid fixed cost %g", ErrMalformedInstance, i, a.FixedCost)
		}
	}

	for i, c := range inst.Commodities {
		if !inst.validNode(c.From) || !inst.validNode(c.To) {
			return fmt.Errorf("%w: commodity %d references node outside 1..%d", ErrMalformedInstance, i, inst.NumNodes)
		}
		if c.From == c.To {
			return fmt.Errorf("%w: commodity %d has equal origin and destination %d", ErrMalformedInstance, i, c.From)
		}
	}

	var probSum float64
	for i, s := range inst.Scenarios {
		if s.Probability < 0 || s.Probability > 1 || math.IsNaN(s.Probability) {
			return fmt.Errorf("%w: scenario %d has probability %g outside [0,1]", ErrMalformedInstance, i, s.Probability)
		}
		if len(s.Demands) != len(inst.Commodities) {
			return fmt.Errorf("%w: scenario %d has %d demands, want %d", ErrMalformedInstance, i, len(s.Demands), len(inst.Commodities))
		}
		for k, d := range s.Demands {
			if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
				return fmt.Errorf("%w: scenario %d has invalid demand %g for commodity %d", ErrMalformedInstance, i, d, k)
			}
		}
		probSum += s.Probability
	}
	if math.Abs(probSum-1) > probSumTol {
		return fmt.Errorf("%w: scenario probabilities sum to %g, want 1", ErrMalformedInstance, probSum)
	}

	inst.buildIndex()

	return nil
}

func (inst *Instance) validNode(n int) bool { return n >= 1 && n <= inst.NumNodes }

// buildIndex populates the out/in adjacency indices once.
func (inst *Instance) buildIndex() {
	if inst.out != nil {
		return
	}
	inst.out = make([][]int, inst.NumNodes+1)
	inst.in = make([][]int, inst.NumNodes+1)
	for idx, a := range inst.Arcs {
		inst.out[a.From] = append(inst.out[a.From], idx)
		inst.in[a.To] = append(inst.in[a.To], idx)
	}
}

func distinctNodes(commodities []Commodity, get func(Commodity) int) []int {
	seen := make(map[int]bool, len(commodities))
	var nodes []int
	for _, c := range commodities {
		if n := get(c); !seen[n] {
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	sort.Ints(nodes)

	return nodes
}

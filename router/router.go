// Package router implements §4.4's single-vertex analysis: given a
// junction vertex's in-edges and out-edges, decide whether read-derived
// phasing evidence determines how they pair up, and if not, propose an
// equation (a weight-balanced partition) for the Scallop driver to
// verify and act on.
package router

import (
	"github.com/exascience/scallop/graph"
)

// Status is the outcome of analyzing one vertex (§4.4).
type Status int

const (
	Trivial Status = iota
	Phased
	Split
	// Unresolved is returned when the vertex's routes form a single
	// bipartite component but the balancing solve failed (§7's
	// SolverFailure). The caller leaves the vertex's weights untouched
	// rather than guessing a structural split.
	Unresolved
)

func (s Status) String() string {
	switch s {
	case Trivial:
		return "trivial"
	case Phased:
		return "phased"
	case Split:
		return "split"
	case Unresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Equation is an observed arithmetic identity between the weights of a
// set of in-edges and a set of out-edges of one vertex (§3's Equation,
// §4.4's "emit a single equation").
type Equation struct {
	In, Out []int32
	Error   float64
}

// Result is what Analyze returns for one vertex.
type Result struct {
	Status    Status
	Equations []Equation // 1 entry for Trivial, 2 for Split (0 if no split was found), 0 for Phased
	Balance   *Balance   // non-nil only for Phased
}

// Analyze implements §4.4's router algorithm for vertex v.
func Analyze(g *graph.SpliceGraph, hs *graph.HyperSet, v int32) Result {
	in := g.InEdgesOf(v)
	out := g.OutEdgesOf(v)
	a, b := len(in), len(out)

	if a == 1 || b == 1 {
		return Result{Status: Trivial, Equations: []Equation{singleEquation(g, in, out)}}
	}

	routes := edgeRoutes(g, hs, v, in, out)

	localIdx := make(map[int32]int, a+b)
	for i, e := range in {
		localIdx[e] = i
	}
	for i, e := range out {
		localIdx[e] = a + i
	}
	localRoutes := make([][2]int, len(routes))
	for i, r := range routes {
		localRoutes[i] = [2]int{localIdx[r[0]], localIdx[r[1]]}
	}
	comps, numComps := connectedComponents(a, b, localRoutes)

	if numComps == 1 && len(routes) >= a+b-1 {
		if bal, err := balance(g, in, out, routes); err == nil {
			return Result{Status: Phased, Balance: bal}
		}
		// SolverFailure (§7): leave the vertex unbalanced rather than
		// guess a structural split for a component phasing evidence
		// already says is a single unit.
		return Result{Status: Unresolved}
	}

	return Result{Status: Split, Equations: splitEquations(g, in, out, comps, numComps)}
}

func singleEquation(g *graph.SpliceGraph, in, out []int32) Equation {
	sum1 := sumWeights(g, in)
	sum2 := sumWeights(g, out)
	var errv float64
	if sum1+sum2 > 0 {
		errv = absf(sum1-sum2) / (sum1 + sum2)
	}
	return Equation{In: in, Out: out, Error: errv}
}

func sumWeights(g *graph.SpliceGraph, edges []int32) float64 {
	var s float64
	for _, e := range edges {
		s += g.Weight(e)
	}
	return s
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// edgeRoutes translates HyperSet chains passing through v into
// (in-edge, out-edge) pairs, by matching each chain's vertex
// immediately before/after v to an in-/out-edge of v with that
// source/target.
func edgeRoutes(g *graph.SpliceGraph, hs *graph.HyperSet, v int32, in, out []int32) [][2]int32 {
	var routes [][2]int32
	for _, pair := range hs.RoutesThrough(v) {
		p, q := pair[0], pair[1]
		var ie, oe int32 = -1, -1
		for _, e := range in {
			if g.Edge(e).Source == p {
				ie = e
				break
			}
		}
		for _, e := range out {
			if g.Edge(e).Target == q {
				oe = e
				break
			}
		}
		if ie >= 0 && oe >= 0 {
			routes = append(routes, [2]int32{ie, oe})
		}
	}
	return routes
}

// connectedComponents computes the connected components of the
// bipartite graph on I ∪ O (§4.4 step 2), using local indices 0..a-1
// for `in` and a..a+b-1 for `out`. routes are already expressed in
// those local indices.
func connectedComponents(a, b int, routes [][2]int) (membership []int, numComps int) {
	n := a + b
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}
	union := func(x, y int) {
		rx, ry := find(x), find(y)
		if rx != ry {
			parent[rx] = ry
		}
	}
	for _, r := range routes {
		union(r[0], r[1])
	}
	membership = make([]int, n)
	roots := make(map[int]int)
	for i := 0; i < n; i++ {
		r := find(i)
		id, ok := roots[r]
		if !ok {
			id = len(roots)
			roots[r] = id
		}
		membership[i] = id
	}
	return membership, len(roots)
}

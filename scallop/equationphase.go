package scallop

import (
	"math"

	"github.com/exascience/scallop/graph"
	"github.com/exascience/scallop/subsetsum"
)

// smoothWeights implements §4.6 step 1: convex-smooth every internal
// vertex's in/out weights toward their common average before any
// structural simplification begins. This is the same correction
// applyTrivial applies per-vertex once the router has judged a vertex
// Trivial, but run once up front over every vertex that has both
// in- and out-edges, independent of router status.
func smoothWeights(g *graph.SpliceGraph) {
	for _, v := range g.AllVertices() {
		if v == g.Source() || v == g.Sink() {
			continue
		}
		in, out := g.InEdgesOf(v), g.OutEdgesOf(v)
		if len(in) == 0 || len(out) == 0 {
			continue
		}
		s1, s2 := sumW(g, in), sumW(g, out)
		if s1 <= 0 || s2 <= 0 || math.Abs(s1-s2) <= weightTolerance {
			continue
		}
		target := (s1 + s2) / 2
		scaleEdges(g, in, target/s1)
		scaleEdges(g, out, target/s2)
	}
}

// equationPhase implements §4.6's equation phase, grounded on
// scallop3::identify_equation/verify_equation/split_edge
// (original_source/src/src/scallop3.cc:323-396): unlike router.Analyze,
// which only ever considers one vertex's own in/out edges, this scans
// every disjoint-set class representative in the whole graph and asks
// whether one representative's weight equals the sum of some subset of
// the others — a relationship router can't see because the matching
// edges need not touch the same vertex at all. It runs to a fixpoint
// within one call (each accepted equation strictly reduces the number
// of unresolved classes, since the matched edge and every member of
// its subset are unioned together) and reports whether it split
// anything, so the caller's outer loop (scallop3::iterate's own
// structure: equation phase, then linking, then decomposition, each
// call) knows whether to keep going.
func equationPhase(g *graph.SpliceGraph) bool {
	changed := false
	for {
		ei, sub, ok := identifyEquation(g)
		if !ok {
			return changed
		}
		if !verifyEquation(g, ei, sub) {
			return changed
		}
		splitEdge(g, ei, sub)
		changed = true
	}
}

// representatives returns one live edge per disjoint-set class.
func representatives(g *graph.SpliceGraph) []int32 {
	ds := g.DisjointSets()
	var reps []int32
	seen := make(map[int32]bool)
	for _, e := range g.AllEdges() {
		root := ds.Find(e)
		if seen[root] {
			continue
		}
		seen[root] = true
		reps = append(reps, e)
	}
	return reps
}

// identifyEquation finds the representative edge e whose weight is
// exactly matched (after integer quantization) by the sum of some
// subset of the other representatives, picking the globally
// zero-error match across every representative in the graph — the
// whole-graph search §4.6 calls for. Only an exact match is accepted:
// scallop3::iterate itself stops as soon as identify_equation reports
// any nonzero error.
func identifyEquation(g *graph.SpliceGraph) (int32, []int32, bool) {
	reps := representatives(g)
	if len(reps) < 2 {
		return 0, nil, false
	}

	var bestEdge int32
	var bestSub []int32
	found := false
	for i, e := range reps {
		others := make([]int32, 0, len(reps)-1)
		others = append(others, reps[:i]...)
		others = append(others, reps[i+1:]...)
		if len(others) == 0 || len(others) > subsetsum.MaxEnumerable {
			continue
		}
		x := make([]int64, len(others))
		for j, o := range others {
			x[j] = int64(g.Weight(o))
		}
		table := subsetsum.Enumerate(x)
		mask, err := table.Closest(int64(g.Weight(e)))
		if mask == 0 || err != 0 {
			continue
		}
		idx := table.Recover(mask)
		sub := make([]int32, len(idx))
		for k, j := range idx {
			sub[k] = others[j]
		}
		bestEdge, bestSub, found = e, sub, true
		break
	}
	return bestEdge, bestSub, found
}

// verifyEquation implements §4.6's reachability check: every edge in
// sub must lie on a directed path to or from ei (one direction
// suffices), otherwise the matched weights are coincidental rather
// than a real flow relationship.
func verifyEquation(g *graph.SpliceGraph, ei int32, sub []int32) bool {
	for _, s := range sub {
		if !g.HasEdgePath(ei, s) && !g.HasEdgePath(s, ei) {
			return false
		}
	}
	return true
}

// splitEdge replaces ei's single weight with sub[0]'s, unifying the
// two in the disjoint sets, then adds one new parallel edge per
// remaining member of sub (same source/target as ei) carrying that
// member's own weight, unified with it in turn. Together the new
// edges account for ei's original weight up to the integer truncation
// identifyEquation matched on.
func splitEdge(g *graph.SpliceGraph, ei int32, sub []int32) {
	e := g.Edge(ei)
	ds := g.DisjointSets()

	g.SetWeight(ei, g.Weight(sub[0]))
	g.SetStddev(ei, g.Stddev(sub[0]))
	ds.Union(ei, sub[0])

	for _, s := range sub[1:] {
		n := g.AddEdge(e.Source, e.Target, g.Weight(s), g.Stddev(s), e.Kind)
		ds.Union(n, s)
	}
}

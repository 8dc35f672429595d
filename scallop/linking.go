package scallop

import (
	"math"

	"github.com/exascience/scallop/graph"
)

// linkWeightTolerance bounds how far two edges' weights may differ,
// relative to the larger of the two, and still be declared the same
// flow.
const linkWeightTolerance = 1e-3

// linkEdges implements §4.6's linking phase: whenever two edges are
// known to carry the same flow — a chain of purely trivial (in-degree
// 1, out-degree 1) vertices uniquely connects them, their vertex
// intervals don't cross (§4.3's Intersect), and their weights agree
// within tolerance — they are recorded as one weight-equality class in
// the graph's DisjointSets (§9's super-edge bookkeeping). Linking never
// changes graph topology; it only grows the union-find that the path
// collector and diagnostics consult, so it is safe to run to a
// fixpoint independently of decomposition.
func linkEdges(g *graph.SpliceGraph) bool {
	linked := false
	ds := g.DisjointSets()
	edges := g.AllEdges()
	for i, e1 := range edges {
		for _, e2 := range edges[i+1:] {
			if ds.Same(e1, e2) {
				continue
			}
			ed1, ed2 := g.Edge(e1), g.Edge(e2)
			if graph.Intersect(ed1, ed2) {
				continue
			}
			if !sameWeightClass(ed1.Weight, ed2.Weight) {
				continue
			}
			if !uniquelyConnected(g, e1, e2) && !uniquelyConnected(g, e2, e1) {
				continue
			}
			ds.Union(e1, e2)
			linked = true
		}
	}
	return linked
}

func sameWeightClass(w1, w2 float64) bool {
	m := math.Max(w1, w2)
	if m <= 0 {
		return true
	}
	return math.Abs(w1-w2) <= linkWeightTolerance*m
}

// uniquelyConnected reports whether the path from e1 to e2 (§4.3's
// edge-to-edge reachability) runs entirely through vertices that
// cannot branch, i.e. the flow through e1 has nowhere to go but
// through e2.
func uniquelyConnected(g *graph.SpliceGraph, e1, e2 int32) bool {
	path, err := g.ShortestPath(e1, e2)
	if err != nil {
		return false
	}
	ends := []int32{g.Edge(e1).Target, g.Edge(e2).Source}
	for _, v := range append(path, ends...) {
		if g.InDegree(v) != 1 || g.OutDegree(v) != 1 {
			return false
		}
	}
	return true
}

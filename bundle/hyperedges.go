package bundle

import (
	"sort"

	"github.com/exascience/scallop/graph"
	"github.com/exascience/scallop/hit"
)

// buildHyperSet implements §4.2 step 9: map every hit's matched
// intervals to a node chain of partial-exon indices, bridge mate pairs
// whose ends don't already share a graph edge, and insert every chain
// of length >= 2 into the returned HyperSet.
func buildHyperSet(bd *Bundle, pm *partialExonMap, cfg Config) *graph.HyperSet {
	hs := graph.NewHyperSet()

	groups := make(map[string][]*hit.Hit)
	var order []string
	for _, h := range bd.Hits {
		if _, ok := groups[h.QName]; !ok {
			order = append(order, h.QName)
		}
		groups[h.QName] = append(groups[h.QName], h)
	}
	sort.Strings(order)

	for _, qname := range order {
		mates := groups[qname]
		switch len(mates) {
		case 1:
			hs.Add(chainOf(mates[0], pm))
		default:
			// Treat the first two records of the group as a read pair;
			// any further records (secondary/supplementary alignments)
			// are ignored for phasing purposes, matching §4.2's
			// "grouping by query name" without attempting multi-hit
			// reconciliation, which is out of scope (§1 Non-goals).
			c1 := chainOf(mates[0], pm)
			c2 := chainOf(mates[1], pm)
			bridgeAndAdd(bd.Graph, hs, c1, c2, cfg.MaxBridgePaths)
		}
	}
	return hs
}

// chainOf maps one hit's matched intervals to the ascending,
// duplicate-free sequence of partial-exon vertex ids it overlaps.
func chainOf(h *hit.Hit, pm *partialExonMap) graph.HyperChain {
	var chain graph.HyperChain
	for _, iv := range hit.MatchedIntervals(h.Pos, h.CIGAR) {
		for _, idx := range overlappingExons(pm, iv.Start, iv.End) {
			if len(chain) == 0 || chain[len(chain)-1] != idx {
				chain = append(chain, idx)
			}
		}
	}
	return chain
}

func overlappingExons(pm *partialExonMap, start, end int32) []int32 {
	var out []int32
	for i, pe := range pm.exons {
		if pe.Rpos <= start {
			continue
		}
		if pe.Lpos >= end {
			break
		}
		out = append(out, int32(i+1))
	}
	return out
}

// bridgeAndAdd attempts to connect c1's last vertex to c2's first
// vertex through the graph. Bridging succeeds iff there is exactly one
// directed path between them (counted up to cap, beyond which the
// pair is treated as ambiguous and left unbridged); on success the
// concatenated chain is inserted, otherwise both chains are inserted
// separately.
func bridgeAndAdd(g *graph.SpliceGraph, hs *graph.HyperSet, c1, c2 graph.HyperChain, maxPaths int64) {
	if len(c1) == 0 || len(c2) == 0 {
		hs.Add(c1)
		hs.Add(c2)
		return
	}
	last, first := c1[len(c1)-1], c2[0]
	if last == first {
		hs.Add(append(append(graph.HyperChain{}, c1...), c2[1:]...))
		return
	}
	if hasDirectEdge(g, last, first) {
		hs.Add(append(append(graph.HyperChain{}, c1...), c2...))
		return
	}
	path, n := countPaths(g, last, first, maxPaths)
	if n == 1 {
		merged := append(append(graph.HyperChain{}, c1...), path...)
		merged = append(merged, c2...)
		hs.Add(merged)
		return
	}
	hs.Add(c1)
	hs.Add(c2)
}

func hasDirectEdge(g *graph.SpliceGraph, from, to int32) bool {
	for _, eid := range g.OutEdgesOf(from) {
		if g.Edge(eid).Target == to {
			return true
		}
	}
	return false
}

// countPaths counts directed paths from `from` to `to` (exclusive of
// both endpoints in the returned chain), saturating at cap. Vertex ids
// are a valid topological order for SpliceGraph (source=0, sink=N+1,
// every edge increases the index), so a single forward sweep suffices.
// When exactly one path exists, its interior vertex sequence is
// returned too.
func countPaths(g *graph.SpliceGraph, from, to int32, maxPaths int64) (graph.HyperChain, int64) {
	count := make(map[int32]int64)
	pred := make(map[int32]int32)
	count[from] = 1
	for v := from; v <= to; v++ {
		c := count[v]
		if c == 0 || !g.VertexExists(v) {
			continue
		}
		for _, eid := range g.OutEdgesOf(v) {
			w := g.Edge(eid).Target
			if w > to {
				continue
			}
			if count[w] == 0 {
				pred[w] = v
			}
			count[w] += c
			if count[w] > maxPaths {
				count[w] = maxPaths + 1
			}
		}
	}
	n := count[to]
	if n != 1 {
		return nil, n
	}
	var path graph.HyperChain
	for v := pred[to]; v != from; v = pred[v] {
		path = append(graph.HyperChain{v}, path...)
	}
	return path, n
}

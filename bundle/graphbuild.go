package bundle

import "github.com/exascience/scallop/graph"

// linkJunctions resolves Lexon/Rexon for each junction (§4.2 step 6):
// the left endpoint must be some partial exon's right boundary, the
// right endpoint some (other) partial exon's left boundary. A junction
// that fails to resolve (no hit's matched intervals actually produced
// a partial-exon boundary there, which can happen at the very edge of
// a bundle) is left with Lexon/Rexon == 0 and is skipped by
// buildGraph.
func linkJunctions(junctions []*Junction, pm *partialExonMap) {
	for _, j := range junctions {
		j.Lexon = pm.IndexEndingAt(j.Lpos)
		j.Rexon = pm.IndexStartingAt(j.Rpos)
	}
}

// buildGraph implements §4.2 steps 7-8: instantiate the splice graph
// with one vertex per partial exon plus source/sink, wire junction,
// adjacency, and source/sink edges, then apply the isolated-boundary
// extension heuristic.
func buildGraph(bd *Bundle, pm *partialExonMap, cfg Config) *graph.SpliceGraph {
	n := pm.Len()
	g := graph.New(n)
	for i := 0; i < n; i++ {
		pe := pm.At(int32(i + 1))
		v := int32(i + 1)
		setVertexInfo(g, v, pe)
	}

	// (a) junction edges.
	for _, j := range bd.Junctions {
		if j.Lexon == 0 || j.Rexon == 0 {
			continue
		}
		g.AddEdge(j.Lexon, j.Rexon, float64(j.Count), 0, graph.EdgeJunction)
	}

	// (b) source->v and v->sink edges at START/END boundaries. These are
	// added before the adjacency edges below because adjacency weight
	// picks a side by vertex degree (c), and bundle.cc:479-533 computes
	// that degree only after the start/end edges are already in place.
	for i := 0; i < n; i++ {
		v := int32(i + 1)
		pe := pm.At(v)
		if isStartType(pe.LeftType) {
			w := pe.Ave
			if i+1 < n {
				if neighbor := pm.At(int32(i + 2)); neighbor.Ave < w {
					w -= neighbor.Ave
				}
			}
			if w < 1.0 {
				w = 1.0
			}
			g.AddEdge(g.Source(), v, w, 0, graph.EdgeStart)
		}
		if isEndType(pe.RightType) {
			w := pe.Ave
			if i > 0 {
				if neighbor := pm.At(int32(i)); neighbor.Ave < w {
					w -= neighbor.Ave
				}
			}
			if w < 1.0 {
				w = 1.0
			}
			g.AddEdge(v, g.Sink(), w, 0, graph.EdgeEnd)
		}
	}

	// (c) adjacency edges: consecutive partial exons sharing a boundary.
	// The weight comes from whichever side is the lower-degree neighbor
	// (bundle.cc:510-533), not simply the smaller of the two averages:
	// a neighbor with fewer other connections carries more of its own
	// average into the adjacency edge.
	for i := 1; i < n; i++ {
		left := pm.At(int32(i))
		right := pm.At(int32(i + 1))
		if left.Rpos != right.Lpos {
			continue
		}
		xd := g.OutDegree(int32(i))
		yd := g.InDegree(int32(i + 1))
		w := right.Ave
		if xd < yd {
			w = left.Ave
		}
		if w < 1.0 {
			w = 1.0
		}
		g.AddEdge(int32(i), int32(i+1), w, 0, graph.EdgeAdjacency)
	}

	extendIsolatedEndBoundaries(g, cfg)
	extendIsolatedStartBoundaries(g, cfg)
	return g
}

// setVertexInfo floors the vertex's average weight and stddev at 1.0
// (bundle.cc:443,448), the same floor every edge weight on this vertex
// already gets, so a near-zero-coverage exon can't masquerade as a
// vertex with no weight at all.
func setVertexInfo(g *graph.SpliceGraph, v int32, pe PartialExon) {
	ave, dev := pe.Ave, pe.Dev
	if ave < 1.0 {
		ave = 1.0
	}
	if dev < 1.0 {
		dev = 1.0
	}
	g.SetVertexWeight(v, ave)
	g.SetVertexInfo(v, graph.VertexInfo{Lpos: pe.Lpos, Rpos: pe.Rpos, Stddev: dev})
}

func isStartType(t BoundaryType) bool {
	return t == StartBoundary
}

func isEndType(t BoundaryType) bool {
	return t == EndBoundary
}

// extendIsolatedBoundaries implements §4.2 step 8, grounded on
// bundle::extend_isolated_end_boundaries/extend_isolated_start_boundaries
// (original_source/src/src/bundle.cc:539-604): a degree-(1,1) vertex i
// sitting between a high-weight vertex and a terminal is a unique
// exon whose only connection to the rest of the locus happens to be a
// faint edge from a vertex it is not genomically contiguous with
// (contiguous neighbors are skipped), most likely because the region between it and
// its high-weight neighbor wasn't covered well enough to link them
// directly. Bridging that neighbor straight to the terminal gives the
// path collector a way to route around the faint edge instead of
// through it.
//
// extendIsolatedEndBoundaries handles the case where i's out-edge
// already reaches the sink: its in-edge's source s is the high-weight
// vertex, and s gets bridged straight to the sink.
func extendIsolatedEndBoundaries(g *graph.SpliceGraph, cfg Config) {
	for i := int32(1); i < g.Sink(); i++ {
		if g.InDegree(i) != 1 || g.OutDegree(i) != 1 {
			continue
		}
		e1 := g.Edge(g.InEdgesOf(i)[0])
		e2 := g.Edge(g.OutEdgesOf(i)[0])
		s, t := e1.Source, e2.Target

		if g.OutDegree(s) != 1 {
			continue
		}
		if t != g.Sink() {
			continue
		}
		if e1.Weight >= cfg.IsolatedBoundaryFaintWeight {
			continue
		}
		if g.VertexWeight(s) <= cfg.IsolatedBoundarySlopeThreshold {
			continue
		}
		if g.VertexInfo(s).Rpos == g.VertexInfo(i).Lpos {
			continue
		}

		w := g.VertexWeight(s) - e1.Weight
		g.AddEdge(s, t, w, 0, graph.EdgeEnd)
	}
}

// extendIsolatedStartBoundaries handles the symmetric case where i's
// in-edge already originates at the source: its out-edge's target t
// is the high-weight vertex, and the source gets bridged straight to t.
func extendIsolatedStartBoundaries(g *graph.SpliceGraph, cfg Config) {
	for i := int32(1); i < g.Sink(); i++ {
		if g.InDegree(i) != 1 || g.OutDegree(i) != 1 {
			continue
		}
		e1 := g.Edge(g.InEdgesOf(i)[0])
		e2 := g.Edge(g.OutEdgesOf(i)[0])
		s, t := e1.Source, e2.Target

		if s != g.Source() {
			continue
		}
		if g.InDegree(t) != 1 {
			continue
		}
		if e2.Weight >= cfg.IsolatedBoundaryFaintWeight {
			continue
		}
		if g.VertexWeight(t) <= cfg.IsolatedBoundarySlopeThreshold {
			continue
		}
		if g.VertexInfo(i).Rpos == g.VertexInfo(t).Lpos {
			continue
		}

		w := g.VertexWeight(t) - e2.Weight
		g.AddEdge(s, t, w, 0, graph.EdgeStart)
	}
}

package scallop

import (
	"log"

	"github.com/exascience/scallop/graph"
	"github.com/exascience/scallop/router"
)

// decomposeVertex implements §4.6's vertex decomposition for the split
// case: the router found two locally-balanced groups of in-/out-edges
// (eqs[0], eqs[1]) that phasing evidence keeps apart. eqs[0] keeps v's
// identity; eqs[1]'s edges are moved onto a freshly duplicated vertex,
// so that no vertex downstream has to choose between two unrelated
// pairings ever again.
func decomposeVertex(g *graph.SpliceGraph, v int32, eqs []router.Equation) {
	if len(eqs) < 2 {
		return
	}
	assertSplitWeightConserved(g, v, eqs)
	v2 := g.AddVertex(g.VertexInfo(v), sumW(g, eqs[1].In))
	moveEdges(g, eqs[1].In, v2, true)
	moveEdges(g, eqs[1].Out, v2, false)
	g.SetVertexWeight(v, sumW(g, eqs[0].In))
}

// assertSplitWeightConserved checks §8's split-weight-conservation
// property: the two equations the router emitted must partition v's
// current in- and out-edges exactly, so decomposing v neither drops
// nor double-counts any of v's flow. The balance *within* each
// equation is only approximate by construction (splitEquations picks
// the closest self-balanced component or component match, not an
// exact one, and records the residual in Equation.Error), so that is
// not what this checks.
func assertSplitWeightConserved(g *graph.SpliceGraph, v int32, eqs []router.Equation) {
	if !debugAssertions {
		return
	}
	wantIn, wantOut := sumW(g, g.InEdgesOf(v)), sumW(g, g.OutEdgesOf(v))
	gotIn := sumW(g, eqs[0].In) + sumW(g, eqs[1].In)
	gotOut := sumW(g, eqs[0].Out) + sumW(g, eqs[1].Out)
	if !graph.ApproxEqual(wantIn, gotIn) {
		log.Panicf("scallop: split equations drop or duplicate in-edge weight: have %v, want %v", gotIn, wantIn)
	}
	if !graph.ApproxEqual(wantOut, gotOut) {
		log.Panicf("scallop: split equations drop or duplicate out-edge weight: have %v, want %v", gotOut, wantOut)
	}
}

// moveEdges re-homes each edge in ids onto newVertex, preserving weight,
// stddev and kind. When asTarget is true the edges kept their original
// source and get a new target (used for v's in-edges); otherwise they
// keep their original target and get a new source (v's out-edges).
func moveEdges(g *graph.SpliceGraph, ids []int32, newVertex int32, asTarget bool) {
	for _, id := range ids {
		e := g.Edge(id)
		if asTarget {
			g.AddEdge(e.Source, newVertex, e.Weight, e.Stddev, e.Kind)
		} else {
			g.AddEdge(newVertex, e.Target, e.Weight, e.Stddev, e.Kind)
		}
		g.RemoveEdge(id)
	}
}

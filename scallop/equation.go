package scallop

import (
	"math"

	"github.com/exascience/scallop/graph"
	"github.com/exascience/scallop/router"
)

// weightTolerance is the §8 split-weight-conservation tolerance, reused
// here as the threshold below which an equation correction is
// considered a no-op for the purposes of the outer fixpoint loop.
const weightTolerance = 1e-6

// applyEquations runs the router (§4.4) over every internal vertex
// that still has both in- and out-edges, and applies whatever
// correction its Status calls for. It returns whether anything in the
// graph changed, which is what the outer loop (§4.6) uses to detect a
// fixpoint.
func applyEquations(g *graph.SpliceGraph, hs *graph.HyperSet) bool {
	changed := false
	for _, v := range g.AllVertices() {
		if v == g.Source() || v == g.Sink() {
			continue
		}
		if g.InDegree(v) == 0 || g.OutDegree(v) == 0 {
			continue
		}
		res := router.Analyze(g, hs, v)
		switch res.Status {
		case router.Trivial:
			if applyTrivial(g, res.Equations[0]) {
				changed = true
			}
		case router.Phased:
			if applyBalance(g, res.Balance) {
				changed = true
			}
		case router.Split:
			if len(res.Equations) >= 2 {
				decomposeVertex(g, v, res.Equations)
				changed = true
			}
		case router.Unresolved:
			// SolverFailure: leave this vertex's weights as they are.
		}
	}
	return changed
}

// applyTrivial reconciles a degree-1-on-one-side vertex's in- and
// out-weights by splitting their disagreement evenly across both
// sides, the same "weight smoothing" elPrep's assembler applies before
// trusting an edge multiplicity (§9).
func applyTrivial(g *graph.SpliceGraph, eq router.Equation) bool {
	s1, s2 := sumW(g, eq.In), sumW(g, eq.Out)
	if s1 <= 0 || s2 <= 0 || math.Abs(s1-s2) <= weightTolerance {
		return false
	}
	target := (s1 + s2) / 2
	scaleEdges(g, eq.In, target/s1)
	scaleEdges(g, eq.Out, target/s2)
	return true
}

// applyBalance writes the phased case's solved flow weights (§4.4)
// back onto the graph's edges.
func applyBalance(g *graph.SpliceGraph, bal *router.Balance) bool {
	changed := false
	for e, w := range bal.Weights {
		if math.Abs(g.Weight(e)-w) > weightTolerance {
			g.SetWeight(e, w)
			changed = true
		}
	}
	return changed
}

func sumW(g *graph.SpliceGraph, edges []int32) float64 {
	var s float64
	for _, e := range edges {
		s += g.Weight(e)
	}
	return s
}

func scaleEdges(g *graph.SpliceGraph, edges []int32, factor float64) {
	if factor <= 0 {
		return
	}
	for _, e := range edges {
		g.SetWeight(e, g.Weight(e)*factor)
	}
}

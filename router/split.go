package router

import (
	"math"

	"github.com/exascience/scallop/graph"
	"github.com/exascience/scallop/subsetsum"
)

// splitEquations implements §4.4 step 4 / §4.5, grounded on
// router::split (original_source/src/src/router.cc:124-284). Phasing
// routes split v's in/out edges into more than one connected
// component, so there's no single pairing the evidence pins down.
// Two candidate equations are built and the better one kept:
//
//   - eqn0: the one existing component (already linked by a route)
//     that comes closest to self-balancing.
//   - eqn1: the best combination of whole components matched against
//     each other by subsetsum4 (subsetsum.BestBalance), treating each
//     component's signed excess (in-weight minus out-weight, after
//     locally smoothing so Σin == Σout) as a single quantity to match.
//
// Whichever has the lower relative error becomes eqn2; eqn3 is its
// complement within v's full edge set, so the two equations returned
// together account for every in- and out-edge exactly once.
func splitEquations(g *graph.SpliceGraph, in, out []int32, comps []int, numComps int) []Equation {
	a := len(in)

	sum1 := sumWeights(g, in)
	sum2 := sumWeights(g, out)
	r1, r2 := 1.0, 1.0
	switch {
	case sum1 > sum2 && sum2 > 0:
		r2 = sum1 / sum2
	case sum1 < sum2 && sum1 > 0:
		r1 = sum2 / sum1
	}

	compIn := make([][]int32, numComps)
	compOut := make([][]int32, numComps)
	inW := make([]float64, numComps)
	outW := make([]float64, numComps)
	for i, e := range in {
		c := comps[i]
		compIn[c] = append(compIn[c], e)
		inW[c] += g.Weight(e) * r1
	}
	for i, e := range out {
		c := comps[a+i]
		compOut[c] = append(compOut[c], e)
		outW[c] += g.Weight(e) * r2
	}
	total := sum1 * r1

	excess := make([]float64, numComps)
	var ssIdx, ttIdx []int
	var ssVal, ttVal []float64
	for c := 0; c < numComps; c++ {
		excess[c] = inW[c] - outW[c]
		if excess[c] >= 0 {
			ssIdx = append(ssIdx, c)
			ssVal = append(ssVal, excess[c])
		} else {
			ttIdx = append(ttIdx, c)
			ttVal = append(ttVal, -excess[c])
		}
	}

	eqn0, haveEqn0 := bestSelfBalanced(compIn, compOut, excess, total)
	eqn1, haveEqn1 := bestComponentMatch(compIn, compOut, ssIdx, ssVal, ttIdx, ttVal)

	var eqn2 Equation
	switch {
	case haveEqn0 && (!haveEqn1 || eqn0.Error <= eqn1.Error):
		eqn2 = eqn0
	case haveEqn1:
		eqn2 = eqn1
	default:
		return nil
	}

	eqn3 := complementEquation(in, out, eqn2)
	if len(eqn3.In) == 0 || len(eqn3.Out) == 0 {
		return nil
	}
	eqn3.Error = eqn2.Error
	return []Equation{eqn2, eqn3}
}

// bestSelfBalanced scans every component already linked by a route
// (size > 1, i.e. more than one edge) and keeps the one whose signed
// excess is smallest relative to the vertex's total smoothed weight.
func bestSelfBalanced(compIn, compOut [][]int32, excess []float64, total float64) (Equation, bool) {
	best := Equation{Error: math.Inf(1)}
	found := false
	for c := range compIn {
		size := len(compIn[c]) + len(compOut[c])
		if size <= 1 {
			continue
		}
		var errv float64
		if total > 0 {
			errv = absf(excess[c]) / total
		}
		if !found || errv < best.Error {
			best = Equation{In: compIn[c], Out: compOut[c], Error: errv}
			found = true
		}
	}
	return best, found
}

// bestComponentMatch requires at least two components on each side of
// the excess sign split, then hands their magnitudes to subsetsum4 to
// find the closest-matching combination. Every edge of every selected
// component, on both sides of the match, joins eqn1 on whichever side
// (In or Out) its own direction puts it — component provenance (ss vs
// tt) has no bearing on which side of the equation an edge lands on.
func bestComponentMatch(compIn, compOut [][]int32, ssIdx []int, ssVal []float64, ttIdx []int, ttVal []float64) (Equation, bool) {
	if len(ssVal) < 2 || len(ttVal) < 2 {
		return Equation{}, false
	}
	res, ok := subsetsum.BestBalance(ssVal, ttVal)
	if !ok {
		return Equation{}, false
	}
	var in, out []int32
	for _, i := range res.SourceIdx {
		c := ssIdx[i]
		in = append(in, compIn[c]...)
		out = append(out, compOut[c]...)
	}
	for _, i := range res.SinkIdx {
		c := ttIdx[i]
		in = append(in, compIn[c]...)
		out = append(out, compOut[c]...)
	}
	return Equation{In: in, Out: out, Error: res.Error}, true
}

// complementEquation builds eqn3: every in-edge of v not already
// claimed by eqn2, every out-edge not already claimed by eqn2.
func complementEquation(in, out []int32, eqn2 Equation) Equation {
	inSet := toSet(eqn2.In)
	outSet := toSet(eqn2.Out)
	var rin, rout []int32
	for _, e := range in {
		if !inSet[e] {
			rin = append(rin, e)
		}
	}
	for _, e := range out {
		if !outSet[e] {
			rout = append(rout, e)
		}
	}
	return Equation{In: rin, Out: rout}
}

func toSet(ids []int32) map[int32]bool {
	m := make(map[int32]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

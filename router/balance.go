package router

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/exascience/scallop/graph"
)

// ErrUnbalanced is returned when the phased balancing model (§4.4) has
// no feasible solution: the route-incidence system is rank-deficient,
// or the least-squares solution is non-finite. Per §7 this is a
// SolverFailure: the caller leaves the vertex unbalanced and continues
// assembling the bundle.
var ErrUnbalanced = errors.New("router: vertex balancing failed")

// Balance is the result of the phased case's flow model: new edge
// weights for every in-/out-edge of v, and the per-route flow values
// that produced them.
type Balance struct {
	Weights map[int32]float64 // edge id -> balanced weight
	Routes  []float64         // route i's flow r_i >= 1
}

// balance solves §4.4's phased balancing model: each route i carries a
// flow r_i >= 1, and w_u = Σ{r_i : route i touches u}, chosen to
// minimize Σ(w_u - observed_u)². This is a linear least-squares
// problem in r; §9 sanctions a closed-form solve here in place of the
// external QP solver the original calls, "when routes form a bipartite
// tree" — which the caller only reaches this function for (numComps ==
// 1, a spanning set of routes).
func balance(g *graph.SpliceGraph, in, out []int32, routes [][2]int32) (*Balance, error) {
	edges := make([]int32, 0, len(in)+len(out))
	edges = append(edges, in...)
	edges = append(edges, out...)
	u := len(edges)
	k := len(routes)
	if k == 0 || u == 0 {
		return nil, ErrUnbalanced
	}

	index := make(map[int32]int, u)
	for i, e := range edges {
		index[e] = i
	}

	a := mat.NewDense(u, k, nil)
	for i, r := range routes {
		a.Set(index[r[0]], i, a.At(index[r[0]], i)+1)
		a.Set(index[r[1]], i, a.At(index[r[1]], i)+1)
	}
	b := mat.NewDense(u, 1, nil)
	for i, e := range edges {
		b.Set(i, 0, g.Weight(e))
	}

	var qr mat.QR
	qr.Factorize(a)
	var x mat.Dense
	if err := qr.SolveTo(&x, false, b); err != nil {
		return nil, ErrUnbalanced
	}

	flows := make([]float64, k)
	for i := 0; i < k; i++ {
		v := x.At(i, 0)
		if !isFiniteFloat(v) {
			return nil, ErrUnbalanced
		}
		if v < 1 {
			v = 1
		}
		flows[i] = v
	}

	weights := make(map[int32]float64, u)
	for _, e := range edges {
		weights[e] = 0
	}
	for i, r := range routes {
		weights[r[0]] += flows[i]
		weights[r[1]] += flows[i]
	}
	for _, w := range weights {
		if !isFiniteFloat(w) {
			return nil, ErrUnbalanced
		}
	}
	return &Balance{Weights: weights, Routes: flows}, nil
}

func isFiniteFloat(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

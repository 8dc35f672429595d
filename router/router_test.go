package router

import (
	"testing"

	"github.com/exascience/scallop/graph"
)

func TestAnalyzeTrivial(t *testing.T) {
	// vertex 3 with a single in-edge from 1 and two out-edges to 4, 5.
	g := graph.New(7)
	v := int32(3)
	e1 := g.AddEdge(1, v, 4, 0, graph.EdgeJunction)
	e2 := g.AddEdge(v, 4, 4, 0, graph.EdgeJunction)
	e3 := g.AddEdge(v, 5, 4, 0, graph.EdgeJunction)

	hs := graph.NewHyperSet()
	res := Analyze(g, hs, v)
	if res.Status != Trivial {
		t.Fatalf("status = %v, want Trivial", res.Status)
	}
	if len(res.Equations) != 1 {
		t.Fatalf("expected exactly 1 equation, got %d", len(res.Equations))
	}
	eq := res.Equations[0]
	if len(eq.In) != 1 || eq.In[0] != e1 {
		t.Errorf("equation.In = %v, want [%d]", eq.In, e1)
	}
	if len(eq.Out) != 2 {
		t.Errorf("equation.Out = %v, want 2 edges", eq.Out)
	}
	if !(containsEdge(eq.Out, e2) && containsEdge(eq.Out, e3)) {
		t.Errorf("equation.Out = %v, want [%d %d]", eq.Out, e2, e3)
	}
}

func containsEdge(edges []int32, e int32) bool {
	for _, x := range edges {
		if x == e {
			return true
		}
	}
	return false
}

func TestAnalyzePhased(t *testing.T) {
	// vertex 3 with in-edges from 1,2 and out-edges to 4,5, all weight 5.
	g := graph.New(7)
	v := int32(3)
	e1 := g.AddEdge(1, v, 5, 0, graph.EdgeJunction)
	e2 := g.AddEdge(2, v, 5, 0, graph.EdgeJunction)
	e3 := g.AddEdge(v, 4, 5, 0, graph.EdgeJunction)
	e4 := g.AddEdge(v, 5, 5, 0, graph.EdgeJunction)

	hs := graph.NewHyperSet()
	hs.Add(graph.HyperChain{1, v, 4})
	hs.Add(graph.HyperChain{2, v, 5})
	hs.Add(graph.HyperChain{1, v, 5})

	res := Analyze(g, hs, v)
	if res.Status != Phased {
		t.Fatalf("status = %v, want Phased", res.Status)
	}
	if res.Balance == nil {
		t.Fatal("expected a non-nil Balance for the phased case")
	}
	for _, e := range []int32{e1, e2, e3, e4} {
		if _, ok := res.Balance.Weights[e]; !ok {
			t.Errorf("balance missing weight for edge %d", e)
		}
	}
}

// TestAnalyzePhasedCassette exercises §8 scenario 4: a cassette exon
// with an exon-skipping alternative (A->B->C vs A->C directly, weights
// 5 and 10) where two upstream sources (X1, X2) and a batch of
// read-pairs bridged straight from an upstream vertex through A to C
// turn what would otherwise be a Split decision (scenario 3, with a
// single shared upstream entry) into a Phased one: the phasing chains
// connect all of A's in- and out-edges into a single routed component,
// so the router can resolve A by balancing rather than by guessing a
// weight partition.
func TestAnalyzePhasedCassette(t *testing.T) {
	g := graph.New(7)
	x1, x2, a, b, c := int32(1), int32(2), int32(3), int32(4), int32(5)
	inX1 := g.AddEdge(x1, a, 5, 0, graph.EdgeJunction)
	inX2 := g.AddEdge(x2, a, 10, 0, graph.EdgeJunction)
	outAB := g.AddEdge(a, b, 5, 0, graph.EdgeJunction)
	outAC := g.AddEdge(a, c, 10, 0, graph.EdgeJunction)

	hs := graph.NewHyperSet()
	// A read spanning X1-A-B (the cassette-inclusion isoform).
	hs.Add(graph.HyperChain{x1, a, b})
	// Read-pairs bridged straight through A into C, confirming the
	// exon-skipping junction directly, from both upstream sources.
	for i := 0; i < 10; i++ {
		hs.Add(graph.HyperChain{x1, a, c})
	}
	hs.Add(graph.HyperChain{x2, a, c})

	res := Analyze(g, hs, a)
	if res.Status != Phased {
		t.Fatalf("status = %v, want Phased", res.Status)
	}
	if res.Balance == nil {
		t.Fatal("expected a non-nil Balance for the phased cassette vertex")
	}
	for _, e := range []int32{inX1, inX2, outAB, outAC} {
		if _, ok := res.Balance.Weights[e]; !ok {
			t.Errorf("balance missing weight for edge %d", e)
		}
	}
}

func TestAnalyzeSplit(t *testing.T) {
	// vertex 3 with in-edges from 1 (weight 10), 2 (weight 3); out-edges
	// to 4 (weight 10), 5 (weight 3). Routes only pair 1-4 and 2-5: two
	// disjoint components, so the router must split rather than balance.
	g := graph.New(7)
	v := int32(3)
	e1 := g.AddEdge(1, v, 10, 0, graph.EdgeJunction)
	e2 := g.AddEdge(2, v, 3, 0, graph.EdgeJunction)
	e3 := g.AddEdge(v, 4, 10, 0, graph.EdgeJunction)
	e4 := g.AddEdge(v, 5, 3, 0, graph.EdgeJunction)

	hs := graph.NewHyperSet()
	hs.Add(graph.HyperChain{1, v, 4})
	hs.Add(graph.HyperChain{2, v, 5})

	res := Analyze(g, hs, v)
	if res.Status != Split {
		t.Fatalf("status = %v, want Split", res.Status)
	}
	if len(res.Equations) != 2 {
		t.Fatalf("expected exactly 2 equations, got %d", len(res.Equations))
	}

	hasPair := func(in, out []int32, wantIn, wantOut int32) bool {
		return len(in) == 1 && in[0] == wantIn && len(out) == 1 && out[0] == wantOut
	}
	found1 := hasPair(res.Equations[0].In, res.Equations[0].Out, e1, e3) ||
		hasPair(res.Equations[1].In, res.Equations[1].Out, e1, e3)
	found2 := hasPair(res.Equations[0].In, res.Equations[0].Out, e2, e4) ||
		hasPair(res.Equations[1].In, res.Equations[1].Out, e2, e4)
	if !found1 || !found2 {
		t.Errorf("equations %+v did not separate (e1,e3) from (e2,e4)", res.Equations)
	}
}

// TestAnalyzeSplitComponentMatch exercises the eqn1 path (§4.5): four
// singleton components (no phasing routes connect any of them, so
// there is no pre-existing connectivity a naive bipartition could
// exploit), with in-edge weights 20 and 4 on one side and out-edge
// weights 10 and 2 on the other. The unequal totals (24 vs 12) force
// the local smoothing step to scale the out-edges by r2=2 before any
// matching happens (10*2=20, 2*2=4); only after that smoothing does
// the in/out weight pairing become exact. A router that skips
// smoothing, or that matches on raw unscaled weights, would not find
// a zero-error pairing here.
func TestAnalyzeSplitComponentMatch(t *testing.T) {
	g := graph.New(7)
	v := int32(3)
	e1 := g.AddEdge(1, v, 20, 0, graph.EdgeJunction)
	e2 := g.AddEdge(2, v, 4, 0, graph.EdgeJunction)
	e3 := g.AddEdge(v, 4, 10, 0, graph.EdgeJunction)
	e4 := g.AddEdge(v, 5, 2, 0, graph.EdgeJunction)

	hs := graph.NewHyperSet() // no routes: every edge its own component

	res := Analyze(g, hs, v)
	if res.Status != Split {
		t.Fatalf("status = %v, want Split", res.Status)
	}
	if len(res.Equations) != 2 {
		t.Fatalf("expected exactly 2 equations, got %d", len(res.Equations))
	}

	hasPair := func(in, out []int32, wantIn, wantOut int32) bool {
		return len(in) == 1 && in[0] == wantIn && len(out) == 1 && out[0] == wantOut
	}
	found1 := hasPair(res.Equations[0].In, res.Equations[0].Out, e1, e3) ||
		hasPair(res.Equations[1].In, res.Equations[1].Out, e1, e3)
	found2 := hasPair(res.Equations[0].In, res.Equations[0].Out, e2, e4) ||
		hasPair(res.Equations[1].In, res.Equations[1].Out, e2, e4)
	if !found1 || !found2 {
		t.Fatalf("equations %+v did not pair (e1,e3) and (e2,e4) after smoothing", res.Equations)
	}
	for _, eq := range res.Equations {
		if eq.Error > 1e-9 {
			t.Errorf("equation %+v has nonzero error after smoothing, want ~0", eq)
		}
	}
}

func TestStatusString(t *testing.T) {
	if Trivial.String() != "trivial" || Phased.String() != "phased" || Split.String() != "split" {
		t.Fatal("Status.String() mismatch")
	}
}

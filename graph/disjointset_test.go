package graph

import "testing"

func TestDisjointSetsUnionFind(t *testing.T) {
	d := NewDisjointSets()
	a := d.New()
	b := d.New()
	c := d.New()
	if d.Same(a, b) {
		t.Fatal("a and b should start in different classes")
	}
	d.Union(a, b)
	if !d.Same(a, b) {
		t.Fatal("a and b should be unioned")
	}
	if d.Same(a, c) {
		t.Fatal("c should remain separate")
	}
	d.Union(b, c)
	if !d.Same(a, c) {
		t.Fatal("a and c should be in the same class after chained union")
	}
}

func TestDisjointSetsTombstone(t *testing.T) {
	d := NewDisjointSets()
	a := d.New()
	b := d.New()
	d.Union(a, b)
	if !d.Live(a) || !d.Live(b) {
		t.Fatal("freshly allocated indices must be live")
	}
	d.Tombstone(a)
	if d.Live(a) {
		t.Fatal("a should be tombstoned")
	}
	if !d.Live(b) {
		t.Fatal("tombstoning a must not affect b")
	}
	if !d.Same(a, b) {
		t.Fatal("tombstoning must not change class membership")
	}
}

func TestClassSize(t *testing.T) {
	d := NewDisjointSets()
	ids := make([]int32, 4)
	for i := range ids {
		ids[i] = d.New()
	}
	d.Union(ids[0], ids[1])
	d.Union(ids[1], ids[2])
	if n := d.ClassSize(ids[0], ids); n != 3 {
		t.Errorf("ClassSize = %d, want 3", n)
	}
	d.Tombstone(ids[2])
	if n := d.ClassSize(ids[0], ids); n != 2 {
		t.Errorf("ClassSize after tombstone = %d, want 2", n)
	}
}

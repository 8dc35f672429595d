package graph

import "github.com/willf/bitset"

// DisjointSets is a union-find over a monotonically growing edge-index
// universe (§9 "Disjoint sets over a mutable edge universe"). Edges are
// split and merged throughout simplification; rather than reuse an
// index once its edge is gone, SpliceGraph allocates a fresh index for
// every new edge and tombstones old ones here, so two indices that
// happen to carry the same integer value at different points in time
// are never conflated as the same union-find element.
type DisjointSets struct {
	parent []int32
	rank   []uint8
	tomb   *bitset.BitSet
}

// NewDisjointSets returns an empty universe.
func NewDisjointSets() *DisjointSets {
	return &DisjointSets{tomb: bitset.New(0)}
}

// New allocates a fresh singleton class and returns its index.
func (d *DisjointSets) New() int32 {
	id := int32(len(d.parent))
	d.parent = append(d.parent, id)
	d.rank = append(d.rank, 0)
	return id
}

// Tombstone marks id as dead: its class membership (for path
// compression purposes) is unaffected, but Live(id) now reports false
// and iteration helpers skip it.
func (d *DisjointSets) Tombstone(id int32) {
	d.tomb.Set(uint(id))
}

// Live reports whether id has not been tombstoned.
func (d *DisjointSets) Live(id int32) bool {
	return !d.tomb.Test(uint(id))
}

// Find returns the representative of id's class, compressing the path
// it walks.
func (d *DisjointSets) Find(id int32) int32 {
	root := id
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[id] != root {
		next := d.parent[id]
		d.parent[id] = root
		id = next
	}
	return root
}

// Union merges the classes of a and b and returns the resulting
// representative.
func (d *DisjointSets) Union(a, b int32) int32 {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return ra
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
	return ra
}

// Same reports whether a and b are in the same class.
func (d *DisjointSets) Same(a, b int32) bool {
	return d.Find(a) == d.Find(b)
}

// ClassSize counts the live members of id's class among the given
// candidate indices. Callers pass the graph's current edge-id universe
// since DisjointSets itself does not know which indices currently
// correspond to a graph edge.
func (d *DisjointSets) ClassSize(id int32, candidates []int32) int {
	root := d.Find(id)
	n := 0
	for _, c := range candidates {
		if d.Live(c) && d.Find(c) == root {
			n++
		}
	}
	return n
}

// Package graph implements the splice graph: a directed acyclic
// multigraph over a bundle's partial exons (§3, §4.3), plus the
// read-derived hyper-edge phasing constraints layered over it (§4.2
// step 9) and the disjoint-set bookkeeping the Scallop driver uses to
// track edge-weight equality classes across simplification (§9).
//
// The representation follows elPrep's own assembly graph
// (filters/assemble-reads.go's kmerGraph): dense integer vertex and
// edge ids, adjacency lists keyed by vertex id, and ID-sorted iteration
// helpers so that every traversal is deterministic independent of map
// iteration order.
package graph

import (
	"errors"
	"math"
	"sort"
)

// VertexInfo describes a splice-graph vertex. For vertex 0 (source)
// and vertex N+1 (sink) the fields are zero.
type VertexInfo struct {
	Lpos, Rpos int32
	Stddev     float64
}

func (v VertexInfo) Length() int32 { return v.Rpos - v.Lpos }

// EdgeKind classifies how an edge was introduced (§4.2 step 7); it has
// no bearing on the core algorithms but is carried for diagnostics and
// for the path collector's exon-coalescing pass.
type EdgeKind byte

const (
	EdgeJunction EdgeKind = iota
	EdgeAdjacency
	EdgeStart
	EdgeEnd
)

type vertex struct {
	info   VertexInfo
	weight float64
	exists bool
}

// Edge is one splice-graph edge. IDs are never reused: once allocated
// they persist (possibly tombstoned) for the lifetime of the graph, so
// that the DisjointSets universe they index into stays well-defined.
type Edge struct {
	ID             int32
	Source, Target int32
	Weight         float64
	Stddev         float64
	Kind           EdgeKind
}

// SpliceGraph is a directed acyclic multigraph with a single source
// (vertex 0) and a single sink (vertex N+1). Vertices 1..N correspond
// to a bundle's partial exons in left-to-right order.
type SpliceGraph struct {
	vertices []vertex
	edges    []*Edge // nil at tombstoned indices
	inEdges  [][]int32
	outEdges [][]int32
	ds       *DisjointSets
	sink     int32
}

var ErrNoPath = errors.New("graph: no directed path between edges")

// New returns a graph with a source, n partial-exon vertices and a
// sink, and no edges.
func New(n int) *SpliceGraph {
	g := &SpliceGraph{
		vertices: make([]vertex, n+2),
		ds:       NewDisjointSets(),
		sink:     int32(n + 1),
	}
	for i := range g.vertices {
		g.vertices[i].exists = true
	}
	g.inEdges = make([][]int32, n+2)
	g.outEdges = make([][]int32, n+2)
	return g
}

// Source and Sink return the fixed source and sink vertex ids.
func (g *SpliceGraph) Source() int32 { return 0 }
func (g *SpliceGraph) Sink() int32   { return g.sink }

// NumVertices returns the total vertex-id space, including source and
// sink and any vertex already removed by RemoveVertex.
func (g *SpliceGraph) NumVertices() int { return len(g.vertices) }

// VertexExists reports whether v is still part of the graph.
func (g *SpliceGraph) VertexExists(v int32) bool {
	return int(v) < len(g.vertices) && g.vertices[v].exists
}

// AddVertex appends a new vertex (used by edge-splitting; the fixed
// source/sink/partial-exon vertices are all created by New) and
// returns its id.
func (g *SpliceGraph) AddVertex(info VertexInfo, weight float64) int32 {
	id := int32(len(g.vertices))
	g.vertices = append(g.vertices, vertex{info: info, weight: weight, exists: true})
	g.inEdges = append(g.inEdges, nil)
	g.outEdges = append(g.outEdges, nil)
	return id
}

// RemoveVertex deletes v along with any incident edges.
func (g *SpliceGraph) RemoveVertex(v int32) {
	for _, e := range append([]int32(nil), g.inEdges[v]...) {
		g.RemoveEdge(e)
	}
	for _, e := range append([]int32(nil), g.outEdges[v]...) {
		g.RemoveEdge(e)
	}
	g.vertices[v].exists = false
}

// VertexInfo returns the stored info for v.
func (g *SpliceGraph) VertexInfo(v int32) VertexInfo { return g.vertices[v].info }

// SetVertexInfo overwrites the stored info for v. Bundle construction
// uses this to attach each partial exon's genomic span after New has
// allocated the fixed source/vertex/sink set.
func (g *SpliceGraph) SetVertexInfo(v int32, info VertexInfo) { g.vertices[v].info = info }

// VertexWeight and SetVertexWeight access a vertex's coverage weight.
func (g *SpliceGraph) VertexWeight(v int32) float64        { return g.vertices[v].weight }
func (g *SpliceGraph) SetVertexWeight(v int32, w float64) { g.vertices[v].weight = w }

// AddEdge adds a new edge source->target and returns its id.
func (g *SpliceGraph) AddEdge(source, target int32, weight, stddev float64, kind EdgeKind) int32 {
	id := g.ds.New()
	for int(id) >= len(g.edges) {
		g.edges = append(g.edges, nil)
	}
	e := &Edge{ID: id, Source: source, Target: target, Weight: weight, Stddev: stddev, Kind: kind}
	g.edges[id] = e
	g.outEdges[source] = append(g.outEdges[source], id)
	g.inEdges[target] = append(g.inEdges[target], id)
	return id
}

// RemoveEdge deletes e from the graph and tombstones its disjoint-set
// index.
func (g *SpliceGraph) RemoveEdge(e int32) {
	edge := g.edges[e]
	if edge == nil {
		return
	}
	g.outEdges[edge.Source] = removeID(g.outEdges[edge.Source], e)
	g.inEdges[edge.Target] = removeID(g.inEdges[edge.Target], e)
	g.edges[e] = nil
	g.ds.Tombstone(e)
}

func removeID(ids []int32, target int32) []int32 {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// EdgeExists reports whether e is a live edge.
func (g *SpliceGraph) EdgeExists(e int32) bool {
	return int(e) < len(g.edges) && g.edges[e] != nil
}

// Edge returns the live edge with the given id, or nil.
func (g *SpliceGraph) Edge(e int32) *Edge {
	if !g.EdgeExists(e) {
		return nil
	}
	return g.edges[e]
}

// DisjointSets returns the graph's edge-class union-find, shared
// across splits and merges for the lifetime of the graph.
func (g *SpliceGraph) DisjointSets() *DisjointSets { return g.ds }

// Weight and SetWeight access an edge's weight.
func (g *SpliceGraph) Weight(e int32) float64 { return g.edges[e].Weight }
func (g *SpliceGraph) SetWeight(e int32, w float64) { g.edges[e].Weight = w }

// Stddev and SetStddev access an edge's weight standard deviation.
func (g *SpliceGraph) Stddev(e int32) float64        { return g.edges[e].Stddev }
func (g *SpliceGraph) SetStddev(e int32, s float64) { g.edges[e].Stddev = s }

// InDegree and OutDegree count live in/out edges of v.
func (g *SpliceGraph) InDegree(v int32) int  { return len(g.inEdges[v]) }
func (g *SpliceGraph) OutDegree(v int32) int { return len(g.outEdges[v]) }

// InEdgesOf and OutEdgesOf return v's live in/out edge ids, sorted for
// determinism.
func (g *SpliceGraph) InEdgesOf(v int32) []int32  { return sortedCopy(g.inEdges[v]) }
func (g *SpliceGraph) OutEdgesOf(v int32) []int32 { return sortedCopy(g.outEdges[v]) }

func sortedCopy(ids []int32) []int32 {
	out := append([]int32(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllVertices returns every live vertex id in ascending order.
func (g *SpliceGraph) AllVertices() []int32 {
	var out []int32
	for v := range g.vertices {
		if g.vertices[v].exists {
			out = append(out, int32(v))
		}
	}
	return out
}

// AllEdges returns every live edge id in ascending order.
func (g *SpliceGraph) AllEdges() []int32 {
	var out []int32
	for id, e := range g.edges {
		if e != nil {
			out = append(out, int32(id))
		}
	}
	return out
}

// HasPath reports whether there is a directed path from source to
// target, inclusive (source == target counts as a trivial path).
func (g *SpliceGraph) HasPath(source, target int32) bool {
	if source == target {
		return true
	}
	visited := make([]bool, len(g.vertices))
	stack := []int32{source}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[v] {
			continue
		}
		visited[v] = true
		for _, eid := range g.outEdges[v] {
			w := g.edges[eid].Target
			if w == target {
				return true
			}
			if !visited[w] {
				stack = append(stack, w)
			}
		}
	}
	return false
}

// HasEdgePath reports whether there is a directed path from e1 to e2,
// i.e. target(e1) reaches source(e2).
func (g *SpliceGraph) HasEdgePath(e1, e2 int32) bool {
	ed1, ed2 := g.edges[e1], g.edges[e2]
	return g.HasPath(ed1.Target, ed2.Source)
}

// ShortestPath returns the minimum-vertex walk from target(e1) to
// source(e2), exclusive of both endpoints, or an error if no directed
// path exists. If target(e1) == source(e2) the returned path is empty.
func (g *SpliceGraph) ShortestPath(e1, e2 int32) ([]int32, error) {
	start := g.edges[e1].Target
	end := g.edges[e2].Source
	if start == end {
		return nil, nil
	}
	prev := make(map[int32]int32)
	visited := map[int32]bool{start: true}
	queue := []int32{start}
	found := false
	for len(queue) > 0 && !found {
		v := queue[0]
		queue = queue[1:]
		for _, eid := range g.OutEdgesOf(v) {
			w := g.edges[eid].Target
			if visited[w] {
				continue
			}
			visited[w] = true
			prev[w] = v
			if w == end {
				found = true
				break
			}
			queue = append(queue, w)
		}
	}
	if !visited[end] {
		return nil, ErrNoPath
	}
	var path []int32
	for v := end; v != start; v = prev[v] {
		path = append([]int32{v}, path...)
	}
	// drop the trailing `end` vertex to keep the path exclusive of both
	// endpoints, matching §4.3's "ignoring the endpoints".
	if len(path) > 0 {
		path = path[:len(path)-1]
	}
	return path, nil
}

// ancestors performs a reverse (or forward) BFS from v and returns the
// visited set, excluding v itself.
func (g *SpliceGraph) ancestors(v int32, forward bool) map[int32]bool {
	visited := make(map[int32]bool)
	queue := []int32{v}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		var edges []int32
		if forward {
			edges = g.outEdges[u]
		} else {
			edges = g.inEdges[u]
		}
		for _, eid := range edges {
			edge := g.edges[eid]
			var next int32
			if forward {
				next = edge.Target
			} else {
				next = edge.Source
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// CommonInAncestors returns the vertices that can reach both e1's
// source and e2's source, sorted ascending.
func (g *SpliceGraph) CommonInAncestors(e1, e2 int32) []int32 {
	a := g.ancestors(g.edges[e1].Source, false)
	b := g.ancestors(g.edges[e2].Source, false)
	return intersectSets(a, b)
}

// CommonOutAncestors returns the vertices reachable from both e1's
// target and e2's target, sorted ascending.
func (g *SpliceGraph) CommonOutAncestors(e1, e2 int32) []int32 {
	a := g.ancestors(g.edges[e1].Target, true)
	b := g.ancestors(g.edges[e2].Target, true)
	return intersectSets(a, b)
}

func intersectSets(a, b map[int32]bool) []int32 {
	var out []int32
	for v := range a {
		if b[v] {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Intersect implements §4.3's intersect(e1, e2): true when the closed
// vertex intervals [source, target] of the two edges overlap strictly
// — neither contains the other, and they are not simply nested along a
// linear chain. This is the predicate that forbids linking two edges
// during the Scallop driver's linking phase.
func Intersect(e1, e2 *Edge) bool {
	lo1, hi1 := minmax(e1.Source, e1.Target)
	lo2, hi2 := minmax(e2.Source, e2.Target)
	if hi1 < lo2 || hi2 < lo1 {
		return false // disjoint
	}
	if lo1 <= lo2 && hi2 <= hi1 {
		return false // [lo2,hi2] nested inside [lo1,hi1]
	}
	if lo2 <= lo1 && hi1 <= hi2 {
		return false // nested the other way
	}
	return true
}

func minmax(a, b int32) (int32, int32) {
	if a < b {
		return a, b
	}
	return b, a
}

// IsAcyclic performs a DFS-based cycle check. It is only ever called
// from debug assertions (§7): the DAG property is an invariant the
// core algorithms rely on, not something a user-facing error reports.
func (g *SpliceGraph) IsAcyclic() bool {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make([]int, len(g.vertices))
	var visit func(v int32) bool
	visit = func(v int32) bool {
		state[v] = visiting
		for _, eid := range g.outEdges[v] {
			w := g.edges[eid].Target
			switch state[w] {
			case visiting:
				return false
			case unvisited:
				if !visit(w) {
					return false
				}
			}
		}
		state[v] = done
		return true
	}
	for v := range g.vertices {
		if g.vertices[v].exists && state[v] == unvisited {
			if !visit(int32(v)) {
				return false
			}
		}
	}
	return true
}

// SumWeight sums edge weights, used by split-weight-conservation debug
// assertions (§7) to check Σ w(e_i) = w(e) within 1e-6.
func SumWeight(weights ...float64) float64 {
	var s float64
	for _, w := range weights {
		s += w
	}
	return s
}

// ApproxEqual reports whether a and b differ by no more than 1e-6,
// the tolerance §8's split-weight-conservation property specifies.
func ApproxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6
}

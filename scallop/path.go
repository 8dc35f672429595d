package scallop

import (
	"math"

	"github.com/exascience/scallop/graph"
)

// Exon is one coordinate span of an assembled transcript.
type Exon struct {
	Lpos, Rpos int32
}

// Path is one transcript candidate collected out of a bundle's splice
// graph (§4.7): an ordered, already-coalesced exon list together with
// its abundance and a read-count estimate derived from it.
type Path struct {
	Exons     []Exon
	Abundance float64
	ReadCount int32
}

// Length is the sum of the transcript's exon lengths.
func (p Path) Length() int32 {
	var n int32
	for _, e := range p.Exons {
		n += e.Rpos - e.Lpos
	}
	return n
}

// pathWeightEpsilon is the residual weight below which an edge is
// treated as exhausted; it stops the greedy extraction loop from
// spinning on floating-point noise.
const pathWeightEpsilon = 1e-6

// maxCollectedPaths bounds how many transcripts a single bundle's
// residual graph will yield, the same kind of hard stop
// addBestHaplotypes uses against pathological branching.
const maxCollectedPaths = 1024

// CollectPaths repeatedly extracts the graph's widest remaining
// source-to-sink path (§4.7), subtracts its bottleneck weight from
// every edge it used, and keeps going until no path above
// pathWeightEpsilon remains or the cap is hit. averageReadLength is
// §4.7's divisor for turning a path's abundance into a read count.
func CollectPaths(g *graph.SpliceGraph, averageReadLength float64) []Path {
	var paths []Path
	for i := 0; i < maxCollectedPaths; i++ {
		edges, bottleneck := widestPath(g)
		if edges == nil || bottleneck <= pathWeightEpsilon {
			break
		}
		for _, e := range edges {
			w := g.Weight(e) - bottleneck
			if w < pathWeightEpsilon {
				w = 0
			}
			g.SetWeight(e, w)
		}
		paths = append(paths, buildPath(g, edges, bottleneck, averageReadLength))
	}
	return paths
}

// vertexPath is a partial walk from the source, scored by the minimum
// edge weight seen so far (the path's bottleneck) — a direct adaptation
// of elPrep's haplotypePath/priorityQueue (filters/assemble-reads.go),
// with "total multiplicity log-likelihood" replaced by "minimum edge
// weight along the path" per the widest-path search this module needs.
type vertexPath struct {
	edges []int32
	last  int32
	score float64
}

type pathHeap []*vertexPath

func (pq pathHeap) siftUp(k int, x *vertexPath) {
	for k > 0 {
		parent := (k - 1) >> 1
		e := pq[parent]
		if x.score <= e.score {
			break
		}
		pq[k] = e
		k = parent
	}
	pq[k] = x
}

func (pq *pathHeap) enqueue(p *vertexPath) {
	if len(*pq) == 0 {
		*pq = append(*pq, p)
		return
	}
	*pq = append(*pq, nil)
	pq.siftUp(len(*pq)-1, p)
}

func (pq pathHeap) siftDown(k int, x *vertexPath) {
	half := len(pq) >> 1
	for k < half {
		child := (k << 1) + 1
		c := pq[child]
		right := child + 1
		if right < len(pq) && c.score < pq[right].score {
			child = right
			c = pq[child]
		}
		if x.score >= c.score {
			break
		}
		pq[k] = c
		k = child
	}
	pq[k] = x
}

func (pq *pathHeap) dequeue() *vertexPath {
	s := len(*pq) - 1
	result := (*pq)[0]
	x := (*pq)[s]
	*pq = (*pq)[:s]
	if s != 0 {
		pq.siftDown(0, x)
	}
	return result
}

func (p *vertexPath) extend(g *graph.SpliceGraph, e int32) *vertexPath {
	w := g.Weight(e)
	score := p.score
	if w < score {
		score = w
	}
	return &vertexPath{
		edges: append(p.edges[:len(p.edges):len(p.edges)], e),
		last:  g.Edge(e).Target,
		score: score,
	}
}

// widestPath finds the maximum-bottleneck source-to-sink path in the
// graph's current (post-simplification, post-decomposition) residual
// weights, using best-first search: once a vertex is dequeued its
// bottleneck-to-there is provably optimal, since every further
// extension can only shrink the score.
func widestPath(g *graph.SpliceGraph) ([]int32, float64) {
	var pq pathHeap
	pq.enqueue(&vertexPath{last: g.Source(), score: math.Inf(1)})
	visited := make(map[int32]bool)
	for len(pq) > 0 {
		p := pq.dequeue()
		if visited[p.last] {
			continue
		}
		visited[p.last] = true
		if p.last == g.Sink() {
			return p.edges, p.score
		}
		for _, e := range g.OutEdgesOf(p.last) {
			if g.Weight(e) <= pathWeightEpsilon {
				continue
			}
			if visited[g.Edge(e).Target] {
				continue
			}
			pq.enqueue(p.extend(g, e))
		}
	}
	return nil, 0
}

// buildPath turns an edge walk into a Path, coalescing consecutive
// vertices linked by an adjacency edge (§4.2: no intervening intron)
// into a single exon. Its read count is §4.7's literal
// abd × length(path) / average_read_length.
func buildPath(g *graph.SpliceGraph, edges []int32, bottleneck float64, averageReadLength float64) Path {
	var exons []Exon
	for _, eid := range edges {
		e := g.Edge(eid)
		if e.Target == g.Sink() {
			continue
		}
		info := g.VertexInfo(e.Target)
		if len(exons) > 0 && e.Kind == graph.EdgeAdjacency {
			exons[len(exons)-1].Rpos = info.Rpos
			continue
		}
		exons = append(exons, Exon{Lpos: info.Lpos, Rpos: info.Rpos})
	}
	p := Path{Exons: exons, Abundance: bottleneck}
	if averageReadLength > 0 {
		p.ReadCount = int32(math.Round(bottleneck * float64(p.Length()) / averageReadLength))
	}
	return p
}

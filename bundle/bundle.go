package bundle

import (
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/exascience/scallop/graph"
	"github.com/exascience/scallop/hit"
	"github.com/exascience/scallop/utils"
)

// debugAssertions gates the partial-exon-map containment check named
// in §7, enabled via Config.Debug / --debug.
var debugAssertions = false

// Bundle is a locus: every Hit the streaming driver assigned to it,
// and the junctions, partial exons, splice graph and hyper-set derived
// from them (§3).
type Bundle struct {
	ID     uuid.UUID
	Chrom  utils.Symbol
	Strand byte
	Lpos   int32
	Rpos   int32

	Coverage []CoverageRun
	Indels   map[int32]int32
	Hits     []*hit.Hit

	Junctions    []*Junction
	PartialExons []PartialExon

	Graph *graph.SpliceGraph
	Hyper *graph.HyperSet
}

// Builder accumulates Hits for one locus as a streaming driver feeds
// them in ascending Pos order (§3's bundle lifecycle: "Bundles are
// built on the fly as hits stream by").
type Builder struct {
	cfg   Config
	chrom utils.Symbol
	hits  []*hit.Hit
	lpos  int32
	rpos  int32
}

// NewBuilder returns an empty Builder for one chromosome.
func NewBuilder(cfg Config, chrom utils.Symbol) *Builder {
	debugAssertions = cfg.Debug
	return &Builder{cfg: cfg, chrom: chrom, lpos: -1}
}

// Add appends h to the bundle being accumulated. It returns
// ErrUnsorted if h.Pos precedes the previously added hit's Pos, and
// ErrTooManyCigarOps if h's CIGAR exceeds cfg.MaxNumCigar (a second,
// defensive check: hit.New should already have rejected this upstream).
func (b *Builder) Add(h *hit.Hit) error {
	if b.cfg.MaxNumCigar > 0 && len(h.CIGAR) > b.cfg.MaxNumCigar {
		return ErrTooManyCigarOps
	}
	if len(b.hits) > 0 && h.Pos < b.hits[len(b.hits)-1].Pos {
		return ErrUnsorted
	}
	if len(b.hits) == 0 {
		b.lpos = h.Pos
		b.rpos = h.Rpos
	} else {
		if h.Rpos > b.rpos {
			b.rpos = h.Rpos
		}
	}
	b.hits = append(b.hits, h)
	return nil
}

// Empty reports whether any hit has been added.
func (b *Builder) Empty() bool { return len(b.hits) == 0 }

// ShouldFlush reports whether a hit at nextPos belongs to a new
// bundle: the streaming driver flushes the current bundle once the
// next hit's position exceeds this bundle's right boundary by more
// than min_bundle_gap (§3, §6).
func (b *Builder) ShouldFlush(nextPos int32) bool {
	return !b.Empty() && nextPos > b.rpos+b.cfg.MinBundleGap
}

// Bounds returns the current [lpos, rpos) span of the accumulating
// bundle.
func (b *Builder) Bounds() (int32, int32) { return b.lpos, b.rpos }

// Build executes §4.2's nine-step construction pipeline and returns
// the finished Bundle. The Builder is left with no hits afterward and
// may be reused for the next locus.
func (b *Builder) Build() *Bundle {
	bd := &Bundle{
		ID:    uuid.New(),
		Chrom: b.chrom,
		Lpos:  b.lpos,
		Rpos:  b.rpos,
		Hits:  b.hits,
	}
	bd.Strand = voteStrand(bd.Hits)
	bd.Coverage = buildCoverage(bd.Lpos, bd.Rpos, bd.Hits)
	bd.Indels = buildIndelMap(bd.Hits)

	all := collectJunctions(bd.Hits)
	bd.Junctions = retainJunctions(all, b.cfg.MinSpliceBoundaryHits)

	pass1 := buildPartialExons(bd.Lpos, bd.Rpos, all, b.cfg.MinSpliceBoundaryHits, bd.Coverage, b.cfg.IsolatedBoundarySlopeThreshold, nil)
	bd.PartialExons = buildPartialExons(bd.Lpos, bd.Rpos, all, 0, bd.Coverage, b.cfg.IsolatedBoundarySlopeThreshold, pass1)

	pm := newPartialExonMap(bd.PartialExons)
	assertPartialExonMapContainment(bd.PartialExons, bd.Lpos, bd.Rpos)
	linkJunctions(bd.Junctions, pm)

	bd.Graph = buildGraph(bd, pm, b.cfg)
	bd.Hyper = buildHyperSet(bd, pm, b.cfg)

	b.hits = nil
	b.lpos, b.rpos = -1, -1
	return bd
}

// assertPartialExonMapContainment checks §8's partial-exon-map
// containment property: the partial exons must tile [lpos, rpos)
// exactly, with no gap and no overlap, so every coordinate a hit maps
// to is covered by exactly one partial exon.
func assertPartialExonMapContainment(exons []PartialExon, lpos, rpos int32) {
	if !debugAssertions || len(exons) == 0 {
		return
	}
	if exons[0].Lpos != lpos {
		log.Panicf("bundle: partial exon map starts at %d, want %d", exons[0].Lpos, lpos)
	}
	for i := 1; i < len(exons); i++ {
		if exons[i].Lpos != exons[i-1].Rpos {
			log.Panicf("bundle: gap or overlap between partial exons %d [%d,%d) and %d [%d,%d)",
				i-1, exons[i-1].Lpos, exons[i-1].Rpos, i, exons[i].Lpos, exons[i].Rpos)
		}
	}
	if last := exons[len(exons)-1].Rpos; last != rpos {
		log.Panicf("bundle: partial exon map ends at %d, want %d", last, rpos)
	}
}

func voteStrand(hits []*hit.Hit) byte {
	var plus, minus int
	for _, h := range hits {
		switch h.XS {
		case '+':
			plus++
		case '-':
			minus++
		}
	}
	switch {
	case plus > minus:
		return '+'
	case minus > plus:
		return '-'
	default:
		return '.'
	}
}

func buildIndelMap(hits []*hit.Hit) map[int32]int32 {
	m := make(map[int32]int32)
	for _, h := range hits {
		for _, iv := range hit.InsertionIntervals(h.Pos, h.CIGAR) {
			m[iv.Start]++
		}
		for _, iv := range hit.DeletionIntervals(h.Pos, h.CIGAR) {
			m[iv.Start]++
		}
	}
	return m
}

// buildCoverage derives a run-length-encoded depth profile over
// [lpos, rpos) from every hit's matched intervals.
func buildCoverage(lpos, rpos int32, hits []*hit.Hit) []CoverageRun {
	n := int(rpos - lpos)
	if n <= 0 {
		return nil
	}
	delta := make([]int32, n+1)
	for _, h := range hits {
		for _, iv := range hit.MatchedIntervals(h.Pos, h.CIGAR) {
			s, e := iv.Start, iv.End
			if s < lpos {
				s = lpos
			}
			if e > rpos {
				e = rpos
			}
			if s >= e {
				continue
			}
			delta[s-lpos]++
			delta[e-lpos]--
		}
	}
	var runs []CoverageRun
	var depth int32
	for i := 0; i < n; i++ {
		depth += delta[i]
		pos := lpos + int32(i)
		if len(runs) > 0 && float64(depth) == runs[len(runs)-1].Depth {
			continue
		}
		if len(runs) > 0 {
			runs[len(runs)-1].End = pos
		}
		runs = append(runs, CoverageRun{Start: pos, Depth: float64(depth)})
	}
	if len(runs) > 0 {
		runs[len(runs)-1].End = rpos
	}
	return runs
}

// collectJunctions aggregates every hit's splice positions into a map
// keyed by (lpos, rpos), with count >= 1 always.
func collectJunctions(hits []*hit.Hit) []*Junction {
	index := make(map[uint64]*Junction)
	var order []uint64
	for _, h := range hits {
		for _, packed := range h.Splices {
			sp := hit.Unpack(packed)
			if j, ok := index[packed]; ok {
				j.Count++
			} else {
				j := &Junction{Lpos: sp.Left, Rpos: sp.Right, Count: 1}
				index[packed] = j
				order = append(order, packed)
			}
		}
	}
	out := make([]*Junction, len(order))
	for i, k := range order {
		out[i] = index[k]
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lpos != out[j].Lpos {
			return out[i].Lpos < out[j].Lpos
		}
		return out[i].Rpos < out[j].Rpos
	})
	return out
}

// retainJunctions keeps only junctions meeting min_splice_boundary_hits
// (§3's Junction invariant, §6).
func retainJunctions(all []*Junction, minHits int32) []*Junction {
	var out []*Junction
	for _, j := range all {
		if j.Count >= minHits {
			out = append(out, j)
		}
	}
	return out
}

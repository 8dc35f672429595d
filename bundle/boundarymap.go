package bundle

import "github.com/exascience/scallop/intervals"

// partialExonMap resolves a genomic coordinate to the (1-based)
// partial-exon index that starts or ends there (§4.2 step 5). Start
// and end coordinates are looked up in hash maps; the exons are also
// kept as intervals sorted by Lpos, which Contains binary-searches
// with intervals.Overlap.
type partialExonMap struct {
	exons    []PartialExon
	ivs      []intervals.Interval // exons[i] <-> ivs[i], both sorted by Start
	byLpos   map[int32]int        // genomic Lpos -> 1-based exon index
	byRpos   map[int32]int        // genomic Rpos -> 1-based exon index
}

func newPartialExonMap(exons []PartialExon) *partialExonMap {
	ivs := make([]intervals.Interval, len(exons))
	byLpos := make(map[int32]int, len(exons))
	byRpos := make(map[int32]int, len(exons))
	for i, pe := range exons {
		ivs[i] = intervals.Interval{Start: pe.Lpos, End: pe.Rpos}
		byLpos[pe.Lpos] = i + 1
		byRpos[pe.Rpos] = i + 1
	}
	return &partialExonMap{exons: exons, ivs: ivs, byLpos: byLpos, byRpos: byRpos}
}

// IndexStartingAt returns the 1-based index of the partial exon whose
// Lpos equals pos, or 0 if none does.
func (m *partialExonMap) IndexStartingAt(pos int32) int32 {
	return int32(m.byLpos[pos])
}

// IndexEndingAt returns the 1-based index of the partial exon whose
// Rpos equals pos, or 0 if none does.
func (m *partialExonMap) IndexEndingAt(pos int32) int32 {
	return int32(m.byRpos[pos])
}

// Contains reports whether pos falls within some partial exon's
// [Lpos, Rpos] span (pos == Rpos counts) — the debug-time "partial-exon map containment"
// invariant §7 calls out.
func (m *partialExonMap) Contains(pos int32) bool {
	return intervals.Overlap(m.ivs, pos, pos+1)
}

// Len returns the number of partial exons in the map (== N, the
// number of non-source/sink splice-graph vertices).
func (m *partialExonMap) Len() int { return len(m.exons) }

func (m *partialExonMap) At(index int32) PartialExon { return m.exons[index-1] }

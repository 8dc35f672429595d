// Package bundle groups adjacent Hits into a locus, derives partial
// exons and junctions from their coverage and splice evidence (§4.2),
// and seeds a graph.SpliceGraph plus a graph.HyperSet for the Scallop
// driver to simplify.
package bundle

import "github.com/exascience/scallop/hit"

// BoundaryType classifies one end of a Region or PartialExon (§4.2
// step 3).
type BoundaryType byte

const (
	StartBoundary BoundaryType = iota
	EndBoundary
	LeftSplice
	RightSplice
	LeftRightSplice
)

// Junction is an observed splice event with read support (§3).
type Junction struct {
	Lpos, Rpos int32
	Count      int32

	// Lexon and Rexon are the partial-exon indices (1-based, into
	// Bundle.PartialExons) this junction connects, resolved by
	// linkJunctions (§4.2 step 6). Zero until resolved.
	Lexon, Rexon int32
}

// PartialExon is a maximal genomic interval with no interior junction
// endpoint (§3).
type PartialExon struct {
	Lpos, Rpos         int32
	LeftType, RightType BoundaryType
	Ave, Dev           float64
}

func (p PartialExon) Length() int32 { return p.Rpos - p.Lpos }

// CoverageRun is one maximal run of uniform depth within a bundle, the
// piecewise-constant representation of Bundle's coverage map (§3).
type CoverageRun struct {
	Start, End int32
	Depth      float64
}

// Hit is re-exported so callers building a Bundle don't need to import
// package hit directly for the one type they pass through.
type Hit = hit.Hit

// Package hit represents a single spliced short-read alignment against a
// reference sequence: its coordinates, its CIGAR-derived intervals, its
// strand, and the splice positions it supports. It knows nothing about
// bundles, graphs, or assembly.
package hit

// CigarOp is one (operation, length) pair of a CIGAR string. Operation is
// one of M/I/D/N/S/H/P/=/X, per the SAM specification.
type CigarOp struct {
	Op  byte
	Len int32
}

var (
	consumesReference = map[byte]bool{'M': true, 'D': true, 'N': true, '=': true, 'X': true}
	consumesQuery     = map[byte]bool{'M': true, 'I': true, 'S': true, '=': true, 'X': true}
	knownOps          = map[byte]bool{'M': true, 'I': true, 'D': true, 'N': true, 'S': true, 'H': true, 'P': true, '=': true, 'X': true}
)

// End returns the exclusive right reference coordinate of an alignment
// that starts at pos and has the given CIGAR, i.e. pos + Σ{len :
// op consumes reference}.
func End(pos int32, cigar []CigarOp) int32 {
	end := pos
	for _, op := range cigar {
		if consumesReference[op.Op] {
			end += op.Len
		}
	}
	return end
}

// QueryLength sums the lengths of all CIGAR operations that consume
// query (read) bases.
func QueryLength(cigar []CigarOp) int32 {
	var length int32
	for _, op := range cigar {
		if consumesQuery[op.Op] {
			length += op.Len
		}
	}
	return length
}

// Interval is a half-open reference interval, [Start, End).
type Interval struct {
	Start, End int32
}

// MatchedIntervals returns every maximal run of reference-and-query
// consuming bases (CIGAR M/=/X) as a reference interval.
func MatchedIntervals(pos int32, cigar []CigarOp) (matched []Interval) {
	ref := pos
	for _, op := range cigar {
		switch op.Op {
		case 'M', '=', 'X':
			matched = append(matched, Interval{ref, ref + op.Len})
			ref += op.Len
		case 'D', 'N':
			ref += op.Len
		}
	}
	return
}

// InsertionIntervals returns a zero-width marker interval, centered at
// the reference position at which it occurs, for every insertion (I)
// operation.
func InsertionIntervals(pos int32, cigar []CigarOp) (insertions []Interval) {
	ref := pos
	for _, op := range cigar {
		switch op.Op {
		case 'I':
			insertions = append(insertions, Interval{ref, ref})
		case 'M', '=', 'X', 'D', 'N':
			ref += op.Len
		}
	}
	return
}

// DeletionIntervals returns the reference gap span for every deletion
// (D) operation.
func DeletionIntervals(pos int32, cigar []CigarOp) (deletions []Interval) {
	ref := pos
	for _, op := range cigar {
		switch op.Op {
		case 'D':
			deletions = append(deletions, Interval{ref, ref + op.Len})
			ref += op.Len
		case 'M', '=', 'X', 'N':
			ref += op.Len
		}
	}
	return
}

// SplicePosition is an intron endpoint pair derived from a skip (N)
// CIGAR operation flanked by sufficiently long matches.
type SplicePosition struct {
	Left, Right int32
}

// Pack encodes a SplicePosition as a single 64-bit value, (left,right)
// packed into the high and low 32 bits respectively.
func (s SplicePosition) Pack() uint64 {
	return uint64(uint32(s.Left))<<32 | uint64(uint32(s.Right))
}

// Unpack decodes a 64-bit packed splice position.
func Unpack(packed uint64) SplicePosition {
	return SplicePosition{
		Left:  int32(uint32(packed >> 32)),
		Right: int32(uint32(packed)),
	}
}

// SplicePositions walks the CIGAR and emits a SplicePosition for every
// skip (N) operation whose flanking match operations are each at least
// minFlankLength long. The first and last CIGAR operations never
// produce splice positions, matching the source's convention that a
// read can't splice off its own end.
func SplicePositions(pos int32, cigar []CigarOp, minFlankLength int32) (splices []SplicePosition) {
	ref := pos
	for i, op := range cigar {
		switch op.Op {
		case 'N':
			if i > 0 && i < len(cigar)-1 &&
				flankLength(cigar[i-1]) >= minFlankLength &&
				flankLength(cigar[i+1]) >= minFlankLength {
				splices = append(splices, SplicePosition{ref, ref + op.Len})
			}
			ref += op.Len
		case 'M', '=', 'X', 'D':
			ref += op.Len
		}
	}
	return
}

// flankLength returns the reference-consuming length of a CIGAR
// operation that could flank a splice, or 0 if it isn't a match.
func flankLength(op CigarOp) int32 {
	switch op.Op {
	case 'M', '=', 'X':
		return op.Len
	default:
		return 0
	}
}

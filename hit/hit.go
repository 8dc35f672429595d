package hit

import (
	"fmt"

	"github.com/exascience/scallop/utils"
)

// SAM flag bits this package inspects when deriving Strand, XS and
// pairing attributes. Only the bits named in §4.1 are given names; the
// rest travel through FLAG unexamined.
const (
	FlagMultiple     uint16 = 0x1
	FlagProperlyAlnd uint16 = 0x2
	FlagUnmapped     uint16 = 0x4
	FlagReversed     uint16 = 0x10
	FlagFirst        uint16 = 0x40
	FlagLast         uint16 = 0x80
)

var (
	symXS = utils.Intern("XS")
	symTS = utils.Intern("ts")
	symHI = utils.Intern("HI")
	symNH = utils.Intern("NH")
	symNM = utils.Intern("NM")
	symnM = utils.Intern("nM")
)

// Hit is one aligned read: its reference coordinates, its CIGAR, the
// strand and pairing information derived from it, and the splice
// positions it supports. See §3.
type Hit struct {
	Chrom utils.Symbol
	Pos   int32 // left reference position, inclusive
	Rpos  int32 // right reference position, exclusive
	Qlen  int32
	QName string

	MatePos  int32
	InsSize  int32
	Flag     uint16
	MapQ     uint8
	Strand   byte // '+', '-', or '.'
	CIGAR    []CigarOp
	Splices  []uint64 // packed SplicePosition values
	HI, NH   int32
	NM       int32
	XS, TS   byte
	Tags     utils.SmallMap // any other auxiliary tag, keyed by its interned name
}

// Config is the subset of configuration §6 consults when building a
// Hit from a raw record.
type Config struct {
	LibraryType    LibraryType
	MinFlankLength int32
	MaxNumCigar    int
}

// New validates and derives a Hit from one raw alignment record. It
// returns a *MalformedAlignment if the CIGAR is empty or exceeds
// cfg.MaxNumCigar, or contains an operation not in M/I/D/N/S/H/P/=/X.
func New(cfg Config, chrom utils.Symbol, pos int32, qname string, matePos, insSize int32,
	flag uint16, mapq uint8, cigar []CigarOp, xs byte, haveXS bool, ts byte, hi, nh, nm int32,
	extra utils.SmallMap) (*Hit, error) {

	if len(cigar) == 0 {
		return nil, &MalformedAlignment{QName: qname, Reason: "empty CIGAR"}
	}
	if cfg.MaxNumCigar > 0 && len(cigar) > cfg.MaxNumCigar {
		return nil, &MalformedAlignment{QName: qname, Reason: fmt.Sprintf("CIGAR has %d operations, exceeds max_num_cigar %d", len(cigar), cfg.MaxNumCigar)}
	}
	for _, op := range cigar {
		if !knownOps[op.Op] {
			return nil, &MalformedAlignment{QName: qname, Reason: fmt.Sprintf("unknown CIGAR op %q", op.Op)}
		}
	}

	reversed := flag&FlagReversed != 0
	strand := DeriveStrand(cfg.LibraryType, flag)
	resolvedXS := DeriveXS(xs, haveXS, ts, reversed)

	splicePositions := SplicePositions(pos, cigar, cfg.MinFlankLength)
	packed := make([]uint64, len(splicePositions))
	for i, sp := range splicePositions {
		packed[i] = sp.Pack()
	}

	return &Hit{
		Chrom:   chrom,
		Pos:     pos,
		Rpos:    End(pos, cigar),
		Qlen:    QueryLength(cigar),
		QName:   qname,
		MatePos: matePos,
		InsSize: insSize,
		Flag:    flag,
		MapQ:    mapq,
		Strand:  strand,
		CIGAR:   cigar,
		Splices: packed,
		HI:      hi,
		NH:      nh,
		NM:      nm,
		XS:      resolvedXS,
		TS:      ts,
		Tags:    extra,
	}, nil
}

// Paired reports whether the hit's FLAG marks it as part of a pair.
func (h *Hit) Paired() bool { return h.Flag&FlagMultiple != 0 }

// FirstInPair reports whether the hit is read 1 of a pair.
func (h *Hit) FirstInPair() bool { return h.Flag&FlagFirst != 0 }

// Matched returns the reference intervals covered by CIGAR M/=/X
// operations, i.e. the read's exonic footprint.
func (h *Hit) Matched() []Interval { return MatchedIntervals(h.Pos, h.CIGAR) }

// Tag looks up an auxiliary tag that §3 doesn't give a dedicated
// field, e.g. a caller-specific extension tag carried through unseen.
func (h *Hit) Tag(name string) (interface{}, bool) {
	return h.Tags.Get(utils.Intern(name))
}

package hit

// LibraryType selects how a read's SAM flags are turned into a
// transcription strand.
type LibraryType byte

const (
	Unstranded LibraryType = iota
	FRFirst
	FRSecond
)

const (
	flagMultiple = 0x1
	flagReversed = 0x10
	flagFirst    = 0x40
	flagLast     = 0x80
)

// DeriveStrand implements §4.1's (library_type, flag) strand table.
// Paired FR-first-stranded assigns '-' to forward-R1 or reverse-R2, '+'
// to the complement; FR-second-stranded is the mirror; unpaired reads
// use their own read strand. An unstranded library, or any flag
// combination inconsistent with the chosen library type (a paired
// record with both or neither of the R1/R2 bits set), yields '.'.
func DeriveStrand(lib LibraryType, flag uint16) byte {
	reversed := flag&flagReversed != 0
	paired := flag&flagMultiple != 0
	first := flag&flagFirst != 0
	last := flag&flagLast != 0

	switch lib {
	case Unstranded:
		return '.'
	case FRFirst:
		if !paired {
			return readStrand(reversed)
		}
		switch {
		case first && !last:
			return flip(readStrand(reversed))
		case last && !first:
			return readStrand(reversed)
		default:
			return '.'
		}
	case FRSecond:
		if !paired {
			return readStrand(reversed)
		}
		switch {
		case first && !last:
			return readStrand(reversed)
		case last && !first:
			return flip(readStrand(reversed))
		default:
			return '.'
		}
	default:
		return '.'
	}
}

func readStrand(reversed bool) byte {
	if reversed {
		return '-'
	}
	return '+'
}

func flip(strand byte) byte {
	switch strand {
	case '+':
		return '-'
	case '-':
		return '+'
	default:
		return '.'
	}
}

// DeriveXS computes the xs library-strand tag. If the alignment carries
// an explicit XS:A tag, that value is returned unchanged. Otherwise xs
// is derived from the ts tag XOR the alignment's Reversed flag bit, the
// same convention HISAT2/StringTie-family tools use to fold a read's own
// reverse-complement status into its reported transcript strand.
func DeriveXS(explicitXS byte, haveExplicitXS bool, ts byte, reversed bool) byte {
	if haveExplicitXS {
		return explicitXS
	}
	switch ts {
	case '+':
		if reversed {
			return '-'
		}
		return '+'
	case '-':
		if reversed {
			return '+'
		}
		return '-'
	default:
		return '.'
	}
}

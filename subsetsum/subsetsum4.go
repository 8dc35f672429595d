package subsetsum

import "math"

// Result is the outcome of BestBalance: the chosen subsets of the
// source and sink lists, identified by index into the slices passed
// to BestBalance, and the resulting relative error.
type Result struct {
	SourceIdx, SinkIdx []int
	SourceSum, SinkSum float64
	Error              float64 // |ΣS' - ΣT'| / ΣS
}

// BestBalance implements §4.5's subsetsum4: given positive-weight
// source list S and positive-weight sink list T, it finds S' ⊆ S,
// T' ⊆ T minimizing |Σ S' − Σ T'| / Σ S, subject to |S'| ≥ 1 and
// |T'| ≥ 1. Both inputs must have length ≥ 2.
//
// It works by bidirectional enumeration: every subset sum of S and
// every subset sum of T is computed (both lists are expected to be
// small — the same n ≤ ~20 regime as Enumerate), then the closest pair
// across the two sums is found by sorting one side and binary
// searching from the other, which is the standard meet-in-the-middle
// tolerance-bound technique for this kind of two-sided balance search.
func BestBalance(s, t []float64) (Result, bool) {
	if len(s) < 2 || len(t) < 2 {
		return Result{}, false
	}
	totalS := sumOf(s)

	type entry struct {
		mask int
		sum  float64
	}
	senum := enumerateFloat(s)
	tenum := enumerateFloat(t)

	// sort sink enumeration by sum for binary search from the source
	// side.
	sortEntries(tenum)

	best := Result{Error: math.Inf(1)}
	haveBest := false
	for _, se := range senum {
		if se.mask == 0 {
			continue // |S'| >= 1
		}
		i := lowerBound(tenum, se.sum)
		for _, cand := range []int{i - 1, i, i + 1} {
			if cand < 0 || cand >= len(tenum) {
				continue
			}
			te := tenum[cand]
			if te.mask == 0 {
				continue // |T'| >= 1
			}
			diff := math.Abs(se.sum - te.sum)
			relErr := diff / totalS
			if relErr < best.Error ||
				(relErr == best.Error && betterTie(se.mask, te.mask, best)) {
				best = Result{
					SourceIdx: bitsOf(se.mask),
					SinkIdx:   bitsOf(te.mask),
					SourceSum: se.sum,
					SinkSum:   te.sum,
					Error:     relErr,
				}
				haveBest = true
			}
		}
	}
	return best, haveBest
}

func betterTie(smask, tmask int, cur Result) bool {
	// §9's deterministic tie-break: smallest combined subset size,
	// then lexicographically smallest indices.
	size := popcount(smask) + popcount(tmask)
	curSize := len(cur.SourceIdx) + len(cur.SinkIdx)
	if size != curSize {
		return size < curSize
	}
	sidx, tidx := bitsOf(smask), bitsOf(tmask)
	if !equalInts(sidx, cur.SourceIdx) {
		return lexLess(sidx, cur.SourceIdx)
	}
	return lexLess(tidx, cur.SinkIdx)
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

type floatEntry struct {
	mask int
	sum  float64
}

func enumerateFloat(x []float64) []floatEntry {
	n := len(x)
	size := 1 << n
	out := make([]floatEntry, size)
	for mask := 1; mask < size; mask++ {
		lsb := mask & (mask - 1)
		bit := mask &^ lsb
		idx := trailingZeros(bit)
		out[mask] = floatEntry{mask: mask, sum: out[lsb].sum + x[idx]}
	}
	out[0] = floatEntry{mask: 0, sum: 0}
	return out
}

func sortEntries(e []floatEntry) {
	// insertion sort is adequate: n <= 2^20 only in pathological cases,
	// and callers are expected to gate list size the same way Enumerate
	// callers do.
	for i := 1; i < len(e); i++ {
		for j := i; j > 0 && e[j-1].sum > e[j].sum; j-- {
			e[j-1], e[j] = e[j], e[j-1]
		}
	}
}

func lowerBound(e []floatEntry, target float64) int {
	lo, hi := 0, len(e)
	for lo < hi {
		mid := (lo + hi) / 2
		if e[mid].sum < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func bitsOf(mask int) []int {
	var out []int
	for m := mask; m != 0; {
		lsb := m & (m - 1)
		bit := m &^ lsb
		out = append(out, trailingZeros(bit))
		m = lsb
	}
	return out
}

func sumOf(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}
	return s
}

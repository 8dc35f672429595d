// Package subsetsum implements the two oracles §4.5 specifies: full
// subset-sum enumeration over a small integer multiset with
// back-pointers for O(n) recovery, and a two-sided best-balance search
// between a source list and a sink list.
package subsetsum

import "sort"

// MaxEnumerable is the size above which Enumerate's 2^n enumeration is
// no longer practical; callers must gate on this (§4.5: "Intended for
// n ≤ ~20; callers must gate on size").
const MaxEnumerable = 20

// Table is the result of Enumerate: every subset sum of the input
// multiset, together with a back-pointer per entry that lets Recover
// reconstruct the subset in O(n).
//
// Entries are indexed by bitmask over the n input elements (bit j set
// means element j is included). xf[mask] names the element index
// flipped on to reach mask from mask with that bit cleared — the
// conventional way to recover a subset by walking backward to the
// empty subset one element at a time.
type Table struct {
	x   []int64 // the input multiset, as given
	sum []int64 // sum[mask] = subset-sum of the subset named by mask
	xf  []int   // element index flipped to produce sum[mask] from sum[mask with that bit cleared]
}

// Enumerate computes every subset sum of x (len(x) must be <=
// MaxEnumerable) and the back-pointer table needed to recover any of
// them.
func Enumerate(x []int64) *Table {
	n := len(x)
	size := 1 << n
	sum := make([]int64, size)
	xf := make([]int, size)
	for mask := 1; mask < size; mask++ {
		lsb := mask & (mask - 1) // mask with its lowest set bit cleared
		bit := mask &^ lsb       // the lowest set bit itself
		idx := trailingZeros(bit)
		sum[mask] = sum[lsb] + x[idx]
		xf[mask] = idx
	}
	return &Table{x: append([]int64(nil), x...), sum: sum, xf: xf}
}

func trailingZeros(v int) int {
	n := 0
	for v&1 == 0 {
		v >>= 1
		n++
	}
	return n
}

// Sums returns every enumerated subset sum, in bitmask order (index 0
// is the empty subset).
func (t *Table) Sums() []int64 { return t.sum }

// Closest returns the bitmask of the subset whose sum is closest to
// target, along with the absolute error. Ties are broken by smallest
// subset size, then by lexicographically smallest bitmask, per §9's
// required deterministic tie-break.
func (t *Table) Closest(target int64) (mask int, err int64) {
	best := -1
	var bestErr int64 = -1
	for m, s := range t.sum {
		d := s - target
		if d < 0 {
			d = -d
		}
		if bestErr == -1 || d < bestErr ||
			(d == bestErr && popcount(m) < popcount(best)) ||
			(d == bestErr && popcount(m) == popcount(best) && m < best) {
			best = m
			bestErr = d
		}
	}
	return best, bestErr
}

func popcount(m int) int {
	n := 0
	for m != 0 {
		n += m & 1
		m >>= 1
	}
	return n
}

// Recover returns the element indices (into the original x slice)
// belonging to the subset identified by mask, by walking the xf
// back-pointer table to the empty subset — O(n) regardless of n.
func (t *Table) Recover(mask int) []int {
	var idx []int
	for m := mask; m != 0; {
		j := t.xf[m]
		idx = append(idx, j)
		m &^= 1 << j
	}
	sort.Ints(idx)
	return idx
}

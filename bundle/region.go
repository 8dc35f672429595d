package bundle

import "math"

// Region is the genomic span between two consecutive boundary points
// in the ordered boundary set a bundle-construction pass builds (§4.2
// step 3). emitPartialExons turns it into one or more PartialExons by
// applying the slope test: a region with a sharp coverage
// discontinuity is split at the discontinuity, an otherwise-uniform
// region yields a single partial exon.
type Region struct {
	Lpos, Rpos          int32
	LeftType, RightType BoundaryType
}

// defaultSlopeThreshold is the default ratio between adjacent coverage
// runs at or above which a region is considered to have a "sharp"
// discontinuity (§9:
// "isolated_boundary_slope_threshold... appear[s] tuned rather than
// principled; preserve... as configuration constants").
const defaultSlopeThreshold = 5.0

// emitPartialExons splits r at any coverage discontinuity whose ratio
// is at least slopeThreshold, then computes Ave/Dev for each resulting
// partial exon from the runs it covers.
func (r Region) emitPartialExons(runs []CoverageRun, slopeThreshold float64) []PartialExon {
	sub := runsWithin(runs, r.Lpos, r.Rpos)
	if len(sub) == 0 {
		return []PartialExon{{
			Lpos: r.Lpos, Rpos: r.Rpos,
			LeftType: r.LeftType, RightType: r.RightType,
		}}
	}

	splitAt := findSlopeBreaks(sub, slopeThreshold)
	if len(splitAt) == 0 {
		ave, dev := coverageStats(sub, r.Lpos, r.Rpos)
		return []PartialExon{{
			Lpos: r.Lpos, Rpos: r.Rpos,
			LeftType: r.LeftType, RightType: r.RightType,
			Ave: ave, Dev: dev,
		}}
	}

	bounds := append([]int32{r.Lpos}, splitAt...)
	bounds = append(bounds, r.Rpos)
	exons := make([]PartialExon, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		ave, dev := coverageStats(sub, lo, hi)
		leftType, rightType := LeftRightSplice, LeftRightSplice
		if i == 0 {
			leftType = r.LeftType
		}
		if i == len(bounds)-2 {
			rightType = r.RightType
		}
		exons = append(exons, PartialExon{Lpos: lo, Rpos: hi, LeftType: leftType, RightType: rightType, Ave: ave, Dev: dev})
	}
	return exons
}

// findSlopeBreaks returns the interior coordinates at which coverage
// changes by a factor of at least slopeThreshold relative to its
// neighbor, or steps between zero and non-zero depth.
func findSlopeBreaks(runs []CoverageRun, slopeThreshold float64) []int32 {
	var breaks []int32
	for i := 1; i < len(runs); i++ {
		a, b := runs[i-1].Depth, runs[i].Depth
		if isSharpDiscontinuity(a, b, slopeThreshold) {
			breaks = append(breaks, runs[i].Start)
		}
	}
	return breaks
}

func isSharpDiscontinuity(a, b, slopeThreshold float64) bool {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 1e-9 {
		return hi >= 1e-9
	}
	return hi/lo >= slopeThreshold
}

// runsWithin returns the (clipped) coverage runs overlapping [lo, hi).
func runsWithin(runs []CoverageRun, lo, hi int32) []CoverageRun {
	var out []CoverageRun
	for _, r := range runs {
		if r.End <= lo || r.Start >= hi {
			continue
		}
		start, end := r.Start, r.End
		if start < lo {
			start = lo
		}
		if end > hi {
			end = hi
		}
		out = append(out, CoverageRun{Start: start, End: end, Depth: r.Depth})
	}
	return out
}

// coverageStats computes the length-weighted average and standard
// deviation of depth across [lo, hi).
func coverageStats(runs []CoverageRun, lo, hi int32) (ave, dev float64) {
	sub := runsWithin(runs, lo, hi)
	total := int64(hi - lo)
	if total <= 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, r := range sub {
		length := float64(r.End - r.Start)
		sum += r.Depth * length
		sumSq += r.Depth * r.Depth * length
	}
	ave = sum / float64(total)
	variance := sumSq/float64(total) - ave*ave
	if variance < 0 {
		variance = 0
	}
	dev = math.Sqrt(variance)
	return
}

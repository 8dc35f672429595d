package bundle

import "sort"

// buildPartialExons runs one pass of §4.2 step 3/4: collect boundary
// points, suppress spurious junctions per the coverage sieve (only
// relevant when threshold > 0, i.e. pass 1), split into Regions, and
// emit PartialExons from each Region via the slope test.
//
// prior, when non-nil, supplies pass 1's partial-exon boundaries so
// pass 2 (called with threshold == 0, suppressing nothing) can fold
// them into its own boundary set, stabilizing boundaries around real
// junctions as §4.2 step 4 describes.
func buildPartialExons(lpos, rpos int32, junctions []*Junction, threshold int32, coverage []CoverageRun, slopeThreshold float64, prior []PartialExon) []PartialExon {
	points := collectBoundaryPoints(lpos, rpos, junctions, threshold, coverage, prior)
	regions := regionsFromPoints(points)
	var exons []PartialExon
	for _, r := range regions {
		exons = append(exons, r.emitPartialExons(coverage, slopeThreshold)...)
	}
	return exons
}

type boundaryPoint struct {
	pos  int32
	kind BoundaryType
}

// collectBoundaryPoints implements the union described in §4.2 step 3:
// the bundle's own [lpos,rpos) boundaries, every junction endpoint that
// survives the coverage sieve, and (pass 2 only) the prior pass's
// partial-exon boundaries.
func collectBoundaryPoints(lpos, rpos int32, junctions []*Junction, threshold int32, coverage []CoverageRun, prior []PartialExon) []boundaryPoint {
	merged := make(map[int32]BoundaryType)
	merge := func(pos int32, kind BoundaryType) {
		if existing, ok := merged[pos]; ok {
			merged[pos] = combineBoundaryTypes(existing, kind)
		} else {
			merged[pos] = kind
		}
	}

	merge(lpos, StartBoundary)
	merge(rpos, EndBoundary)

	for _, j := range junctions {
		if isSpuriousJunction(j, threshold, coverage) {
			continue
		}
		merge(j.Lpos, RightSplice)
		merge(j.Rpos, LeftSplice)
	}

	for _, pe := range prior {
		merge(pe.Lpos, pe.LeftType)
		merge(pe.Rpos, pe.RightType)
	}

	points := make([]boundaryPoint, 0, len(merged))
	for pos, kind := range merged {
		points = append(points, boundaryPoint{pos: pos, kind: kind})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].pos < points[j].pos })
	return points
}

// isSpuriousJunction implements §4.2 step 3's coverage sieve: a
// junction below threshold whose intron span is, itself, highly
// covered is more likely an alignment artifact than a real intron, and
// is excluded from the boundary set entirely (though it may still be
// present in Bundle.Junctions if it separately meets
// min_splice_boundary_hits — this sieve only affects which coordinates
// seed partial-exon boundaries).
func isSpuriousJunction(j *Junction, threshold int32, coverage []CoverageRun) bool {
	if threshold <= 0 || j.Count >= threshold {
		return false
	}
	ave, _ := coverageStats(coverage, j.Lpos, j.Rpos)
	return ave >= float64(threshold)
}

func combineBoundaryTypes(a, b BoundaryType) BoundaryType {
	if a == b {
		return a
	}
	splice := func(t BoundaryType) bool {
		return t == LeftSplice || t == RightSplice || t == LeftRightSplice
	}
	if splice(a) && splice(b) {
		return LeftRightSplice
	}
	// Start/End boundaries take precedence over a coincident splice
	// classification: the bundle's own extremities are never interior
	// junction endpoints in a well-formed bundle, but ties are resolved
	// in favor of the structural boundary.
	if a == StartBoundary || a == EndBoundary {
		return a
	}
	return b
}

func regionsFromPoints(points []boundaryPoint) []Region {
	var regions []Region
	for i := 0; i+1 < len(points); i++ {
		regions = append(regions, Region{
			Lpos: points[i].pos, Rpos: points[i+1].pos,
			LeftType: points[i].kind, RightType: points[i+1].kind,
		})
	}
	return regions
}

package bundle

import "github.com/exascience/scallop/hit"

// Config is the subset of §6's configuration a Builder consults, plus
// the two numeric constants §9 calls out as configuration constants
// rather than bare literals, and the bridging path-count cap §9
// recommends in place of the source's effectively infinite one.
type Config struct {
	LibraryType           hit.LibraryType
	MinFlankLength        int32
	MinSpliceBoundaryHits int32
	MinBundleGap          int32
	MaxNumCigar           int

	IsolatedBoundaryFaintWeight    float64
	IsolatedBoundarySlopeThreshold float64
	MaxBridgePaths                 int64

	Debug bool
}

// DefaultConfig returns §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		LibraryType:                    hit.Unstranded,
		MinFlankLength:                 3,
		MinSpliceBoundaryHits:          1,
		MinBundleGap:                   50,
		MaxNumCigar:                    64,
		IsolatedBoundaryFaintWeight:    1.5,
		IsolatedBoundarySlopeThreshold: 5.0,
		MaxBridgePaths:                 1 << 20,
	}
}

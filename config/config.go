// Package config loads the options §6 names into the per-package
// Config values hit, bundle and scallop each already consult,
// following elPrep's own idiom of a flat Config struct populated by a
// flag.FlagSet and a Default() constructor that cmd's sub-commands
// hand down into their filters.
package config

import (
	"fmt"

	"github.com/exascience/scallop/bundle"
	"github.com/exascience/scallop/hit"
	"github.com/exascience/scallop/scallop"
)

// Config collects every option §6 lists, plus the numeric constants §9
// calls out as configuration rather than bare literals. It is the
// single flag.FlagSet target cmd/assemble.go parses into; AsHit,
// AsBundle and AsScallop project it down to the subset each core
// package actually consults.
type Config struct {
	LibraryType string // "unstranded", "fr-first", or "fr-second"

	MinFlankLength        int
	MinSpliceBoundaryHits int
	MinBundleGap          int
	MaxNumCigar           int

	IgnoreSingleExonTranscripts bool
	MinTranscriptLength         int
	AverageReadLength           int

	IsolatedBoundaryFaintWeight    float64
	IsolatedBoundarySlopeThreshold float64
	MaxBridgePaths                 int64

	Algo  string
	Debug bool
}

// Default returns §6's documented defaults.
func Default() Config {
	return Config{
		LibraryType:                    "unstranded",
		MinFlankLength:                 3,
		MinSpliceBoundaryHits:          1,
		MinBundleGap:                   50,
		MaxNumCigar:                    64,
		IgnoreSingleExonTranscripts:    false,
		MinTranscriptLength:            200,
		AverageReadLength:              100,
		IsolatedBoundaryFaintWeight:    1.5,
		IsolatedBoundarySlopeThreshold: 5.0,
		MaxBridgePaths:                 1 << 20,
		Algo:                           "scallop",
	}
}

// libraryType parses the library_type option (§6:
// unstranded/FR-first/FR-second) into hit.LibraryType.
func (c Config) libraryType() (hit.LibraryType, error) {
	switch c.LibraryType {
	case "", "unstranded":
		return hit.Unstranded, nil
	case "fr-first", "FR-first":
		return hit.FRFirst, nil
	case "fr-second", "FR-second":
		return hit.FRSecond, nil
	default:
		return 0, fmt.Errorf("config: unknown library_type %q", c.LibraryType)
	}
}

// AsHit projects c down to the subset hit.New consults when turning a
// raw record into a Hit (§4.1).
func (c Config) AsHit() (hit.Config, error) {
	lib, err := c.libraryType()
	if err != nil {
		return hit.Config{}, err
	}
	return hit.Config{
		LibraryType:    lib,
		MinFlankLength: int32(c.MinFlankLength),
		MaxNumCigar:    c.MaxNumCigar,
	}, nil
}

// AsBundle projects c down to the subset bundle.Builder consults when
// assembling a locus (§4.2). Call sites always call AsHit first and
// bail out on its error, so a second, silent parse failure here can
// only mean the library_type flag passed validation already.
func (c Config) AsBundle() bundle.Config {
	lib, _ := c.libraryType()
	return bundle.Config{
		LibraryType:                    lib,
		MinFlankLength:                 int32(c.MinFlankLength),
		MinSpliceBoundaryHits:          int32(c.MinSpliceBoundaryHits),
		MinBundleGap:                   int32(c.MinBundleGap),
		MaxNumCigar:                    c.MaxNumCigar,
		IsolatedBoundaryFaintWeight:    c.IsolatedBoundaryFaintWeight,
		IsolatedBoundarySlopeThreshold: c.IsolatedBoundarySlopeThreshold,
		MaxBridgePaths:                 c.MaxBridgePaths,
		Debug:                          c.Debug,
	}
}

// AsScallop projects c down to the subset scallop.Driver consults when
// accepting or rejecting a bundle's collected paths (§4.6, §4.7).
func (c Config) AsScallop() scallop.Config {
	return scallop.Config{
		IgnoreSingleExonTranscripts: c.IgnoreSingleExonTranscripts,
		MinTranscriptLength:         int32(c.MinTranscriptLength),
		AverageReadLength:           float64(c.AverageReadLength),
		MaxBridgePaths:              c.MaxBridgePaths,
		Debug:                       c.Debug,
	}
}

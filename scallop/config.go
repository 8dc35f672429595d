package scallop

// Config holds the transcript-acceptance and termination parameters
// the driver needs on top of the splice graph itself (§6).
type Config struct {
	IgnoreSingleExonTranscripts bool
	MinTranscriptLength         int32
	AverageReadLength           float64
	MaxBridgePaths              int64
	Debug                       bool
}

// DefaultConfig returns §6's documented defaults for the parameters
// this package owns.
func DefaultConfig() Config {
	return Config{
		MinTranscriptLength: 200,
		AverageReadLength:   100,
		MaxBridgePaths:      1 << 20,
	}
}

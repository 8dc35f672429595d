package bundle

import "errors"

// ErrTooManyCigarOps is returned by Builder.Add when a hit's CIGAR
// exceeds config.MaxNumCigar; it is a MalformedInput error (§7) and
// aborts the stream it came from.
var ErrTooManyCigarOps = errors.New("bundle: CIGAR exceeds max_num_cigar")

// ErrUnsorted is returned by Builder.Add when a hit's pos precedes the
// previously added hit's pos, violating §3's "hits are in ascending
// pos" bundle invariant.
var ErrUnsorted = errors.New("bundle: hit out of sort order")

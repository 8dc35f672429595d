package bamio

import "errors"

// ErrUnsorted is returned by Reader.Next when a record's position
// precedes the previous record's on the same chromosome, violating the
// coordinate-sorted input contract (§6). The Reader keeps no error
// state: only the offending record is rejected, and a further call
// parses the next record and compares it with the last one returned.
var ErrUnsorted = errors.New("bamio: input is not sorted by ascending position")

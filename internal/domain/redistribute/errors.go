package redistribute

import "errors"

// Sentinel kinds for redistribution errors.
var (
	// ErrScoreOutOfBounds reports a computed score outside the tier band
	// before clamping would apply. The algorithm cannot produce one; the
	// check is defensive and fatal to the operation.
	ErrScoreOutOfBounds = errors.New("computed score outside tier bounds")
)

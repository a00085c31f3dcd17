package engine

import "errors"

// ErrInvalidCount is returned by Query when n is negative. n == 0 is
// valid and returns an empty result slice.
var ErrInvalidCount = errors.New("engine: n must be non-negative")

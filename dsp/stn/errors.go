package stn

import "errors"

var (
	// ErrInvalidWindowSize is returned for window sizes that are not a power
	// of two in [MinWindowSize, MaxWindowSize].
	ErrInvalidWindowSize = errors.New("stn: invalid window size")
	// ErrInvalidOverlap is returned when the overlap does not divide the
	// window into at least two hops.
	ErrInvalidOverlap = errors.New("stn: invalid overlap")
	// ErrInvalidThresholds is returned unless 0 <= G2 < G1 <= 1.
	ErrInvalidThresholds = errors.New("stn: invalid thresholds")
	// ErrBlockLength is returned when Process buffers disagree in length or
	// exceed the prepared block size.
	ErrBlockLength = errors.New("stn: invalid block length")
)

package noise

import "errors"

var (
	// ErrInvalidRatio is returned for pitch ratios outside [MinRatio, max ratio].
	ErrInvalidRatio = errors.New("noise: invalid pitch ratio")
	// ErrInvalidGeometry is returned for unusable FFT size, overlap or max
	// ratio settings.
	ErrInvalidGeometry = errors.New("noise: invalid geometry")
	// ErrZeroWindowEnergy is returned when the analysis window sums to zero
	// energy.
	ErrZeroWindowEnergy = errors.New("noise: window has zero energy")
	// ErrBlockLength is returned when Process buffers disagree in length or
	// exceed the prepared block size.
	ErrBlockLength = errors.New("noise: invalid block length")
)

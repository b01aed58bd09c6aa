package pitch

import "errors"

var (
	// ErrInvalidRatio is returned for transpose ratios outside
	// [MinRatio, MaxRatio].
	ErrInvalidRatio = errors.New("pitch: invalid transpose ratio")
	// ErrInvalidSize is returned for unsupported frame sizes.
	ErrInvalidSize = errors.New("pitch: invalid frame size")
	// ErrBlockLength is returned when Process buffers disagree in length.
	ErrBlockLength = errors.New("pitch: invalid block length")
)

const (
	// MinRatio is the lowest supported transpose ratio (two octaves down).
	MinRatio = 0.25
	// MaxRatio is the highest supported transpose ratio (two octaves up).
	MaxRatio = 4.0
)

// Shifter transposes a mono stream sample by sample with a fixed delay.
type Shifter interface {
	// SetTransposeRatio sets the frequency ratio applied from the next
	// analysis frame on.
	SetTransposeRatio(ratio float64) error
	// Process transposes in into out; both must have the same length.
	Process(in, out []float64) error
	// Latency is the fixed delay of the output in samples.
	Latency() int
	Reset()
}

var _ Shifter = (*Spectral)(nil)

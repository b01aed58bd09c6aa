package median

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSize is returned for non-positive filter or frame sizes.
var ErrInvalidSize = errors.New("median: invalid size")

// Orientation selects the axis a filter smooths along.
type Orientation int

const (
	// Horizontal filters each bin across the last Size frames.
	Horizontal Orientation = iota
	// Vertical filters each bin across Size neighbouring bins of one frame.
	Vertical
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Filter smooths magnitude frames of Bins values with a median of Size
// values.
type Filter interface {
	// Process writes the smoothed version of frame into dst. Both must
	// hold Bins values.
	Process(dst, frame []float64)
	// Resize reallocates for a new filter size and frame length and clears
	// all state. Not real-time safe.
	Resize(size, bins int) error
	Size() int
	Bins() int
	Reset()
}

// New returns a filter of the given orientation.
func New(o Orientation, size, bins int) (Filter, error) {
	switch o {
	case Horizontal:
		return NewHorizontal(size, bins)
	case Vertical:
		return NewVertical(size, bins)
	default:
		return nil, fmt.Errorf("median: unknown orientation %d", int(o))
	}
}

func validateSizes(size, bins int) error {
	if size <= 0 {
		return fmt.Errorf("%w: filter size must be > 0: %d", ErrInvalidSize, size)
	}

	if bins <= 0 {
		return fmt.Errorf("%w: frame length must be > 0: %d", ErrInvalidSize, bins)
	}

	return nil
}

// HorizontalSize converts a filter length in seconds into a frame count for
// frames spaced hop samples apart. The result is odd and at least 1.
func HorizontalSize(seconds, sampleRate float64, hop int) int {
	if hop <= 0 || sampleRate <= 0 {
		return 1
	}

	return oddAtLeastOne(seconds * sampleRate / float64(hop))
}

// VerticalSize converts a filter length in hertz into a bin count for an
// FFT of fftSize points. The result is odd and at least 1.
func VerticalSize(hertz, sampleRate float64, fftSize int) int {
	if fftSize <= 0 || sampleRate <= 0 {
		return 1
	}

	return oddAtLeastOne(hertz * float64(fftSize) / sampleRate)
}

func oddAtLeastOne(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}

	if n%2 == 0 {
		n++
	}

	return n
}

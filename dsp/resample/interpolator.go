package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
)

var (
	// ErrInvalidRatio indicates a non-positive or non-finite read rate.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidTaps indicates an unsupported kernel half-length.
	ErrInvalidTaps = errors.New("resample: invalid half taps")
)

const (
	minHalfTaps = 2
	maxHalfTaps = 128

	// DefaultHalfTaps is the kernel half-length used when none is given.
	DefaultHalfTaps = 16
	// DefaultKaiserBeta gives roughly 80 dB stopband attenuation.
	DefaultKaiserBeta = 8.0
)

type config struct {
	kaiserBeta float64
}

// Option configures the interpolator.
type Option func(*config)

// WithKaiserBeta overrides the Kaiser window shape parameter.
func WithKaiserBeta(beta float64) Option {
	return func(cfg *config) {
		if beta >= 0 {
			cfg.kaiserBeta = beta
		}
	}
}

// Interpolator reads a stream at a variable fractional rate using a
// Kaiser-windowed sinc kernel of 2*halfTaps taps.
//
// Each output sample first pulls whole input samples while the read
// position is at or past the next input, then evaluates the kernel at the
// remaining fraction and advances the position by ratio.
type Interpolator struct {
	halfTaps int

	// history holds the last 2*halfTaps inputs twice so the window
	// history[write:write+2*halfTaps] is always contiguous.
	history []float64
	write   int

	pos    float64
	taps   []float64
	kaiser []float64
}

// NewInterpolator returns an interpolator with the given kernel half-length.
func NewInterpolator(halfTaps int, opts ...Option) (*Interpolator, error) {
	if halfTaps < minHalfTaps || halfTaps > maxHalfTaps {
		return nil, fmt.Errorf("%w: must be in [%d,%d]: %d", ErrInvalidTaps, minHalfTaps, maxHalfTaps, halfTaps)
	}

	cfg := config{kaiserBeta: DefaultKaiserBeta}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	length := 2 * halfTaps
	s := &Interpolator{
		halfTaps: halfTaps,
		history:  make([]float64, 2*length),
		taps:     make([]float64, length),
		kaiser:   kaiserTable(cfg.kaiserBeta),
	}
	s.Reset()

	return s, nil
}

// Latency returns the delay, in input samples, of the kernel center.
func (s *Interpolator) Latency() int {
	return s.halfTaps
}

// Reset clears history and rewinds the read position.
func (s *Interpolator) Reset() {
	clear(s.history)
	s.write = 0
	s.pos = 1
}

// Process fills out by reading in at ratio input samples per output sample
// and returns the number of input samples consumed. Input needed beyond
// len(in) is read as silence and still counted.
func (s *Interpolator) Process(ratio float64, in, out []float64) (int, error) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}

	cutoff := math.Min(1, 1/ratio)
	length := 2 * s.halfTaps
	consumed := 0

	for i := range out {
		for s.pos >= 1 {
			x := 0.0
			if consumed < len(in) {
				x = in[consumed]
			}

			s.push(x)
			consumed++
			s.pos--
		}

		s.design(s.pos, cutoff)
		out[i] = f64.DotProductUnsafe(s.taps, s.history[s.write:s.write+length])
		s.pos += ratio
	}

	return consumed, nil
}

func (s *Interpolator) push(x float64) {
	length := 2 * s.halfTaps
	s.history[s.write] = x
	s.history[s.write+length] = x

	s.write++
	if s.write == length {
		s.write = 0
	}
}

// design fills the taps for fractional offset frac past the kernel center.
// Tap j weights the input pushed 2*halfTaps-1-j pulls ago.
func (s *Interpolator) design(frac, cutoff float64) {
	h := float64(s.halfTaps)
	center := h - 1 + frac

	for j := range s.taps {
		x := float64(j) - center
		s.taps[j] = cutoff * sinc(cutoff*x) * kaiserAt(s.kaiser, x/h)
	}

	sum := f64.Sum(s.taps)
	if sum != 0 && sum != 1 {
		f64.Scale(s.taps, s.taps, 1/sum)
	}
}

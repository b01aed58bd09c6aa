// Package pcm converts between float64 audio in [-1, 1] and integer PCM
// samples, with optional TPDF dither on the way down.
package pcm

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// ErrBitDepth is returned for unsupported PCM bit depths.
var ErrBitDepth = errors.New("pcm: unsupported bit depth")

type config struct {
	dither    bool
	amplitude float64
	seed      int64
	limit     bool
}

// Option configures a Quantizer.
type Option func(*config)

// WithDither enables or disables TPDF dither.
func WithDither(enabled bool) Option {
	return func(c *config) { c.dither = enabled }
}

// WithDitherAmplitude sets the dither peak in LSB.
func WithDitherAmplitude(lsb float64) Option {
	return func(c *config) {
		if lsb >= 0 {
			c.amplitude = lsb
		}
	}
}

// WithSeed seeds the dither generator.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// WithLimit enables or disables clipping to the integer range.
func WithLimit(enabled bool) Option {
	return func(c *config) { c.limit = enabled }
}

// Quantizer reduces float64 blocks to integer PCM.
type Quantizer struct {
	bits    int
	dither  bool
	amp     float64
	limit   bool
	state   *vecmath.DitherState
	bitMul  float64
	limitLo int
	limitHi int
	scratch []float64
}

// NewQuantizer returns a quantizer for 16, 24 or 32 bit PCM. Dither and
// limiting are on by default.
func NewQuantizer(bits int, opts ...Option) (*Quantizer, error) {
	if err := CheckBitDepth(bits); err != nil {
		return nil, err
	}

	c := config{dither: true, amplitude: 1, limit: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	bitMul := scale(bits)

	return &Quantizer{
		bits:    bits,
		dither:  c.dither && c.amplitude > 0,
		amp:     c.amplitude,
		limit:   c.limit,
		state:   vecmath.NewDitherState(c.seed),
		bitMul:  bitMul,
		limitLo: -int(math.Round(bitMul + 0.5)),
		limitHi: int(math.Round(bitMul - 0.5)),
	}, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bits }

// Quantize writes the integer PCM value of every src sample into dst.
func (q *Quantizer) Quantize(dst []int, src []float64) {
	q.scratch = core.EnsureLen(q.scratch, len(src))
	scaled := q.scratch
	vecmath.ScaleBlock(scaled, src, q.bitMul)

	if q.dither {
		vecmath.AddDitherTPDF(scaled, q.amp, q.state)
	}

	for i, v := range scaled {
		r := int(math.Floor(v))
		if q.limit {
			r = max(q.limitLo, min(q.limitHi, r))
		}

		dst[i] = r
	}
}

// ToFloat converts integer PCM at bits depth back to float64 in [-1, 1].
func ToFloat(dst []float64, src []int, bits int) error {
	if err := CheckBitDepth(bits); err != nil {
		return err
	}

	div := 1 / scale(bits)
	for i, v := range src {
		dst[i] = (float64(v) + 0.5) * div
	}

	return nil
}

func scale(bits int) float64 {
	return math.Exp2(float64(bits-1)) - 0.5
}

// CheckBitDepth reports ErrBitDepth unless bits is 16, 24 or 32.
func CheckBitDepth(bits int) error {
	switch bits {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrBitDepth, bits)
	}
}

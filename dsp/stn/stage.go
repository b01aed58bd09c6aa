package stn

import (
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-stn/dsp/buffer"
	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/spectrum"
	"github.com/cwbudde/algo-stn/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// MinWindowSize and MaxWindowSize bound the STFT sizes of a Stage.
	MinWindowSize = 128
	MaxWindowSize = 16384
	// DefaultOverlap is the number of analysis frames covering each sample.
	DefaultOverlap = 8
)

// Masker computes the primary mask of one analysis frame. mag holds the
// Bins magnitudes of the windowed frame; dst receives one weight in [0, 1]
// per bin. Implementations must not allocate.
type Masker interface {
	Mask(dst, mag []float64)
}

// Stage is a streaming STFT that splits its input into a masked (primary)
// and a complementary (secondary) signal. Both outputs are delayed by
// Size() samples and always sum to the delayed input.
type Stage struct {
	size int
	hop  int
	bins int
	gain float64

	plan   *algofft.Plan[complex128]
	win    []float64
	masker Masker

	input     *buffer.Ring
	primary   *buffer.Ring
	secondary *buffer.Ring

	frame    []float64
	spectrum []complex128
	work     []complex128
	mag      []float64
	mask     []float64
	scratch  *spectrum.Scratch

	outPos int
	count  int
}

// ValidateGeometry checks a window size and overlap pair.
func ValidateGeometry(size, overlap int) error {
	if size < MinWindowSize || size > MaxWindowSize || !core.IsPowerOfTwo(size) {
		return fmt.Errorf("%w: must be a power of two in [%d,%d]: %d",
			ErrInvalidWindowSize, MinWindowSize, MaxWindowSize, size)
	}

	if overlap < 2 || size%overlap != 0 {
		return fmt.Errorf("%w: must be >= 2 and divide %d: %d", ErrInvalidOverlap, size, overlap)
	}

	return nil
}

// NewStage returns a stage with a periodic Hann window of size samples and
// hop size/overlap. A nil masker routes everything to the primary output.
func NewStage(size, overlap int, masker Masker) (*Stage, error) {
	if err := ValidateGeometry(size, overlap); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("stn: failed to create FFT plan: %w", err)
	}

	hop := size / overlap
	win := window.Generate(window.TypeHann, size, window.WithPeriodic())

	gain, err := window.OverlapAddGain(win, hop)
	if err != nil {
		return nil, fmt.Errorf("stn: %w", err)
	}

	bins := spectrum.Bins(size)
	s := &Stage{
		size:     size,
		hop:      hop,
		bins:     bins,
		gain:     gain,
		plan:     plan,
		win:      win,
		masker:   masker,
		frame:    make([]float64, size),
		spectrum: make([]complex128, size),
		work:     make([]complex128, size),
		mag:      make([]float64, bins),
		mask:     make([]float64, bins),
		scratch:  spectrum.NewScratch(bins),
	}

	if s.input, err = buffer.NewRing(size); err != nil {
		return nil, err
	}

	if s.primary, err = buffer.NewRing(size); err != nil {
		return nil, err
	}

	if s.secondary, err = buffer.NewRing(size); err != nil {
		return nil, err
	}

	return s, nil
}

// Size returns the FFT size.
func (s *Stage) Size() int { return s.size }

// Hop returns the analysis hop in samples.
func (s *Stage) Hop() int { return s.hop }

// Bins returns the number of mask bins (Size/2+1).
func (s *Stage) Bins() int { return s.bins }

// Gain returns the overlap-add normalization applied at synthesis.
func (s *Stage) Gain() float64 { return s.gain }

// Latency returns the stage delay in samples.
func (s *Stage) Latency() int { return s.size }

// Tick consumes one input sample and returns one primary and one secondary
// output sample.
func (s *Stage) Tick(x float64) (primary, secondary float64, err error) {
	s.input.Push(x)

	primary = s.primary.TakeAt(s.outPos)
	secondary = s.secondary.TakeAt(s.outPos)
	s.outPos++

	s.count++
	if s.count == s.hop {
		s.count = 0
		err = s.analyze()
	}

	return primary, secondary, err
}

// Process runs a block through the stage. primary and secondary must be at
// least as long as in.
func (s *Stage) Process(in, primary, secondary []float64) error {
	for i, x := range in {
		p, q, err := s.Tick(x)
		if err != nil {
			return err
		}

		primary[i] = p
		secondary[i] = q
	}

	return nil
}

// Reset clears all buffered audio.
func (s *Stage) Reset() {
	s.input.Reset()
	s.primary.Reset()
	s.secondary.Reset()
	s.outPos = 0
	s.count = 0
}

// analyze transforms the newest frame and overlap-adds both resynthesized
// halves so that they are read out exactly size samples later.
func (s *Stage) analyze() error {
	s.input.ReadLatest(s.frame)
	vecmath.MulBlockInPlace(s.frame, s.win)

	for i, v := range s.frame {
		s.spectrum[i] = complex(v, 0)
	}

	if err := s.plan.Forward(s.spectrum, s.spectrum); err != nil {
		return fmt.Errorf("stn: forward FFT failed: %w", err)
	}

	if s.masker == nil {
		for i := range s.mask {
			s.mask[i] = 1
		}
	} else {
		s.scratch.Magnitude(s.mag, s.spectrum)
		s.masker.Mask(s.mask, s.mag)
	}

	spectrum.ApplyMask(s.work, s.spectrum, s.mask)
	if err := s.synthesize(s.primary); err != nil {
		return err
	}

	spectrum.ApplyComplement(s.work, s.spectrum, s.mask)

	return s.synthesize(s.secondary)
}

func (s *Stage) synthesize(out *buffer.Ring) error {
	if err := s.plan.Inverse(s.work, s.work); err != nil {
		return fmt.Errorf("stn: inverse FFT failed: %w", err)
	}

	for i, c := range s.work {
		s.frame[i] = real(c)
	}

	vecmath.MulBlockInPlace(s.frame, s.win)
	vecmath.ScaleBlockInPlace(s.frame, s.gain)
	out.OverlapAddAt(s.outPos, s.frame)

	return nil
}

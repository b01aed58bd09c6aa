package pitch

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-stn/dsp/buffer"
	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/spectrum"
	"github.com/cwbudde/algo-stn/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// DefaultSize is the frame length used by the pipeline.
	DefaultSize = 2048
	// Overlap is the number of frames covering each sample.
	Overlap = 4

	minSize = 64
)

// Spectral is a streaming bin-shift phase vocoder.
//
// Each hop it measures magnitude and instantaneous frequency per bin,
// resamples both along the frequency axis by 1/ratio, scales the
// frequencies by ratio and integrates them into the synthesis phase. At
// ratio 1 the synthesis phase tracks the analysis phase, so the output
// equals the input delayed by Latency().
type Spectral struct {
	size  int
	hop   int
	half  int
	gain  float64
	ratio float64

	plan *algofft.Plan[complex128]
	win  []float64

	input  *buffer.Ring
	output *buffer.Ring

	frame     []float64
	spectrum  []complex128
	omega     []float64
	prevPhase []float64
	sumPhase  []float64

	magnitudes  []float64
	instFreqs   []float64
	shiftedMag  []float64
	shiftedFreq []float64
	scratch     *spectrum.Scratch

	outPos int
	count  int
}

// NewSpectral returns a shifter with a Hann window of size samples.
func NewSpectral(size int) (*Spectral, error) {
	if size < minSize || !core.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("%w: must be a power of two >= %d: %d", ErrInvalidSize, minSize, size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("pitch: failed to create FFT plan: %w", err)
	}

	hop := size / Overlap
	win := window.Generate(window.TypeHann, size, window.WithPeriodic())

	gain, err := window.OverlapAddGain(win, hop)
	if err != nil {
		return nil, fmt.Errorf("pitch: %w", err)
	}

	half := size / 2
	bins := half + 1
	s := &Spectral{
		size:        size,
		hop:         hop,
		half:        half,
		gain:        gain,
		ratio:       1,
		plan:        plan,
		win:         win,
		frame:       make([]float64, size),
		spectrum:    make([]complex128, size),
		omega:       make([]float64, bins),
		prevPhase:   make([]float64, bins),
		sumPhase:    make([]float64, bins),
		magnitudes:  make([]float64, bins),
		instFreqs:   make([]float64, bins),
		shiftedMag:  make([]float64, bins),
		shiftedFreq: make([]float64, bins),
		scratch:     spectrum.NewScratch(bins),
	}

	for k := range s.omega {
		s.omega[k] = 2 * math.Pi * float64(k) / float64(size)
	}

	if s.input, err = buffer.NewRing(size); err != nil {
		return nil, err
	}

	if s.output, err = buffer.NewRing(size); err != nil {
		return nil, err
	}

	return s, nil
}

// Size returns the frame length.
func (s *Spectral) Size() int { return s.size }

// Ratio returns the active transpose ratio.
func (s *Spectral) Ratio() float64 { return s.ratio }

// Latency returns the frame length.
func (s *Spectral) Latency() int { return s.size }

// SetTransposeRatio sets the frequency ratio in [MinRatio, MaxRatio].
func (s *Spectral) SetTransposeRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio < MinRatio || ratio > MaxRatio {
		return fmt.Errorf("%w: must be in [%v,%v]: %v", ErrInvalidRatio, MinRatio, MaxRatio, ratio)
	}

	s.ratio = ratio

	return nil
}

// Reset clears audio and phase state.
func (s *Spectral) Reset() {
	s.input.Reset()
	s.output.Reset()
	clear(s.prevPhase)
	clear(s.sumPhase)
	s.outPos = 0
	s.count = 0
}

// Process transposes in into out. out may alias in.
func (s *Spectral) Process(in, out []float64) error {
	if len(in) != len(out) {
		return fmt.Errorf("%w: in=%d out=%d", ErrBlockLength, len(in), len(out))
	}

	for i, x := range in {
		s.input.Push(x)

		out[i] = s.output.TakeAt(s.outPos)
		s.outPos++

		s.count++
		if s.count == s.hop {
			s.count = 0

			if err := s.analyze(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Spectral) analyze() error {
	s.input.ReadLatest(s.frame)
	vecmath.MulBlockInPlace(s.frame, s.win)

	for i, v := range s.frame {
		s.spectrum[i] = complex(v, 0)
	}

	if err := s.plan.Forward(s.spectrum, s.spectrum); err != nil {
		return fmt.Errorf("pitch: forward FFT failed: %w", err)
	}

	hopF := float64(s.hop)
	s.scratch.Magnitude(s.magnitudes, s.spectrum)

	for k := 0; k <= s.half; k++ {
		phase := math.Atan2(imag(s.spectrum[k]), real(s.spectrum[k]))
		delta := wrapPhase(phase - s.prevPhase[k] - s.omega[k]*hopF)

		s.instFreqs[k] = s.omega[k] + delta/hopF
		s.prevPhase[k] = phase
	}

	s.shiftBins()

	for k := 0; k <= s.half; k++ {
		s.sumPhase[k] = wrapPhase(s.sumPhase[k] + s.shiftedFreq[k]*hopF)
		sin, cos := math.Sincos(s.sumPhase[k])
		s.spectrum[k] = complex(s.shiftedMag[k]*cos, s.shiftedMag[k]*sin)
	}

	// Mirror for a real-valued inverse.
	s.spectrum[0] = complex(real(s.spectrum[0]), 0)
	s.spectrum[s.half] = complex(real(s.spectrum[s.half]), 0)

	for k := 1; k < s.half; k++ {
		v := s.spectrum[k]
		s.spectrum[s.size-k] = complex(real(v), -imag(v))
	}

	if err := s.plan.Inverse(s.spectrum, s.spectrum); err != nil {
		return fmt.Errorf("pitch: inverse FFT failed: %w", err)
	}

	for i, c := range s.spectrum {
		s.frame[i] = real(c)
	}

	vecmath.MulBlockInPlace(s.frame, s.win)
	vecmath.ScaleBlockInPlace(s.frame, s.gain)
	s.output.OverlapAddAt(s.outPos, s.frame)

	return nil
}

// shiftBins resamples magnitudes and instantaneous frequencies along the
// frequency axis with linear interpolation.
func (s *Spectral) shiftBins() {
	ratio := s.ratio
	halfF := float64(s.half)

	for k := 0; k <= s.half; k++ {
		src := float64(k) / ratio
		if src > halfF {
			s.shiftedMag[k] = 0
			s.shiftedFreq[k] = s.omega[k]

			continue
		}

		lo := int(src)
		frac := src - float64(lo)
		hi := min(lo+1, s.half)
		s.shiftedMag[k] = s.magnitudes[lo]*(1-frac) + s.magnitudes[hi]*frac
		s.shiftedFreq[k] = (s.instFreqs[lo]*(1-frac) + s.instFreqs[hi]*frac) * ratio
	}
}

func wrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	return x - math.Pi
}

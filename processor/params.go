package processor

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/stn"
)

// Parameter ranges.
const (
	MinThreshold = 0.0 // exclusive
	MaxThreshold = 0.9
	MinSemitones = -12.0
	MaxSemitones = 24.0

	DefaultSineThreshold      = 0.7
	DefaultTransientThreshold = 0.75
)

// Params holds the host-facing parameters. Every field is an atomic so the
// audio goroutine can read them while another goroutine writes.
type Params struct {
	coarseSize atomic.Int64
	fineSize   atomic.Int64

	sineThreshold      atomic.Uint64
	transientThreshold atomic.Uint64
	semitones          atomic.Uint64
}

// Snapshot is a consistent-enough copy of Params taken at block start.
type Snapshot struct {
	CoarseSize         int
	FineSize           int
	SineThreshold      float64
	TransientThreshold float64
	Semitones          float64
}

// NewParams returns parameters at their defaults.
func NewParams() *Params {
	p := &Params{}
	p.coarseSize.Store(stn.DefaultCoarseSize)
	p.fineSize.Store(stn.DefaultFineSize)
	storeFloat(&p.sineThreshold, DefaultSineThreshold)
	storeFloat(&p.transientThreshold, DefaultTransientThreshold)
	storeFloat(&p.semitones, 0)

	return p
}

// CoarseSize returns the window size of the sines stage.
func (p *Params) CoarseSize() int { return int(p.coarseSize.Load()) }

// FineSize returns the window size of the transients/noise stage.
func (p *Params) FineSize() int { return int(p.fineSize.Load()) }

// SineThreshold returns the lower sine threshold G2.
func (p *Params) SineThreshold() float64 { return loadFloat(&p.sineThreshold) }

// TransientThreshold returns the lower transient threshold G2.
func (p *Params) TransientThreshold() float64 { return loadFloat(&p.transientThreshold) }

// Semitones returns the transposition in semitones.
func (p *Params) Semitones() float64 { return loadFloat(&p.semitones) }

// Ratio returns the pitch ratio 2^(semitones/12).
func (p *Params) Ratio() float64 { return core.SemitonesToRatio(p.Semitones()) }

// SetCoarseSize sets the sines window size. A new size needs Prepare.
func (p *Params) SetCoarseSize(size int) error {
	if err := checkWindowSize(size); err != nil {
		return err
	}

	p.coarseSize.Store(int64(size))

	return nil
}

// SetFineSize sets the transients/noise window size. A new size needs
// Prepare.
func (p *Params) SetFineSize(size int) error {
	if err := checkWindowSize(size); err != nil {
		return err
	}

	p.fineSize.Store(int64(size))

	return nil
}

// SetSineThreshold sets the lower sine threshold in (0, 0.9].
func (p *Params) SetSineThreshold(value float64) error {
	if err := checkThreshold(value); err != nil {
		return err
	}

	storeFloat(&p.sineThreshold, value)

	return nil
}

// SetTransientThreshold sets the lower transient threshold in (0, 0.9].
func (p *Params) SetTransientThreshold(value float64) error {
	if err := checkThreshold(value); err != nil {
		return err
	}

	storeFloat(&p.transientThreshold, value)

	return nil
}

// SetSemitones sets the transposition in [-12, 24] semitones.
func (p *Params) SetSemitones(value float64) error {
	if math.IsNaN(value) || value < MinSemitones || value > MaxSemitones {
		return fmt.Errorf("%w: semitones must be in [%v,%v]: %v", ErrParamRange, MinSemitones, MaxSemitones, value)
	}

	storeFloat(&p.semitones, value)

	return nil
}

// Snapshot loads every parameter once.
func (p *Params) Snapshot() Snapshot {
	return Snapshot{
		CoarseSize:         p.CoarseSize(),
		FineSize:           p.FineSize(),
		SineThreshold:      p.SineThreshold(),
		TransientThreshold: p.TransientThreshold(),
		Semitones:          p.Semitones(),
	}
}

func checkWindowSize(size int) error {
	if size < stn.MinWindowSize || size > stn.MaxWindowSize || !core.IsPowerOfTwo(size) {
		return fmt.Errorf("%w: window size must be a power of two in [%d,%d]: %d",
			ErrParamRange, stn.MinWindowSize, stn.MaxWindowSize, size)
	}

	return nil
}

func checkThreshold(value float64) error {
	if math.IsNaN(value) || value <= MinThreshold || value > MaxThreshold {
		return fmt.Errorf("%w: threshold must be in (%v,%v]: %v", ErrParamRange, MinThreshold, MaxThreshold, value)
	}

	return nil
}

func storeFloat(dst *atomic.Uint64, v float64) {
	dst.Store(math.Float64bits(v))
}

func loadFloat(src *atomic.Uint64) float64 {
	return math.Float64frombits(src.Load())
}

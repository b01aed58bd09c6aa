package noise

import (
	"fmt"
	"math"
	"math/rand/v2"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-stn/dsp/buffer"
	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/interp"
	"github.com/cwbudde/algo-stn/dsp/resample"
	"github.com/cwbudde/algo-stn/dsp/spectrum"
	"github.com/cwbudde/algo-stn/dsp/window"
	"github.com/cwbudde/algo-stn/internal/logging"
	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultFFTSize is the analysis and synthesis frame length.
	DefaultFFTSize = 1024
	// DefaultOverlap is the number of analysis frames covering each sample.
	DefaultOverlap = 4
	// DefaultMaxRatio is the highest pitch ratio accepted by SetRatio.
	DefaultMaxRatio = 4
	// MinRatio is the lowest pitch ratio accepted by SetRatio.
	MinRatio = 0.5

	// logFloor keeps 10*log10 of silent bins finite.
	logFloor = 1e-12
	// identityTolerance is the distance from 1 below which a ratio is
	// treated as unity.
	identityTolerance = 1e-6
	// lead is the number of stretched samples the writer stays ahead of the
	// interpolator.
	lead = 2
)

type config struct {
	fftSize  int
	overlap  int
	maxRatio int
	halfTaps int
	src      rand.Source
	logger   logrus.FieldLogger
}

// Option configures a Morpher.
type Option func(*config)

// WithFFTSize sets the frame length. It must be a power of two >= 64.
func WithFFTSize(size int) Option {
	return func(c *config) { c.fftSize = size }
}

// WithOverlap sets the number of frames overlapping each sample.
func WithOverlap(overlap int) Option {
	return func(c *config) { c.overlap = overlap }
}

// WithMaxRatio sets the largest supported pitch ratio. The stretched buffer
// holds FFTSize*maxRatio samples.
func WithMaxRatio(maxRatio int) Option {
	return func(c *config) { c.maxRatio = maxRatio }
}

// WithHalfTaps sets the interpolator kernel half-length.
func WithHalfTaps(halfTaps int) Option {
	return func(c *config) { c.halfTaps = halfTaps }
}

// WithSeed seeds the noise source deterministically.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.src = NewSource(seed) }
}

// WithSource injects the noise source.
func WithSource(src rand.Source) Option {
	return func(c *config) { c.src = src }
}

// WithLogger injects a logger for construction diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) { c.logger = l }
}

// Morpher transposes the noise floor of a stream by a pitch ratio.
//
// Every hop it measures the log-magnitude envelope of the newest input
// frame and synthesizes ceil(ratio) noise frames whose envelopes are
// interpolated between the previous and the current measurement. The
// frames are overlap-added into a stretched stream advanced by
// hop*ratio samples per hop, and the interpolator reads that stream back at
// ratio, yielding exactly hop output samples.
type Morpher struct {
	cfg      core.ProcessorConfig
	size     int
	hop      int
	bins     int
	maxRatio float64
	ratio    float64

	plan    *algofft.Plan[complex128]
	win     []float64
	energy  float64
	norm    float64
	scratch *spectrum.Scratch
	gen     *Generator
	interp  *resample.Interpolator

	input     *buffer.Ring
	noise     *buffer.Ring
	stretched *buffer.Ring

	frame    []float64
	spectrum []complex128
	work     []complex128
	mag      []float64
	prevLog  []float64
	curLog   []float64
	envLog   []float64
	envelope []float64
	noiseBuf []float64
	fresh    []float64
	unwound  []float64

	pending  []float64
	pendPos  int
	count    int
	writePos int
	readPos  int
	frac     float64
}

// NewMorpher builds a morpher for cfg. All buffers are allocated here.
func NewMorpher(cfg core.ProcessorConfig, opts ...Option) (*Morpher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := config{
		fftSize:  DefaultFFTSize,
		overlap:  DefaultOverlap,
		maxRatio: DefaultMaxRatio,
		halfTaps: resample.DefaultHalfTaps,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	if c.fftSize < 64 || !core.IsPowerOfTwo(c.fftSize) {
		return nil, fmt.Errorf("%w: fft size must be a power of two >= 64: %d", ErrInvalidGeometry, c.fftSize)
	}

	if c.overlap < 2 || c.fftSize%c.overlap != 0 {
		return nil, fmt.Errorf("%w: overlap must be >= 2 and divide %d: %d", ErrInvalidGeometry, c.fftSize, c.overlap)
	}

	if c.maxRatio < 1 {
		return nil, fmt.Errorf("%w: max ratio must be >= 1: %d", ErrInvalidGeometry, c.maxRatio)
	}

	// The stretched ring must hold a full synthesis frame past everything
	// written but not yet read.
	if capacity, span := c.fftSize*c.maxRatio, stretchedSpan(c); capacity < span {
		return nil, fmt.Errorf("%w: stretched buffer of %d samples cannot hold %d at max ratio %d",
			ErrInvalidGeometry, capacity, span, c.maxRatio)
	}

	win := window.Generate(window.TypeHann, c.fftSize, window.WithPeriodic())

	return newMorpher(cfg, c, win)
}

func stretchedSpan(c config) int {
	return c.fftSize + (c.fftSize/c.overlap)*c.maxRatio + lead
}

func newMorpher(cfg core.ProcessorConfig, c config, win []float64) (*Morpher, error) {
	energy := window.Energy(win)
	if energy <= 0 {
		return nil, ErrZeroWindowEnergy
	}

	plan, err := algofft.NewPlan64(c.fftSize)
	if err != nil {
		return nil, fmt.Errorf("noise: failed to create FFT plan: %w", err)
	}

	ip, err := resample.NewInterpolator(c.halfTaps)
	if err != nil {
		return nil, err
	}

	size := c.fftSize
	bins := spectrum.Bins(size)
	m := &Morpher{
		cfg:      cfg,
		size:     size,
		hop:      size / c.overlap,
		bins:     bins,
		maxRatio: float64(c.maxRatio),
		ratio:    1,
		plan:     plan,
		win:      win,
		energy:   energy,
		norm:     1 / math.Sqrt(energy),
		scratch:  spectrum.NewScratch(bins),
		gen:      NewGenerator(c.src),
		interp:   ip,
		frame:    make([]float64, size),
		spectrum: make([]complex128, size),
		work:     make([]complex128, size),
		mag:      make([]float64, bins),
		prevLog:  make([]float64, bins),
		curLog:   make([]float64, bins),
		envLog:   make([]float64, bins),
		envelope: make([]float64, bins),
		noiseBuf: make([]float64, size),
		fresh:    make([]float64, size/c.overlap),
		unwound:  make([]float64, size*c.maxRatio),
		pending:  make([]float64, size/c.overlap),
	}

	if m.input, err = buffer.NewRing(size); err != nil {
		return nil, err
	}

	if m.noise, err = buffer.NewRing(size); err != nil {
		return nil, err
	}

	if m.stretched, err = buffer.NewRing(size * c.maxRatio); err != nil {
		return nil, err
	}

	m.Reset()

	logging.OrDiscard(c.logger).WithFields(logrus.Fields{
		"fft_size":  size,
		"hop":       m.hop,
		"max_ratio": c.maxRatio,
		"half_taps": c.halfTaps,
		"latency":   m.Latency(),
	}).Debug("noise morpher ready")

	return m, nil
}

// Latency returns the delay of the morpher output in samples.
func (m *Morpher) Latency() int {
	return m.size + m.interp.Latency() + lead
}

// FFTSize returns the frame length.
func (m *Morpher) FFTSize() int { return m.size }

// Hop returns the analysis hop in samples.
func (m *Morpher) Hop() int { return m.hop }

// Ratio returns the active pitch ratio.
func (m *Morpher) Ratio() float64 { return m.ratio }

// SetRatio changes the pitch ratio. It takes effect at the next hop and
// does not allocate.
func (m *Morpher) SetRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio < MinRatio || ratio > m.maxRatio {
		return fmt.Errorf("%w: must be in [%v,%v]: %v", ErrInvalidRatio, MinRatio, m.maxRatio, ratio)
	}

	m.ratio = ratio

	return nil
}

// Reset clears all buffered audio and envelope history. The noise source
// is not rewound.
func (m *Morpher) Reset() {
	m.input.Reset()
	m.noise.Reset()
	m.stretched.Reset()
	m.interp.Reset()
	clear(m.pending)

	floor := core.LinearPowerToDBFloor(0, logFloor)
	for i := range m.prevLog {
		m.prevLog[i] = floor
	}

	m.pendPos = 0
	m.count = 0
	m.writePos = lead
	m.readPos = 0
	m.frac = 0
}

// Process morphs in into out. Both must have the same length, at most the
// configured max block size. out may alias in.
func (m *Morpher) Process(in, out []float64) error {
	if len(in) != len(out) {
		return fmt.Errorf("%w: in=%d out=%d", ErrBlockLength, len(in), len(out))
	}

	if err := m.cfg.CheckBlock(len(in)); err != nil {
		return fmt.Errorf("%w: %w", ErrBlockLength, err)
	}

	for i, x := range in {
		m.input.Push(x)

		out[i] = m.pending[m.pendPos]
		m.pendPos++

		m.count++
		if m.count == m.hop {
			m.count = 0
			m.pendPos = 0

			if err := m.analyze(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *Morpher) analyze() error {
	m.input.ReadLatest(m.frame)
	vecmath.MulBlockInPlace(m.frame, m.win)

	for i, v := range m.frame {
		m.spectrum[i] = complex(v, 0)
	}

	if err := m.plan.Forward(m.spectrum, m.spectrum); err != nil {
		return fmt.Errorf("noise: forward FFT failed: %w", err)
	}

	m.scratch.Magnitude(m.mag, m.spectrum)
	spectrum.LogMagnitude(m.curLog, m.mag, logFloor)

	ratio := m.ratio
	if core.NearlyEqual(ratio, 1, identityTolerance) {
		copy(m.work, m.spectrum)
		if err := m.synthesize(m.hop); err != nil {
			return err
		}
	} else if err := m.synthesizeNoise(ratio); err != nil {
		return err
	}

	m.prevLog, m.curLog = m.curLog, m.prevLog

	return m.drain(ratio)
}

// synthesizeNoise writes ceil(ratio) envelope-shaped noise frames.
func (m *Morpher) synthesizeNoise(ratio float64) error {
	frames := int(math.Ceil(ratio))
	step := float64(m.hop) * ratio / float64(frames)

	for k := 1; k <= frames; k++ {
		interp.LerpBlock(m.envLog, m.prevLog, m.curLog, float64(k)/float64(frames))
		spectrum.FromLogMagnitude(m.envelope, m.envLog)

		next := m.frac + step
		advance := int(math.Floor(next))
		m.frac = next - float64(advance)

		fresh := m.fresh[:advance]
		m.gen.Fill(fresh)
		m.noise.Write(fresh)

		m.noise.ReadLatest(m.noiseBuf)
		vecmath.MulBlockInPlace(m.noiseBuf, m.win)

		for i, v := range m.noiseBuf {
			m.work[i] = complex(v*m.norm, 0)
		}

		if err := m.plan.Forward(m.work, m.work); err != nil {
			return fmt.Errorf("noise: forward FFT failed: %w", err)
		}

		spectrum.ScaleBins(m.work, m.envelope)

		if err := m.synthesize(advance); err != nil {
			return err
		}
	}

	return nil
}

// synthesize inverse transforms m.work, applies the synthesis window and
// overlap-adds it at the write cursor, which then moves by advance.
func (m *Morpher) synthesize(advance int) error {
	if err := m.plan.Inverse(m.work, m.work); err != nil {
		return fmt.Errorf("noise: inverse FFT failed: %w", err)
	}

	for i, c := range m.work {
		m.frame[i] = real(c)
	}

	vecmath.MulBlockInPlace(m.frame, m.win)
	vecmath.ScaleBlockInPlace(m.frame, float64(advance)/m.energy)
	m.stretched.OverlapAddAt(m.writePos, m.frame)
	m.writePos += advance

	return nil
}

// drain reads one hop of output from the completed part of the stretched
// stream and clears what the interpolator consumed.
func (m *Morpher) drain(ratio float64) error {
	ready := m.unwound[:m.writePos-m.readPos]
	m.stretched.ReadWindowAt(ready, m.readPos)

	consumed, err := m.interp.Process(ratio, ready, m.pending)
	if err != nil {
		return err
	}

	consumed = min(consumed, len(ready))
	m.stretched.TakeWindowAt(ready[:consumed], m.readPos)
	m.readPos += consumed

	return nil
}

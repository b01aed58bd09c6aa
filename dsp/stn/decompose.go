package stn

import (
	"fmt"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/delay"
	"github.com/cwbudde/algo-stn/dsp/median"
	"github.com/cwbudde/algo-stn/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultCoarseSize is the window of the sines stage.
	DefaultCoarseSize = 2048
	// DefaultFineSize is the window of the transients/noise stage.
	DefaultFineSize = 512
	// DefaultFilterSeconds is the time span of the horizontal median.
	DefaultFilterSeconds = 0.05
	// DefaultFilterHertz is the frequency span of the vertical median.
	DefaultFilterHertz = 500.0
)

type config struct {
	coarseSize    int
	fineSize      int
	overlap       int
	sines         Thresholds
	transients    Thresholds
	filterSeconds float64
	filterHertz   float64
	mode          MaskMode
	logger        logrus.FieldLogger
}

// Option configures a Decomposer.
type Option func(*config)

// WithCoarseSize sets the window size of the sines stage.
func WithCoarseSize(size int) Option {
	return func(c *config) { c.coarseSize = size }
}

// WithFineSize sets the window size of the transients/noise stage.
func WithFineSize(size int) Option {
	return func(c *config) { c.fineSize = size }
}

// WithOverlap sets the overlap factor of both stages.
func WithOverlap(overlap int) Option {
	return func(c *config) { c.overlap = overlap }
}

// WithSineThresholds sets the thresholds of the coarse stage.
func WithSineThresholds(th Thresholds) Option {
	return func(c *config) { c.sines = th }
}

// WithTransientThresholds sets the thresholds of the fine stage.
func WithTransientThresholds(th Thresholds) Option {
	return func(c *config) { c.transients = th }
}

// WithFilterLengths sets the horizontal median span in seconds and the
// vertical median span in hertz.
func WithFilterLengths(seconds, hertz float64) Option {
	return func(c *config) {
		if seconds > 0 {
			c.filterSeconds = seconds
		}

		if hertz > 0 {
			c.filterHertz = hertz
		}
	}
}

// WithMaskMode forces fixed masks instead of adaptive classification.
func WithMaskMode(mode MaskMode) Option {
	return func(c *config) { c.mode = mode }
}

// WithLogger injects a logger for construction diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) { c.logger = l }
}

// StageLayout describes the geometry of one decomposer stage.
type StageLayout struct {
	Size           int
	Hop            int
	Bins           int
	HorizontalSize int
	VerticalSize   int
	Gain           float64
}

// Decomposer splits a mono stream into sines, transients and noise.
//
// The coarse stage separates S from the residual, the fine stage splits the
// residual into T and N. S is delayed by the fine window so all three
// outputs line up; their sum is the input delayed by Latency().
type Decomposer struct {
	cfg  core.ProcessorConfig
	mode MaskMode

	coarse     *Stage
	fine       *Stage
	coarseMask *classMasker
	fineMask   *classMasker
	sineDelay  *delay.Line

	coarseLayout StageLayout
	fineLayout   StageLayout
}

// NewDecomposer validates cfg and opts and allocates both stages.
func NewDecomposer(cfg core.ProcessorConfig, opts ...Option) (*Decomposer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := config{
		coarseSize:    DefaultCoarseSize,
		fineSize:      DefaultFineSize,
		overlap:       DefaultOverlap,
		sines:         DefaultSineThresholds,
		transients:    DefaultTransientThresholds,
		filterSeconds: DefaultFilterSeconds,
		filterHertz:   DefaultFilterHertz,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	if c.mode < MaskAdaptive || c.mode > MaskAllNoise {
		return nil, fmt.Errorf("stn: unknown mask mode %d", int(c.mode))
	}

	d := &Decomposer{cfg: cfg}

	var err error

	d.coarse, d.coarseMask, d.coarseLayout, err = newClassStage(cfg, c, c.coarseSize, c.sines, false)
	if err != nil {
		return nil, fmt.Errorf("coarse stage: %w", err)
	}

	d.fine, d.fineMask, d.fineLayout, err = newClassStage(cfg, c, c.fineSize, c.transients, true)
	if err != nil {
		return nil, fmt.Errorf("fine stage: %w", err)
	}

	if d.sineDelay, err = delay.NewLine(c.fineSize); err != nil {
		return nil, err
	}

	d.SetMaskMode(c.mode)

	logging.OrDiscard(c.logger).WithFields(logrus.Fields{
		"sample_rate": cfg.SampleRate,
		"coarse":      c.coarseSize,
		"fine":        c.fineSize,
		"overlap":     c.overlap,
		"coarse_h":    d.coarseLayout.HorizontalSize,
		"coarse_v":    d.coarseLayout.VerticalSize,
		"fine_h":      d.fineLayout.HorizontalSize,
		"fine_v":      d.fineLayout.VerticalSize,
		"mode":        c.mode,
		"latency":     d.Latency(),
	}).Debug("stn decomposer ready")

	return d, nil
}

func newClassStage(cfg core.ProcessorConfig, c config, size int, th Thresholds, transient bool) (*Stage, *classMasker, StageLayout, error) {
	if err := ValidateGeometry(size, c.overlap); err != nil {
		return nil, nil, StageLayout{}, err
	}

	hop := size / c.overlap
	layout := StageLayout{
		Size:           size,
		Hop:            hop,
		Bins:           size/2 + 1,
		HorizontalSize: median.HorizontalSize(c.filterSeconds, cfg.SampleRate, hop),
		VerticalSize:   median.VerticalSize(c.filterHertz, cfg.SampleRate, size),
	}

	masker, err := newClassMasker(th, layout.HorizontalSize, layout.VerticalSize, layout.Bins, transient)
	if err != nil {
		return nil, nil, StageLayout{}, err
	}

	stage, err := NewStage(size, c.overlap, masker)
	if err != nil {
		return nil, nil, StageLayout{}, err
	}

	layout.Gain = stage.Gain()

	return stage, masker, layout, nil
}

// Latency returns the delay of all three outputs in samples.
func (d *Decomposer) Latency() int {
	return d.coarse.Latency() + d.fine.Latency()
}

// Config returns the processing context the decomposer was built for.
func (d *Decomposer) Config() core.ProcessorConfig {
	return d.cfg
}

// Layout returns the geometry of the coarse and fine stages.
func (d *Decomposer) Layout() (coarse, fine StageLayout) {
	return d.coarseLayout, d.fineLayout
}

// Thresholds returns the active sine and transient thresholds.
func (d *Decomposer) Thresholds() (sines, transients Thresholds) {
	return d.coarseMask.classifier.Thresholds(), d.fineMask.classifier.Thresholds()
}

// SetThresholds replaces both threshold pairs. Nothing changes unless both
// are valid. It does not allocate.
func (d *Decomposer) SetThresholds(sines, transients Thresholds) error {
	if err := sines.Validate(); err != nil {
		return err
	}

	if err := transients.Validate(); err != nil {
		return err
	}

	d.coarseMask.classifier.th = sines
	d.fineMask.classifier.th = transients

	return nil
}

// MaskMode returns the active mask mode.
func (d *Decomposer) MaskMode() MaskMode {
	return d.mode
}

// SetMaskMode switches between adaptive and forced masks. Unknown modes are
// treated as adaptive.
func (d *Decomposer) SetMaskMode(mode MaskMode) {
	coarse, fine, forced := mode.stageWeights()
	if !forced {
		mode = MaskAdaptive
	}

	d.mode = mode
	d.coarseMask.force(coarse, forced)
	d.fineMask.force(fine, forced)
}

// Process decomposes in into s, t and n. All four slices must have the same
// length, at most the configured max block size. Outputs must not alias in.
func (d *Decomposer) Process(in, s, t, n []float64) error {
	if !core.SameLength(in, s, t, n) {
		return fmt.Errorf("%w: in=%d s=%d t=%d n=%d", ErrBlockLength, len(in), len(s), len(t), len(n))
	}

	if err := d.cfg.CheckBlock(len(in)); err != nil {
		return fmt.Errorf("%w: %w", ErrBlockLength, err)
	}

	for i, x := range in {
		sine, residual, err := d.coarse.Tick(x)
		if err != nil {
			return err
		}

		tr, ns, err := d.fine.Tick(residual)
		if err != nil {
			return err
		}

		s[i] = d.sineDelay.Tick(sine)
		t[i] = tr
		n[i] = ns
	}

	return nil
}

// Reset clears all audio and filter history.
func (d *Decomposer) Reset() {
	d.coarse.Reset()
	d.fine.Reset()
	d.coarseMask.reset()
	d.fineMask.reset()
	d.sineDelay.Reset()
}

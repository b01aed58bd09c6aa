package processor

import (
	"fmt"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/delay"
	"github.com/cwbudde/algo-stn/dsp/noise"
	"github.com/cwbudde/algo-stn/dsp/pitch"
	"github.com/cwbudde/algo-stn/dsp/stn"
	"github.com/cwbudde/algo-stn/internal/logging"
	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"
)

// ShifterFactory builds the tonal shifter at Prepare time.
type ShifterFactory func(cfg core.ProcessorConfig) (pitch.Shifter, error)

type options struct {
	logger     logrus.FieldLogger
	shifter    ShifterFactory
	seed       uint64
	mode       stn.MaskMode
	morphOpts  []noise.Option
	filterSecs float64
	filterHz   float64
}

// Option configures a Processor.
type Option func(*options)

// WithLogger injects the logger used for Prepare diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithShifter replaces the default spectral pitch shifter.
func WithShifter(f ShifterFactory) Option {
	return func(o *options) { o.shifter = f }
}

// WithSeed seeds the noise morpher.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithMaskMode forces fixed decomposition masks.
func WithMaskMode(mode stn.MaskMode) Option {
	return func(o *options) { o.mode = mode }
}

// WithFilterLengths sets the median filter spans of the decomposer.
func WithFilterLengths(seconds, hertz float64) Option {
	return func(o *options) {
		o.filterSecs = seconds
		o.filterHz = hertz
	}
}

// WithMorpherOptions passes extra options to the noise morpher.
func WithMorpherOptions(opts ...noise.Option) Option {
	return func(o *options) { o.morphOpts = append(o.morphOpts, opts...) }
}

func defaultShifter(core.ProcessorConfig) (pitch.Shifter, error) {
	return pitch.NewSpectral(pitch.DefaultSize)
}

// Processor is the complete STN pitch pipeline.
//
// The input is split into sines, transients and noise. Sines go through
// the pitch shifter, noise through the morpher and transients stay as they
// are. Delay lines equalize the three paths before they are summed, so the
// whole chain has a fixed Latency().
type Processor struct {
	params *Params
	opts   options
	logger logrus.FieldLogger

	prepared   bool
	cfg        core.ProcessorConfig
	coarseSize int
	fineSize   int
	latency    int

	decomposer *stn.Decomposer
	shifter    pitch.Shifter
	morpher    *noise.Morpher
	sineAlign  *delay.Line
	transAlign *delay.Line
	noiseAlign *delay.Line

	s []float64
	t []float64
	n []float64
}

// New returns an unprepared processor reading params. A nil params uses
// defaults.
func New(params *Params, opts ...Option) *Processor {
	if params == nil {
		params = NewParams()
	}

	o := options{
		shifter:    defaultShifter,
		filterSecs: stn.DefaultFilterSeconds,
		filterHz:   stn.DefaultFilterHertz,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return &Processor{
		params: params,
		opts:   o,
		logger: logging.OrDiscard(o.logger),
	}
}

// Params returns the parameter set the processor reads.
func (p *Processor) Params() *Params { return p.params }

// Prepared reports whether Process may be called.
func (p *Processor) Prepared() bool { return p.prepared }

// Latency returns the pipeline delay in samples, or 0 before Prepare.
func (p *Processor) Latency() int { return p.latency }

// Decomposer returns the prepared decomposer, or nil before Prepare.
func (p *Processor) Decomposer() *stn.Decomposer { return p.decomposer }

// Prepare (re)builds every stage for cfg and the current window sizes.
// It allocates and must not run concurrently with Process.
func (p *Processor) Prepare(cfg core.ProcessorConfig) error {
	p.prepared = false

	if err := cfg.Validate(); err != nil {
		return err
	}

	snap := p.params.Snapshot()

	decomposer, err := stn.NewDecomposer(cfg,
		stn.WithCoarseSize(snap.CoarseSize),
		stn.WithFineSize(snap.FineSize),
		stn.WithSineThresholds(thresholds(snap.SineThreshold)),
		stn.WithTransientThresholds(thresholds(snap.TransientThreshold)),
		stn.WithFilterLengths(p.opts.filterSecs, p.opts.filterHz),
		stn.WithMaskMode(p.opts.mode),
		stn.WithLogger(p.logger),
	)
	if err != nil {
		return fmt.Errorf("processor: decomposer: %w", err)
	}

	shifter, err := p.opts.shifter(cfg)
	if err != nil {
		return fmt.Errorf("processor: shifter: %w", err)
	}

	morphOpts := append([]noise.Option{noise.WithSeed(p.opts.seed), noise.WithLogger(p.logger)}, p.opts.morphOpts...)

	morpher, err := noise.NewMorpher(cfg, morphOpts...)
	if err != nil {
		return fmt.Errorf("processor: morpher: %w", err)
	}

	branch := max(shifter.Latency(), morpher.Latency())

	sineAlign, err := delay.NewLine(branch - shifter.Latency())
	if err != nil {
		return err
	}

	transAlign, err := delay.NewLine(branch)
	if err != nil {
		return err
	}

	noiseAlign, err := delay.NewLine(branch - morpher.Latency())
	if err != nil {
		return err
	}

	p.cfg = cfg
	p.coarseSize = snap.CoarseSize
	p.fineSize = snap.FineSize
	p.decomposer = decomposer
	p.shifter = shifter
	p.morpher = morpher
	p.sineAlign = sineAlign
	p.transAlign = transAlign
	p.noiseAlign = noiseAlign
	p.latency = decomposer.Latency() + branch
	p.s = core.EnsureLen(p.s, cfg.MaxBlockSize)
	p.t = core.EnsureLen(p.t, cfg.MaxBlockSize)
	p.n = core.EnsureLen(p.n, cfg.MaxBlockSize)
	p.prepared = true

	coarse, fine := decomposer.Layout()
	p.logger.WithFields(logrus.Fields{
		"sample_rate":      cfg.SampleRate,
		"max_block":        cfg.MaxBlockSize,
		"coarse":           coarse.Size,
		"fine":             fine.Size,
		"shifter_latency":  shifter.Latency(),
		"morpher_latency":  morpher.Latency(),
		"latency":          p.latency,
		"latency_ms":       1000 * float64(p.latency) / cfg.SampleRate,
		"coarse_median_hv": fmt.Sprintf("%dx%d", coarse.HorizontalSize, coarse.VerticalSize),
		"fine_median_hv":   fmt.Sprintf("%dx%d", fine.HorizontalSize, fine.VerticalSize),
	}).Debug("processor prepared")

	return nil
}

// Reset clears all audio state while keeping the prepared geometry.
func (p *Processor) Reset() {
	if !p.prepared {
		return
	}

	p.decomposer.Reset()
	p.shifter.Reset()
	p.morpher.Reset()
	p.sineAlign.Reset()
	p.transAlign.Reset()
	p.noiseAlign.Reset()
}

// Process runs one block through the pipeline. in and out must have the
// same length and may alias.
func (p *Processor) Process(in, out []float64) error {
	if len(in) != len(out) {
		return fmt.Errorf("%w: in=%d out=%d", ErrBlockLength, len(in), len(out))
	}

	n := len(in)
	if err := p.processSplit(in, p.s[:min(n, len(p.s))], p.t[:min(n, len(p.t))], p.n[:min(n, len(p.n))]); err != nil {
		return err
	}

	vecmath.AddBlock(out, p.s[:n], p.t[:n])
	vecmath.AddBlockInPlace(out, p.n[:n])

	return nil
}

// ProcessSplit runs one block and returns the transposed sines, the
// transients and the morphed noise, all aligned to Latency().
func (p *Processor) ProcessSplit(in, s, t, n []float64) error {
	if !core.SameLength(in, s, t, n) {
		return fmt.Errorf("%w: in=%d s=%d t=%d n=%d", ErrBlockLength, len(in), len(s), len(t), len(n))
	}

	return p.processSplit(in, s, t, n)
}

func (p *Processor) processSplit(in, s, t, n []float64) error {
	if !p.prepared {
		return ErrNotPrepared
	}

	if err := p.cfg.CheckBlock(len(in)); err != nil {
		return fmt.Errorf("%w: %w", ErrBlockLength, err)
	}

	if err := p.applyParams(); err != nil {
		return err
	}

	if err := p.decomposer.Process(in, s, t, n); err != nil {
		return err
	}

	if err := p.shifter.Process(s, s); err != nil {
		return err
	}

	p.sineAlign.Process(s, s)
	p.transAlign.Process(t, t)

	if err := p.morpher.Process(n, n); err != nil {
		return err
	}

	p.noiseAlign.Process(n, n)

	return nil
}

// applyParams pushes the current parameter values into the stages.
func (p *Processor) applyParams() error {
	snap := p.params.Snapshot()
	if snap.CoarseSize != p.coarseSize || snap.FineSize != p.fineSize {
		return fmt.Errorf("%w: prepared %d/%d, requested %d/%d",
			ErrReconfigure, p.coarseSize, p.fineSize, snap.CoarseSize, snap.FineSize)
	}

	if err := p.decomposer.SetThresholds(thresholds(snap.SineThreshold), thresholds(snap.TransientThreshold)); err != nil {
		return err
	}

	ratio := core.SemitonesToRatio(snap.Semitones)
	if err := p.shifter.SetTransposeRatio(ratio); err != nil {
		return err
	}

	return p.morpher.SetRatio(ratio)
}

// thresholds expands a host threshold into the classifier pair.
func thresholds(value float64) stn.Thresholds {
	th := stn.ThresholdsFrom(value)
	th.G1 = core.Clamp(th.G1, th.G2, 1)

	return th
}

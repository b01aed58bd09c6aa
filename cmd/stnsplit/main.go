// Command stnsplit splits a WAV file into sines, transients and noise and
// optionally transposes the tonal part.
//
// Usage:
//
//	stnsplit [flags] input.wav
//
// It writes <name>_sines.wav, <name>_transients.wav, <name>_noise.wav and
// <name>_mix.wav into the output directory. All outputs are compensated for
// the pipeline latency, so they line up with the input.
//
// Examples:
//
//	stnsplit drums.wav
//	stnsplit -semitones 7 -o out voice.wav
//	stnsplit -coarse 4096 -fine 256 -sine 0.6 -transient 0.8 loop.wav
//	stnsplit -mode sines -bits 24 -dither=false tone.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/stn"
	"github.com/cwbudde/algo-stn/internal/logging"
	"github.com/cwbudde/algo-stn/internal/pcm"
	"github.com/cwbudde/algo-stn/processor"
	"github.com/sirupsen/logrus"
)

const defaultBlockSize = 1024

var errUsage = errors.New("expected exactly one input file")

type options struct {
	input     string
	outDir    string
	coarse    int
	fine      int
	sine      float64
	transient float64
	semitones float64
	mode      stn.MaskMode
	bits      int
	dither    bool
	seed      uint64
	block     int
	noMix     bool
	verbose   bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("stnsplit", flag.ContinueOnError)
	fs.SetOutput(output)

	opts := &options{}
	fs.StringVar(&opts.outDir, "o", ".", "output directory")
	fs.IntVar(&opts.coarse, "coarse", stn.DefaultCoarseSize, "coarse (sine) window size")
	fs.IntVar(&opts.fine, "fine", stn.DefaultFineSize, "fine (transient) window size")
	fs.Float64Var(&opts.sine, "sine", processor.DefaultSineThreshold, "sine threshold in (0,0.9]")
	fs.Float64Var(&opts.transient, "transient", processor.DefaultTransientThreshold, "transient threshold in (0,0.9]")
	fs.Float64Var(&opts.semitones, "semitones", 0, "pitch shift of sines and noise in semitones")
	modeName := fs.String("mode", stn.MaskAdaptive.String(), "mask mode: adaptive, sines, transients or noise")
	fs.IntVar(&opts.bits, "bits", 0, "output bit depth (16, 24 or 32); 0 keeps the input depth")
	fs.BoolVar(&opts.dither, "dither", true, "add TPDF dither when quantizing")
	fs.Uint64Var(&opts.seed, "seed", 1, "seed for noise morphing and dither")
	fs.IntVar(&opts.block, "block", defaultBlockSize, "processing block size")
	fs.BoolVar(&opts.noMix, "no-mix", false, "skip writing the recombined mix")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: stnsplit [flags] input.wav\n\n")
		fmt.Fprintf(output, "Splits a WAV file into sines, transients and noise.\n\n")
		fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errUsage
	}
	opts.input = fs.Arg(0)

	mode, err := stn.ParseMaskMode(*modeName)
	if err != nil {
		return nil, err
	}
	opts.mode = mode

	if opts.bits != 0 {
		if err := pcm.CheckBitDepth(opts.bits); err != nil {
			return nil, err
		}
	}

	if opts.block <= 0 {
		return nil, fmt.Errorf("block size must be positive: %d", opts.block)
	}

	return opts, nil
}

func newParams(opts *options) (*processor.Params, error) {
	params := processor.NewParams()

	if err := params.SetCoarseSize(opts.coarse); err != nil {
		return nil, err
	}
	if err := params.SetFineSize(opts.fine); err != nil {
		return nil, err
	}
	if err := params.SetSineThreshold(opts.sine); err != nil {
		return nil, err
	}
	if err := params.SetTransientThreshold(opts.transient); err != nil {
		return nil, err
	}
	if err := params.SetSemitones(opts.semitones); err != nil {
		return nil, err
	}

	return params, nil
}

func run(opts *options, logger logrus.FieldLogger) error {
	params, err := newParams(opts)
	if err != nil {
		return err
	}

	in, err := readWAVMono(opts.input, logger)
	if err != nil {
		return err
	}

	bits := opts.bits
	if bits == 0 {
		bits = in.bitDepth
	}

	proc := processor.New(params,
		processor.WithLogger(logger),
		processor.WithSeed(opts.seed),
		processor.WithMaskMode(opts.mode),
	)

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(in.rate)),
		core.WithMaxBlockSize(opts.block),
		core.WithChannels(1),
	)
	if err := proc.Prepare(cfg); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"latency": proc.Latency(),
		"ratio":   params.Ratio(),
		"mode":    opts.mode,
	}).Info("splitting")

	res, err := splitSignal(proc, in.samples, opts.block)
	if err != nil {
		return err
	}

	paths := outputPaths(opts.outDir, opts.input)
	outputs := []struct {
		path    string
		samples []float64
	}{
		{paths.sines, res.sines},
		{paths.transients, res.transients},
		{paths.noise, res.noise},
	}
	if !opts.noMix {
		outputs = append(outputs, struct {
			path    string
			samples []float64
		}{paths.mix, res.mix})
	}

	for i, out := range outputs {
		q, err := pcm.NewQuantizer(bits,
			pcm.WithDither(opts.dither),
			pcm.WithSeed(int64(opts.seed)+int64(i)),
		)
		if err != nil {
			return err
		}

		if err := writeWAVMono(out.path, out.samples, in.rate, q); err != nil {
			return err
		}

		logger.WithField("file", out.path).Info("written")
	}

	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(opts.verbose)
	if err := run(opts, logger); err != nil {
		logger.WithError(err).Error("stnsplit failed")
		os.Exit(1)
	}
}

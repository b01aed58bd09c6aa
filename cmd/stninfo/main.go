// Command stninfo prints the frame geometry and latency of the STN pitch
// pipeline for a given configuration.
//
// Usage:
//
//	stninfo [flags]
//	stninfo -windows [flags] [window-name ...]
//
// Examples:
//
//	stninfo
//	stninfo -rate 44100 -coarse 4096 -fine 256
//	stninfo -windows -size 2048 -overlap 4
//	stninfo -windows hann blackman
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/noise"
	"github.com/cwbudde/algo-stn/dsp/pitch"
	"github.com/cwbudde/algo-stn/dsp/stn"
	"github.com/cwbudde/algo-stn/dsp/window"
	"github.com/cwbudde/algo-stn/processor"
)

// row is one pipeline component.
type row struct {
	name    string
	size    int
	hop     int
	bins    int
	median  string
	gain    float64
	latency int
}

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	coarse := flag.Int("coarse", stn.DefaultCoarseSize, "coarse (sine) window size")
	fine := flag.Int("fine", stn.DefaultFineSize, "fine (transient) window size")
	seconds := flag.Float64("seconds", stn.DefaultFilterSeconds, "horizontal median span in seconds")
	hertz := flag.Float64("hertz", stn.DefaultFilterHertz, "vertical median span in Hz")
	windows := flag.Bool("windows", false, "print analysis window properties instead")
	size := flag.Int("size", stn.DefaultCoarseSize, "window length for -windows")
	overlap := flag.Int("overlap", stn.DefaultOverlap, "overlap factor for -windows")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stninfo [flags]\n")
		fmt.Fprintf(os.Stderr, "       stninfo -windows [flags] [window-name ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints frame geometry and latency of the STN pitch pipeline.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *windows {
		if err := printWindows(os.Stdout, *size, *overlap, flag.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rows, err := collect(*rate, *coarse, *fine, *seconds, *hertz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := printPipeline(os.Stdout, rows, *rate); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := printPitchRange(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// collect prepares a processor for the given geometry and reads back the
// layout of every stage. The last row is the whole pipeline.
func collect(rate float64, coarse, fine int, seconds, hertz float64) ([]row, error) {
	params := processor.NewParams()
	if err := params.SetCoarseSize(coarse); err != nil {
		return nil, err
	}
	if err := params.SetFineSize(fine); err != nil {
		return nil, err
	}

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(rate))

	proc := processor.New(params, processor.WithFilterLengths(seconds, hertz))
	if err := proc.Prepare(cfg); err != nil {
		return nil, err
	}

	shifter, err := pitch.NewSpectral(pitch.DefaultSize)
	if err != nil {
		return nil, err
	}

	morpher, err := noise.NewMorpher(cfg)
	if err != nil {
		return nil, err
	}

	c, f := proc.Decomposer().Layout()
	stage := func(name string, l stn.StageLayout) row {
		return row{
			name:    name,
			size:    l.Size,
			hop:     l.Hop,
			bins:    l.Bins,
			median:  fmt.Sprintf("%dx%d", l.HorizontalSize, l.VerticalSize),
			gain:    l.Gain,
			latency: l.Size,
		}
	}

	shifterWin := window.Generate(window.TypeHann, shifter.Size(), window.WithPeriodic())
	shifterGain, err := window.OverlapAddGain(shifterWin, shifter.Size()/pitch.Overlap)
	if err != nil {
		return nil, err
	}

	return []row{
		stage("coarse", c),
		stage("fine", f),
		{
			name:    "shifter",
			size:    shifter.Size(),
			hop:     shifter.Size() / pitch.Overlap,
			bins:    shifter.Size()/2 + 1,
			median:  "-",
			gain:    shifterGain,
			latency: shifter.Latency(),
		},
		{
			name:    "morpher",
			size:    morpher.FFTSize(),
			hop:     morpher.Hop(),
			bins:    morpher.FFTSize()/2 + 1,
			median:  "-",
			latency: morpher.Latency(),
		},
		{
			name:    "total",
			median:  "-",
			latency: proc.Latency(),
		},
	}, nil
}

func printPipeline(w io.Writer, rows []row, rate float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Stage\tSize\tHop\tBins\tMedian HxV\tOLA Gain\tLatency\tLatency [ms]\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "-----\t----\t---\t----\t----------\t--------\t-------\t------------\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, r := range rows {
		size, hop, bins, gain := "-", "-", "-", "-"
		if r.size > 0 {
			size = fmt.Sprint(r.size)
			hop = fmt.Sprint(r.hop)
			bins = fmt.Sprint(r.bins)
		}
		if r.gain > 0 {
			gain = fmt.Sprintf("%.6f", r.gain)
		}

		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%.2f\n",
			r.name, size, hop, bins, r.median, gain, r.latency, 1000*float64(r.latency)/rate); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	return tw.Flush()
}

// pitchRange returns the transposition range both the shifter and the
// morpher accept at their default settings.
func pitchRange() (lo, hi float64) {
	return max(pitch.MinRatio, noise.MinRatio), min(pitch.MaxRatio, float64(noise.DefaultMaxRatio))
}

func printPitchRange(w io.Writer) error {
	lo, hi := pitchRange()
	_, err := fmt.Fprintf(w, "\nPitch range: x%.2f .. x%.2f (%+.1f .. %+.1f semitones)\n",
		lo, hi, core.RatioToSemitones(lo), core.RatioToSemitones(hi))

	return err
}

// resolveWindows parses window names; no names selects every type.
func resolveWindows(names []string) ([]window.Type, error) {
	if len(names) == 0 {
		return window.Types(), nil
	}

	types := make([]window.Type, 0, len(names))
	for _, name := range names {
		typ, err := window.Parse(name)
		if err != nil {
			return nil, err
		}
		types = append(types, typ)
	}

	return types, nil
}

func printWindows(w io.Writer, size, overlap int, names []string) error {
	if overlap <= 0 || size%overlap != 0 {
		return fmt.Errorf("overlap must divide the window size: %d/%d", size, overlap)
	}

	types, err := resolveWindows(names)
	if err != nil {
		return err
	}

	hop := size / overlap

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Window\tSize\tHop\tEnergy\tENBW [bins]\tOLA Gain\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "------\t----\t---\t------\t-----------\t--------\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, typ := range types {
		coeffs := window.Generate(typ, size, window.WithPeriodic())

		enbw, err := window.EquivalentNoiseBandwidth(coeffs)
		if err != nil {
			return fmt.Errorf("%s: %w", typ, err)
		}

		gain, err := window.OverlapAddGain(coeffs, hop)
		if err != nil {
			return fmt.Errorf("%s: %w", typ, err)
		}

		if _, err := fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%.4f\t%.6f\n",
			typ, size, hop, window.Energy(coeffs), enbw, gain); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	return tw.Flush()
}

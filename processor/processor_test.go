package processor

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/delay"
	"github.com/cwbudde/algo-stn/dsp/pitch"
	"github.com/cwbudde/algo-stn/dsp/stn"
	"github.com/cwbudde/algo-stn/internal/testutil"
)

const (
	testSampleRate = 48000.0
	testBlock      = 256
)

func testConfig() core.ProcessorConfig {
	return core.ApplyProcessorOptions(core.WithSampleRate(testSampleRate), core.WithMaxBlockSize(testBlock))
}

func smallParams(t *testing.T) *Params {
	t.Helper()

	p := NewParams()
	if err := p.SetCoarseSize(1024); err != nil {
		t.Fatal(err)
	}
	if err := p.SetFineSize(256); err != nil {
		t.Fatal(err)
	}

	return p
}

func newPrepared(t *testing.T, params *Params, opts ...Option) *Processor {
	t.Helper()

	p := New(params, opts...)
	if err := p.Prepare(testConfig()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	return p
}

func run(t *testing.T, p *Processor, in []float64) []float64 {
	t.Helper()

	out := make([]float64, len(in))
	for start := 0; start < len(in); start += testBlock {
		end := min(start+testBlock, len(in))
		if err := p.Process(in[start:end], out[start:end]); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}

	return out
}

func testSignal(length int) []float64 {
	return testutil.Mix(
		testutil.DeterministicSine(440, testSampleRate, 0.4, length),
		testutil.Clicks(length, 500, 3000, 0.6),
		testutil.DeterministicNoise(17, 0.1, length),
	)
}

func TestProcessBeforePrepare(t *testing.T) {
	p := New(nil)
	buf := make([]float64, 16)

	if err := p.Process(buf, buf); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("Process = %v, want ErrNotPrepared", err)
	}

	if err := p.ProcessSplit(buf, buf, buf, buf); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("ProcessSplit = %v, want ErrNotPrepared", err)
	}

	if p.Latency() != 0 || p.Prepared() {
		t.Fatal("unprepared processor reports geometry")
	}

	p.Reset()
}

func TestPrepareLatency(t *testing.T) {
	p := newPrepared(t, nil)

	// coarse + fine + max(spectral shifter, morpher)
	if want := 2048 + 512 + pitch.DefaultSize; p.Latency() != want {
		t.Fatalf("Latency() = %d, want %d", p.Latency(), want)
	}

	if p.Decomposer() == nil || !p.Prepared() {
		t.Fatal("Prepare did not build the decomposer")
	}
}

func TestUnityRatioIsDelay(t *testing.T) {
	modes := []stn.MaskMode{stn.MaskAdaptive, stn.MaskAllSines, stn.MaskAllTransients, stn.MaskAllNoise}

	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			p := newPrepared(t, smallParams(t), WithMaskMode(mode), WithSeed(1))
			in := testSignal(12000)
			out := run(t, p, in)

			testutil.RequireDelayed(t, out, in, p.Latency(), 1e-9)
		})
	}
}

func TestProcessSplitMatchesProcess(t *testing.T) {
	params := smallParams(t)
	if err := params.SetSemitones(5); err != nil {
		t.Fatal(err)
	}

	a := newPrepared(t, params, WithSeed(2))
	b := newPrepared(t, params, WithSeed(2))

	in := testSignal(6000)
	out := run(t, a, in)

	mixed := make([]float64, len(in))
	s := make([]float64, testBlock)
	tr := make([]float64, testBlock)
	n := make([]float64, testBlock)

	for start := 0; start < len(in); start += testBlock {
		end := min(start+testBlock, len(in))
		k := end - start
		if err := b.ProcessSplit(in[start:end], s[:k], tr[:k], n[:k]); err != nil {
			t.Fatal(err)
		}
		for i := range k {
			mixed[start+i] = s[i] + tr[i] + n[i]
		}
	}

	testutil.RequireSliceNearlyEqual(t, mixed, out, 1e-12)
}

func TestPitchShiftMovesSine(t *testing.T) {
	params := NewParams()
	if err := params.SetSemitones(7); err != nil {
		t.Fatal(err)
	}

	p := newPrepared(t, params, WithSeed(3))
	in := testutil.DeterministicSine(440, testSampleRate, 0.5, 24000)
	out := run(t, p, in)[p.Latency()+4096:]

	testutil.RequireFinite(t, out)

	const size = 1024
	power := testutil.AveragedPower(out, size)
	peak := testutil.PeakFrequency(power, size, testSampleRate)
	want := 440 * core.SemitonesToRatio(7)

	if math.Abs(peak-want) > 2*testSampleRate/size {
		t.Fatalf("peak at %.1f Hz, want %.1f Hz", peak, want)
	}
}

func TestReconfigureRequiresPrepare(t *testing.T) {
	params := smallParams(t)
	p := newPrepared(t, params)
	buf := make([]float64, 64)

	if err := p.Process(buf, buf); err != nil {
		t.Fatal(err)
	}

	if err := params.SetCoarseSize(2048); err != nil {
		t.Fatal(err)
	}

	if err := p.Process(buf, buf); !errors.Is(err, ErrReconfigure) {
		t.Fatalf("Process = %v, want ErrReconfigure", err)
	}

	if err := p.Prepare(testConfig()); err != nil {
		t.Fatal(err)
	}

	if err := p.Process(buf, buf); err != nil {
		t.Fatalf("Process after Prepare = %v", err)
	}

	if want := 2048 + 256 + pitch.DefaultSize; p.Latency() != want {
		t.Fatalf("Latency() = %d, want %d", p.Latency(), want)
	}
}

func TestRepreparedBlockSize(t *testing.T) {
	p := newPrepared(t, smallParams(t))

	for _, block := range []int{4 * testBlock, testBlock / 2, 4 * testBlock} {
		if err := p.Prepare(core.ApplyProcessorOptions(
			core.WithSampleRate(testSampleRate),
			core.WithMaxBlockSize(block),
		)); err != nil {
			t.Fatal(err)
		}

		in := testutil.DeterministicNoise(uint64(block), 0.3, block)
		out := make([]float64, block)
		if err := p.Process(in, out); err != nil {
			t.Fatalf("block %d: %v", block, err)
		}

		if err := p.Process(make([]float64, block+1), make([]float64, block+1)); !errors.Is(err, ErrBlockLength) {
			t.Fatalf("block %d: oversized = %v", block, err)
		}
	}
}

func TestThresholdExpansion(t *testing.T) {
	for _, value := range []float64{0.05, 0.5, 0.7, MaxThreshold} {
		th := thresholds(value)

		if th.G2 != value || th.G1 > 1 || th.G1 <= th.G2 {
			t.Errorf("thresholds(%v) = %+v", value, th)
		}

		if err := th.Validate(); err != nil {
			t.Errorf("thresholds(%v): %v", value, err)
		}
	}

	if th := thresholds(0.5); math.Abs(th.G1-0.6) > 1e-12 {
		t.Errorf("thresholds(0.5).G1 = %v, want 0.6", th.G1)
	}
}

func TestPrepareErrors(t *testing.T) {
	p := New(nil)

	if err := p.Prepare(core.ApplyProcessorOptions(core.WithChannels(2))); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("stereo = %v", err)
	}

	failing := WithShifter(func(core.ProcessorConfig) (pitch.Shifter, error) {
		return pitch.NewSpectral(100)
	})
	if err := New(nil, failing).Prepare(testConfig()); !errors.Is(err, pitch.ErrInvalidSize) {
		t.Fatalf("shifter error = %v", err)
	}
}

func TestBlockErrors(t *testing.T) {
	p := newPrepared(t, smallParams(t))

	if err := p.Process(make([]float64, 8), make([]float64, 9)); !errors.Is(err, ErrBlockLength) {
		t.Fatalf("mismatch = %v", err)
	}

	big := make([]float64, testBlock+1)
	if err := p.Process(big, big); !errors.Is(err, ErrBlockLength) {
		t.Fatalf("oversized = %v", err)
	}

	buf := make([]float64, 8)
	if err := p.ProcessSplit(buf, buf, buf[:4], buf); !errors.Is(err, ErrBlockLength) {
		t.Fatalf("split mismatch = %v", err)
	}
}

// delayShifter is a Shifter that only delays.
type delayShifter struct {
	line *delay.Line
}

func (d *delayShifter) SetTransposeRatio(float64) error { return nil }
func (d *delayShifter) Process(in, out []float64) error { d.line.Process(in, out); return nil }
func (d *delayShifter) Latency() int                    { return d.line.Delay() }
func (d *delayShifter) Reset()                          { d.line.Reset() }

func TestCustomShifterAlignment(t *testing.T) {
	factory := func(core.ProcessorConfig) (pitch.Shifter, error) {
		line, err := delay.NewLine(100)
		if err != nil {
			return nil, err
		}
		return &delayShifter{line: line}, nil
	}

	p := newPrepared(t, smallParams(t), WithShifter(factory), WithSeed(4))

	// The morpher (1042) is now the longest branch.
	if want := 1024 + 256 + 1042; p.Latency() != want {
		t.Fatalf("Latency() = %d, want %d", p.Latency(), want)
	}

	in := testSignal(8000)
	testutil.RequireDelayed(t, run(t, p, in), in, p.Latency(), 1e-9)
}

func TestResetRestartsStream(t *testing.T) {
	p := newPrepared(t, smallParams(t), WithMaskMode(stn.MaskAllTransients))
	in := testSignal(3000)

	first := run(t, p, in)
	p.Reset()
	second := run(t, p, in)

	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}

func BenchmarkProcess(b *testing.B) {
	p := New(nil)
	if err := p.Prepare(core.ApplyProcessorOptions(core.WithMaxBlockSize(512))); err != nil {
		b.Fatal(err)
	}

	if err := p.Params().SetSemitones(3); err != nil {
		b.Fatal(err)
	}

	in := testutil.DeterministicNoise(1, 0.5, 512)
	out := make([]float64, 512)

	b.ReportAllocs()

	for b.Loop() {
		if err := p.Process(in, out); err != nil {
			b.Fatal(err)
		}
	}
}

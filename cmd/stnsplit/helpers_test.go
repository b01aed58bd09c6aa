package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/stn"
	"github.com/cwbudde/algo-stn/internal/logging"
	"github.com/cwbudde/algo-stn/internal/pcm"
	"github.com/cwbudde/algo-stn/internal/testutil"
	"github.com/cwbudde/algo-stn/processor"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWAVMono_FileNotFound(t *testing.T) {
	_, err := readWAVMono("/nonexistent/file.wav", logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestReadWAVMono_InvalidWAV(t *testing.T) {
	tmpDir := t.TempDir()
	invalidFile := filepath.Join(tmpDir, "invalid.wav")
	require.NoError(t, os.WriteFile(invalidFile, []byte("not a wav file"), 0o644))

	_, err := readWAVMono(invalidFile, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestWriteWAVMono_InvalidDirectory(t *testing.T) {
	q, err := pcm.NewQuantizer(16)
	require.NoError(t, err)

	err = writeWAVMono("/nonexistent/dir/output.wav", []float64{0, 0.5}, 48000, q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := testutil.DeterministicSine(440, 44100, 0.5, 4410)

	q, err := pcm.NewQuantizer(24, pcm.WithDither(false))
	require.NoError(t, err)
	require.NoError(t, writeWAVMono(path, in, 44100, q))

	got, err := readWAVMono(path, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, 44100, got.rate)
	assert.Equal(t, 1, got.channels)
	assert.Equal(t, 24, got.bitDepth)
	require.Len(t, got.samples, len(in))

	diff, err := testutil.MaxAbsDiff(got.samples, in)
	require.NoError(t, err)
	assert.Less(t, diff, 1e-6)
}

func TestReadWAVMono_Downmix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")

	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 48000, 16, 2, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 48000},
		Data:           []int{1000, 3000, -2000, 0, 500, 500},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	got, err := readWAVMono(path, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 2, got.channels)
	require.Len(t, got.samples, 3)

	want := make([]float64, 3)
	require.NoError(t, pcm.ToFloat(want, []int{2000, -1000, 500}, 16))
	for i := range want {
		assert.InDelta(t, want[i], got.samples[i], 1e-9)
	}
}

func TestCheckPCMFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  uint16
		bits    int
		wantErr string
	}{
		{"pcm16", wavFormatPCM, 16, ""},
		{"pcm24", wavFormatPCM, 24, ""},
		{"extensible32", wavFormatExtensible, 32, ""},
		{"pcm8", wavFormatPCM, 8, "8-bit"},
		{"float32", wavFormatIEEEFloat, 32, "IEEE float"},
		{"alaw", 6, 8, "encoding 0x0006"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPCMFormat(tt.format, tt.bits)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errUnsupportedFormat)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeRawWAV(t *testing.T, path string, bits, audioFormat int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 8000, bits, 1, audioFormat)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           []int{10, 20, 30, 40},
		SourceBitDepth: bits,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestReadWAVMono_UnsupportedFormats(t *testing.T) {
	dir := t.TempDir()

	eightPath := filepath.Join(dir, "eight.wav")
	writeRawWAV(t, eightPath, 8, wavFormatPCM)
	_, err := readWAVMono(eightPath, logging.Discard())
	require.ErrorIs(t, err, errUnsupportedFormat)
	assert.Contains(t, err.Error(), "8-bit")

	floatPath := filepath.Join(dir, "float.wav")
	writeRawWAV(t, floatPath, 32, wavFormatIEEEFloat)
	_, err = readWAVMono(floatPath, logging.Discard())
	require.ErrorIs(t, err, errUnsupportedFormat)
	assert.Contains(t, err.Error(), "IEEE float")
}

func TestDownmixMonoPassthrough(t *testing.T) {
	in := []float64{1, 2, 3}
	assert.Equal(t, in, downmix(in, 1))
}

func TestSplitSignal_RecombinesAtUnityRatio(t *testing.T) {
	params := processor.NewParams()
	require.NoError(t, params.SetCoarseSize(1024))
	require.NoError(t, params.SetFineSize(256))

	proc := processor.New(params, processor.WithSeed(3))
	require.NoError(t, proc.Prepare(core.ApplyProcessorOptions(
		core.WithSampleRate(48000),
		core.WithMaxBlockSize(512),
	)))

	in := testutil.Mix(
		testutil.DeterministicSine(523, 48000, 0.4, 12000),
		testutil.Clicks(12000, 300, 2400, 0.8),
		testutil.DeterministicNoise(9, 0.05, 12000),
	)

	res, err := splitSignal(proc, in, 500)
	require.NoError(t, err)

	require.Len(t, res.sines, len(in))
	require.Len(t, res.transients, len(in))
	require.Len(t, res.noise, len(in))
	testutil.RequireSliceNearlyEqual(t, res.mix, in, 1e-9)
}

func TestSplitSignal_BlockTooLarge(t *testing.T) {
	proc := processor.New(nil)
	require.NoError(t, proc.Prepare(core.ApplyProcessorOptions(core.WithMaxBlockSize(64))))

	_, err := splitSignal(proc, make([]float64, 1000), 128)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing failed")
}

func TestOutputPaths(t *testing.T) {
	paths := outputPaths("out", "/data/take 1.wav")

	assert.Equal(t, filepath.Join("out", "take 1_sines.wav"), paths.sines)
	assert.Equal(t, filepath.Join("out", "take 1_transients.wav"), paths.transients)
	assert.Equal(t, filepath.Join("out", "take 1_noise.wav"), paths.noise)
	assert.Equal(t, filepath.Join("out", "take 1_mix.wav"), paths.mix)
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer

	opts, err := parseFlags([]string{"-semitones", "7", "-mode", "noise", "in.wav"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "in.wav", opts.input)
	assert.InDelta(t, 7.0, opts.semitones, 0)
	assert.Equal(t, stn.MaskAllNoise, opts.mode)
	assert.Equal(t, stn.DefaultCoarseSize, opts.coarse)
	assert.True(t, opts.dither)

	_, err = parseFlags([]string{}, &out)
	require.ErrorIs(t, err, errUsage)

	_, err = parseFlags([]string{"-mode", "bogus", "in.wav"}, &out)
	require.Error(t, err)

	_, err = parseFlags([]string{"-block", "0", "in.wav"}, &out)
	require.Error(t, err)

	_, err = parseFlags([]string{"-bits", "8", "in.wav"}, &out)
	require.ErrorIs(t, err, pcm.ErrBitDepth)
}

func TestRun_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "loop.wav")

	q, err := pcm.NewQuantizer(16, pcm.WithDither(false))
	require.NoError(t, err)
	require.NoError(t, writeWAVMono(input, testutil.DeterministicSine(330, 22050, 0.3, 6000), 22050, q))

	opts, err := parseFlags([]string{"-o", dir, "-coarse", "1024", "-fine", "256", "-semitones", "3", input}, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, run(opts, logging.Discard()))

	paths := outputPaths(dir, input)
	for _, p := range []string{paths.sines, paths.transients, paths.noise, paths.mix} {
		got, err := readWAVMono(p, logging.Discard())
		require.NoError(t, err, p)
		assert.Equal(t, 22050, got.rate)
		assert.Equal(t, 16, got.bitDepth)
		assert.Len(t, got.samples, 6000)
		testutil.RequireFinite(t, got.samples)
	}
}

func TestRun_InvalidParams(t *testing.T) {
	opts, err := parseFlags([]string{"-coarse", "1000", "in.wav"}, &bytes.Buffer{})
	require.NoError(t, err)

	err = run(opts, logging.Discard())
	require.ErrorIs(t, err, processor.ErrParamRange)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-stn/internal/pcm"
	"github.com/cwbudde/algo-stn/processor"
	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
)

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

var errUnsupportedFormat = errors.New("unsupported WAV format")

// checkPCMFormat accepts integer PCM at a bit depth the quantizer handles.
func checkPCMFormat(audioFormat uint16, bitDepth int) error {
	switch audioFormat {
	case wavFormatPCM, wavFormatExtensible:
	case wavFormatIEEEFloat:
		return fmt.Errorf("%w: IEEE float samples, only integer PCM is supported", errUnsupportedFormat)
	default:
		return fmt.Errorf("%w: encoding 0x%04x, only integer PCM is supported", errUnsupportedFormat, audioFormat)
	}

	if err := pcm.CheckBitDepth(bitDepth); err != nil {
		return fmt.Errorf("%w: %d-bit samples, need 16, 24 or 32", errUnsupportedFormat, bitDepth)
	}

	return nil
}

// wavInput holds a decoded input file folded down to mono.
type wavInput struct {
	samples  []float64
	rate     int
	channels int
	bitDepth int
}

// readWAVMono decodes a PCM WAV file. Multichannel input is averaged to
// mono.
func readWAVMono(path string, logger logrus.FieldLogger) (*wavInput, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = inputFile.Close() }()

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	if err := checkPCMFormat(decoder.WavAudioFormat, int(decoder.BitDepth)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	format := decoder.Format()
	channels := max(format.NumChannels, 1)
	bitDepth := int(decoder.BitDepth)

	interleaved := make([]float64, len(buf.Data))
	if err := pcm.ToFloat(interleaved, buf.Data, bitDepth); err != nil {
		return nil, fmt.Errorf("failed to convert samples: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"rate":      format.SampleRate,
		"channels":  channels,
		"bit_depth": bitDepth,
		"frames":    len(interleaved) / channels,
	}).Debug("input decoded")

	if channels > 1 {
		logger.WithField("channels", channels).Warn("downmixing input to mono")
	}

	return &wavInput{
		samples:  downmix(interleaved, channels),
		rate:     format.SampleRate,
		channels: channels,
		bitDepth: bitDepth,
	}, nil
}

func downmix(interleaved []float64, channels int) []float64 {
	if channels == 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)
	scale := 1 / float64(channels)

	for i := range out {
		sum := 0.0
		for _, v := range interleaved[i*channels : (i+1)*channels] {
			sum += v
		}

		out[i] = sum * scale
	}

	return out
}

// writeWAVMono quantizes samples with q and writes them as a mono WAV file.
func writeWAVMono(path string, samples []float64, rate int, q *pcm.Quantizer) error {
	outputFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	ints := make([]int, len(samples))
	q.Quantize(ints, samples)

	encoder := wav.NewEncoder(outputFile, rate, q.BitDepth(), 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           ints,
		SourceBitDepth: q.BitDepth(),
	}

	if err := encoder.Write(buf); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}

	if err := encoder.Close(); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}

	return outputFile.Close()
}

// splitResult holds the three component signals and their sum, aligned
// with the input.
type splitResult struct {
	sines      []float64
	transients []float64
	noise      []float64
	mix        []float64
}

// splitSignal streams in through p in blocks of at most block samples. The
// input is padded by the pipeline latency and the leading latency samples
// are dropped, so every output lines up with in.
func splitSignal(p *processor.Processor, in []float64, block int) (*splitResult, error) {
	latency := p.Latency()
	total := len(in) + latency

	padded := make([]float64, total)
	copy(padded, in)

	s := make([]float64, total)
	t := make([]float64, total)
	n := make([]float64, total)

	for start := 0; start < total; start += block {
		end := min(start+block, total)
		if err := p.ProcessSplit(padded[start:end], s[start:end], t[start:end], n[start:end]); err != nil {
			return nil, fmt.Errorf("processing failed at sample %d: %w", start, err)
		}
	}

	res := &splitResult{
		sines:      s[latency:],
		transients: t[latency:],
		noise:      n[latency:],
		mix:        make([]float64, len(in)),
	}

	vecmath.AddBlock(res.mix, res.sines, res.transients)
	vecmath.AddBlockInPlace(res.mix, res.noise)

	return res, nil
}

// outputSet names the files written for one input.
type outputSet struct {
	sines      string
	transients string
	noise      string
	mix        string
}

func outputPaths(dir, input string) outputSet {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	path := func(suffix string) string {
		return filepath.Join(dir, stem+"_"+suffix+".wav")
	}

	return outputSet{
		sines:      path("sines"),
		transients: path("transients"),
		noise:      path("noise"),
		mix:        path("mix"),
	}
}

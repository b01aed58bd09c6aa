// Package testutil holds deterministic signals and tolerance helpers shared
// by the package tests.
package testutil

import (
	"math"
	"math/rand/v2"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// from a fixed seed.
func DeterministicNoise(seed uint64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Clicks places impulses of the given amplitude every period samples,
// starting at offset.
func Clicks(length, offset, period int, amplitude float64) []float64 {
	out := make([]float64, length)
	if period <= 0 {
		return out
	}
	for i := offset; i >= 0 && i < length; i += period {
		out[i] = amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Mix returns the element-wise sum of equally long signals.
func Mix(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	out := make([]float64, len(signals[0]))
	for _, s := range signals {
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}

// Delayed returns in shifted right by delay samples, zero-filled at the
// start and truncated to len(in).
func Delayed(in []float64, delay int) []float64 {
	out := make([]float64, len(in))
	if delay < len(in) {
		copy(out[delay:], in)
	}
	return out
}

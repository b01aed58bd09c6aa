package testutil

import (
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// AveragedPower returns the Welch power spectrum of x: the mean of
// |FFT(hann * frame)|^2 over frames of size samples advanced by size/2.
// The result has size/2+1 bins. It returns nil when x is shorter than one
// frame or size is not a supported FFT length.
func AveragedPower(x []float64, size int) []float64 {
	if size <= 0 || len(x) < size {
		return nil
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil
	}

	win := make([]float64, size)
	for i := range win {
		win[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}

	bins := size/2 + 1
	out := make([]float64, bins)
	buf := make([]complex128, size)
	frames := 0

	for start := 0; start+size <= len(x); start += size / 2 {
		for i := range buf {
			buf[i] = complex(x[start+i]*win[i], 0)
		}

		if err := plan.Forward(buf, buf); err != nil {
			return nil
		}

		for k := range out {
			re, im := real(buf[k]), imag(buf[k])
			out[k] += re*re + im*im
		}
		frames++
	}

	for k := range out {
		out[k] /= float64(frames)
	}

	return out
}

// PeakFrequency returns the frequency in Hz of the strongest bin of a
// power spectrum computed with an FFT of size points.
func PeakFrequency(power []float64, size int, sampleRate float64) float64 {
	best := 0
	for k, p := range power {
		if p > power[best] {
			best = k
		}
	}
	return float64(best) * sampleRate / float64(size)
}

// BandEnergy sums power over the bins whose center lies in [lo, hi] Hz.
func BandEnergy(power []float64, size int, sampleRate, lo, hi float64) float64 {
	sum := 0.0
	for k, p := range power {
		f := float64(k) * sampleRate / float64(size)
		if f >= lo && f <= hi {
			sum += p
		}
	}
	return sum
}

package spectrum

import (
	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Bins returns the number of non-negative frequency bins of a real FFT of
// size n (DC through Nyquist).
func Bins(n int) int {
	return n/2 + 1
}

// Scratch holds deinterleave buffers so magnitude and power can be
// computed without allocating in the audio path.
type Scratch struct {
	re []float64
	im []float64
}

// NewScratch returns scratch space for up to bins bins.
func NewScratch(bins int) *Scratch {
	return &Scratch{
		re: make([]float64, bins),
		im: make([]float64, bins),
	}
}

// Magnitude writes |X[k]| for the first len(dst) bins of in.
func (s *Scratch) Magnitude(dst []float64, in []complex128) {
	re, im := s.split(in, len(dst))
	vecmath.Magnitude(dst, re, im)
}

func (s *Scratch) split(in []complex128, n int) ([]float64, []float64) {
	re, im := s.re[:n], s.im[:n]
	for i, c := range in[:n] {
		re[i] = real(c)
		im[i] = imag(c)
	}

	return re, im
}

// ApplyMask writes the spectrum of a real signal scaled by a per-bin mask
// into dst. mask covers the non-negative bins (len(src)/2+1 values); the
// negative-frequency half is scaled by the mirrored weight so the result
// stays conjugate-symmetric.
func ApplyMask(dst, src []complex128, mask []float64) {
	n := len(src)
	for k, m := range mask {
		dst[k] = src[k] * complex(m, 0)
		if k > 0 && k < n-k {
			dst[n-k] = src[n-k] * complex(m, 0)
		}
	}
}

// ApplyComplement is ApplyMask with weights 1-mask[k].
func ApplyComplement(dst, src []complex128, mask []float64) {
	n := len(src)
	for k, m := range mask {
		w := complex(1-m, 0)
		dst[k] = src[k] * w
		if k > 0 && k < n-k {
			dst[n-k] = src[n-k] * w
		}
	}
}

// ScaleBins multiplies the real and imaginary part of every bin by the
// magnitude envelope, mirrored onto the negative frequencies.
func ScaleBins(x []complex128, envelope []float64) {
	n := len(x)
	for k, e := range envelope {
		x[k] *= complex(e, 0)
		if k > 0 && k < n-k {
			x[n-k] *= complex(e, 0)
		}
	}
}

// LogMagnitude converts magnitudes to the 10*log10 domain. Magnitudes
// below floor are clamped to it so the result is always finite.
func LogMagnitude(dst, mag []float64, floor float64) {
	for i, m := range mag {
		dst[i] = core.LinearPowerToDBFloor(m, floor)
	}
}

// FromLogMagnitude inverts LogMagnitude: dst[i] = 10^(logMag[i]/10).
func FromLogMagnitude(dst, logMag []float64) {
	for i, v := range logMag {
		dst[i] = core.DBPowerToLinear(v)
	}
}

package resample

import (
	"math"

	"github.com/cwbudde/algo-stn/dsp/interp"
)

const kaiserTableSize = 1025

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	if x == math.Trunc(x) {
		return 0
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}

// kaiserTable samples the Kaiser window over t in [-1, 1].
func kaiserTable(beta float64) []float64 {
	table := make([]float64, kaiserTableSize)
	for i := range table {
		table[i] = kaiserWindow(i, kaiserTableSize, beta)
	}

	return table
}

// kaiserAt evaluates a Kaiser table at t in [-1, 1]; zero outside.
func kaiserAt(table []float64, t float64) float64 {
	if t < -1 || t > 1 {
		return 0
	}

	return interp.LinearAt(table, (t+1)*0.5*float64(len(table)-1))
}

func kaiserWindow(i, n int, beta float64) float64 {
	if n <= 1 || beta == 0 {
		return 1
	}

	t := 2*float64(i)/float64(n-1) - 1
	a := math.Sqrt(math.Max(0, 1-t*t))

	return i0(beta*a) / i0(beta)
}

func i0(x float64) float64 {
	// Power series approximation.
	sum := 1.0
	term := 1.0

	x2 := (x * x) / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)

		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}

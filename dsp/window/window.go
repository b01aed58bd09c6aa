package window

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

var typeNames = map[Type]string{
	TypeRectangular: "rectangular",
	TypeHann:        "hann",
	TypeHamming:     "hamming",
	TypeBlackman:    "blackman",
}

// Types lists every supported window type in declaration order.
func Types() []Type {
	return []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman}
}

// String returns the lower-case window name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// Parse maps a window name (case-insensitive) to its Type.
func Parse(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	Fill(out, t, opts...)

	return out
}

// Fill writes len(dst) window coefficients into dst.
func Fill(dst []float64, t Type, opts ...Option) {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	for i := range dst {
		dst[i] = At(t, samplePosition(i, len(dst), cfg.periodic))
	}
}

// At evaluates the window at normalized position x in [0, 1]. Values
// outside the range are clamped to the edges.
func At(t Type, x float64) float64 {
	x = math.Max(0, math.Min(1, x))

	switch t {
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	default:
		return 1
	}
}

// Energy returns the sum of squared coefficients.
func Energy(coeffs []float64) float64 {
	return floats.Dot(coeffs, coeffs)
}

// OverlapAddGain returns the constant that restores unity gain when
// frames analysed and resynthesized with coeffs are overlap-added every
// hop samples: hop / sum(w^2).
func OverlapAddGain(coeffs []float64, hop int) (float64, error) {
	if err := validateLength(len(coeffs)); err != nil {
		return 0, err
	}

	if hop <= 0 || hop > len(coeffs) {
		return 0, fmt.Errorf("window hop must be in [1,%d]: %d", len(coeffs), hop)
	}

	energy := Energy(coeffs)
	if energy <= 0 {
		return 0, ErrZeroEnergy
	}

	return float64(hop) / energy, nil
}

// EquivalentNoiseBandwidth returns the ENBW in bins for a window.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := floats.Sum(coeffs)
	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return float64(len(coeffs)) * Energy(coeffs) / (sum * sum), nil
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}

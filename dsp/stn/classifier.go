package stn

import (
	"fmt"
	"math"
)

// epsilon is the float64 machine epsilon.
const epsilon = 0x1p-52

// ThresholdOffset is the fixed distance between G1 and G2 when a single
// host threshold is expanded into a pair.
const ThresholdOffset = 0.1

// Thresholds bound the raised-sine transition of a fuzzy membership: values
// at or above G1 are full members, values below G2 are not members.
type Thresholds struct {
	G1 float64
	G2 float64
}

// Default threshold pairs for the coarse (sines) and fine (transients)
// stages.
var (
	DefaultSineThresholds      = Thresholds{G1: 0.8, G2: 0.7}
	DefaultTransientThresholds = Thresholds{G1: 0.85, G2: 0.75}
)

// ThresholdsFrom expands a host threshold into {value+0.1, value}.
func ThresholdsFrom(value float64) Thresholds {
	return Thresholds{G1: value + ThresholdOffset, G2: value}
}

// Validate reports whether 0 <= G2 < G1 <= 1.
func (th Thresholds) Validate() error {
	if math.IsNaN(th.G1) || math.IsNaN(th.G2) || th.G2 < 0 || th.G1 > 1 || th.G1 <= th.G2 {
		return fmt.Errorf("%w: need 0 <= G2 < G1 <= 1, got G1=%v G2=%v", ErrInvalidThresholds, th.G1, th.G2)
	}

	return nil
}

// Membership maps x onto [0, 1]: 0 below G2, 1 from G1 on and
// sin(pi/(2(G1-G2)) * (x-G2))^2 in between.
func Membership(x float64, th Thresholds) float64 {
	switch {
	case x >= th.G1:
		return 1
	case x >= th.G2:
		s := math.Sin(math.Pi / (2 * (th.G1 - th.G2)) * (x - th.G2))
		return s * s
	default:
		return 0
	}
}

// Transientness writes v/(v+h+eps) for each bin into dst. For
// non-negative inputs the result lies in [0, 1].
func Transientness(dst, h, v []float64) {
	for i := range dst {
		dst[i] = v[i] / (v[i] + h[i] + epsilon)
	}
}

// Masks holds per-bin fuzzy memberships with S[i]+T[i]+N[i] == 1.
type Masks struct {
	S []float64
	T []float64
	N []float64
}

// NewMasks allocates masks for bins bins, initialized to pure noise.
func NewMasks(bins int) Masks {
	m := Masks{
		S: make([]float64, bins),
		T: make([]float64, bins),
		N: make([]float64, bins),
	}
	for i := range m.N {
		m.N[i] = 1
	}

	return m
}

// Classifier turns horizontal and vertical median magnitudes into STN
// masks using one threshold pair for both the sine and the transient
// membership.
type Classifier struct {
	th Thresholds
}

// NewClassifier returns a classifier for th.
func NewClassifier(th Thresholds) (*Classifier, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}

	return &Classifier{th: th}, nil
}

// Thresholds returns the active threshold pair.
func (c *Classifier) Thresholds() Thresholds {
	return c.th
}

// SetThresholds replaces the threshold pair. It does not allocate.
func (c *Classifier) SetThresholds(th Thresholds) error {
	if err := th.Validate(); err != nil {
		return err
	}

	c.th = th

	return nil
}

// Classify fills m from the horizontal (h) and vertical (v) median
// magnitudes. A bin where both medians vanish is pure noise. If the sine
// and transient memberships overlap (possible when G2 < 0.5) they are
// scaled down to sum to one.
func (c *Classifier) Classify(m *Masks, h, v []float64) {
	for i := range m.S {
		total := h[i] + v[i]
		if total <= 0 {
			m.S[i], m.T[i], m.N[i] = 0, 0, 1
			continue
		}

		r := v[i] / (total + epsilon)
		s := Membership(1-r, c.th)
		t := Membership(r, c.th)

		if sum := s + t; sum > 1 {
			s /= sum
			t /= sum
		}

		m.S[i] = s
		m.T[i] = t
		m.N[i] = 1 - s - t
	}
}

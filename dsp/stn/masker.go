package stn

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-stn/dsp/median"
)

// MaskMode selects how the decomposer builds its masks.
type MaskMode int

const (
	// MaskAdaptive classifies every bin from its median filtered
	// neighbourhood.
	MaskAdaptive MaskMode = iota
	// MaskAllSines routes everything to S.
	MaskAllSines
	// MaskAllTransients routes everything to T.
	MaskAllTransients
	// MaskAllNoise routes everything to N.
	MaskAllNoise
)

var maskModeNames = []string{"adaptive", "sines", "transients", "noise"}

// String returns the mode name.
func (m MaskMode) String() string {
	if m >= 0 && int(m) < len(maskModeNames) {
		return maskModeNames[m]
	}

	return fmt.Sprintf("MaskMode(%d)", int(m))
}

// ParseMaskMode maps a mode name back to its MaskMode.
func ParseMaskMode(name string) (MaskMode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range maskModeNames {
		if n == name {
			return MaskMode(i), nil
		}
	}

	return 0, fmt.Errorf("stn: unknown mask mode %q", name)
}

// stageWeights returns the fixed coarse and fine primary weights of a
// forced mode. ok is false for MaskAdaptive.
func (m MaskMode) stageWeights() (coarse, fine float64, ok bool) {
	switch m {
	case MaskAllSines:
		return 1, 0, true
	case MaskAllTransients:
		return 0, 1, true
	case MaskAllNoise:
		return 0, 0, true
	default:
		return 0, 0, false
	}
}

// classMasker is the Masker of one decomposer stage. It runs both median
// filters and the classifier on every frame, even when a fixed weight is
// forced, so switching modes never starts from stale history.
type classMasker struct {
	horizontal median.Filter
	vertical   median.Filter
	classifier *Classifier

	h     []float64
	v     []float64
	masks Masks

	// transient selects T as the primary mask instead of S.
	transient bool
	forced    bool
	weight    float64
}

func newClassMasker(th Thresholds, horizontal, vertical, bins int, transient bool) (*classMasker, error) {
	classifier, err := NewClassifier(th)
	if err != nil {
		return nil, err
	}

	hf, err := median.New(median.Horizontal, horizontal, bins)
	if err != nil {
		return nil, err
	}

	vf, err := median.New(median.Vertical, vertical, bins)
	if err != nil {
		return nil, err
	}

	return &classMasker{
		horizontal: hf,
		vertical:   vf,
		classifier: classifier,
		h:          make([]float64, bins),
		v:          make([]float64, bins),
		masks:      NewMasks(bins),
		transient:  transient,
	}, nil
}

func (c *classMasker) Mask(dst, mag []float64) {
	c.horizontal.Process(c.h, mag)
	c.vertical.Process(c.v, mag)
	c.classifier.Classify(&c.masks, c.h, c.v)

	if c.forced {
		for i := range dst {
			dst[i] = c.weight
		}

		return
	}

	if c.transient {
		copy(dst, c.masks.T)
	} else {
		copy(dst, c.masks.S)
	}
}

func (c *classMasker) force(weight float64, forced bool) {
	c.weight = weight
	c.forced = forced
}

func (c *classMasker) reset() {
	c.horizontal.Reset()
	c.vertical.Reset()
}

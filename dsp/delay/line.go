package delay

import (
	"fmt"

	"github.com/cwbudde/algo-stn/dsp/buffer"
)

// Line is a fixed integer delay used to time-align parallel signal paths.
type Line struct {
	ring  *buffer.Ring
	delay int
}

// NewLine returns a line that delays its input by delay samples.
func NewLine(delay int) (*Line, error) {
	if delay < 0 {
		return nil, fmt.Errorf("delay must be >= 0: %d", delay)
	}

	ring, err := buffer.NewRing(delay + 1)
	if err != nil {
		return nil, err
	}

	return &Line{ring: ring, delay: delay}, nil
}

// Delay returns the delay in samples.
func (d *Line) Delay() int {
	return d.delay
}

// Tick pushes one sample and returns the sample written delay ticks ago.
func (d *Line) Tick(sample float64) float64 {
	d.ring.Push(sample)
	return d.ring.At(d.ring.Cursor() - 1 - d.delay)
}

// Process delays a block. out may alias in.
func (d *Line) Process(in, out []float64) {
	for i, x := range in {
		out[i] = d.Tick(x)
	}
}

// Reset clears line state.
func (d *Line) Reset() {
	d.ring.Reset()
}

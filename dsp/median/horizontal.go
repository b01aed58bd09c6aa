package median

// HorizontalFilter keeps the last Size frames and returns the per-bin
// median over time. History starts as silence.
type HorizontalFilter struct {
	size int
	bins int

	// history is bin-major: history[b*size+slot] so one bin's samples are
	// contiguous.
	history []float64
	slot    int
	kernel  []float64
}

// NewHorizontal returns a horizontal filter.
func NewHorizontal(size, bins int) (*HorizontalFilter, error) {
	f := &HorizontalFilter{}
	if err := f.Resize(size, bins); err != nil {
		return nil, err
	}

	return f, nil
}

// Resize implements Filter.
func (f *HorizontalFilter) Resize(size, bins int) error {
	if err := validateSizes(size, bins); err != nil {
		return err
	}

	f.size = size
	f.bins = bins
	f.history = make([]float64, size*bins)
	f.kernel = make([]float64, size)
	f.slot = 0

	return nil
}

// Process implements Filter. The oldest frame is evicted.
func (f *HorizontalFilter) Process(dst, frame []float64) {
	size := f.size
	rank := Rank(size)

	for b, v := range frame[:f.bins] {
		row := f.history[b*size : (b+1)*size]
		row[f.slot] = v
		copy(f.kernel, row)
		dst[b] = Select(f.kernel, rank)
	}

	f.slot++
	if f.slot == size {
		f.slot = 0
	}
}

// Size implements Filter.
func (f *HorizontalFilter) Size() int { return f.size }

// Bins implements Filter.
func (f *HorizontalFilter) Bins() int { return f.bins }

// Reset implements Filter.
func (f *HorizontalFilter) Reset() {
	clear(f.history)
	f.slot = 0
}

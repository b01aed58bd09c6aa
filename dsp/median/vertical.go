package median

// VerticalFilter returns, per bin, the median of the Size bins centered on
// it within one frame. Bins past either edge read as zero.
type VerticalFilter struct {
	size   int
	bins   int
	pad    int
	padded []float64
	kernel []float64
}

// NewVertical returns a vertical filter.
func NewVertical(size, bins int) (*VerticalFilter, error) {
	f := &VerticalFilter{}
	if err := f.Resize(size, bins); err != nil {
		return nil, err
	}

	return f, nil
}

// Resize implements Filter.
func (f *VerticalFilter) Resize(size, bins int) error {
	if err := validateSizes(size, bins); err != nil {
		return err
	}

	f.size = size
	f.bins = bins
	f.pad = size / 2
	f.padded = make([]float64, bins+size)
	f.kernel = make([]float64, size)

	return nil
}

// Process implements Filter.
func (f *VerticalFilter) Process(dst, frame []float64) {
	copy(f.padded[f.pad:f.pad+f.bins], frame)
	rank := Rank(f.size)

	for b := range f.bins {
		copy(f.kernel, f.padded[b:b+f.size])
		dst[b] = Select(f.kernel, rank)
	}
}

// Size implements Filter.
func (f *VerticalFilter) Size() int { return f.size }

// Bins implements Filter.
func (f *VerticalFilter) Bins() int { return f.bins }

// Reset implements Filter.
func (f *VerticalFilter) Reset() {
	clear(f.padded)
}

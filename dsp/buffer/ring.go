package buffer

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// ErrInvalidCapacity is returned by NewRing for non-positive capacities.
var ErrInvalidCapacity = errors.New("buffer: ring capacity must be > 0")

// Ring is a fixed-capacity circular float64 buffer with a single write
// cursor. Positions passed to its methods are absolute sample positions
// and are reduced modulo the capacity, so callers can keep running
// counters and never re-derive the wraparound themselves.
//
// Frames handed to the window methods must not be longer than the
// capacity. Owners validate that when they are built; a violation panics.
type Ring struct {
	data   []float64
	cursor int
}

// NewRing returns a zero-filled ring with the given capacity.
func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	return &Ring{data: make([]float64, capacity)}, nil
}

// Len returns the ring capacity.
func (r *Ring) Len() int {
	return len(r.data)
}

// Cursor returns the slot the next Push writes to.
func (r *Ring) Cursor() int {
	return r.cursor
}

// Wrap reduces an absolute position to a slot index in [0, Len()).
func (r *Ring) Wrap(pos int) int {
	n := len(r.data)

	pos %= n
	if pos < 0 {
		pos += n
	}

	return pos
}

// Push writes one sample at the cursor and advances it.
func (r *Ring) Push(sample float64) {
	r.data[r.cursor] = sample

	r.cursor++
	if r.cursor == len(r.data) {
		r.cursor = 0
	}
}

// Write pushes a block of samples.
func (r *Ring) Write(samples []float64) {
	for _, s := range samples {
		r.Push(s)
	}
}

// At returns the sample at pos.
func (r *Ring) At(pos int) float64 {
	return r.data[r.Wrap(pos)]
}

// TakeAt returns the sample at pos and clears the slot.
func (r *Ring) TakeAt(pos int) float64 {
	i := r.Wrap(pos)
	v := r.data[i]
	r.data[i] = 0

	return v
}

// ReadWindowAt copies len(dst) samples starting at start into dst.
func (r *Ring) ReadWindowAt(dst []float64, start int) {
	head, tail := r.split(start, len(dst))
	n := copy(dst, r.data[head.lo:head.hi])
	copy(dst[n:], r.data[tail.lo:tail.hi])
}

// ReadLatest copies the newest len(dst) samples in chronological order,
// the last one being the most recently pushed.
func (r *Ring) ReadLatest(dst []float64) {
	r.ReadWindowAt(dst, r.cursor-len(dst))
}

// TakeWindowAt copies len(dst) samples starting at start into dst and
// clears the copied slots.
func (r *Ring) TakeWindowAt(dst []float64, start int) {
	head, tail := r.split(start, len(dst))
	n := copy(dst, r.data[head.lo:head.hi])
	copy(dst[n:], r.data[tail.lo:tail.hi])
	clear(r.data[head.lo:head.hi])
	clear(r.data[tail.lo:tail.hi])
}

// OverlapAddAt accumulates frame into the ring starting at start.
func (r *Ring) OverlapAddAt(start int, frame []float64) {
	if len(frame) == 0 {
		return
	}

	head, tail := r.split(start, len(frame))
	n := head.hi - head.lo
	vecmath.AddBlockInPlace(r.data[head.lo:head.hi], frame[:n])
	if tail.hi > 0 {
		vecmath.AddBlockInPlace(r.data[tail.lo:tail.hi], frame[n:])
	}
}

// Reset clears all samples and rewinds the cursor.
func (r *Ring) Reset() {
	clear(r.data)
	r.cursor = 0
}

type span struct{ lo, hi int }

// split maps n samples at start onto [start, cap) followed by [0, rest).
func (r *Ring) split(start, n int) (span, span) {
	if n > len(r.data) {
		panic(fmt.Sprintf("buffer: frame of %d samples exceeds ring capacity %d", n, len(r.data)))
	}

	lo := r.Wrap(start)
	if lo+n <= len(r.data) {
		return span{lo, lo + n}, span{}
	}

	return span{lo, len(r.data)}, span{0, lo + n - len(r.data)}
}

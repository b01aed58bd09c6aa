// Package median implements the horizontal (time-axis) and vertical
// (frequency-axis) median filters used to estimate how tonal or transient
// the energy in each spectral bin is.
//
// A horizontal filter keeps the last Size magnitude frames and returns, per
// bin, the median over time: sustained partials survive, broadband clicks
// are removed. A vertical filter works within one frame and returns, per
// bin, the median over its Size neighbours: broadband transients survive,
// isolated partials are removed.
//
// Both pick the element at rank Size/2 with an in-place selection and never
// fully sort. Resize reallocates and clears all state, so it must not be
// called from the audio path.
package median

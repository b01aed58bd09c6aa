// Package resample provides a streaming windowed-sinc fractional-rate
// interpolator. It reads an input stream at an arbitrary, per-call rate and
// produces a requested number of output samples, which is how the noise
// morpher turns its time-stretched noise back into pitch-shifted noise at
// the host rate.
//
// The kernel is a Kaiser-windowed sinc with a cutoff that follows the rate
// (min(1, 1/ratio)) so reading faster than real time does not alias.
// Reading at ratio 1 is an exact delay of Latency() samples.
package resample

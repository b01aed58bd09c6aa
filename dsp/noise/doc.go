// Package noise resynthesizes the noise component of a signal at a new
// pitch while keeping its time-varying spectral envelope.
//
// The Morpher measures the envelope of every analysis frame, shapes fresh
// Gaussian noise with it, overlap-adds the result into a time-stretched
// stream and reads that stream back at the pitch ratio with a windowed-sinc
// interpolator. At ratio 1 the noise step is bypassed and the morpher
// becomes an exact delay.
package noise

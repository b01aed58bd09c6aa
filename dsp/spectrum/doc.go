// Package spectrum provides the spectrum-domain helpers shared by the STFT
// stages: allocation-free magnitude and power, per-bin masking of real
// spectra and conversion to and from the log-magnitude domain used for
// envelope interpolation.
//
// The package does not implement the FFT itself; it operates on
// []complex128 bins produced by algo-fft plans.
package spectrum

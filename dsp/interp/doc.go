// Package interp provides the linear interpolation primitives used for
// envelope interpolation between analysis frames and for fractional bin
// reads in the spectral pitch shifter.
package interp

// Package pitch transposes the tonal part of a signal.
//
// Shifter is the streaming interface the pipeline drives. Spectral is the
// default implementation: a phase vocoder that moves every bin to ratio
// times its frequency and accumulates synthesis phase per bin.
package pitch

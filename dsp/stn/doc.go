// Package stn decomposes a mono signal into sines, transients and noise.
//
// Two cascaded STFT stages do the work. The coarse stage (long window)
// separates tonal energy from everything else; the fine stage (short
// window) splits the remainder into transients and noise. In each stage a
// horizontal and a vertical median filter estimate, per bin, how much of
// the energy persists over time versus spreads over frequency. The
// resulting transientness drives fuzzy raised-sine memberships that form a
// partition of unity over the three classes.
//
// Every stage is streaming and sample-accurate: an all-pass mask
// reproduces its input delayed by the window size, and the decomposer's
// three outputs always sum to the input delayed by Latency().
package stn

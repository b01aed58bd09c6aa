// Package window generates the analysis and synthesis windows used by the
// STFT stages and computes the overlap-add normalization that makes a
// windowed analysis/resynthesis pair an identity.
package window

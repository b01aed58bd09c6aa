// Package buffer provides the fixed-capacity circular sample buffer used by
// every streaming stage: input accumulation, overlap-add output and the
// noise and stretch stores of the noise morpher.
//
// Ring handles the wraparound of windowed reads and overlap-adds in one
// place by splitting each access into at most two contiguous ranges.
package buffer

// Package processor wires the STN decomposer, the tonal pitch shifter and
// the noise morpher into one mono pipeline.
//
// Parameters live in Params and may be written from any goroutine. The
// audio goroutine calls Prepare once per configuration and then Process
// per block; Process reads the parameters at block start and never
// allocates.
package processor

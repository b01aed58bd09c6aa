package processor

import "errors"

var (
	// ErrNotPrepared is returned by Process before a successful Prepare.
	ErrNotPrepared = errors.New("processor: not prepared")
	// ErrReconfigure is returned by Process when window sizes changed since
	// Prepare. Call Prepare again from a non-real-time context.
	ErrReconfigure = errors.New("processor: window sizes changed, prepare required")
	// ErrParamRange is returned by parameter setters for out-of-range values.
	ErrParamRange = errors.New("processor: parameter out of range")
	// ErrBlockLength is returned when Process buffers disagree in length or
	// exceed the prepared block size.
	ErrBlockLength = errors.New("processor: invalid block length")
)

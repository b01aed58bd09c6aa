package window

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroEnergy is returned when a window has no energy to normalize by.
	ErrZeroEnergy = errors.New("window: zero window energy")
	// ErrUnknownType is returned by Parse for unknown window names.
	ErrUnknownType = errors.New("window: unknown window type")

	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errZeroCoherentGain = errors.New("window coherent gain is zero")
)

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}
	return nil
}

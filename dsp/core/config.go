package core

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a ProcessorConfig cannot drive a stage.
var ErrInvalidConfig = errors.New("core: invalid processor config")

// ProcessorConfig is the immutable processing context handed to every
// stage at prepare time. Stages store it by value.
type ProcessorConfig struct {
	SampleRate   float64
	MaxBlockSize int
	Channels     int
}

// ProcessorOption mutates a ProcessorConfig while it is being built.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns a mono 48 kHz config with 512-sample blocks.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:   48000,
		MaxBlockSize: 512,
		Channels:     1,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithMaxBlockSize sets the largest block passed to Process.
func WithMaxBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.MaxBlockSize = blockSize
		}
	}
}

// WithChannels sets the channel count. Only mono is processed; other
// values are rejected by Validate.
func WithChannels(channels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if channels > 0 {
			cfg.Channels = channels
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Validate reports whether cfg describes a mono stream with a usable rate
// and block size.
func (c ProcessorConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidConfig, c.SampleRate)
	}

	if c.MaxBlockSize <= 0 {
		return fmt.Errorf("%w: max block size must be > 0: %d", ErrInvalidConfig, c.MaxBlockSize)
	}

	if c.Channels != 1 {
		return fmt.Errorf("%w: only mono is supported, got %d channels", ErrInvalidConfig, c.Channels)
	}

	return nil
}

// CheckBlock validates the length of a block against MaxBlockSize.
func (c ProcessorConfig) CheckBlock(n int) error {
	if n > c.MaxBlockSize {
		return fmt.Errorf("%w: block of %d samples exceeds max block size %d", ErrInvalidConfig, n, c.MaxBlockSize)
	}

	return nil
}

package core

import (
	"errors"
	"testing"
)

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(96000), WithMaxBlockSize(2048))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}
	if cfg.MaxBlockSize != 2048 {
		t.Fatalf("block size = %d, want 2048", cfg.MaxBlockSize)
	}
	if cfg.Channels != 1 {
		t.Fatalf("channels = %d, want 1", cfg.Channels)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithMaxBlockSize(-1), WithChannels(0), nil)
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestProcessorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProcessorConfig
		wantErr bool
	}{
		{name: "default", cfg: DefaultProcessorConfig()},
		{name: "zero rate", cfg: ProcessorConfig{SampleRate: 0, MaxBlockSize: 64, Channels: 1}, wantErr: true},
		{name: "zero block", cfg: ProcessorConfig{SampleRate: 44100, MaxBlockSize: 0, Channels: 1}, wantErr: true},
		{name: "stereo", cfg: ApplyProcessorOptions(WithChannels(2)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}

func TestCheckBlock(t *testing.T) {
	cfg := ApplyProcessorOptions(WithMaxBlockSize(256))
	if err := cfg.CheckBlock(256); err != nil {
		t.Fatalf("CheckBlock(256) error = %v", err)
	}
	if err := cfg.CheckBlock(257); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("CheckBlock(257) error = %v, want ErrInvalidConfig", err)
	}
}

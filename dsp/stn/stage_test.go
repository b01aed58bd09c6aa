package stn

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-stn/internal/testutil"
)

// combMask passes every third bin fully, blocks the next and halves the
// last.
type combMask struct{}

func (combMask) Mask(dst, _ []float64) {
	for i := range dst {
		dst[i] = float64(i%3) / 2
	}
}

func TestValidateGeometry(t *testing.T) {
	tests := []struct {
		size, overlap int
		want          error
	}{
		{2048, 8, nil},
		{128, 2, nil},
		{16384, 4, nil},
		{64, 8, ErrInvalidWindowSize},
		{32768, 8, ErrInvalidWindowSize},
		{1000, 8, ErrInvalidWindowSize},
		{512, 1, ErrInvalidOverlap},
		{512, 3, ErrInvalidOverlap},
	}

	for _, tt := range tests {
		err := ValidateGeometry(tt.size, tt.overlap)
		if tt.want == nil && err != nil {
			t.Errorf("ValidateGeometry(%d,%d) = %v", tt.size, tt.overlap, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("ValidateGeometry(%d,%d) = %v, want %v", tt.size, tt.overlap, err, tt.want)
		}
	}
}

func TestStageGeometry(t *testing.T) {
	s, err := NewStage(1024, 8, nil)
	if err != nil {
		t.Fatal(err)
	}

	if s.Size() != 1024 || s.Hop() != 128 || s.Bins() != 513 || s.Latency() != 1024 {
		t.Fatalf("geometry = size %d hop %d bins %d latency %d", s.Size(), s.Hop(), s.Bins(), s.Latency())
	}

	// Hann at overlap 8: hop / (3N/8) = 1/3.
	if g := s.Gain(); g < 1.0/3-1e-12 || g > 1.0/3+1e-12 {
		t.Fatalf("Gain() = %v, want 1/3", g)
	}
}

func TestStageAllPassIsDelay(t *testing.T) {
	for _, overlap := range []int{4, 8} {
		s, err := NewStage(256, overlap, nil)
		if err != nil {
			t.Fatal(err)
		}

		in := testutil.DeterministicNoise(11, 1, 3000)
		primary := make([]float64, len(in))
		secondary := make([]float64, len(in))

		if err := s.Process(in, primary, secondary); err != nil {
			t.Fatal(err)
		}

		testutil.RequireDelayed(t, primary, in, s.Latency(), 1e-9)
		testutil.RequireSliceNearlyEqual(t, secondary, make([]float64, len(in)), 1e-12)
	}
}

func TestStageOutputsSumToDelayedInput(t *testing.T) {
	s, err := NewStage(512, 8, combMask{})
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.Mix(
		testutil.DeterministicSine(440, 48000, 0.5, 6000),
		testutil.DeterministicNoise(5, 0.2, 6000),
	)
	primary := make([]float64, len(in))
	secondary := make([]float64, len(in))

	// Odd block sizes exercise hop boundaries inside a block.
	for start := 0; start < len(in); start += 77 {
		end := min(start+77, len(in))
		if err := s.Process(in[start:end], primary[start:end], secondary[start:end]); err != nil {
			t.Fatal(err)
		}
	}

	testutil.RequireDelayed(t, testutil.Mix(primary, secondary), in, 512, 1e-9)

	// The comb mask blocks a third of the bins, so the split is not trivial.
	if testutil.RMS(secondary) < 0.05 {
		t.Fatalf("secondary RMS = %v, expected a real split", testutil.RMS(secondary))
	}
}

func TestStageReset(t *testing.T) {
	s, err := NewStage(128, 4, nil)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.DeterministicNoise(9, 1, 700)
	first := make([]float64, len(in))
	second := make([]float64, len(in))
	scratch := make([]float64, len(in))

	if err := s.Process(in, first, scratch); err != nil {
		t.Fatal(err)
	}

	s.Reset()

	if err := s.Process(in, second, scratch); err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}

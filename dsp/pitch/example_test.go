package pitch_test

import (
	"fmt"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/pitch"
)

func ExampleSpectral() {
	s, err := pitch.NewSpectral(pitch.DefaultSize)
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := s.SetTransposeRatio(core.SemitonesToRatio(7)); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("latency:", s.Latency())
	// Output:
	// latency: 2048
}

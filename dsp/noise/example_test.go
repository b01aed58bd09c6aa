package noise_test

import (
	"fmt"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/noise"
)

func ExampleMorpher() {
	m, err := noise.NewMorpher(core.DefaultProcessorConfig(), noise.WithSeed(1))
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := m.SetRatio(2); err != nil {
		fmt.Println(err)
		return
	}

	in := make([]float64, 512)
	out := make([]float64, 512)
	if err := m.Process(in, out); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("latency:", m.Latency(), "ratio:", m.Ratio())
	// Output:
	// latency: 1042 ratio: 2
}

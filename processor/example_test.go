package processor_test

import (
	"fmt"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/processor"
)

func ExampleProcessor() {
	params := processor.NewParams()
	if err := params.SetSemitones(12); err != nil {
		fmt.Println(err)
		return
	}

	p := processor.New(params, processor.WithSeed(1))
	if err := p.Prepare(core.ApplyProcessorOptions(core.WithSampleRate(44100), core.WithMaxBlockSize(128))); err != nil {
		fmt.Println(err)
		return
	}

	block := make([]float64, 128)
	if err := p.Process(block, block); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("ratio %.1f, latency %d samples\n", params.Ratio(), p.Latency())
	// Output:
	// ratio 2.0, latency 4608 samples
}

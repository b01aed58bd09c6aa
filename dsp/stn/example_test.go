package stn_test

import (
	"fmt"

	"github.com/cwbudde/algo-stn/dsp/core"
	"github.com/cwbudde/algo-stn/dsp/stn"
)

func ExampleNewDecomposer() {
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(48000))

	d, err := stn.NewDecomposer(cfg, stn.WithCoarseSize(4096), stn.WithFineSize(256))
	if err != nil {
		fmt.Println(err)
		return
	}

	coarse, fine := d.Layout()
	fmt.Println("latency:", d.Latency())
	fmt.Println("coarse hop:", coarse.Hop, "fine hop:", fine.Hop)
	// Output:
	// latency: 4352
	// coarse hop: 512 fine hop: 32
}

func ExampleMembership() {
	th := stn.ThresholdsFrom(0.7)
	for _, r := range []float64{0.6, 0.75, 0.9} {
		fmt.Printf("%.2f -> %.2f\n", r, stn.Membership(r, th))
	}
	// Output:
	// 0.60 -> 0.00
	// 0.75 -> 0.50
	// 0.90 -> 1.00
}

package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-stn/dsp/buffer"
)

func ExampleRing() {
	r, err := buffer.NewRing(4)
	if err != nil {
		panic(err)
	}

	r.Write([]float64{1, 2, 3, 4, 5})

	latest := make([]float64, 3)
	r.ReadLatest(latest)
	fmt.Println(latest)

	r.OverlapAddAt(3, []float64{10, 10})
	fmt.Println(r.TakeAt(3), r.TakeAt(4), r.At(4))

	// Output:
	// [3 4 5]
	// 14 15 0
}

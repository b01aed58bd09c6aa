package window

import "fmt"

func ExampleGenerate() {
	w := Generate(TypeHann, 4)
	fmt.Printf("%.2f %.2f %.2f %.2f\n", w[0], w[1], w[2], w[3])
	// Output:
	// 0.00 0.75 0.75 0.00
}

func ExampleOverlapAddGain() {
	w := Generate(TypeHann, 2048, WithPeriodic())
	gain, _ := OverlapAddGain(w, 2048/8)
	fmt.Printf("%.4f\n", gain)
	// Output:
	// 0.3333
}

package noise

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Generator produces standard normal samples from a seedable source.
type Generator struct {
	dist distuv.Normal
}

// NewGenerator returns a N(0, 1) generator drawing from src. A nil src is
// replaced by a PCG seeded with 0.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = NewSource(0)
	}

	return &Generator{dist: distuv.Normal{Mu: 0, Sigma: 1, Src: src}}
}

// NewSource returns the PCG source used for a given seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x853c49e6748fea9b)
}

// Next returns one sample.
func (g *Generator) Next() float64 {
	return g.dist.Rand()
}

// Fill writes len(dst) samples.
func (g *Generator) Fill(dst []float64) {
	for i := range dst {
		dst[i] = g.dist.Rand()
	}
}

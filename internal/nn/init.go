package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Draws a fanIn x fanOut matrix from N(0, 1/(fanIn+fanOut)), which keeps the
// variance of pre-activations roughly constant across depth.
//
// Parameters:
//   - fanIn: Number of input units
//   - fanOut: Number of output units
//   - src: Random source shared by the whole network
//
// Returns the initialized weight matrix.
func Xavier(fanIn, fanOut int, src rand.Source) *mat.Dense {
	sigma := math.Sqrt(1 / float64(fanIn+fanOut))
	return tensor.Normal(tensor.Shape{Rows: fanIn, Cols: fanOut}, sigma, src)
}

// newSource seeds the network's generator; zero draws a random seed.
func newSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)
}

package nn

import (
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// Objective returns ½Σ(prediction-label)² over the valid rows of the
// current batch plus the regularization penalty. Gradients returns its
// derivative with respect to the weights.
func (n *Network) Objective() float64 {
	if n.valid == 0 {
		return n.penalty()
	}
	return 0.5*float64(n.valid)*(n.Cost()-n.penalty()) + n.penalty()
}

// NumericalGradient estimates the gradient of Objective with respect to the
// weights of layer index by central finite differences on the current batch.
//
// The weights are restored and the batch is forwarded again before returning.
func (n *Network) NumericalGradient(index int) (*mat.Dense, error) {
	if !n.initialized {
		return nil, ErrNotInitialized
	}
	if index < 0 || index >= len(n.layers)-1 {
		return nil, fmt.Errorf("%w: layer %d has no weights", ErrConfiguration, index)
	}

	w := n.layers[index].weights
	values := tensor.Data(w)
	orig := append([]float64(nil), values...)
	objective := func(x []float64) float64 {
		copy(values, x)
		n.forward()
		return n.Objective()
	}
	grad := fd.Gradient(nil, objective, orig, &fd.Settings{Formula: fd.Central})

	copy(values, orig)
	n.forward()
	r, c := w.Dims()
	return mat.NewDense(r, c, grad), nil
}

package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// RegularizationKind selects the weight penalty.
type RegularizationKind int

const (
	// None adds no penalty.
	None RegularizationKind = iota
	// L1 adds λΣ|w|.
	L1
	// L2 adds λΣw².
	L2
)

// String returns the lowercase name of the kind.
func (k RegularizationKind) String() string {
	switch k {
	case None:
		return "none"
	case L1:
		return "l1"
	case L2:
		return "l2"
	default:
		return fmt.Sprintf("RegularizationKind(%d)", int(k))
	}
}

// Regularization is a weight penalty added to the cost and its gradient
// added to every weight gradient.
type Regularization struct {
	Kind   RegularizationKind
	Lambda float64
}

func (r Regularization) validate() error {
	if r.Kind < None || r.Kind > L2 {
		return fmt.Errorf("%w: unknown regularization %v", ErrConfiguration, r.Kind)
	}
	if r.Lambda < 0 {
		return fmt.Errorf("%w: negative regularization strength %v", ErrConfiguration, r.Lambda)
	}
	return nil
}

// Penalty returns the penalty of one weight matrix.
func (r Regularization) Penalty(w *mat.Dense) float64 {
	if r.Kind == None || r.Lambda == 0 || w == nil {
		return 0
	}
	values := tensor.Data(w)
	switch r.Kind {
	case L1:
		return r.Lambda * floats.Norm(values, 1)
	case L2:
		return r.Lambda * floats.Dot(values, values)
	}
	return 0
}

// addGradient adds the penalty gradient for w to grad.
func (r Regularization) addGradient(grad, w *mat.Dense) {
	if r.Kind == None || r.Lambda == 0 {
		return
	}
	dst, values := tensor.Data(grad), tensor.Data(w)
	switch r.Kind {
	case L1:
		for i, v := range values {
			if v != 0 {
				dst[i] += r.Lambda * math.Copysign(1, v)
			}
		}
	case L2:
		floats.AddScaled(dst, 2*r.Lambda, values)
	}
}

// penalty sums the regularization penalty over every weight matrix.
func (n *Network) penalty() float64 {
	var sum float64
	for _, l := range n.layers {
		sum += n.cfg.Regularization.Penalty(l.weights)
	}
	return sum
}

package optim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// SGD implements plain gradient descent.
//
// Update rule:
//
//	weights = weights - lr * gradient
type SGD struct{}

// SGDConfig holds configuration for SGD. It has no fields; it exists so
// every optimizer is built the same way.
type SGDConfig struct{}

// NewSGD creates a new SGD optimizer.
func NewSGD(SGDConfig) *SGD {
	return &SGD{}
}

// Name returns "sgd".
func (s *SGD) Name() string { return "sgd" }

// NewState allocates an unused first moment so every layer carries
// state of the weights' shape.
func (s *SGD) NewState(shape tensor.Shape) *State {
	return newState(shape, false)
}

// Update performs weights -= lr * grad.
func (s *SGD) Update(weights, grad *mat.Dense, state *State, lr float64) {
	checkShapes("sgd", weights, grad, state)
	floats.AddScaled(tensor.Data(weights), -lr, tensor.Data(grad))
	state.Steps++
}

// EndEpoch is a no-op.
func (s *SGD) EndEpoch() {}

// Clone returns a new SGD.
func (s *SGD) Clone() Optimizer { return &SGD{} }

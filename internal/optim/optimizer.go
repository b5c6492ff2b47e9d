// Package optim implements the weight update rules used during training.
//
// This package provides:
//   - Optimizer interface: one update rule shared by every layer of a network
//   - State: per-layer moment estimates, shaped like the layer's weights
//   - Momentum, Demon, Adam, Adamax and SGD update rules
//
// An optimizer holds hyperparameters and schedule position only. Moment
// estimates live in the State owned by each layer, and every network works
// on its own Clone, so no state is shared between layers or networks.
//
// Example usage:
//
//	opt := optim.NewAdam(optim.AdamConfig{Beta1: 0.9, Beta2: 0.999})
//	state := opt.NewState(tensor.ShapeOf(weights))
//	opt.Update(weights, grad, state, 0.001)
package optim

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// ErrUnknownOptimizer is returned by Parse for unregistered names.
var ErrUnknownOptimizer = errors.New("unknown optimizer")

// Optimizer is the interface for all weight update rules.
//
// All optimizers must implement:
//   - Name: registry name, used in logs and checkpoints
//   - NewState: allocate zeroed per-layer state for a weight shape
//   - Update: apply one step to weights in place
//   - EndEpoch: advance epoch-based schedules
//   - Clone: copy hyperparameters and schedule position
//
// A network clones the optimizer it is configured with, so one value may
// seed several networks without their schedules interfering.
type Optimizer interface {
	// Name returns the registry name ("momentum", "adam", ...).
	Name() string

	// NewState allocates zero-filled state for weights of the given shape.
	NewState(shape tensor.Shape) *State

	// Update applies one step to weights using grad and the layer's state.
	//
	// weights, grad, and every non-nil matrix in state must share a shape.
	// Both weights and state are mutated in place.
	Update(weights, grad *mat.Dense, state *State, lr float64)

	// EndEpoch is called once after every training epoch.
	EndEpoch()

	// Clone returns an independent optimizer in the same position.
	Clone() Optimizer
}

// Scheduled is implemented by optimizers whose rule depends on the number
// of completed epochs. Checkpoints save and restore that position.
type Scheduled interface {
	Epoch() int
	SetEpoch(epoch int)
}

// State holds a layer's moment estimates.
type State struct {
	M     *mat.Dense // First moment, same shape as the weights.
	V     *mat.Dense // Second moment; nil for optimizers without one.
	Steps int        // Number of updates applied with this state.
}

// newState allocates M, and V when second is true.
func newState(shape tensor.Shape, second bool) *State {
	s := &State{M: tensor.Zeros(shape)}
	if second {
		s.V = tensor.Zeros(shape)
	}
	return s
}

// Reset zeroes the moments and the step count.
func (s *State) Reset() {
	s.M.Zero()
	if s.V != nil {
		s.V.Zero()
	}
	s.Steps = 0
}

// Matrices returns the non-nil state matrices keyed by name ("m", "v").
func (s *State) Matrices() map[string]*mat.Dense {
	out := map[string]*mat.Dense{"m": s.M}
	if s.V != nil {
		out["v"] = s.V
	}
	return out
}

// checkShapes panics if grad or state does not match weights.
func checkShapes(name string, weights, grad *mat.Dense, state *State) {
	want := tensor.ShapeOf(weights)
	if got := tensor.ShapeOf(grad); !got.Equal(want) {
		panic(fmt.Sprintf("%s: gradient shape %v does not match weights %v", name, got, want))
	}
	if got := tensor.ShapeOf(state.M); !got.Equal(want) {
		panic(fmt.Sprintf("%s: state shape %v does not match weights %v", name, got, want))
	}
}

// Parse builds an optimizer from its name using default hyperparameters:
// momentum β=0.9; demon β₀=0.9 over 50 epochs; adam and adamax β1=0.999,
// β2=0.9, ε=1e-6; sgd has none.
func Parse(name string) (Optimizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "momentum":
		return NewMomentum(MomentumConfig{}), nil
	case "demon":
		return NewDemon(DemonConfig{}), nil
	case "adam":
		return NewAdam(AdamConfig{}), nil
	case "adamax":
		return NewAdamax(AdamaxConfig{}), nil
	case "sgd", "plain":
		return NewSGD(SGDConfig{}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOptimizer, name)
	}
}

// Names lists the names accepted by Parse.
func Names() []string {
	return []string{"momentum", "demon", "adam", "adamax", "sgd"}
}

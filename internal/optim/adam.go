package optim

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam combines ideas from RMSprop and momentum:
//   - Maintains exponential moving averages of gradients (first moment)
//   - Maintains exponential moving averages of squared gradients (second moment)
//   - Optionally applies bias correction to compensate for initialization at zero
//
// Update rule:
//
//	m = beta1 * m + (1-beta1) * gradient
//	v = beta2 * v + (1-beta2) * gradient²
//	weights = weights - lr * m / (sqrt(v) + eps)
//
// With BiasCorrection, m and v are divided by (1 - beta^t) before the
// weight update, t being the layer's step count.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	beta1          float64
	beta2          float64
	eps            float64
	biasCorrection bool
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	Beta1          float64 // First moment decay (default: 0.999)
	Beta2          float64 // Second moment decay (default: 0.9)
	Eps            float64 // Term for numerical stability (default: 1e-6)
	BiasCorrection bool    // Apply Kingma & Ba bias correction (default: false)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - Beta1: 0.999
//   - Beta2: 0.9
//   - Eps: 1e-6
func NewAdam(config AdamConfig) *Adam {
	if config.Beta1 == 0 {
		config.Beta1 = 0.999
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-6
	}

	return &Adam{
		beta1:          config.Beta1,
		beta2:          config.Beta2,
		eps:            config.Eps,
		biasCorrection: config.BiasCorrection,
	}
}

// Name returns "adam".
func (a *Adam) Name() string { return "adam" }

// NewState allocates both moments.
func (a *Adam) NewState(shape tensor.Shape) *State {
	return newState(shape, true)
}

// Update performs one Adam step.
func (a *Adam) Update(weights, grad *mat.Dense, state *State, lr float64) {
	checkShapes(a.Name(), weights, grad, state)
	state.Steps++

	correction1, correction2 := 1.0, 1.0
	if a.biasCorrection {
		correction1 = 1 - math.Pow(a.beta1, float64(state.Steps))
		correction2 = 1 - math.Pow(a.beta2, float64(state.Steps))
	}

	w, g := tensor.Data(weights), tensor.Data(grad)
	m, v := tensor.Data(state.M), tensor.Data(state.V)
	for i := range w {
		m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
		v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]

		mHat := m[i] / correction1
		vHat := v[i] / correction2
		w[i] -= lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
}

// EndEpoch is a no-op.
func (a *Adam) EndEpoch() {}

// Clone returns a copy of a.
func (a *Adam) Clone() Optimizer {
	c := *a
	return &c
}

// Adamax is the infinity-norm variant of Adam.
//
// Update rule:
//
//	m = beta1 * m + (1-beta1) * gradient
//	v = max(beta2 * v, |gradient|)      (elementwise)
//	weights = weights - lr * m / (v + eps)
type Adamax struct {
	beta1 float64
	beta2 float64
	eps   float64
}

// AdamaxConfig holds configuration for Adamax optimizer.
type AdamaxConfig struct {
	Beta1 float64 // First moment decay (default: 0.999)
	Beta2 float64 // Infinity-norm decay (default: 0.9)
	Eps   float64 // Guards the division while v is still zero (default: 1e-6)
}

// NewAdamax creates a new Adamax optimizer.
func NewAdamax(config AdamaxConfig) *Adamax {
	if config.Beta1 == 0 {
		config.Beta1 = 0.999
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-6
	}
	return &Adamax{beta1: config.Beta1, beta2: config.Beta2, eps: config.Eps}
}

// Name returns "adamax".
func (a *Adamax) Name() string { return "adamax" }

// NewState allocates both moments.
func (a *Adamax) NewState(shape tensor.Shape) *State {
	return newState(shape, true)
}

// Update performs one Adamax step.
func (a *Adamax) Update(weights, grad *mat.Dense, state *State, lr float64) {
	checkShapes(a.Name(), weights, grad, state)
	state.Steps++

	w, g := tensor.Data(weights), tensor.Data(grad)
	m, v := tensor.Data(state.M), tensor.Data(state.V)
	for i := range w {
		m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
		v[i] = math.Max(a.beta2*v[i], math.Abs(g[i]))
		w[i] -= lr * m[i] / (v[i] + a.eps)
	}
}

// EndEpoch is a no-op.
func (a *Adamax) EndEpoch() {}

// Clone returns a copy of a.
func (a *Adamax) Clone() Optimizer {
	c := *a
	return &c
}

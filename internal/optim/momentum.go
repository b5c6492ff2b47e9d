package optim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// Momentum carries the previous step into the current one.
//
// Update rule (m is the scaled step from the previous call):
//
//	weights = weights - (beta * m + lr * gradient)
//	m       = lr * gradient
type Momentum struct {
	beta float64
}

// MomentumConfig holds configuration for Momentum.
type MomentumConfig struct {
	Beta float64 // Weight of the previous step (default: 0.9)
}

// NewMomentum creates a new Momentum optimizer.
func NewMomentum(config MomentumConfig) *Momentum {
	if config.Beta == 0 {
		config.Beta = 0.9
	}
	return &Momentum{beta: config.Beta}
}

// Name returns "momentum".
func (o *Momentum) Name() string { return "momentum" }

// Beta returns the momentum coefficient.
func (o *Momentum) Beta() float64 { return o.beta }

// NewState allocates the first moment.
func (o *Momentum) NewState(shape tensor.Shape) *State {
	return newState(shape, false)
}

// Update applies one momentum step.
func (o *Momentum) Update(weights, grad *mat.Dense, state *State, lr float64) {
	checkShapes(o.Name(), weights, grad, state)
	momentumStep(weights, grad, state, lr, o.beta)
}

// EndEpoch is a no-op.
func (o *Momentum) EndEpoch() {}

// Clone returns a copy of o.
func (o *Momentum) Clone() Optimizer {
	c := *o
	return &c
}

func momentumStep(weights, grad *mat.Dense, state *State, lr, beta float64) {
	w, g, m := tensor.Data(weights), tensor.Data(grad), tensor.Data(state.M)
	floats.AddScaled(w, -beta, m)
	floats.AddScaled(w, -lr, g)
	floats.ScaleTo(m, lr, g)
	state.Steps++
}

// Demon is momentum whose coefficient decays over a fixed epoch budget
// ("Decaying Momentum"):
//
//	frac = 1 - t/maxEpochs
//	beta = beta0*frac / (beta0*frac + (1 - beta0))
//
// where t counts completed epochs. Once t reaches maxEpochs beta stays at 0
// and the rule reduces to plain gradient descent.
type Demon struct {
	beta0     float64
	maxEpochs int
	epoch     int
}

// DemonConfig holds configuration for Demon.
type DemonConfig struct {
	Beta      float64 // Initial momentum coefficient (default: 0.9)
	MaxEpochs int     // Epochs over which beta decays to 0 (default: 50)
}

// NewDemon creates a new Demon optimizer.
func NewDemon(config DemonConfig) *Demon {
	if config.Beta == 0 {
		config.Beta = 0.9
	}
	if config.MaxEpochs <= 0 {
		config.MaxEpochs = 50
	}
	return &Demon{beta0: config.Beta, maxEpochs: config.MaxEpochs}
}

// Name returns "demon".
func (o *Demon) Name() string { return "demon" }

// Beta returns the coefficient for the current epoch.
func (o *Demon) Beta() float64 {
	frac := 1 - float64(o.epoch)/float64(o.maxEpochs)
	if frac <= 0 {
		return 0
	}
	decayed := o.beta0 * frac
	return decayed / (decayed + (1 - o.beta0))
}

// Epoch returns the number of completed epochs.
func (o *Demon) Epoch() int { return o.epoch }

// NewState allocates the first moment.
func (o *Demon) NewState(shape tensor.Shape) *State {
	return newState(shape, false)
}

// Update applies one momentum step with the decayed coefficient.
func (o *Demon) Update(weights, grad *mat.Dense, state *State, lr float64) {
	checkShapes(o.Name(), weights, grad, state)
	momentumStep(weights, grad, state, lr, o.Beta())
}

// EndEpoch advances the decay schedule.
func (o *Demon) EndEpoch() {
	o.epoch++
}

// SetEpoch moves the schedule to the given number of completed epochs.
func (o *Demon) SetEpoch(epoch int) {
	o.epoch = max(epoch, 0)
}

// Clone returns a copy of o at the same epoch.
func (o *Demon) Clone() Optimizer {
	c := *o
	return &c
}

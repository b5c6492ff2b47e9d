// Copyright 2025 The Jacobian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/jacobian-ml/jacobian/internal/optim"
)

// Optimizer is the interface for all weight update rules.
type Optimizer = optim.Optimizer

// State holds a layer's moment estimates.
type State = optim.State

// Scheduled is implemented by optimizers with an epoch schedule.
type Scheduled = optim.Scheduled

// ErrUnknownOptimizer is returned by Parse for unknown names.
var ErrUnknownOptimizer = optim.ErrUnknownOptimizer

// Parse builds an optimizer from its name using default hyperparameters.
func Parse(name string) (Optimizer, error) {
	return optim.Parse(name)
}

// Names lists the names accepted by Parse.
func Names() []string {
	return optim.Names()
}

// Momentum

// Momentum applies the previous step scaled by Beta on top of the gradient step.
type Momentum = optim.Momentum

// MomentumConfig contains configuration for Momentum.
type MomentumConfig = optim.MomentumConfig

// NewMomentum creates a momentum optimizer (default Beta 0.9).
func NewMomentum(config MomentumConfig) *Momentum {
	return optim.NewMomentum(config)
}

// Demon (decaying momentum)

// Demon is momentum whose β decays over MaxEpochs epochs.
type Demon = optim.Demon

// DemonConfig contains configuration for Demon.
type DemonConfig = optim.DemonConfig

// NewDemon creates a Demon optimizer (default Beta 0.9 over 50 epochs).
func NewDemon(config DemonConfig) *Demon {
	return optim.NewDemon(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer.
//
// Example:
//
//	opt := optim.NewAdam(optim.AdamConfig{
//	    Beta1: 0.999,
//	    Beta2: 0.9,
//	    Eps:   1e-6,
//	})
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// Adamax

// Adamax represents the Adamax optimizer.
type Adamax = optim.Adamax

// AdamaxConfig contains configuration for Adamax.
type AdamaxConfig = optim.AdamaxConfig

// NewAdamax creates an Adamax optimizer.
func NewAdamax(config AdamaxConfig) *Adamax {
	return optim.NewAdamax(config)
}

// SGD (plain gradient descent)

// SGD represents plain gradient descent.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates a plain gradient descent optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

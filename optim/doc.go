// Copyright 2025 The Jacobian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the weight update rules used by nn.Network.
//
// # Optimizers
//
//   - Momentum: m = lr·g; w -= β·m_prev + lr·g
//   - Demon: momentum with β decayed once per epoch towards zero
//   - Adam: first and second moment estimates, optional bias correction
//   - Adamax: Adam with an elementwise infinity-norm second moment
//   - SGD: w -= lr·g
//
// Each optimizer keeps its per-layer moments in a State shaped like the
// layer's weights. Hyperparameters are fixed when the optimizer is built and
// apply to every layer of the network it is bound to.
//
// # Basic Usage
//
//	opt := optim.NewAdam(optim.AdamConfig{Beta1: 0.9, Beta2: 0.999, BiasCorrection: true})
//	net, err := nn.NewNetwork("train.csv", nn.Config{Optimizer: opt})
//
// Parse builds any optimizer from its name with default hyperparameters:
//
//	opt, err := optim.Parse("adamax")
package optim

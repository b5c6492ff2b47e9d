// Copyright 2025 The Jacobian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a multilayer perceptron trained by minibatch backpropagation.
//
// # Overview
//
// A Network is an ordered list of fully connected layers. Each layer has a
// width and an activation function chosen by name from the activation
// registry, or supplied by the caller. Training reads fixed-size batches from
// a data source, runs a forward pass, backpropagates the squared error and
// updates the weights through a pluggable optimizer.
//
// # Basic Usage
//
//	import (
//	    "github.com/jacobian-ml/jacobian/nn"
//	    "github.com/jacobian-ml/jacobian/optim"
//	)
//
//	func main() {
//	    net, err := nn.NewNetwork("data_banknote_authentication.txt", nn.Config{
//	        BatchSize: 16,
//	        Optimizer: optim.NewMomentum(optim.MomentumConfig{Beta: 0.9}),
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer net.Close()
//
//	    net.AddLayer(4, "linear")
//	    net.AddLayer(5, "lecun_tanh")
//	    net.AddLayer(2, "linear")
//	    if err := net.Initialize(); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    if _, err := net.Train(50); err != nil {
//	        log.Fatal(err)
//	    }
//	    acc, err := net.Test("test.txt")
//	}
//
// # Labels
//
// A network with one output learns the raw label. A network with k > 1
// outputs learns the one-hot encoding of an integer label in [0, k), and
// accuracy compares the largest output against the label.
//
// # Checkpoints
//
// Save and Load store weights, biases and optimizer state as float64
// SafeTensors with a SHA-256 checksum of the tensor data.
package nn

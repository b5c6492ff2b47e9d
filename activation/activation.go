// Copyright 2025 The Jacobian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package activation provides the named activation functions of a network layer.
//
// Registered names: linear, sigmoid, tanh, lecun_tanh, step, inverse_logit,
// softplus, cloglog, relu, resig, leaky_relu, hard_tanh, bipolar and
// bipolar_sigmoid.
//
// Example:
//
//	a, err := activation.Default.Lookup("lecun_tanh")
//	y := a.F(0.5)
//	dy := a.Deriv(0.5)
package activation

import (
	"github.com/jacobian-ml/jacobian/internal/activation"
)

// Func is a scalar function applied elementwise.
type Func = activation.Func

// Kind identifies a registered activation.
type Kind = activation.Kind

// Activation pairs a function with its derivative.
type Activation = activation.Activation

// Registry maps names to activations built on one exponential.
type Registry = activation.Registry

var (
	// Default is the registry built on math.Exp.
	Default = activation.Default

	// Fast is the registry built on FastExp.
	Fast = activation.Fast

	// ErrUnknown is returned for names missing from a registry.
	ErrUnknown = activation.ErrUnknown
)

// FastExp approximates e^x from the IEEE-754 bit pattern.
// The relative error stays below about 4%.
func FastExp(x float64) float64 {
	return activation.FastExp(x)
}

// Rectify zeroes the negative domain of a and of its derivative.
func Rectify(a Activation) Activation {
	return activation.Rectify(a)
}

// Leaky returns the leaky rectifier with negative-domain slope alpha.
func Leaky(alpha float64) Activation {
	return activation.Leaky(alpha)
}

// NewCustom wraps a caller-supplied function pair.
func NewCustom(name string, f, deriv Func) Activation {
	return activation.NewCustom(name, f, deriv)
}

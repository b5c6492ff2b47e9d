// Copyright 2025 The Jacobian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/jacobian-ml/jacobian/internal/data"
	"github.com/jacobian-ml/jacobian/internal/nn"
)

// Network is a fully connected feedforward network bound to a data source.
type Network = nn.Network

// Layer is one stage of a Network.
type Layer = nn.Layer

// Config contains the hyperparameters and wiring of a Network.
type Config = nn.Config

// NewNetwork creates a network that trains on the dataset file at path.
//
// Example:
//
//	net, err := nn.NewNetwork("train.csv", nn.Config{BatchSize: 16, Seed: 1})
func NewNetwork(path string, cfg Config) (*Network, error) {
	return nn.NewNetwork(path, cfg)
}

// NewNetworkFromSource creates a network around an existing source.
// src may be nil for networks driven through SetBatch only.
func NewNetworkFromSource(src data.Source, cfg Config) (*Network, error) {
	return nn.NewNetworkFromSource(src, cfg)
}

// Training results

// EpochStats summarizes one training epoch.
type EpochStats = nn.EpochStats

// Evaluation is the result of scoring a whole source.
type Evaluation = nn.Evaluation

// Regularization

// Regularization is a weight penalty added to the cost.
type Regularization = nn.Regularization

// RegularizationKind selects the weight penalty.
type RegularizationKind = nn.RegularizationKind

// Regularization kinds.
const (
	None = nn.None
	L1   = nn.L1
	L2   = nn.L2
)

// Numeric health

// HealthReport summarizes a scan of the network state.
type HealthReport = nn.HealthReport

// Anomaly locates one suspicious value.
type Anomaly = nn.Anomaly

// AnomalyKind classifies a suspicious value.
type AnomalyKind = nn.AnomalyKind

// AnomalyPolicy decides when numeric anomalies stop training.
type AnomalyPolicy = nn.AnomalyPolicy

// AnomalyError reports an epoch that exceeded the AnomalyPolicy.
type AnomalyError = nn.AnomalyError

// Anomaly kinds.
const (
	NaN     = nn.NaN
	PosInf  = nn.PosInf
	NegInf  = nn.NegInf
	NegZero = nn.NegZero
)

// Errors

var (
	ErrConfiguration     = nn.ErrConfiguration
	ErrUnknownActivation = nn.ErrUnknownActivation
	ErrTopology          = nn.ErrTopology
	ErrNotInitialized    = nn.ErrNotInitialized
	ErrNoSource          = nn.ErrNoSource
	ErrLabelRange        = nn.ErrLabelRange
	ErrNumericAnomaly    = nn.ErrNumericAnomaly
)

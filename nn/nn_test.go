// Copyright 2025 The Jacobian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobian-ml/jacobian/activation"
	"github.com/jacobian-ml/jacobian/data"
	"github.com/jacobian-ml/jacobian/nn"
	"github.com/jacobian-ml/jacobian/optim"
)

// xorish returns a small two-class problem: label 1 when both features share a sign.
func xorish() ([][]float64, []float64) {
	var rows [][]float64
	var labels []float64
	for i := 0; i < 64; i++ {
		x := float64(i%8)/4 - 0.875
		y := float64(i/8)/4 - 0.875
		rows = append(rows, []float64{x, y})
		if x*y > 0 {
			labels = append(labels, 1)
		} else {
			labels = append(labels, 0)
		}
	}
	return rows, labels
}

// TestPublicAPI drives a network through the facade packages only.
func TestPublicAPI(t *testing.T) {
	rows, labels := xorish()
	src, err := data.NewMemorySource(rows, labels, 1)
	require.NoError(t, err)

	opt, err := optim.Parse("adam")
	require.NoError(t, err)

	net, err := nn.NewNetworkFromSource(src, nn.Config{
		BatchSize:      8,
		Optimizer:      opt,
		Seed:           3,
		Regularization: nn.Regularization{Kind: nn.L2, Lambda: 1e-4},
	})
	require.NoError(t, err)
	require.NoError(t, net.AddLayer(2, "linear"))
	require.NoError(t, net.AddLayer(6, "tanh"))
	require.NoError(t, net.AddPReLULayer(3, 0.1))
	require.NoError(t, net.AddLayer(2, "sigmoid"))
	require.NoError(t, net.Initialize())

	stats, err := net.Train(5)
	require.NoError(t, err)
	require.Len(t, stats, 5)
	assert.Equal(t, 8, stats[0].Batches)

	eval, err := net.Evaluate(src)
	require.NoError(t, err)
	assert.Equal(t, 64, eval.Instances)
	assert.True(t, net.CheckHealth().Healthy(false))

	path := filepath.Join(t.TempDir(), "xor.safetensors")
	require.NoError(t, net.Save(path))
	require.NoError(t, net.Load(path))
}

func TestPublicErrors(t *testing.T) {
	net, err := nn.NewNetworkFromSource(nil, nn.Config{})
	require.NoError(t, err)
	assert.ErrorIs(t, net.AddLayer(3, "gelu"), nn.ErrUnknownActivation)
	assert.ErrorIs(t, net.AddLayer(3, "gelu"), activation.ErrUnknown)
	assert.ErrorIs(t, net.Initialize(), nn.ErrTopology)

	_, err = optim.Parse("rmsprop")
	assert.ErrorIs(t, err, optim.ErrUnknownOptimizer)

	_, err = data.Open(filepath.Join(t.TempDir(), "absent.csv"), data.Options{})
	assert.Error(t, err)
}

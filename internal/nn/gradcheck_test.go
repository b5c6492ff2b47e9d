package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

func TestGradients_MatchFiniteDifferences(t *testing.T) {
	tests := []struct {
		name    string
		layers  []layerSpec
		classes int
		reg     Regularization
	}{
		{
			name:    "two layers",
			layers:  []layerSpec{{3, "linear"}, {2, "sigmoid"}},
			classes: 2,
		},
		{
			name:    "one hidden layer",
			layers:  []layerSpec{{3, "linear"}, {4, "sigmoid"}, {2, "linear"}},
			classes: 2,
		},
		{
			name:    "deep single output",
			layers:  []layerSpec{{2, "tanh"}, {3, "softplus"}, {3, "cloglog"}, {1, "sigmoid"}},
			classes: 2,
		},
		{
			name:    "l2 penalty",
			layers:  []layerSpec{{4, "linear"}, {5, "bipolar_sigmoid"}, {3, "inverse_logit"}},
			classes: 3,
			reg:     Regularization{Kind: L2, Lambda: 0.1},
		},
		{
			name:    "l1 penalty",
			layers:  []layerSpec{{3, "linear"}, {3, "tanh"}, {2, "linear"}},
			classes: 2,
			reg:     Regularization{Kind: L1, Lambda: 0.05},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := build(t, Config{BatchSize: 5, Seed: 21, Regularization: tt.reg}, tt.layers...)
			for i, l := range n.Layers()[1:] {
				row := make([]float64, l.Nodes())
				for j := range row {
					row[j] = 0.1 * float64(j-i)
				}
				tensor.FillRows(l.Bias(), row)
			}
			inputs, labels := randomBatch(n, tt.classes, 4)
			require.NoError(t, n.SetBatch(inputs, labels))

			require.NoError(t, n.Feedforward())
			analytic, err := n.Gradients()
			require.NoError(t, err)
			require.Len(t, analytic, len(tt.layers)-1)

			for i := range analytic {
				numeric, err := n.NumericalGradient(i)
				require.NoError(t, err)
				assert.InDeltaSlice(t, tensor.Data(numeric), tensor.Data(analytic[i]), 1e-4, "layer %d", i)
			}
		})
	}
}

func TestNumericalGradient_RestoresWeights(t *testing.T) {
	n := build(t, Config{BatchSize: 3}, layerSpec{2, "linear"}, layerSpec{3, "tanh"}, layerSpec{1, "linear"})
	inputs, labels := randomBatch(n, 2, 8)
	require.NoError(t, n.SetBatch(inputs, labels))
	require.NoError(t, n.Feedforward())

	before := mat.DenseCopyOf(n.Layers()[0].Weights())
	prediction := mat.DenseCopyOf(n.Prediction())
	_, err := n.NumericalGradient(0)
	require.NoError(t, err)

	assert.True(t, mat.Equal(before, n.Layers()[0].Weights()))
	assert.True(t, mat.Equal(prediction, n.Prediction()))

	_, err = n.NumericalGradient(2)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestBackpropagate_AppliesGradients(t *testing.T) {
	const lr = 0.05
	n := build(t, Config{BatchSize: 4, LearningRate: lr, Optimizer: sgd()},
		layerSpec{3, "linear"}, layerSpec{4, "sigmoid"}, layerSpec{2, "linear"})
	inputs, labels := randomBatch(n, 2, 2)
	require.NoError(t, n.SetBatch(inputs, labels))
	require.NoError(t, n.Feedforward())

	grads, err := n.Gradients()
	require.NoError(t, err)
	var want []*mat.Dense
	for i, g := range grads {
		w := mat.DenseCopyOf(n.Layers()[i].Weights())
		w.Sub(w, scaled(lr, g))
		want = append(want, w)
	}

	require.NoError(t, n.Backpropagate())
	for i, w := range want {
		assert.True(t, mat.EqualApprox(w, n.Layers()[i].Weights(), 1e-12), "layer %d", i)
	}
}

func scaled(f float64, m *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Scale(f, m)
	return &out
}

// A two-layer identity network on two tight, linearly separable clusters.
func TestCost_DecreasesOnToyData(t *testing.T) {
	n := build(t, Config{BatchSize: 8, LearningRate: 0.01, BiasLearningRate: 0.01, Optimizer: sgd(), Seed: 17},
		layerSpec{2, "linear"}, layerSpec{1, "linear"})

	inputs := mat.NewDense(8, 2, nil)
	labels := make([]float64, 8)
	noise := []float64{0.03, -0.02, 0.01, 0.04, -0.05, 0.02, -0.01, -0.03}
	for i := 0; i < 8; i++ {
		center := 1.0
		if i%2 == 1 {
			center = -1
		} else {
			labels[i] = 1
		}
		inputs.Set(i, 0, center+noise[i])
		inputs.Set(i, 1, center-noise[7-i])
	}
	require.NoError(t, n.SetBatch(inputs, labels))

	require.NoError(t, n.Feedforward())
	initial := n.Cost()
	require.Greater(t, initial, 0.0)
	for step := 0; step < 1000; step++ {
		require.NoError(t, n.Feedforward())
		require.NoError(t, n.Backpropagate())
	}
	require.NoError(t, n.Feedforward())
	assert.Less(t, n.Cost(), 0.1*initial)
	assert.Equal(t, 1.0, n.Accuracy())
}

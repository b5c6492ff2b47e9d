package nn

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/data"
	"github.com/jacobian-ml/jacobian/internal/optim"
)

// banknoteWeights separates the synthetic classes: label 1 when the
// weighted feature sum is positive.
var banknoteWeights = []float64{1, -0.8, 0.6, 0.3}

// banknoteRows draws n rows of four N(0, 0.5²) features with a linearly
// separable 0/1 label.
func banknoteRows(n int, seed uint64) ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	rows := make([][]float64, n)
	labels := make([]float64, n)
	for i := range rows {
		row := make([]float64, len(banknoteWeights))
		var score float64
		for j := range row {
			row[j] = 0.5 * rng.NormFloat64()
			score += banknoteWeights[j] * row[j]
		}
		rows[i] = row
		if score > 0 {
			labels[i] = 1
		}
	}
	return rows, labels
}

// writeBanknote writes a banknote-style dataset file and returns its path.
func writeBanknote(t *testing.T, name string, n int, seed uint64) string {
	t.Helper()
	rows, labels := banknoteRows(n, seed)
	var b strings.Builder
	for i, row := range rows {
		for _, v := range row {
			fmt.Fprintf(&b, "%.6f,", v)
		}
		fmt.Fprintf(&b, "%d\n", int(labels[i]))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

// layerSpec is one layer of a test topology.
type layerSpec struct {
	nodes int
	act   string
}

// build creates and initializes a source-less network.
func build(t *testing.T, cfg Config, layers ...layerSpec) *Network {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	n, err := NewNetworkFromSource(nil, cfg)
	require.NoError(t, err)
	for _, l := range layers {
		require.NoError(t, n.AddLayer(l.nodes, l.act))
	}
	require.NoError(t, n.Initialize())
	return n
}

// randomBatch fills a batch with N(0,1) inputs and class labels i % classes.
func randomBatch(n *Network, classes int, seed uint64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed+7))
	batch := n.cfg.BatchSize
	inputs := mat.NewDense(batch, n.layers[0].nodes, nil)
	labels := make([]float64, batch)
	for i := 0; i < batch; i++ {
		for j := 0; j < n.layers[0].nodes; j++ {
			inputs.Set(i, j, rng.NormFloat64())
		}
		labels[i] = float64(i % classes)
	}
	return inputs, labels
}

func memorySource(t *testing.T, n int, seed uint64) *data.MemorySource {
	t.Helper()
	rows, labels := banknoteRows(n, seed)
	src, err := data.NewMemorySource(rows, labels, seed)
	require.NoError(t, err)
	return src
}

func sgd() optim.Optimizer {
	return optim.NewSGD(optim.SGDConfig{})
}

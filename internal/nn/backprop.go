package nn

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// gradients holds one backward pass over the current batch.
type gradients struct {
	weights []*mat.Dense // weights[i] matches layers[i].weights
	signals []*mat.Dense // signals[i] is the error signal of layers[i], i >= 1
}

// backward computes every gradient of the current batch from the caches
// left by Feedforward. Nothing is updated.
func (n *Network) backward() gradients {
	last := len(n.layers) - 1
	g := gradients{
		weights: make([]*mat.Dense, last),
		signals: make([]*mat.Dense, last+1),
	}

	out := n.layers[last]
	signal := mat.NewDense(n.cfg.BatchSize, out.nodes, nil)
	signal.Sub(out.activ, n.labels)
	for i := n.valid; i < n.cfg.BatchSize; i++ {
		signal.SetRow(i, make([]float64, out.nodes))
	}
	signal.MulElem(signal, out.dz)
	g.signals[last] = signal

	for i := last - 1; i >= 0; i-- {
		l := n.layers[i]
		delta := mat.NewDense(l.nodes, n.layers[i+1].nodes, nil)
		delta.Mul(l.activ.T(), g.signals[i+1])
		n.cfg.Regularization.addGradient(delta, l.weights)
		g.weights[i] = delta

		if i == 0 {
			break
		}
		prev := mat.NewDense(n.cfg.BatchSize, l.nodes, nil)
		prev.Mul(g.signals[i+1], l.weights.T())
		prev.MulElem(prev, l.dz)
		g.signals[i] = prev
	}
	return g
}

// Gradients returns the weight gradients of the current batch without
// applying them. Feedforward must have run on the batch.
//
// Entry i is the gradient of ½Σ(prediction-label)² plus the regularization
// penalty with respect to the weights of layer i.
func (n *Network) Gradients() ([]*mat.Dense, error) {
	if !n.initialized {
		return nil, ErrNotInitialized
	}
	return n.backward().weights, nil
}

// Backpropagate computes the gradients of the current batch, steps every
// layer's weights through the optimizer and moves each bias against the
// mean error signal of its layer. Feedforward must have run on the batch.
//
// The bias step is BiasLearningRate times the column mean of the error
// signal over the valid rows, applied to every row alike so the rows stay
// identical. Weight gradients are sums over the batch, so for the same rate
// the bias moves 1/Valid as far as a per-row update would.
func (n *Network) Backpropagate() error {
	if !n.initialized {
		return ErrNotInitialized
	}
	g := n.backward()

	for i, delta := range g.weights {
		l := n.layers[i]
		n.cfg.Optimizer.Update(l.weights, delta, l.state, n.cfg.LearningRate)
	}
	for i := 1; i < len(n.layers); i++ {
		l := n.layers[i]
		step := tensor.ColumnMeans(g.signals[i], n.valid)
		row := mat.Row(nil, 0, l.bias)
		floats.AddScaled(row, -n.cfg.BiasLearningRate, step)
		tensor.FillRows(l.bias, row)
	}
	return nil
}

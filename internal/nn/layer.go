package nn

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/activation"
	"github.com/jacobian-ml/jacobian/internal/optim"
	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// Layer is one stage of a Network.
//
// Activations and DZ are batchSize x nodes. Weights (nodes x next.nodes) and
// the optimizer state connect this layer to the next and are nil on the last
// layer. Bias is added to this layer's pre-activation and is unused on the
// input layer; every row holds the same values.
type Layer struct {
	nodes   int
	act     activation.Activation
	activ   *mat.Dense
	dz      *mat.Dense
	bias    *mat.Dense
	weights *mat.Dense
	state   *optim.State
}

// newLayer allocates zero-filled activations, derivatives and bias.
func newLayer(batchSize, nodes int, act activation.Activation) *Layer {
	shape := tensor.Shape{Rows: batchSize, Cols: nodes}
	return &Layer{
		nodes: nodes,
		act:   act,
		activ: tensor.Zeros(shape),
		dz:    tensor.Zeros(shape),
		bias:  tensor.Zeros(shape),
	}
}

// initWeights draws the weights towards next and allocates their optimizer state.
func (l *Layer) initWeights(next *Layer, opt optim.Optimizer, src rand.Source) {
	l.weights = Xavier(l.nodes, next.nodes, src)
	l.state = opt.NewState(tensor.ShapeOf(l.weights))
}

// Nodes returns the layer width.
func (l *Layer) Nodes() int { return l.nodes }

// Activation returns the layer's activation function pair.
func (l *Layer) Activation() activation.Activation { return l.act }

// Activations returns the post-activation values of the current batch.
func (l *Layer) Activations() *mat.Dense { return l.activ }

// DZ returns the activation derivative at the current pre-activation.
func (l *Layer) DZ() *mat.Dense { return l.dz }

// Bias returns the row-replicated bias of this layer.
func (l *Layer) Bias() *mat.Dense { return l.bias }

// Weights returns the weights towards the next layer, or nil on the last layer.
func (l *Layer) Weights() *mat.Dense { return l.weights }

// State returns the optimizer state of the weights, or nil on the last layer.
func (l *Layer) State() *optim.State { return l.state }

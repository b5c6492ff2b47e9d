package nn

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/activation"
	"github.com/jacobian-ml/jacobian/internal/data"
	"github.com/jacobian-ml/jacobian/internal/parallel"
	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// Network is a fully connected feedforward network bound to a data source.
//
// A Network is not safe for concurrent use.
type Network struct {
	cfg      Config
	registry *activation.Registry
	par      parallel.Config
	rng      rand.Source

	layers      []*Layer
	initialized bool

	source     data.Source
	ownsSource bool

	input     *mat.Dense // raw features of the current batch
	labels    *mat.Dense // encoded targets of the current batch
	rawLabels []float64
	valid     int // rows of the current batch holding data

	lastAnomaly HealthReport
}

// NewNetwork creates a network that trains on the dataset file at path.
//
// The file is validated and shuffled into cfg.ShuffledPath immediately; the
// network owns the resulting source and releases it on Close.
func NewNetwork(path string, cfg Config) (*Network, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	src, err := data.Open(path, data.Options{
		Features:     cfg.Features,
		ShuffledPath: cfg.ShuffledPath,
		Seed:         cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open training set: %w", err)
	}
	n := newNetwork(src, cfg)
	n.ownsSource = true
	return n, nil
}

// NewNetworkFromSource creates a network around an existing source.
//
// src may be nil for networks driven only through SetBatch. The caller keeps
// ownership of src.
func NewNetworkFromSource(src data.Source, cfg Config) (*Network, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return newNetwork(src, cfg), nil
}

func newNetwork(src data.Source, cfg Config) *Network {
	registry := activation.Default
	if cfg.FastExp {
		registry = activation.Fast
	}
	return &Network{
		cfg:      cfg,
		registry: registry,
		par:      cfg.parallelism(),
		rng:      newSource(cfg.Seed),
		source:   src,
	}
}

// AddLayer appends a layer of the given width using a registered activation.
func (n *Network) AddLayer(nodes int, name string) error {
	act, err := n.registry.Lookup(name)
	if err != nil {
		return fmt.Errorf("%w: layer %d: %w", ErrConfiguration, len(n.layers), err)
	}
	return n.addLayer(nodes, act)
}

// AddPReLULayer appends a layer using the leaky rectifier with slope alpha
// on the negative domain.
func (n *Network) AddPReLULayer(nodes int, alpha float64) error {
	return n.addLayer(nodes, activation.Leaky(alpha))
}

func (n *Network) addLayer(nodes int, act activation.Activation) error {
	if n.initialized {
		return fmt.Errorf("%w: cannot add layers after Initialize", ErrTopology)
	}
	if nodes <= 0 {
		return fmt.Errorf("%w: layer %d has %d nodes", ErrTopology, len(n.layers), nodes)
	}
	n.layers = append(n.layers, newLayer(n.cfg.BatchSize, nodes, act))
	return nil
}

// SetActivation replaces the activation of the layer at index with a
// caller-supplied function and derivative.
func (n *Network) SetActivation(index int, f, df activation.Func) error {
	if index < 0 || index >= len(n.layers) {
		return fmt.Errorf("%w: no layer at index %d", ErrConfiguration, index)
	}
	if f == nil || df == nil {
		return fmt.Errorf("%w: custom activation needs both f and its derivative", ErrConfiguration)
	}
	n.layers[index].act = activation.NewCustom("", f, df)
	return nil
}

// Initialize fixes the topology: it draws all weights from one seeded
// generator and allocates optimizer state and batch buffers.
func (n *Network) Initialize() error {
	if n.initialized {
		return fmt.Errorf("%w: already initialized", ErrTopology)
	}
	if len(n.layers) < 2 {
		return fmt.Errorf("%w: need an input and an output layer, have %d layers", ErrTopology, len(n.layers))
	}
	if n.source != nil {
		if err := n.checkSource(n.source); err != nil {
			return err
		}
	}

	for i := 0; i < len(n.layers)-1; i++ {
		n.layers[i].initWeights(n.layers[i+1], n.cfg.Optimizer, n.rng)
	}
	batch := n.cfg.BatchSize
	n.input = tensor.Zeros(tensor.Shape{Rows: batch, Cols: n.layers[0].nodes})
	n.labels = tensor.Zeros(tensor.Shape{Rows: batch, Cols: n.outputs()})
	n.rawLabels = make([]float64, batch)
	n.initialized = true
	return nil
}

func (n *Network) checkSource(src data.Source) error {
	if got, want := src.Features(), n.layers[0].nodes; got != want {
		return fmt.Errorf("%w: source has %d features, input layer has %d nodes", ErrTopology, got, want)
	}
	return nil
}

// SetSource replaces the training source and returns the previous one.
// Ownership of the previous source passes to the caller.
func (n *Network) SetSource(src data.Source) (data.Source, error) {
	if n.initialized && src != nil {
		if err := n.checkSource(src); err != nil {
			return nil, err
		}
	}
	prev := n.source
	n.source = src
	n.ownsSource = false
	return prev, nil
}

// Source returns the training source.
func (n *Network) Source() data.Source { return n.source }

// Close releases the training source when the network opened it.
func (n *Network) Close() error {
	if n.ownsSource && n.source != nil {
		n.ownsSource = false
		return n.source.Close()
	}
	return nil
}

// LoadBatch reads the next batch from the training source.
//
// It returns the number of rows filled and io.EOF once the source is exhausted.
func (n *Network) LoadBatch() (int, error) {
	if !n.initialized {
		return 0, ErrNotInitialized
	}
	if n.source == nil {
		return 0, ErrNoSource
	}
	return n.loadFrom(n.source)
}

func (n *Network) loadFrom(src data.Source) (int, error) {
	rows, err := src.NextBatch(n.input, n.rawLabels)
	n.valid = rows
	if err != nil {
		return rows, err
	}
	return rows, n.encodeLabels()
}

// SetBatch loads a batch directly. inputs must be batchSize x inputNodes and
// labels must hold one label per row.
func (n *Network) SetBatch(inputs *mat.Dense, labels []float64) error {
	if !n.initialized {
		return ErrNotInitialized
	}
	if got, want := tensor.ShapeOf(inputs), tensor.ShapeOf(n.input); !got.Equal(want) {
		return fmt.Errorf("%w: batch is %v, want %v", ErrConfiguration, got, want)
	}
	if len(labels) != n.cfg.BatchSize {
		return fmt.Errorf("%w: %d labels for batch size %d", ErrConfiguration, len(labels), n.cfg.BatchSize)
	}
	n.input.Copy(inputs)
	copy(n.rawLabels, labels)
	n.valid = n.cfg.BatchSize
	return n.encodeLabels()
}

// encodeLabels writes the raw labels of the valid rows into n.labels.
// One output takes the label as is; wider outputs take it as a class index.
func (n *Network) encodeLabels() error {
	n.labels.Zero()
	outputs := n.outputs()
	for i := 0; i < n.valid; i++ {
		label := n.rawLabels[i]
		if outputs == 1 {
			n.labels.Set(i, 0, label)
			continue
		}
		class := int(label)
		if float64(class) != label || class < 0 || class >= outputs {
			return fmt.Errorf("%w: label %v for %d outputs", ErrLabelRange, label, outputs)
		}
		n.labels.Set(i, class, 1)
	}
	return nil
}

// Feedforward propagates the current batch through every layer.
//
// Each layer's derivative is taken at its pre-activation before the
// activation overwrites it; the product for layer i+1 consumes the
// post-activation values of layer i.
func (n *Network) Feedforward() error {
	if !n.initialized {
		return ErrNotInitialized
	}
	n.forward()
	return nil
}

func (n *Network) forward() {
	in := n.layers[0]
	in.act.ApplyDeriv(in.dz, n.input, n.par)
	in.act.Apply(in.activ, n.input, n.par)

	for i := 0; i < len(n.layers)-1; i++ {
		prev, next := n.layers[i], n.layers[i+1]
		next.activ.Mul(prev.activ, prev.weights)
		next.activ.Add(next.activ, next.bias)
		next.act.ApplyDeriv(next.dz, next.activ, n.par)
		next.act.Apply(next.activ, next.activ, n.par)
	}
}

// Prediction returns the output layer activations of the current batch.
func (n *Network) Prediction() *mat.Dense {
	return n.layers[len(n.layers)-1].activ
}

// Cost returns the squared error of the current batch summed over output
// columns and averaged over its rows, plus the regularization penalty.
func (n *Network) Cost() float64 {
	if n.valid == 0 {
		return 0
	}
	pred := n.Prediction().RawMatrix()
	labels := n.labels.RawMatrix()
	var sum float64
	for i := 0; i < n.valid; i++ {
		p := pred.Data[i*pred.Stride : i*pred.Stride+pred.Cols]
		l := labels.Data[i*labels.Stride : i*labels.Stride+labels.Cols]
		d := floats.Distance(p, l, 2)
		sum += d * d
	}
	return sum/float64(n.valid) + n.penalty()
}

// Accuracy returns the fraction of valid rows predicted correctly.
//
// A single output is correct when it rounds to the label; wider outputs are
// correct when the largest output sits at the label's class.
func (n *Network) Accuracy() float64 {
	if n.valid == 0 {
		return 0
	}
	return float64(n.correct()) / float64(n.valid)
}

func (n *Network) correct() int {
	pred := n.Prediction()
	hits := 0
	for i := 0; i < n.valid; i++ {
		if n.outputs() == 1 {
			if math.Round(pred.At(i, 0)) == n.labels.At(i, 0) {
				hits++
			}
			continue
		}
		if floats.MaxIdx(pred.RawRowView(i)) == floats.MaxIdx(n.labels.RawRowView(i)) {
			hits++
		}
	}
	return hits
}

// Layers returns the layers from input to output.
func (n *Network) Layers() []*Layer { return n.layers }

// Labels returns the encoded targets of the current batch.
func (n *Network) Labels() *mat.Dense { return n.labels }

// Valid returns the number of rows of the current batch that hold data.
func (n *Network) Valid() int { return n.valid }

// Config returns the configuration with defaults applied.
func (n *Network) Config() Config { return n.cfg }

// Initialized reports whether Initialize has completed.
func (n *Network) Initialized() bool { return n.initialized }

func (n *Network) outputs() int {
	return n.layers[len(n.layers)-1].nodes
}

// String describes the topology, e.g. "4 linear -> 5 lecun_tanh -> 2 linear (momentum)".
func (n *Network) String() string {
	parts := make([]string, len(n.layers))
	for i, l := range n.layers {
		parts[i] = fmt.Sprintf("%d %s", l.nodes, l.act.Name)
	}
	return fmt.Sprintf("%s (%s)", strings.Join(parts, " -> "), n.cfg.Optimizer.Name())
}

// isEOF reports the end-of-source condition of a batch read.
func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

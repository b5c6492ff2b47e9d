package nn

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/optim"
	"github.com/jacobian-ml/jacobian/internal/serialization"
)

// Checkpoint metadata keys.
const (
	metaFormat     = "format"
	metaNodes      = "nodes"
	metaActivation = "activations"
	metaOptimizer  = "optimizer"
	metaSteps      = "optimizer_steps"
	metaEpoch      = "optimizer_epoch"

	checkpointFormat = "jacobian-mlp"
)

// Save writes the weights, biases and optimizer state to a SafeTensors file.
//
// Tensors are named layers.<i>.weights, layers.<i>.bias (one row),
// optimizer.<i>.m and optimizer.<i>.v.
func (n *Network) Save(path string) error {
	if !n.initialized {
		return ErrNotInitialized
	}

	tensors := make(map[string]*mat.Dense)
	acts := make([]string, len(n.layers))
	steps := make([]string, 0, len(n.layers)-1)
	for i, l := range n.layers {
		acts[i] = l.act.Name
		if i > 0 {
			tensors[fmt.Sprintf("layers.%d.bias", i)] = mat.DenseCopyOf(l.bias.Slice(0, 1, 0, l.nodes))
		}
		if l.weights == nil {
			continue
		}
		tensors[fmt.Sprintf("layers.%d.weights", i)] = l.weights
		for name, m := range l.state.Matrices() {
			tensors[fmt.Sprintf("optimizer.%d.%s", i, name)] = m
		}
		steps = append(steps, strconv.Itoa(l.state.Steps))
	}

	metadata := map[string]string{
		metaFormat:     checkpointFormat,
		metaNodes:      n.topology(),
		metaActivation: strings.Join(acts, ","),
		metaOptimizer:  n.cfg.Optimizer.Name(),
		metaSteps:      strings.Join(steps, ","),
	}
	if sched, ok := n.cfg.Optimizer.(optim.Scheduled); ok {
		metadata[metaEpoch] = strconv.Itoa(sched.Epoch())
	}
	if err := serialization.WriteSafeTensors(path, tensors, metadata); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load restores a checkpoint written by Save into an initialized network of
// the same topology. Optimizer state and schedule position are restored only
// when the checkpoint was written with the same optimizer. Every tensor is
// checked before any is copied, so a failed Load leaves the network as it was.
func (n *Network) Load(path string) error {
	if !n.initialized {
		return ErrNotInitialized
	}
	file, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if got := file.Metadata[metaFormat]; got != checkpointFormat {
		return fmt.Errorf("failed to load checkpoint: unexpected format %q", got)
	}
	if got, want := file.Metadata[metaNodes], n.topology(); got != want {
		return fmt.Errorf("%w: checkpoint topology %s, network %s", serialization.ErrShapeMismatch, got, want)
	}

	withState := file.Metadata[metaOptimizer] == n.cfg.Optimizer.Name()
	var steps []int
	epoch := -1
	if withState {
		if steps, err = parseSteps(file.Metadata[metaSteps], len(n.layers)-1); err != nil {
			return err
		}
		if raw, ok := file.Metadata[metaEpoch]; ok {
			if epoch, err = strconv.Atoi(raw); err != nil {
				return fmt.Errorf("failed to load checkpoint: %s: %w", metaEpoch, err)
			}
		}
	}

	var copies []pendingCopy
	for i, l := range n.layers {
		if i > 0 {
			bias, err := file.Tensor(fmt.Sprintf("layers.%d.bias", i), 1, l.nodes)
			if err != nil {
				return err
			}
			copies = append(copies, pendingCopy{dst: l.bias, src: bias, rows: true})
		}
		if l.weights == nil {
			continue
		}
		r, c := l.weights.Dims()
		w, err := file.Tensor(fmt.Sprintf("layers.%d.weights", i), r, c)
		if err != nil {
			return err
		}
		copies = append(copies, pendingCopy{dst: l.weights, src: w})
		if !withState {
			continue
		}
		for name, m := range l.state.Matrices() {
			saved, err := file.Tensor(fmt.Sprintf("optimizer.%d.%s", i, name), r, c)
			if err != nil {
				return err
			}
			copies = append(copies, pendingCopy{dst: m, src: saved})
		}
	}

	for _, pc := range copies {
		pc.apply()
	}
	for i, l := range n.layers[:len(n.layers)-1] {
		if !withState {
			l.state.Reset()
			continue
		}
		l.state.Steps = steps[i]
	}
	if sched, ok := n.cfg.Optimizer.(optim.Scheduled); ok && epoch >= 0 {
		sched.SetEpoch(epoch)
	}
	return nil
}

// pendingCopy is one checked tensor waiting to be written into the network.
type pendingCopy struct {
	dst, src *mat.Dense
	rows     bool // src is one row repeated over every row of dst
}

func (pc pendingCopy) apply() {
	if pc.rows {
		fillBias(pc.dst, pc.src)
		return
	}
	pc.dst.Copy(pc.src)
}

// parseSteps reads the comma-separated step counts of the weighted layers.
func parseSteps(raw string, layers int) ([]int, error) {
	fields := strings.Split(raw, ",")
	if len(fields) != layers {
		return nil, fmt.Errorf("failed to load checkpoint: %d step counts for %d weighted layers", len(fields), layers)
	}
	steps := make([]int, layers)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("failed to load checkpoint: step count %q of layer %d", f, i)
		}
		steps[i] = v
	}
	return steps, nil
}

func (n *Network) topology() string {
	nodes := make([]string, len(n.layers))
	for i, l := range n.layers {
		nodes[i] = strconv.Itoa(l.nodes)
	}
	return strings.Join(nodes, ",")
}

func fillBias(dst, row *mat.Dense) {
	r, _ := dst.Dims()
	for i := 0; i < r; i++ {
		dst.SetRow(i, row.RawRowView(0))
	}
}

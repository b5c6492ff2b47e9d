package nn

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jacobian-ml/jacobian/internal/data"
)

// EpochStats summarizes one training epoch.
type EpochStats struct {
	Epoch     int           // 1-based epoch number
	Cost      float64       // Mean batch cost
	Accuracy  float64       // Mean batch accuracy
	Batches   int           // Full batches trained
	Dropped   int           // Rows of the short final batch left out
	Anomalous int           // Batches whose health scan failed
	Duration  time.Duration // Wall-clock time of the epoch
}

// Train runs epochs passes over the training source.
//
// Each epoch rewinds the source, then loads, forwards, scores and
// backpropagates full batches until the source runs out. A short final
// batch is not trained on. The optimizer's epoch schedule advances after
// every epoch. Stats are returned for every completed epoch, also when an
// error stops training.
func (n *Network) Train(epochs int) ([]EpochStats, error) {
	if !n.initialized {
		return nil, ErrNotInitialized
	}
	if n.source == nil {
		return nil, ErrNoSource
	}
	if err := n.checkSource(n.source); err != nil {
		return nil, err
	}
	if n.source.Len() < n.cfg.BatchSize {
		return nil, fmt.Errorf("%w: batch size %d exceeds the %d training instances",
			ErrConfiguration, n.cfg.BatchSize, n.source.Len())
	}

	stats := make([]EpochStats, 0, epochs)
	for epoch := 1; epoch <= epochs; epoch++ {
		st, err := n.trainEpoch(epoch)
		if err != nil {
			return stats, err
		}
		stats = append(stats, st)
		n.cfg.Logger.Printf("epoch %d/%d - time %v - cost %.4f - acc %.4f",
			epoch, epochs, st.Duration.Round(time.Microsecond), st.Cost, st.Accuracy)

		if err := n.checkAnomalyRate(st); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (n *Network) trainEpoch(epoch int) (EpochStats, error) {
	start := time.Now()
	st := EpochStats{Epoch: epoch}

	var err error
	if epoch > 1 && n.cfg.ReshuffleEachEpoch {
		err = n.source.Shuffle()
	} else {
		err = n.source.Rewind()
	}
	if err != nil {
		return st, fmt.Errorf("epoch %d: %w", epoch, err)
	}

	var costs, accs []float64
	for {
		rows, err := n.LoadBatch()
		if isEOF(err) {
			break
		}
		if err != nil {
			return st, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		if rows < n.cfg.BatchSize {
			st.Dropped = rows
			n.cfg.Logger.Printf("epoch %d: dropped short final batch of %d rows", epoch, rows)
			break
		}

		n.forward()
		costs = append(costs, n.Cost())
		accs = append(accs, n.Accuracy())
		if err := n.Backpropagate(); err != nil {
			return st, err
		}
		st.Batches++
		n.checkBatchHealth(&st)
	}

	n.cfg.Optimizer.EndEpoch()
	if len(costs) > 0 {
		st.Cost = stat.Mean(costs, nil)
		st.Accuracy = stat.Mean(accs, nil)
	}
	st.Duration = time.Since(start)
	return st, nil
}

func (n *Network) checkBatchHealth(st *EpochStats) {
	policy := n.cfg.AnomalyPolicy
	if policy.Disabled {
		return
	}
	report := n.CheckHealth()
	if report.Healthy(policy.CountNegativeZero) {
		return
	}
	st.Anomalous++
	n.lastAnomaly = report
	n.cfg.Logger.Printf("epoch %d batch %d: %s", st.Epoch, st.Batches, report)
	if policy.OnAnomaly != nil {
		policy.OnAnomaly(st.Epoch, st.Batches, report)
	}
}

func (n *Network) checkAnomalyRate(st EpochStats) error {
	if st.Batches == 0 || st.Anomalous == 0 {
		return nil
	}
	rate := float64(st.Anomalous) / float64(st.Batches)
	limit := max(n.cfg.AnomalyPolicy.MaxRate, 0)
	if n.cfg.AnomalyPolicy.MaxRate >= 0 && rate <= limit {
		return nil
	}
	return &AnomalyError{
		Epoch:   st.Epoch,
		Rate:    rate,
		MaxRate: limit,
		Report:  n.lastAnomaly,
	}
}

// Evaluation is the result of scoring a whole source.
type Evaluation struct {
	Accuracy  float64 // Correct rows / rows
	Cost      float64 // Mean squared error per row, plus the penalty
	Instances int     // Rows scored
}

// Test scores the network on the dataset file at path and returns its accuracy.
func (n *Network) Test(path string) (float64, error) {
	if !n.initialized {
		return 0, ErrNotInitialized
	}
	src, err := data.Open(path, data.Options{
		Features: n.layers[0].nodes,
		Seed:     n.cfg.Seed,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to open test set: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	eval, err := n.Evaluate(src)
	if err != nil {
		return 0, err
	}
	n.cfg.Logger.Printf("test - %d instances - cost %.4f - acc %.4f", eval.Instances, eval.Cost, eval.Accuracy)
	return eval.Accuracy, nil
}

// Evaluate scores every row of src from its start without updating the
// network. A short final batch is scored on its valid rows.
func (n *Network) Evaluate(src data.Source) (Evaluation, error) {
	var eval Evaluation
	if !n.initialized {
		return eval, ErrNotInitialized
	}
	if err := n.checkSource(src); err != nil {
		return eval, err
	}
	if err := src.Rewind(); err != nil {
		return eval, err
	}

	var correct int
	var sqErr float64
	for {
		rows, err := n.loadFrom(src)
		if isEOF(err) {
			break
		}
		if err != nil {
			return eval, err
		}
		n.forward()
		correct += n.correct()
		sqErr += (n.Cost() - n.penalty()) * float64(rows)
		eval.Instances += rows
	}
	if eval.Instances > 0 {
		eval.Accuracy = float64(correct) / float64(eval.Instances)
		eval.Cost = sqErr/float64(eval.Instances) + n.penalty()
	}
	return eval, nil
}

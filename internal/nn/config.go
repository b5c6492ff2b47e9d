package nn

import (
	"fmt"
	"io"
	"log"

	"github.com/jacobian-ml/jacobian/internal/optim"
	"github.com/jacobian-ml/jacobian/internal/parallel"
)

// Config contains the hyperparameters and wiring of a Network.
//
// Zero fields take the defaults noted below.
type Config struct {
	BatchSize        int     // Rows per batch (default: 16)
	LearningRate     float64 // Weight step size (default: 0.0155)
	BiasLearningRate float64 // Bias step size (default: 0.03)

	Regularization Regularization  // Weight penalty (default: none)
	Optimizer      optim.Optimizer // Update rule, cloned per network (default: momentum with β=0.9)

	Seed    uint64 // Seed for weight init and shuffling (default: random)
	FastExp bool   // Build activations on activation.FastExp instead of math.Exp

	Features           int    // Feature columns of dataset files (default: 4)
	ShuffledPath       string // Side file for the shuffled training copy (default: temp file)
	ReshuffleEachEpoch bool   // Draw a new order before every epoch after the first

	Parallel      bool          // Split elementwise work on large matrices across goroutines
	Logger        *log.Logger   // Training log (default: discard)
	AnomalyPolicy AnomalyPolicy // Numeric health policy applied during Train
}

// Default hyperparameters.
const (
	DefaultBatchSize        = 16
	DefaultLearningRate     = 0.0155
	DefaultBiasLearningRate = 0.03
	DefaultFeatures         = 4
	DefaultMaxAnomalyRate   = 0.5
)

// withDefaults fills zero fields and rejects values no network can use.
func (c Config) withDefaults() (Config, error) {
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.LearningRate == 0 {
		c.LearningRate = DefaultLearningRate
	}
	if c.BiasLearningRate == 0 {
		c.BiasLearningRate = DefaultBiasLearningRate
	}
	if c.Optimizer == nil {
		c.Optimizer = optim.NewMomentum(optim.MomentumConfig{})
	} else {
		c.Optimizer = c.Optimizer.Clone()
	}
	if c.Features == 0 {
		c.Features = DefaultFeatures
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	if c.AnomalyPolicy.MaxRate == 0 {
		c.AnomalyPolicy.MaxRate = DefaultMaxAnomalyRate
	}

	switch {
	case c.BatchSize < 0:
		return c, fmt.Errorf("%w: batch size %d", ErrConfiguration, c.BatchSize)
	case c.LearningRate < 0 || c.BiasLearningRate < 0:
		return c, fmt.Errorf("%w: negative learning rate", ErrConfiguration)
	case c.Features < 0:
		return c, fmt.Errorf("%w: feature count %d", ErrConfiguration, c.Features)
	case c.AnomalyPolicy.MaxRate > 1:
		return c, fmt.Errorf("%w: anomaly rate %v above 1", ErrConfiguration, c.AnomalyPolicy.MaxRate)
	}
	if err := c.Regularization.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) parallelism() parallel.Config {
	if c.Parallel {
		return parallel.DefaultConfig()
	}
	return parallel.Sequential()
}

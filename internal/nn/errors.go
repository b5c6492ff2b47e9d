package nn

import (
	"errors"
	"fmt"

	"github.com/jacobian-ml/jacobian/internal/activation"
)

// Common errors.
var (
	// ErrConfiguration marks errors in how a network was put together.
	ErrConfiguration = errors.New("invalid network configuration")

	// ErrUnknownActivation is returned for activation names missing from the registry.
	ErrUnknownActivation = activation.ErrUnknown

	// ErrTopology marks layer sequences that cannot be wired together.
	ErrTopology = fmt.Errorf("%w: invalid topology", ErrConfiguration)

	ErrNotInitialized = errors.New("network is not initialized")
	ErrNoSource       = errors.New("network has no data source")
	ErrLabelRange     = errors.New("label outside the output range")
	ErrNumericAnomaly = errors.New("numeric anomaly")
)

// AnomalyError reports an epoch whose share of anomalous batches exceeded
// the configured AnomalyPolicy.
type AnomalyError struct {
	Epoch   int          // 1-based epoch number
	Rate    float64      // Anomalous batches / batches
	MaxRate float64      // Threshold that was exceeded
	Report  HealthReport // Last anomalous report of the epoch
}

// Error implements the error interface.
func (e *AnomalyError) Error() string {
	return fmt.Sprintf("epoch %d: numeric anomalies in %.0f%% of batches (max %.0f%%): %s",
		e.Epoch, 100*e.Rate, 100*e.MaxRate, e.Report)
}

// Is reports ErrNumericAnomaly as the sentinel.
func (e *AnomalyError) Is(target error) bool {
	return target == ErrNumericAnomaly
}

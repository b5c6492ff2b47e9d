package nn

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/tensor"
)

// AnomalyKind classifies a suspicious value.
type AnomalyKind int

// Anomaly kinds.
const (
	NaN AnomalyKind = iota
	PosInf
	NegInf
	NegZero
)

// String returns the value notation of the kind.
func (k AnomalyKind) String() string {
	switch k {
	case NaN:
		return "NaN"
	case PosInf:
		return "+Inf"
	case NegInf:
		return "-Inf"
	case NegZero:
		return "-0"
	default:
		return fmt.Sprintf("AnomalyKind(%d)", int(k))
	}
}

// Anomaly locates one suspicious value.
type Anomaly struct {
	Layer  int    // Layer index
	Matrix string // "activations", "dz", "bias", "weights", "m" or "v"
	Row    int
	Col    int
	Kind   AnomalyKind
}

// maxSamples bounds the anomalies kept in a HealthReport.
const maxSamples = 16

// HealthReport summarizes a scan of the network state.
type HealthReport struct {
	Counts  map[AnomalyKind]int
	Samples []Anomaly // First anomalies found, at most 16
	Scanned int       // Values inspected
}

// Healthy reports whether the scan found no NaN or infinity, and no -0
// when negZero is set.
func (r HealthReport) Healthy(negZero bool) bool {
	if r.Counts[NaN]+r.Counts[PosInf]+r.Counts[NegInf] > 0 {
		return false
	}
	return !negZero || r.Counts[NegZero] == 0
}

// String summarizes the counts, e.g. "3 NaN, 1 -0 in 120 values".
func (r HealthReport) String() string {
	var parts []string
	for _, k := range []AnomalyKind{NaN, PosInf, NegInf, NegZero} {
		if c := r.Counts[k]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, k))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("healthy, %d values", r.Scanned)
	}
	return fmt.Sprintf("%s in %d values", strings.Join(parts, ", "), r.Scanned)
}

// AnomalyPolicy decides when numeric anomalies stop training.
//
// After every batch Train scans the network; a batch is anomalous when the
// scan is not Healthy. At the end of an epoch training fails with an
// *AnomalyError if more than MaxRate of its batches were anomalous. A zero
// MaxRate takes the default; a negative one tolerates no anomalous batch.
type AnomalyPolicy struct {
	Disabled          bool    // Skip the per-batch scan entirely
	MaxRate           float64 // Largest tolerated anomalous share (default: 0.5, negative: none)
	CountNegativeZero bool    // Treat -0 as anomalous

	// OnAnomaly, when set, is called for every anomalous batch.
	OnAnomaly func(epoch, batch int, report HealthReport)
}

// CheckHealth scans activations, derivatives, biases, weights and
// optimizer state for NaN, infinities and -0.
func (n *Network) CheckHealth() HealthReport {
	report := HealthReport{Counts: make(map[AnomalyKind]int)}
	for i, l := range n.layers {
		report.scan(i, "activations", l.activ)
		report.scan(i, "dz", l.dz)
		if i > 0 {
			report.scan(i, "bias", l.bias)
		}
		if l.weights == nil {
			continue
		}
		report.scan(i, "weights", l.weights)
		report.scan(i, "m", l.state.M)
		if l.state.V != nil {
			report.scan(i, "v", l.state.V)
		}
	}
	return report
}

func (r *HealthReport) scan(layer int, name string, m *mat.Dense) {
	raw := m.RawMatrix()
	for i := 0; i < raw.Rows; i++ {
		for j, v := range raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols] {
			r.Scanned++
			if tensor.Finite(v) && !tensor.NegativeZero(v) {
				continue
			}
			kind := NegZero
			switch {
			case math.IsNaN(v):
				kind = NaN
			case math.IsInf(v, 1):
				kind = PosInf
			case math.IsInf(v, -1):
				kind = NegInf
			}
			r.Counts[kind]++
			if len(r.Samples) < maxSamples {
				r.Samples = append(r.Samples, Anomaly{Layer: layer, Matrix: name, Row: i, Col: j, Kind: kind})
			}
		}
	}
}

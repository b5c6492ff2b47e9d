package data

import (
	"fmt"
	"io"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// MemorySource is a Source over in-memory rows. It is used to feed
// synthetic data and to evaluate on held-out rows without touching disk.
type MemorySource struct {
	rows   [][]float64
	labels []float64
	order  []int
	cursor int
	rng    *rand.Rand
	closed bool
}

// NewMemorySource copies rows and labels. All rows must have the same
// non-zero width and len(labels) must equal len(rows).
func NewMemorySource(rows [][]float64, labels []float64, seed uint64) (*MemorySource, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	if len(labels) != len(rows) {
		return nil, fmt.Errorf("%w: %d rows but %d labels", ErrBatchShape, len(rows), len(labels))
	}
	width := len(rows[0])
	if width == 0 {
		return nil, ErrInvalidWidth
	}

	s := &MemorySource{
		rows:   make([][]float64, len(rows)),
		labels: append([]float64(nil), labels...),
		order:  make([]int, len(rows)),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrBatchShape, i, len(row), width)
		}
		s.rows[i] = append([]float64(nil), row...)
		s.order[i] = i
	}
	return s, nil
}

// Len implements Source.
func (s *MemorySource) Len() int { return len(s.rows) }

// Features implements Source.
func (s *MemorySource) Features() int { return len(s.rows[0]) }

// NextBatch implements Source.
func (s *MemorySource) NextBatch(features *mat.Dense, labels []float64) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	rows, cols := features.Dims()
	if cols != s.Features() || len(labels) < rows {
		return 0, fmt.Errorf("%w: got %dx%d with %d labels, want %d columns",
			ErrBatchShape, rows, cols, len(labels), s.Features())
	}
	if s.cursor >= len(s.order) {
		zeroFrom(features, labels, 0)
		return 0, io.EOF
	}

	n := 0
	for ; n < rows && s.cursor < len(s.order); n++ {
		idx := s.order[s.cursor]
		features.SetRow(n, s.rows[idx])
		labels[n] = s.labels[idx]
		s.cursor++
	}
	zeroFrom(features, labels, n)
	return n, nil
}

// Rewind implements Source.
func (s *MemorySource) Rewind() error {
	if s.closed {
		return ErrClosed
	}
	s.cursor = 0
	return nil
}

// Shuffle implements Source.
func (s *MemorySource) Shuffle() error {
	if s.closed {
		return ErrClosed
	}
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	s.cursor = 0
	return nil
}

// Close implements Source.
func (s *MemorySource) Close() error {
	s.closed = true
	return nil
}

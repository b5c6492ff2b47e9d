// Package data supplies fixed-width batches of (features, label) rows.
//
// Dataset format: one instance per line, comma-separated, the feature
// values followed by one integer label:
//
//	3.6216,8.6661,-2.8073,-0.44699,0
//
// FileSource validates the whole file once, writes a uniformly shuffled
// copy to a side file, and streams batches from that copy. Rewind moves the
// cursor back to the start of the same shuffled copy; Shuffle writes a new
// permutation.
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Source supplies batches and can be rewound at epoch boundaries.
type Source interface {
	// Len returns the total number of instances.
	Len() int

	// Features returns the number of feature columns per instance.
	Features() int

	// NextBatch fills features (rows x Features()) and labels[:rows] from
	// the cursor. It returns the number of rows filled; rows past that are
	// zeroed. When no rows remain it returns 0, io.EOF.
	NextBatch(features *mat.Dense, labels []float64) (int, error)

	// Rewind moves the cursor back to the first instance without
	// changing the order.
	Rewind() error

	// Shuffle draws a new order and rewinds.
	Shuffle() error

	// Close releases the source.
	Close() error
}

// Options configures a FileSource.
type Options struct {
	Features     int    // Feature columns before the label (default: 4)
	ShuffledPath string // Side file for the shuffled copy (default: a temp file removed on Close)
	Seed         uint64 // Shuffle seed (default: time-based)
}

// FileSource is a Source backed by a shuffled copy of a dataset file.
type FileSource struct {
	path         string
	shuffledPath string
	ownsShuffled bool
	features     int
	count        int
	rng          *rand.Rand

	file   *os.File
	reader *csv.Reader
	closed bool
}

// Open validates the dataset at path, writes a shuffled copy and positions
// the cursor at its start.
func Open(path string, opts Options) (*FileSource, error) {
	if opts.Features == 0 {
		opts.Features = 4
	}
	if opts.Features < 0 {
		return nil, ErrInvalidWidth
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	s := &FileSource{
		path:         path,
		shuffledPath: opts.ShuffledPath,
		features:     opts.Features,
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	if s.shuffledPath == "" {
		tmp, err := os.CreateTemp("", "jacobian-shuffled-*.csv")
		if err != nil {
			return nil, fmt.Errorf("failed to create shuffle file: %w", err)
		}
		_ = tmp.Close()
		s.shuffledPath = tmp.Name()
		s.ownsShuffled = true
	}

	if err := s.Shuffle(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Len returns the number of instances in the dataset.
func (s *FileSource) Len() int { return s.count }

// Features returns the number of feature columns.
func (s *FileSource) Features() int { return s.features }

// Path returns the original dataset path.
func (s *FileSource) Path() string { return s.path }

// ShuffledPath returns the side file batches are read from.
func (s *FileSource) ShuffledPath() string { return s.shuffledPath }

// Shuffle re-reads the dataset, writes a new uniform permutation to the
// side file and rewinds.
func (s *FileSource) Shuffle() error {
	if s.closed {
		return ErrClosed
	}
	records, err := readRecords(s.path, s.features)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%s: %w", s.path, ErrEmpty)
	}
	s.rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
	if err := writeRecords(s.shuffledPath, records); err != nil {
		return err
	}
	s.count = len(records)
	return s.Rewind()
}

// Rewind reopens the shuffled copy at its first line.
func (s *FileSource) Rewind() error {
	if s.closed {
		return ErrClosed
	}
	if s.file == nil {
		f, err := os.Open(s.shuffledPath)
		if err != nil {
			return fmt.Errorf("failed to open shuffled dataset: %w", err)
		}
		s.file = f
	} else if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind shuffled dataset: %w", err)
	}
	s.reader = newReader(s.file, s.features)
	return nil
}

// NextBatch implements Source.
func (s *FileSource) NextBatch(features *mat.Dense, labels []float64) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	rows, cols := features.Dims()
	if cols != s.features || len(labels) < rows {
		return 0, fmt.Errorf("%w: got %dx%d with %d labels, want %d columns",
			ErrBatchShape, rows, cols, len(labels), s.features)
	}

	for i := 0; i < rows; i++ {
		record, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			zeroFrom(features, labels, i)
			if i == 0 {
				return 0, io.EOF
			}
			return i, nil
		}
		if err != nil {
			return i, formatError(s.shuffledPath, err)
		}
		line, _ := s.reader.FieldPos(0)
		if err := parseRecord(record, features.RawRowView(i), &labels[i]); err != nil {
			return i, &DataFormatError{Path: s.shuffledPath, Line: line, Err: err}
		}
	}
	return rows, nil
}

// Close closes the side file and removes it if Open created it.
func (s *FileSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.file != nil {
		err = s.file.Close()
	}
	if s.ownsShuffled {
		if rmErr := os.Remove(s.shuffledPath); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}
	return err
}

func newReader(r io.Reader, features int) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = features + 1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	return reader
}

// readRecords loads and validates every line of path.
func readRecords(path string, features int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := newReader(f, features)
	reader.ReuseRecord = false

	row := make([]float64, features)
	var label float64
	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, formatError(path, err)
		}
		if err := parseRecord(record, row, &label); err != nil {
			line, _ := reader.FieldPos(0)
			return nil, &DataFormatError{Path: path, Line: line, Err: err}
		}
		records = append(records, record)
	}
}

func writeRecords(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create shuffled dataset: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write shuffled dataset: %w", err)
	}
	return f.Close()
}

// parseRecord parses the feature fields into row and the final field into label.
func parseRecord(record []string, row []float64, label *float64) error {
	n := len(record) - 1
	if n != len(row) {
		return fmt.Errorf("got %d fields, want %d", len(record), len(row)+1)
	}
	for j := 0; j < n; j++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[j]), 64)
		if err != nil {
			return fmt.Errorf("feature %d: %w", j+1, err)
		}
		row[j] = v
	}
	l, err := strconv.Atoi(strings.TrimSpace(record[n]))
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}
	*label = float64(l)
	return nil
}

// formatError converts csv.ParseError into a DataFormatError.
func formatError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &DataFormatError{Path: path, Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("failed to read %s: %w", path, err)
}

func zeroFrom(features *mat.Dense, labels []float64, from int) {
	rows, _ := features.Dims()
	for i := from; i < rows; i++ {
		row := features.RawRowView(i)
		for j := range row {
			row[j] = 0
		}
		labels[i] = 0
	}
}

// Copyright 2025 The Jacobian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data supplies fixed-width batches of (features, label) rows to a network.
//
// Dataset files hold one instance per line: comma-separated feature values
// followed by an integer label, for example
//
//	3.6216,8.6661,-2.8073,-0.44699,0
//
// Open validates the whole file, writes a shuffled copy to a side file and
// streams batches from it. Rewind replays the same order; Shuffle draws a new one.
package data

import (
	"github.com/jacobian-ml/jacobian/internal/data"
)

// Source supplies batches and can be rewound at epoch boundaries.
type Source = data.Source

// Options configures a FileSource.
type Options = data.Options

// FileSource is a Source backed by a shuffled copy of a dataset file.
type FileSource = data.FileSource

// MemorySource is a Source over in-memory rows.
type MemorySource = data.MemorySource

// DataFormatError reports a malformed dataset line.
type DataFormatError = data.DataFormatError

// Open validates and shuffles the dataset at path.
func Open(path string, opts Options) (*FileSource, error) {
	return data.Open(path, opts)
}

// NewMemorySource copies rows and labels into a Source.
func NewMemorySource(rows [][]float64, labels []float64, seed uint64) (*MemorySource, error) {
	return data.NewMemorySource(rows, labels, seed)
}

// Errors
var (
	ErrFormat       = data.ErrFormat
	ErrEmpty        = data.ErrEmpty
	ErrClosed       = data.ErrClosed
	ErrBatchShape   = data.ErrBatchShape
	ErrInvalidWidth = data.ErrInvalidWidth
)

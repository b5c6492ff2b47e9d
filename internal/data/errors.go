package data

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrFormat       = errors.New("malformed dataset line")
	ErrEmpty        = errors.New("dataset has no instances")
	ErrClosed       = errors.New("source is closed")
	ErrBatchShape   = errors.New("batch buffer does not match source width")
	ErrInvalidWidth = errors.New("feature count must be positive")
)

// DataFormatError reports a dataset line that does not parse into the
// expected fields.
type DataFormatError struct {
	Path string // File the line was read from
	Line int    // 1-based line number
	Err  error  // Underlying parse error
}

// Error implements the error interface.
func (e *DataFormatError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %v", e.Path, e.Line, ErrFormat, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// Is reports ErrFormat as matching every DataFormatError.
func (e *DataFormatError) Is(target error) bool {
	return target == ErrFormat
}

package serialization

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Limits applied to every file before any tensor is decoded.
const (
	MaxHeaderSize    = 16 * 1024 * 1024 // bytes of JSON header
	MaxTensorCount   = 10_000
	MaxTensorNameLen = 256
)

// f64Size is the byte width of one stored element.
const f64Size = 8

// TensorMeta describes one tensor entry of a parsed header.
type TensorMeta struct {
	Name   string // e.g. "layers.0.weights"
	DType  string
	Shape  []int
	Offset int64 // start within the data section
	Size   int64 // length in bytes
}

// end is the first byte past the tensor.
func (t TensorMeta) end() int64 { return t.Offset + t.Size }

// Header is the parsed SafeTensors header.
type Header struct {
	Tensors  []TensorMeta
	Metadata map[string]string
}

// ValidateTensorOffsets checks that the tensors tile the data section: every
// region lies inside it, holds whole float64 values, and starts where the
// previous one ends.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	byOffset := slices.Clone(tensors)
	slices.SortFunc(byOffset, func(a, b TensorMeta) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	var cursor int64
	var prev string
	for _, t := range byOffset {
		switch {
		case t.Offset < 0 || t.Size < 0:
			return &ValidationError{Type: "negative_offset", Tensor: t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size)}
		case t.end() > dataSize:
			return &ValidationError{Type: "out_of_bounds", Tensor: t.Name,
				Details: fmt.Sprintf("ends at %d, data section is %d bytes", t.end(), dataSize)}
		case t.Offset%f64Size != 0 || t.Size%f64Size != 0:
			return &ValidationError{Type: "misaligned", Tensor: t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d not multiples of %d", t.Offset, t.Size, f64Size)}
		case t.Offset < cursor:
			return &ValidationError{Type: "offset_overlap", Tensor: prev, Tensor2: t.Name,
				Details: fmt.Sprintf("%q starts at %d before %q ends at %d", t.Name, t.Offset, prev, cursor)}
		case t.Offset > cursor:
			return &ValidationError{Type: "data_gap", Tensor: t.Name,
				Details: fmt.Sprintf("bytes [%d-%d) belong to no tensor", cursor, t.Offset)}
		}
		cursor, prev = t.end(), t.Name
	}
	if cursor != dataSize {
		return &ValidationError{Type: "data_gap",
			Details: fmt.Sprintf("%d trailing bytes belong to no tensor", dataSize-cursor)}
	}
	return nil
}

// ValidateTensorName accepts the dotted names a network writes and rejects
// anything empty, oversized or path-like.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty tensor name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{Type: "name_too_long", Tensor: name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen)}
	case strings.Contains(name, ".."):
		return &ValidationError{Type: "invalid_name", Tensor: name, Details: "contains '..'"}
	case strings.ContainsAny(name, "/\\\x00"):
		return &ValidationError{Type: "invalid_name", Tensor: name, Details: "contains a path separator or null byte"}
	}
	return nil
}

// ValidateHeader checks every tensor name and the layout of the data section.
func ValidateHeader(h *Header, dataSize int64) error {
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
	}
	return ValidateTensorOffsets(h.Tensors, dataSize)
}

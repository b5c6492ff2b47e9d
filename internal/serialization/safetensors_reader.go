package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SafeTensors is the decoded content of a SafeTensors file.
type SafeTensors struct {
	Header   Header
	Tensors  map[string]*mat.Dense
	Metadata map[string]string
}

// Tensor returns the named matrix, checking its shape when rows and cols are positive.
func (s *SafeTensors) Tensor(name string, rows, cols int) (*mat.Dense, error) {
	m, ok := s.Tensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingTensor, name)
	}
	if r, c := m.Dims(); rows > 0 && cols > 0 && (r != rows || c != cols) {
		return nil, fmt.Errorf("%w: %q is %dx%d, want %dx%d", ErrShapeMismatch, name, r, c, rows, cols)
	}
	return m, nil
}

// ReadSafeTensors reads and validates a file written by WriteSafeTensors.
//
// A file carrying a ChecksumKey metadata entry is rejected with
// ErrChecksumMismatch when its data section does not match.
func ReadSafeTensors(path string) (*SafeTensors, error) {
	//nolint:gosec // G304: checkpoint paths come from the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return decode(file)
}

func decode(r io.Reader) (*SafeTensors, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	header, err := parseHeader(headerJSON)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateHeader(header, int64(len(data))); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if sum, ok := header.Metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, sum); err != nil {
			return nil, err
		}
	}

	out := &SafeTensors{
		Header:   *header,
		Tensors:  make(map[string]*mat.Dense, len(header.Tensors)),
		Metadata: header.Metadata,
	}
	for _, t := range header.Tensors {
		m, err := decodeMatrix(t, data)
		if err != nil {
			return nil, err
		}
		out.Tensors[t.Name] = m
	}
	return out, nil
}

func parseHeader(raw []byte) (*Header, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	h := &Header{Metadata: map[string]string{}}
	for name, entry := range entries {
		if name == "__metadata__" {
			if err := json.Unmarshal(entry, &h.Metadata); err != nil {
				return nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			continue
		}
		var th SafeTensorHeader
		if err := json.Unmarshal(entry, &th); err != nil {
			return nil, fmt.Errorf("failed to parse tensor %q: %w", name, err)
		}
		shape := make([]int, len(th.Shape))
		for i, d := range th.Shape {
			shape[i] = int(d)
		}
		h.Tensors = append(h.Tensors, TensorMeta{
			Name:   name,
			DType:  th.DType,
			Shape:  shape,
			Offset: th.DataOffsets[0],
			Size:   th.DataOffsets[1] - th.DataOffsets[0],
		})
	}
	sort.Slice(h.Tensors, func(i, j int) bool {
		return h.Tensors[i].Name < h.Tensors[j].Name
	})
	return h, nil
}

func decodeMatrix(t TensorMeta, data []byte) (*mat.Dense, error) {
	if t.DType != DTypeF64 {
		return nil, fmt.Errorf("%w: %q has dtype %s", ErrUnsupportedDType, t.Name, t.DType)
	}
	if len(t.Shape) != 2 || t.Shape[0] <= 0 || t.Shape[1] <= 0 {
		return nil, fmt.Errorf("%w: %q has shape %v, want 2-D", ErrShapeMismatch, t.Name, t.Shape)
	}
	// Divide first: a crafted shape must not overflow the product.
	stored := t.Size / f64Size
	if int64(t.Shape[0]) > stored/int64(t.Shape[1]) {
		return nil, fmt.Errorf("%w: %q holds %d bytes for shape %v", ErrShapeMismatch, t.Name, t.Size, t.Shape)
	}
	n := t.Shape[0] * t.Shape[1]
	if int64(n) != stored {
		return nil, fmt.Errorf("%w: %q holds %d bytes for shape %v", ErrShapeMismatch, t.Name, t.Size, t.Shape)
	}

	values := make([]float64, n)
	chunk := data[t.Offset : t.Offset+t.Size]
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk[i*f64Size:]))
	}
	return mat.NewDense(t.Shape[0], t.Shape[1], values), nil
}

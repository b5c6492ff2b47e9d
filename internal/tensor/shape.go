package tensor

import "fmt"

// Shape is the (rows, cols) extent of a matrix.
type Shape struct {
	Rows int
	Cols int
}

// ShapeOf returns the shape of m.
func ShapeOf(m Dims) Shape {
	r, c := m.Dims()
	return Shape{Rows: r, Cols: c}
}

// Dims is satisfied by every gonum matrix.
type Dims interface {
	Dims() (r, c int)
}

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Validate checks if the shape is valid (both dimensions > 0).
func (s Shape) Validate() error {
	if s.Rows <= 0 {
		return fmt.Errorf("invalid row count %d (must be > 0)", s.Rows)
	}
	if s.Cols <= 0 {
		return fmt.Errorf("invalid column count %d (must be > 0)", s.Cols)
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return s.Rows == other.Rows && s.Cols == other.Cols
}

// T returns the transposed shape.
func (s Shape) T() Shape {
	return Shape{Rows: s.Cols, Cols: s.Rows}
}

// String formats the shape as "RxC".
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

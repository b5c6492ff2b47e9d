// Package tensor provides the dense matrix helpers used by the training engine.
//
// All storage is gonum's *mat.Dense in row-major float64. The helpers here
// cover what gonum does not: validated zero allocation, seeded normal fills,
// parallel elementwise maps, row broadcasting and non-finite scans.
package tensor

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jacobian-ml/jacobian/internal/parallel"
)

// Zeros allocates a zero-filled matrix.
//
// Panics if the shape is invalid; callers validate topology before allocating.
func Zeros(shape Shape) *mat.Dense {
	if err := shape.Validate(); err != nil {
		panic("tensor: " + err.Error())
	}
	return mat.NewDense(shape.Rows, shape.Cols, nil)
}

// Normal allocates a matrix with entries drawn independently from N(0, sigma²).
//
// src is shared across calls so that a network draws all of its weights from
// a single seeded stream.
func Normal(shape Shape, sigma float64, src rand.Source) *mat.Dense {
	m := Zeros(shape)
	dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	data := m.RawMatrix().Data
	for i := range data {
		data[i] = dist.Rand()
	}
	return m
}

// Map writes f(src[i,j]) into dst[i,j]. dst and src may be the same matrix.
//
// Rows are processed in parallel when the matrix is large enough for cfg.
func Map(dst, src *mat.Dense, f func(float64) float64, cfg parallel.Config) {
	if !ShapeOf(dst).Equal(ShapeOf(src)) {
		panic("tensor: Map shape mismatch " + ShapeOf(dst).String() + " vs " + ShapeOf(src).String())
	}
	d, s := dst.RawMatrix(), src.RawMatrix()
	parallel.Rows(s.Rows, cfg, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			drow := d.Data[i*d.Stride : i*d.Stride+d.Cols]
			for j, v := range s.Data[i*s.Stride : i*s.Stride+s.Cols] {
				drow[j] = f(v)
			}
		}
	})
}

// FillRows sets every row of m to row.
func FillRows(m *mat.Dense, row []float64) {
	r, c := m.Dims()
	if len(row) != c {
		panic("tensor: FillRows length mismatch")
	}
	for i := 0; i < r; i++ {
		m.SetRow(i, row)
	}
}

// ColumnMeans returns the mean of each column of m over its first n rows.
func ColumnMeans(m *mat.Dense, n int) []float64 {
	_, c := m.Dims()
	means := make([]float64, c)
	if n <= 0 {
		return means
	}
	raw := m.RawMatrix()
	for i := 0; i < n; i++ {
		floats.Add(means, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols])
	}
	floats.Scale(1/float64(n), means)
	return means
}

// Data returns the backing slice of a contiguous matrix.
func Data(m *mat.Dense) []float64 {
	raw := m.RawMatrix()
	if raw.Stride != raw.Cols {
		panic("tensor: matrix is not contiguous")
	}
	return raw.Data[:raw.Rows*raw.Cols]
}

// Finite reports whether v is neither NaN nor ±Inf.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NegativeZero reports whether v is -0.
func NegativeZero(v float64) bool {
	return v == 0 && math.Signbit(v)
}

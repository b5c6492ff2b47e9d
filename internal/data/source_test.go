package data

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// writeDataset writes n lines "i,i+0.5,-i,i*2,label" and returns the path.
func writeDataset(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%g,%d,%d,%d\n", i, float64(i)+0.5, -i, i*2, i%2)
	}
	path := filepath.Join(t.TempDir(), "dataset.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

// readAll drains src with the given batch size and returns every row read.
func readAll(t *testing.T, src Source, batch int) ([][]float64, []float64) {
	t.Helper()
	features := mat.NewDense(batch, src.Features(), nil)
	labels := make([]float64, batch)

	var rows [][]float64
	var ls []float64
	for {
		n, err := src.NextBatch(features, labels)
		if errors.Is(err, io.EOF) {
			return rows, ls
		}
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			rows = append(rows, append([]float64(nil), features.RawRowView(i)...))
			ls = append(ls, labels[i])
		}
	}
}

func TestOpen_CountsAndShuffles(t *testing.T) {
	path := writeDataset(t, 50)
	src, err := Open(path, Options{Seed: 42})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 50, src.Len())
	assert.Equal(t, 4, src.Features())

	rows, labels := readAll(t, src, 7)
	require.Len(t, rows, 50)

	// Every instance appears exactly once.
	seen := make(map[float64]bool)
	for i, row := range rows {
		seen[row[0]] = true
		assert.Equal(t, row[0]+0.5, row[1])
		assert.Equal(t, float64(int(row[0])%2), labels[i])
	}
	assert.Len(t, seen, 50)

	// A 50-element permutation is the identity with negligible probability.
	identity := true
	for i, row := range rows {
		if row[0] != float64(i) {
			identity = false
			break
		}
	}
	assert.False(t, identity)
}

func TestRewind_SameOrder(t *testing.T) {
	src, err := Open(writeDataset(t, 37), Options{Seed: 9})
	require.NoError(t, err)
	defer src.Close()

	first, firstLabels := readAll(t, src, 16)
	require.NoError(t, src.Rewind())
	second, secondLabels := readAll(t, src, 16)

	assert.Equal(t, first, second)
	assert.Equal(t, firstLabels, secondLabels)
	assert.Len(t, first, src.Len())
}

func TestShuffle_NewOrderSameRows(t *testing.T) {
	src, err := Open(writeDataset(t, 40), Options{Seed: 1})
	require.NoError(t, err)
	defer src.Close()

	first, _ := readAll(t, src, 8)
	require.NoError(t, src.Shuffle())
	second, _ := readAll(t, src, 8)

	assert.NotEqual(t, first, second)
	assert.ElementsMatch(t, first, second)
}

func TestNextBatch_ShortFinalBatch(t *testing.T) {
	src, err := Open(writeDataset(t, 10), Options{Seed: 3})
	require.NoError(t, err)
	defer src.Close()

	features := mat.NewDense(4, 4, nil)
	labels := make([]float64, 4)

	n, err := src.NextBatch(features, labels)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = src.NextBatch(features, labels)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Fill the buffer with garbage; the short batch must not leave it stale.
	features.Apply(func(_, _ int, _ float64) float64 { return 99 }, features)
	n, err = src.NextBatch(features, labels)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for i := 2; i < 4; i++ {
		assert.Equal(t, []float64{0, 0, 0, 0}, features.RawRowView(i))
		assert.Zero(t, labels[i])
	}

	n, err = src.NextBatch(features, labels)
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)
}

func TestOpen_FormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"too few fields", "1,2,3,4,0\n1,2,3,0\n", 2},
		{"bad float", "1,2,3,4,0\n1,2,x,4,1\n1,2,3,4,0\n", 2},
		{"fractional label", "1,2,3,4,0.5\n", 1},
		{"too many fields", "1,2,3,4,0\n1,2,3,4,0\n1,2,3,4,5,0\n", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Open(path, Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)

			var dfe *DataFormatError
			require.ErrorAs(t, err, &dfe)
			assert.Equal(t, tt.line, dfe.Line)
			assert.Equal(t, path, dfe.Path)
		})
	}
}

func TestOpen_MissingAndEmpty(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.txt"), Options{})
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = Open(empty, Options{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestOpen_CustomWidthAndSideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "two.txt")
	require.NoError(t, os.WriteFile(path, []byte("0.5,1.5,1\n-1,2,0\n\n3,4,1\n"), 0o600))
	side := filepath.Join(dir, "shuffled.txt")

	src, err := Open(path, Options{Features: 2, ShuffledPath: side, Seed: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, src.Len(), "blank lines are skipped")
	assert.Equal(t, side, src.ShuffledPath())
	require.NoError(t, src.Close())

	// A caller-supplied side file is left in place.
	_, err = os.Stat(side)
	assert.NoError(t, err)
}

func TestClose_RemovesTempFile(t *testing.T) {
	src, err := Open(writeDataset(t, 3), Options{})
	require.NoError(t, err)
	side := src.ShuffledPath()

	require.NoError(t, src.Close())
	_, err = os.Stat(side)
	assert.True(t, os.IsNotExist(err))

	_, err = src.NextBatch(mat.NewDense(1, 4, nil), make([]float64, 1))
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, src.Close())
}

func TestNextBatch_ShapeMismatch(t *testing.T) {
	src, err := Open(writeDataset(t, 3), Options{})
	require.NoError(t, err)
	defer src.Close()

	_, err = src.NextBatch(mat.NewDense(2, 3, nil), make([]float64, 2))
	assert.ErrorIs(t, err, ErrBatchShape)
	_, err = src.NextBatch(mat.NewDense(2, 4, nil), make([]float64, 1))
	assert.ErrorIs(t, err, ErrBatchShape)
}

func TestMemorySource(t *testing.T) {
	rows := [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}
	labels := []float64{0, 1, 0, 1, 0}

	src, err := NewMemorySource(rows, labels, 11)
	require.NoError(t, err)
	assert.Equal(t, 5, src.Len())
	assert.Equal(t, 2, src.Features())

	first, firstLabels := readAll(t, src, 2)
	assert.Equal(t, rows, first, "memory sources start unshuffled")
	assert.Equal(t, labels, firstLabels)

	require.NoError(t, src.Shuffle())
	shuffled, _ := readAll(t, src, 2)
	assert.ElementsMatch(t, rows, shuffled)

	require.NoError(t, src.Rewind())
	again, _ := readAll(t, src, 3)
	assert.Equal(t, shuffled, again)

	_, err = NewMemorySource(rows, labels[:2], 0)
	assert.ErrorIs(t, err, ErrBatchShape)
	_, err = NewMemorySource(nil, nil, 0)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = NewMemorySource([][]float64{{1}, {1, 2}}, []float64{0, 0}, 0)
	assert.ErrorIs(t, err, ErrBatchShape)
}

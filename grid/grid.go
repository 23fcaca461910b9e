// Package grid holds the row-major 2D container used for price surfaces,
// the inclusive mesh generator and the parameter sweeps built on top of it.
package grid

import "fmt"

// Grid is a rows x cols matrix stored row-major in one flat slice.
// len(Data()) == Rows()*Cols() always holds.
type Grid[T any] struct {
	data []T
	rows int
	cols int
}

// New returns a zero-filled rows x cols grid. Negative sizes are treated as 0.
func New[T any](rows, cols int) Grid[T] {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return Grid[T]{data: make([]T, rows*cols), rows: rows, cols: cols}
}

// FromSlice wraps data as a rows x cols grid without copying.
func FromSlice[T any](rows, cols int, data []T) (Grid[T], error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return Grid[T]{}, fmt.Errorf("grid: %d values cannot fill %dx%d", len(data), rows, cols)
	}
	return Grid[T]{data: data, rows: rows, cols: cols}, nil
}

func (g Grid[T]) Rows() int { return g.rows }
func (g Grid[T]) Cols() int { return g.cols }
func (g Grid[T]) Len() int  { return len(g.data) }

// At returns cell (i, j). It panics when the index is out of range, like a slice.
func (g Grid[T]) At(i, j int) T {
	return g.data[g.index(i, j)]
}

// Set stores v at cell (i, j).
func (g Grid[T]) Set(i, j int, v T) {
	g.data[g.index(i, j)] = v
}

// Row returns a view of row i. Writes through the view land in the grid.
func (g Grid[T]) Row(i int) []T {
	if i < 0 || i >= g.rows {
		panic(fmt.Sprintf("grid: row %d out of range [0,%d)", i, g.rows))
	}
	return g.data[i*g.cols : (i+1)*g.cols : (i+1)*g.cols]
}

// Data returns the row-major backing slice.
func (g Grid[T]) Data() []T { return g.data }

func (g Grid[T]) index(i, j int) int {
	if i < 0 || i >= g.rows || j < 0 || j >= g.cols {
		panic(fmt.Sprintf("grid: index (%d,%d) out of range %dx%d", i, j, g.rows, g.cols))
	}
	return i*g.cols + j
}

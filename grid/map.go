package grid

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Map applies f to every element, preserving order.
func Map[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// MapGrid applies f to every cell, preserving shape.
func MapGrid[T, U any](g Grid[T], f func(T) U) Grid[U] {
	return Grid[U]{data: Map(g.data, f), rows: g.rows, cols: g.cols}
}

// MapGridParallel is MapGrid with rows spread over at most workers
// goroutines (GOMAXPROCS when workers <= 0). Cells are independent and each
// goroutine writes a disjoint row, so no locking is needed. A cancelled
// context aborts the call and no partial grid is returned.
func MapGridParallel[T, U any](ctx context.Context, g Grid[T], f func(T) U, workers int) (Grid[U], error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := New[U](g.rows, g.cols)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < g.rows; i++ {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, dst := g.Row(i), out.Row(i)
			for j, v := range src {
				dst[j] = f(v)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Grid[U]{}, err
	}
	return out, nil
}

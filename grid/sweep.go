package grid

import (
	"fmt"

	"github.com/souvik131/optionlab/option"
)

// Sweep1D returns one copy of base per mesh point of [start, end] by step,
// with field set to that point. Everything else is copied from base.
func Sweep1D(base option.Params, field option.Field, start, end, step float64) ([]option.Params, error) {
	mesh, err := Mesh(start, end, step)
	if err != nil {
		return nil, fmt.Errorf("sweep %s: %w", field.Name, err)
	}
	out := make([]option.Params, len(mesh))
	for i, v := range mesh {
		out[i] = field.With(base, v)
	}
	return out, nil
}

// Sweep2D returns the full Cartesian product of two independent sweeps.
// Cell (i, j) is base with fieldX = meshX[i] and fieldY = meshY[j].
func Sweep2D(base option.Params, fieldX option.Field, rx Range, fieldY option.Field, ry Range) (Grid[option.Params], error) {
	meshX, err := rx.Mesh()
	if err != nil {
		return Grid[option.Params]{}, fmt.Errorf("sweep x axis %s: %w", fieldX.Name, err)
	}
	meshY, err := ry.Mesh()
	if err != nil {
		return Grid[option.Params]{}, fmt.Errorf("sweep y axis %s: %w", fieldY.Name, err)
	}

	g := New[option.Params](len(meshX), len(meshY))
	for i, x := range meshX {
		row := fieldX.With(base, x)
		for j, y := range meshY {
			g.Set(i, j, fieldY.With(row, y))
		}
	}
	return g, nil
}

// Axis reads field back out of every record of a 1D sweep.
func Axis(params []option.Params, field option.Field) []float64 {
	return Map(params, field.Get)
}

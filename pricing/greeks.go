package pricing

import (
	"context"

	"github.com/souvik131/optionlab/grid"
	"github.com/souvik131/optionlab/option"
)

// Greeks computes price sensitivities with respect to the asset price.
// Further sensitivities follow the same pattern: a scalar method on the
// engine, lifted to batches and grids through Measure.
type Greeks interface {
	Delta(p option.Params) float64
	Gamma(p option.Params) float64
}

func DeltaBatch(g Greeks, batch []option.Params) []float64 {
	return Measure(g.Delta).Batch(batch)
}

func DeltaGrid(g Greeks, params grid.Grid[option.Params]) grid.Grid[float64] {
	return Measure(g.Delta).Grid(params)
}

func DeltaGridParallel(ctx context.Context, g Greeks, params grid.Grid[option.Params], workers int) (grid.Grid[float64], error) {
	return Measure(g.Delta).GridParallel(ctx, params, workers)
}

func GammaBatch(g Greeks, batch []option.Params) []float64 {
	return Measure(g.Gamma).Batch(batch)
}

func GammaGrid(g Greeks, params grid.Grid[option.Params]) grid.Grid[float64] {
	return Measure(g.Gamma).Grid(params)
}

func GammaGridParallel(ctx context.Context, g Greeks, params grid.Grid[option.Params], workers int) (grid.Grid[float64], error) {
	return Measure(g.Gamma).GridParallel(ctx, params, workers)
}

// GreeksFor returns the analytic engine for European options, and finite
// differences with step h over ForStyle(style) when numerical is set or no
// closed form exists.
func GreeksFor(style option.Style, numerical bool, h float64) Greeks {
	if numerical || style != option.StyleEuropean {
		return NewFiniteDifference(ForStyle(style), h)
	}
	return BlackScholesGreeks{}
}

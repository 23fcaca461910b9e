// Package pricing holds the valuation engines and the capabilities they
// implement. An engine only supplies the scalar formula; the batch and grid
// forms are derived here once, through Measure.
package pricing

import (
	"context"

	"github.com/souvik131/optionlab/grid"
	"github.com/souvik131/optionlab/option"
)

// Measure is any scalar valuation of one record: a price or a sensitivity.
type Measure func(p option.Params) float64

// Batch evaluates m on every record, preserving order.
func (m Measure) Batch(batch []option.Params) []float64 {
	return grid.Map[option.Params, float64](batch, m)
}

// Grid evaluates m on every cell, preserving shape.
func (m Measure) Grid(g grid.Grid[option.Params]) grid.Grid[float64] {
	return grid.MapGrid[option.Params, float64](g, m)
}

// GridParallel is Grid spread over workers goroutines. See grid.MapGridParallel.
func (m Measure) GridParallel(ctx context.Context, g grid.Grid[option.Params], workers int) (grid.Grid[float64], error) {
	return grid.MapGridParallel[option.Params, float64](ctx, g, m, workers)
}

// Pricer values one parameter record.
type Pricer interface {
	Price(p option.Params) float64
}

// PricerFunc adapts a plain function to Pricer.
type PricerFunc func(p option.Params) float64

func (f PricerFunc) Price(p option.Params) float64 { return f(p) }

func PriceBatch(pr Pricer, batch []option.Params) []float64 {
	return Measure(pr.Price).Batch(batch)
}

func PriceGrid(pr Pricer, g grid.Grid[option.Params]) grid.Grid[float64] {
	return Measure(pr.Price).Grid(g)
}

func PriceGridParallel(ctx context.Context, pr Pricer, g grid.Grid[option.Params], workers int) (grid.Grid[float64], error) {
	return Measure(pr.Price).GridParallel(ctx, g, workers)
}

// ForStyle returns the closed-form pricer for options of the given style.
func ForStyle(style option.Style) Pricer {
	if style == option.StylePerpetualAmerican {
		return PerpetualAmerican{}
	}
	return BlackScholes{}
}

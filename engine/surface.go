package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/souvik131/optionlab/grid"
	"github.com/souvik131/optionlab/option"
	"github.com/souvik131/optionlab/pricing"
)

// Measures are the surfaces the engine knows how to evaluate, by name.
var Measures = map[string]pricing.Measure{
	"price": pricing.BlackScholes{}.Price,
	"delta": pricing.BlackScholesGreeks{}.Delta,
	"gamma": pricing.BlackScholesGreeks{}.Gamma,
	"vega":  pricing.BlackScholesGreeks{}.Vega,
	"theta": pricing.BlackScholesGreeks{}.Theta,
}

// MeasureNames returns the keys of Measures in sorted order.
func MeasureNames() []string {
	names := make([]string, 0, len(Measures))
	for name := range Measures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupMeasure(name string) (pricing.Measure, error) {
	m, ok := Measures[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown measure %q", option.ErrInvalidArgument, name)
	}
	return m, nil
}

// Axis is one swept dimension of a surface.
type Axis struct {
	Field option.Field
	Range grid.Range
}

// BandAxis sweeps field over [0.5*center, 1.5*center] in points equal steps.
func BandAxis(field option.Field, center float64, points int) Axis {
	start, end := 0.5*center, 1.5*center
	return Axis{
		Field: field,
		Range: grid.Range{Start: start, End: end, Step: (end - start) / float64(points)},
	}
}

type SurfaceSpec struct {
	Base    option.Params
	X, Y    Axis
	Measure string
}

// Surface is a measure evaluated over a 2D sweep. Params.At(i, j) holds the
// record that produced Values.At(i, j).
type Surface struct {
	Measure string
	X, Y    option.Field
	Params  grid.Grid[option.Params]
	Values  grid.Grid[float64]
}

// Generate sweeps spec.Base over both axes and evaluates the named measure on
// every cell, using at most workers goroutines.
func Generate(ctx context.Context, spec SurfaceSpec, workers int) (*Surface, error) {
	measure, err := lookupMeasure(spec.Measure)
	if err != nil {
		return nil, err
	}
	params, err := grid.Sweep2D(spec.Base, spec.X.Field, spec.X.Range, spec.Y.Field, spec.Y.Range)
	if err != nil {
		return nil, fmt.Errorf("%s surface: %w", spec.Measure, err)
	}
	values, err := measure.GridParallel(ctx, params, workers)
	if err != nil {
		return nil, fmt.Errorf("%s surface: %w", spec.Measure, err)
	}
	return &Surface{
		Measure: spec.Measure,
		X:       spec.X.Field,
		Y:       spec.Y.Field,
		Params:  params,
		Values:  values,
	}, nil
}

// Point is one cell of a surface in coordinate form.
type Point struct {
	X, Y, Value float64
}

// Points flattens the surface in row-major order.
func (s *Surface) Points() []Point {
	out := make([]Point, 0, s.Values.Len())
	for i := 0; i < s.Params.Rows(); i++ {
		for j := 0; j < s.Params.Cols(); j++ {
			p := s.Params.At(i, j)
			out = append(out, Point{X: s.X.Get(p), Y: s.Y.Get(p), Value: s.Values.At(i, j)})
		}
	}
	return out
}

// Range returns the smallest and largest value on the surface, skipping NaN
// cells. Both are NaN when no cell holds a number, and 0 for an empty surface.
func (s *Surface) Range() (lo, hi float64) {
	data := s.Values.Data()
	if len(data) == 0 {
		return 0, 0
	}
	lo, hi = math.NaN(), math.NaN()
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

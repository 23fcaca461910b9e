package pricing

import (
	"math"

	"github.com/souvik131/optionlab/option"
)

// PerpetualAmerican prices American options with no expiry using the
// closed-form optimal exercise boundary. ExerciseTime is ignored.
//
// The formula is only meaningful for r > 0 and sigma > 0 with y away from 0
// and 1. Outside that domain it divides by zero or raises a negative base to
// a fractional power, and the Inf/NaN is returned as is.
type PerpetualAmerican struct{}

// a1 = 1/2 - b/sigma^2
func perpetualA1(p option.Params) float64 {
	return 0.5 - p.CostOfCarry/(p.Volatility*p.Volatility)
}

// a2 = sqrt((b/sigma^2 - 1/2)^2 + 2r/sigma^2)
func perpetualA2(p option.Params) float64 {
	sigmaSq := p.Volatility * p.Volatility
	m := p.CostOfCarry/sigmaSq - 0.5
	return math.Sqrt(m*m + 2.0*p.Rate/sigmaSq)
}

// Price = K/(sign*(y-1)) * (((y-1)*S)/(y*K))^y with y = a1 + sign*a2,
// i.e. y1 = a1+a2 for a call and y2 = a1-a2 for a put.
func (PerpetualAmerican) Price(p option.Params) float64 {
	sign := p.Type.Sign()
	y := perpetualA1(p) + sign*perpetualA2(p)
	return p.StrikePrice / (sign * (y - 1)) * math.Pow(((y-1)*p.AssetPrice)/(y*p.StrikePrice), y)
}

var _ Pricer = PerpetualAmerican{}

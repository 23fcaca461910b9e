package pricing

import (
	"math"

	"github.com/souvik131/optionlab/option"
)

// d1 = (ln(S/K) + T*(b + sigma^2/2)) / (sigma*sqrt(T)), shared by the price and the Greeks.
//
// sigma = 0 or T = 0 divides by zero here and the resulting Inf/NaN flows
// through to the caller unchanged.
func d1(p option.Params) float64 {
	num := math.Log(p.AssetPrice/p.StrikePrice) + p.ExerciseTime*(p.CostOfCarry+0.5*p.Volatility*p.Volatility)
	den := p.Volatility * math.Sqrt(p.ExerciseTime)
	return num / den
}

// d2 = d1 - sigma*sqrt(T)
func d2(p option.Params) float64 {
	return d1(p) - p.Volatility*math.Sqrt(p.ExerciseTime)
}

// carryFactor is e^((b-r)T).
func carryFactor(p option.Params) float64 {
	return math.Exp((p.CostOfCarry - p.Rate) * p.ExerciseTime)
}

// discountFactor is e^(-rT).
func discountFactor(p option.Params) float64 {
	return math.Exp(-p.Rate * p.ExerciseTime)
}

// BlackScholes prices European options with the generalized
// Black-Scholes-Merton formula. The cost of carry b covers stocks (b = r),
// stocks with a continuous dividend yield q (b = r - q), futures (b = 0) and
// currencies (b = r - rf).
type BlackScholes struct{}

// Price = sign * (S*e^((b-r)T)*N(sign*d1) - K*e^(-rT)*N(sign*d2)).
func (BlackScholes) Price(p option.Params) float64 {
	sign := p.Type.Sign()
	return sign * (p.AssetPrice*carryFactor(p)*NormCDF(sign*d1(p)) -
		p.StrikePrice*discountFactor(p)*NormCDF(sign*d2(p)))
}

// BlackScholesGreeks gives the closed-form sensitivities of BlackScholes.
type BlackScholesGreeks struct{}

// Delta = sign * e^((b-r)T) * N(sign*d1).
func (BlackScholesGreeks) Delta(p option.Params) float64 {
	sign := p.Type.Sign()
	return sign * carryFactor(p) * NormCDF(sign*d1(p))
}

// Gamma = n(d1) * e^((b-r)T) / (S*sigma*sqrt(T)), the same for calls and puts.
func (BlackScholesGreeks) Gamma(p option.Params) float64 {
	return NormPDF(d1(p)) * carryFactor(p) / (p.AssetPrice * p.Volatility * math.Sqrt(p.ExerciseTime))
}

// Vega = S * e^((b-r)T) * n(d1) * sqrt(T), per unit of volatility.
func (BlackScholesGreeks) Vega(p option.Params) float64 {
	return p.AssetPrice * carryFactor(p) * NormPDF(d1(p)) * math.Sqrt(p.ExerciseTime)
}

// Theta is the per-year decay -dV/dT with r and b held fixed.
func (BlackScholesGreeks) Theta(p option.Params) float64 {
	sign := p.Type.Sign()
	decay := -p.AssetPrice * carryFactor(p) * NormPDF(d1(p)) * p.Volatility / (2 * math.Sqrt(p.ExerciseTime))
	return decay -
		sign*(p.CostOfCarry-p.Rate)*p.AssetPrice*carryFactor(p)*NormCDF(sign*d1(p)) -
		sign*p.Rate*p.StrikePrice*discountFactor(p)*NormCDF(sign*d2(p))
}

var (
	_ Pricer = BlackScholes{}
	_ Greeks = BlackScholesGreeks{}
)

package pricing

import "gonum.org/v1/gonum/stat/distuv"

// NormCDF is the standard normal cumulative distribution function N(x).
func NormCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormPDF is the standard normal density n(x) = exp(-x^2/2) / sqrt(2*pi).
func NormPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

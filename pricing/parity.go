package pricing

import (
	"fmt"
	"math"

	"github.com/souvik131/optionlab/option"
)

// DefaultParityTolerance is the tolerance used by callers of CheckParity that have no better one.
const DefaultParityTolerance = 1e-6

// PutFromCall applies C + K*e^(-rT) = P + S to a call price. p must describe a call.
func PutFromCall(c float64, p option.Params) (float64, error) {
	if p.Type != option.Call {
		return 0, fmt.Errorf("%w: put from call needs call params, got %v", option.ErrInvalidArgument, p.Type)
	}
	return c + p.StrikePrice*discountFactor(p) - p.AssetPrice, nil
}

// CallFromPut applies C + K*e^(-rT) = P + S to a put price. p must describe a put.
func CallFromPut(put float64, p option.Params) (float64, error) {
	if p.Type != option.Put {
		return 0, fmt.Errorf("%w: call from put needs put params, got %v", option.ErrInvalidArgument, p.Type)
	}
	return put + p.AssetPrice - p.StrikePrice*discountFactor(p), nil
}

// CheckParity reports whether |C + K*e^(-rT) - (P + S)| < tol. The option type of p is ignored.
func CheckParity(c, put float64, p option.Params, tol float64) bool {
	return math.Abs(c+p.StrikePrice*discountFactor(p)-(put+p.AssetPrice)) < tol
}

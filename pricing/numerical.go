package pricing

import "github.com/souvik131/optionlab/option"

// DefaultStep is the bump applied to the asset price by FiniteDifference.
const DefaultStep = 0.01

// FiniteDifference estimates Greeks by bumping the asset price of any Pricer
// by +/-h with central differences. Nothing else in the record moves.
//
// h is not checked. A large h adds curvature error and a very small h loses
// precision to cancellation; h = 0 yields NaN.
type FiniteDifference struct {
	pricer Pricer
	h      float64
}

func NewFiniteDifference(pricer Pricer, h float64) *FiniteDifference {
	return &FiniteDifference{pricer: pricer, h: h}
}

func (fd *FiniteDifference) Step() float64 { return fd.h }

// Delta = (V(S+h) - V(S-h)) / 2h.
func (fd *FiniteDifference) Delta(p option.Params) float64 {
	up, down := fd.bump(p)
	return (fd.pricer.Price(up) - fd.pricer.Price(down)) / (2.0 * fd.h)
}

// Gamma = (V(S+h) - 2V(S) + V(S-h)) / h^2.
func (fd *FiniteDifference) Gamma(p option.Params) float64 {
	up, down := fd.bump(p)
	return (fd.pricer.Price(up) - 2.0*fd.pricer.Price(p) + fd.pricer.Price(down)) / (fd.h * fd.h)
}

func (fd *FiniteDifference) bump(p option.Params) (up, down option.Params) {
	up, down = p, p
	up.AssetPrice += fd.h
	down.AssetPrice -= fd.h
	return up, down
}

var _ Greeks = (*FiniteDifference)(nil)

package option

import (
	"fmt"
	"strings"
)

// Field is a read/write lens over one numeric field of Params. Sweeps take a
// Field so any numeric field can act as an axis.
type Field struct {
	Name string
	Get  func(p Params) float64
	Set  func(p *Params, v float64)
}

// With returns a copy of p with the field set to v.
func (f Field) With(p Params, v float64) Params {
	f.Set(&p, v)
	return p
}

func (f Field) String() string { return f.Name }

var (
	AssetPriceField = Field{
		Name: "asset_price",
		Get:  func(p Params) float64 { return p.AssetPrice },
		Set:  func(p *Params, v float64) { p.AssetPrice = v },
	}
	StrikePriceField = Field{
		Name: "strike_price",
		Get:  func(p Params) float64 { return p.StrikePrice },
		Set:  func(p *Params, v float64) { p.StrikePrice = v },
	}
	RateField = Field{
		Name: "r",
		Get:  func(p Params) float64 { return p.Rate },
		Set:  func(p *Params, v float64) { p.Rate = v },
	}
	CostOfCarryField = Field{
		Name: "cost_of_carry",
		Get:  func(p Params) float64 { return p.CostOfCarry },
		Set:  func(p *Params, v float64) { p.CostOfCarry = v },
	}
	VolatilityField = Field{
		Name: "volatility",
		Get:  func(p Params) float64 { return p.Volatility },
		Set:  func(p *Params, v float64) { p.Volatility = v },
	}
	ExerciseTimeField = Field{
		Name: "exercise_time",
		Get:  func(p Params) float64 { return p.ExerciseTime },
		Set:  func(p *Params, v float64) { p.ExerciseTime = v },
	}
)

// Fields lists every numeric field in declaration order.
func Fields() []Field {
	return []Field{
		AssetPriceField,
		StrikePriceField,
		RateField,
		CostOfCarryField,
		VolatilityField,
		ExerciseTimeField,
	}
}

// FieldByName resolves a field from its name. A few short aliases (S, K, T,
// sigma, b) are accepted for command line and tool input.
func FieldByName(name string) (Field, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "s", "spot", "underlying":
		n = AssetPriceField.Name
	case "k", "strike":
		n = StrikePriceField.Name
	case "rate", "risk_free_rate":
		n = RateField.Name
	case "b", "carry":
		n = CostOfCarryField.Name
	case "sigma", "vol":
		n = VolatilityField.Name
	case "t", "expiry", "maturity":
		n = ExerciseTimeField.Name
	}
	for _, f := range Fields() {
		if f.Name == n {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("%w: unknown field %q", ErrInvalidArgument, name)
}

package option

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is wrapped by every validation failure in this module.
var ErrInvalidArgument = errors.New("invalid argument")

// OptionType is the exercise direction. The numeric value doubles as the payoff sign.
type OptionType int

const (
	Call OptionType = 1
	Put  OptionType = -1
)

// Sign returns +1 for a call and -1 for a put.
func (t OptionType) Sign() float64 {
	return float64(t)
}

func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return fmt.Sprintf("OptionType(%d)", int(t))
}

// ParseOptionType accepts call/put (any case) and the CE/PE exchange suffixes.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c", "ce":
		return Call, nil
	case "put", "p", "pe":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: unknown option type %q", ErrInvalidArgument, s)
}

func (t OptionType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: option type %d", ErrInvalidArgument, int(t))
	}
	return []byte(t.String()), nil
}

func (t *OptionType) UnmarshalText(b []byte) error {
	v, err := ParseOptionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Params is the full configuration of a vanilla option.
type Params struct {
	AssetPrice   float64    `json:"asset_price"`
	StrikePrice  float64    `json:"strike_price"`
	Rate         float64    `json:"r"`
	CostOfCarry  float64    `json:"cost_of_carry"` // b = r for a non-dividend stock
	Volatility   float64    `json:"volatility"`
	ExerciseTime float64    `json:"exercise_time"` // years
	Type         OptionType `json:"option_type"`
}

// DefaultParams returns S=60 K=65 r=b=0.08 sigma=0.30 T=0.25 call.
func DefaultParams() Params {
	return Params{
		AssetPrice:   60.0,
		StrikePrice:  65.0,
		Rate:         0.08,
		CostOfCarry:  0.08,
		Volatility:   0.30,
		ExerciseTime: 0.25,
		Type:         Call,
	}
}

// Validate checks the domain of the record. Rate and cost of carry are unconstrained.
func (p Params) Validate() error {
	if p.AssetPrice < 0 {
		return fmt.Errorf("%w: asset price must be non-negative, got %v", ErrInvalidArgument, p.AssetPrice)
	}
	if p.StrikePrice < 0 {
		return fmt.Errorf("%w: strike price must be non-negative, got %v", ErrInvalidArgument, p.StrikePrice)
	}
	if p.Volatility < 0 {
		return fmt.Errorf("%w: volatility must be non-negative, got %v", ErrInvalidArgument, p.Volatility)
	}
	if p.ExerciseTime < 0 {
		return fmt.Errorf("%w: exercise time cannot be negative, got %v", ErrInvalidArgument, p.ExerciseTime)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: invalid option type %d", ErrInvalidArgument, int(p.Type))
	}
	return nil
}

// Switched returns a copy of p with the opposite option type.
func (p Params) Switched() Params {
	if p.Type == Call {
		p.Type = Put
	} else {
		p.Type = Call
	}
	return p
}

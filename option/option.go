package option

import (
	"fmt"
	"math"
	"strings"
)

// Style tags the exercise style of an option.
type Style int

const (
	StyleEuropean Style = iota
	StylePerpetualAmerican
)

func (s Style) String() string {
	switch s {
	case StyleEuropean:
		return "european"
	case StylePerpetualAmerican:
		return "perpetual_american"
	}
	return "unknown"
}

// ParseStyle accepts the String forms plus "perpetual" and "american". Empty means European.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "european":
		return StyleEuropean, nil
	case "perpetual_american", "perpetual", "american":
		return StylePerpetualAmerican, nil
	}
	return 0, fmt.Errorf("%w: unknown style %q", ErrInvalidArgument, s)
}

// Option owns one parameter record.
//
// The record is validated by the constructors and by SetParams only. The
// single-field setters write through unchecked, so an option can be walked
// through transiently invalid states one field at a time.
type Option interface {
	Params() Params
	SetParams(p Params) error

	AssetPrice() float64
	StrikePrice() float64
	Rate() float64
	CostOfCarry() float64
	Volatility() float64
	ExerciseTime() float64
	Type() OptionType

	SetAssetPrice(v float64)
	SetStrikePrice(v float64)
	SetRate(v float64)
	SetCostOfCarry(v float64)
	SetVolatility(v float64)
	SetExerciseTime(v float64)

	SwitchType()
	Style() Style
}

// contract holds the record shared by every option style. Copying a value
// that embeds it copies the record.
type contract struct {
	params Params
}

func newContract(p Params) (contract, error) {
	if err := p.Validate(); err != nil {
		return contract{}, err
	}
	return contract{params: p}, nil
}

func (c *contract) Params() Params { return c.params }

// SetParams replaces the whole record after validating it. On failure the
// option keeps its previous record.
func (c *contract) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.params = p
	return nil
}

func (c *contract) AssetPrice() float64   { return c.params.AssetPrice }
func (c *contract) StrikePrice() float64  { return c.params.StrikePrice }
func (c *contract) Rate() float64         { return c.params.Rate }
func (c *contract) CostOfCarry() float64  { return c.params.CostOfCarry }
func (c *contract) Volatility() float64   { return c.params.Volatility }
func (c *contract) ExerciseTime() float64 { return c.params.ExerciseTime }
func (c *contract) Type() OptionType      { return c.params.Type }

func (c *contract) SetAssetPrice(v float64)   { c.params.AssetPrice = v }
func (c *contract) SetStrikePrice(v float64)  { c.params.StrikePrice = v }
func (c *contract) SetRate(v float64)         { c.params.Rate = v }
func (c *contract) SetCostOfCarry(v float64)  { c.params.CostOfCarry = v }
func (c *contract) SetVolatility(v float64)   { c.params.Volatility = v }
func (c *contract) SetExerciseTime(v float64) { c.params.ExerciseTime = v }

// SwitchType flips between call and put.
func (c *contract) SwitchType() {
	c.params = c.params.Switched()
}

// European is exercisable at ExerciseTime only.
type European struct {
	contract
}

func NewEuropean(p Params) (*European, error) {
	c, err := newContract(p)
	if err != nil {
		return nil, err
	}
	return &European{contract: c}, nil
}

func (e *European) Style() Style { return StyleEuropean }

// Payoff is the exercise value max(0, sign*(S-K)) at the current asset price.
func (e *European) Payoff() float64 {
	return math.Max(0, e.params.Type.Sign()*(e.params.AssetPrice-e.params.StrikePrice))
}

// Clone returns an independent copy.
func (e *European) Clone() *European {
	c := *e
	return &c
}

// PerpetualAmerican is exercisable at any time with no expiry. ExerciseTime is
// carried in the record but ignored by the perpetual pricing formula.
type PerpetualAmerican struct {
	contract
}

func NewPerpetualAmerican(p Params) (*PerpetualAmerican, error) {
	c, err := newContract(p)
	if err != nil {
		return nil, err
	}
	return &PerpetualAmerican{contract: c}, nil
}

func (a *PerpetualAmerican) Style() Style { return StylePerpetualAmerican }

// Clone returns an independent copy.
func (a *PerpetualAmerican) Clone() *PerpetualAmerican {
	c := *a
	return &c
}

var (
	_ Option = (*European)(nil)
	_ Option = (*PerpetualAmerican)(nil)
)

package option_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/souvik131/optionlab/option"
)

func TestEuropeanConstructorsGettersSetters(t *testing.T) {
	euro, err := option.NewEuropean(option.DefaultParams())
	if err != nil {
		t.Fatalf("NewEuropean returned an error for default params: %v", err)
	}
	if euro.AssetPrice() != 60.0 {
		t.Errorf("default asset price: expected 60, got %v", euro.AssetPrice())
	}
	if euro.Type() != option.Call || int(euro.Type()) != 1 {
		t.Errorf("default type: expected call (1), got %v", euro.Type())
	}

	euro.SetAssetPrice(62.0)
	if euro.AssetPrice() != 62.0 {
		t.Errorf("SetAssetPrice: expected 62, got %v", euro.AssetPrice())
	}

	t.Run("CopyIsIndependent", func(t *testing.T) {
		clone := euro.Clone()
		euro.SetAssetPrice(63.0)
		if clone.AssetPrice() != 62.0 {
			t.Errorf("clone aliased the original: got %v", clone.AssetPrice())
		}

		value := *euro
		euro.SetStrikePrice(70.0)
		if value.StrikePrice() != 65.0 {
			t.Errorf("value copy aliased the original: got %v", value.StrikePrice())
		}
	})

	t.Run("SwitchType", func(t *testing.T) {
		p := option.DefaultParams()
		p.AssetPrice = 64.0
		o, err := option.NewEuropean(p)
		if err != nil {
			t.Fatal(err)
		}
		o.SwitchType()
		if int(o.Type()) != -1 {
			t.Errorf("expected put (-1) after switch, got %v", o.Type())
		}
		o.SwitchType()
		if o.Type() != option.Call {
			t.Errorf("expected call after second switch, got %v", o.Type())
		}
	})
}

func TestEuropeanPayoff(t *testing.T) {
	tests := []struct {
		name string
		s, k float64
		typ  option.OptionType
		want float64
	}{
		{"CallITM", 70, 65, option.Call, 5},
		{"CallOTM", 60, 65, option.Call, 0},
		{"PutITM", 60, 65, option.Put, 5},
		{"PutOTM", 70, 65, option.Put, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := option.DefaultParams()
			p.AssetPrice, p.StrikePrice, p.Type = tt.s, tt.k, tt.typ
			o, err := option.NewEuropean(p)
			if err != nil {
				t.Fatal(err)
			}
			if got := o.Payoff(); got != tt.want {
				t.Errorf("payoff: expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	invalid := map[string]func(p *option.Params){
		"NegativeAsset":      func(p *option.Params) { p.AssetPrice = -1 },
		"NegativeStrike":     func(p *option.Params) { p.StrikePrice = -1 },
		"NegativeVolatility": func(p *option.Params) { p.Volatility = -0.1 },
		"NegativeTime":       func(p *option.Params) { p.ExerciseTime = -0.5 },
		"BadType":            func(p *option.Params) { p.Type = 0 },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			p := option.DefaultParams()
			mutate(&p)
			if _, err := option.NewEuropean(p); !errors.Is(err, option.ErrInvalidArgument) {
				t.Errorf("NewEuropean: expected ErrInvalidArgument, got %v", err)
			}
			if _, err := option.NewPerpetualAmerican(p); !errors.Is(err, option.ErrInvalidArgument) {
				t.Errorf("NewPerpetualAmerican: expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	t.Run("ZeroBoundaryIsValid", func(t *testing.T) {
		p := option.Params{Type: option.Put}
		if err := p.Validate(); err != nil {
			t.Errorf("all-zero put should validate, got %v", err)
		}
	})

	t.Run("NegativeRatesAreValid", func(t *testing.T) {
		p := option.DefaultParams()
		p.Rate, p.CostOfCarry = -0.01, -0.02
		if err := p.Validate(); err != nil {
			t.Errorf("negative r and b should validate, got %v", err)
		}
	})
}

func TestSettersSkipValidation(t *testing.T) {
	o, err := option.NewEuropean(option.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	o.SetAssetPrice(-10)
	o.SetVolatility(-0.2)
	if o.AssetPrice() != -10 || o.Volatility() != -0.2 {
		t.Fatalf("field setters must write through unchecked, got S=%v sigma=%v", o.AssetPrice(), o.Volatility())
	}

	// A full-record setter still validates, and keeps the old record on failure.
	bad := o.Params()
	if err := o.SetParams(bad); !errors.Is(err, option.ErrInvalidArgument) {
		t.Errorf("SetParams: expected ErrInvalidArgument, got %v", err)
	}
	good := option.DefaultParams()
	if err := o.SetParams(good); err != nil {
		t.Fatalf("SetParams(valid) returned %v", err)
	}
	if err := o.SetParams(bad); err == nil {
		t.Fatal("expected an error")
	}
	if o.Params() != good {
		t.Errorf("failed SetParams modified the option: %+v", o.Params())
	}
}

func TestStyles(t *testing.T) {
	euro, _ := option.NewEuropean(option.DefaultParams())
	perp, _ := option.NewPerpetualAmerican(option.DefaultParams())

	opts := []option.Option{euro, perp}
	want := []option.Style{option.StyleEuropean, option.StylePerpetualAmerican}
	for i, o := range opts {
		if o.Style() != want[i] {
			t.Errorf("style %d: expected %v, got %v", i, want[i], o.Style())
		}
	}

	clone := perp.Clone()
	perp.SetRate(0.5)
	if clone.Rate() != 0.08 {
		t.Errorf("perpetual clone aliased the original: got r=%v", clone.Rate())
	}
}

func TestParseOptionType(t *testing.T) {
	for in, want := range map[string]option.OptionType{"call": option.Call, "PUT": option.Put, "CE": option.Call, " pe ": option.Put} {
		got, err := option.ParseOptionType(in)
		if err != nil || got != want {
			t.Errorf("ParseOptionType(%q): expected %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := option.ParseOptionType("straddle"); !errors.Is(err, option.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestParseStyle(t *testing.T) {
	for in, want := range map[string]option.Style{
		"":                   option.StyleEuropean,
		"European":           option.StyleEuropean,
		"perpetual_american": option.StylePerpetualAmerican,
		"perpetual":          option.StylePerpetualAmerican,
	} {
		got, err := option.ParseStyle(in)
		if err != nil || got != want {
			t.Errorf("ParseStyle(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := option.ParseStyle("bermudan"); !errors.Is(err, option.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for bermudan, got %v", err)
	}
}

func TestParamsJSON(t *testing.T) {
	b, err := json.Marshal(option.DefaultParams())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"asset_price":60,"strike_price":65,"r":0.08,"cost_of_carry":0.08,"volatility":0.3,"exercise_time":0.25,"option_type":"call"}`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}

	var p option.Params
	if err := json.Unmarshal([]byte(`{"asset_price":100,"option_type":"PE"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.AssetPrice != 100 || p.Type != option.Put {
		t.Errorf("unexpected decode %+v", p)
	}

	if err := json.Unmarshal([]byte(`{"option_type":"straddle"}`), &p); !errors.Is(err, option.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := json.Marshal(option.Params{}); err == nil {
		t.Errorf("expected an error marshalling a record without an option type")
	}
}

package pricing_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/souvik131/optionlab/grid"
	"github.com/souvik131/optionlab/option"
	"github.com/souvik131/optionlab/pricing"
)

const tolerance = 1e-6

// approxEqual checks if two float64 values are approximately equal within a given tolerance.
func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func params(s, k, r, b, sigma, t float64, typ option.OptionType) option.Params {
	return option.Params{
		AssetPrice:   s,
		StrikePrice:  k,
		Rate:         r,
		CostOfCarry:  b,
		Volatility:   sigma,
		ExerciseTime: t,
		Type:         typ,
	}
}

func TestNormalDistribution(t *testing.T) {
	if !approxEqual(pricing.NormCDF(0), 0.5, 1e-12) {
		t.Errorf("N(0): expected 0.5, got %v", pricing.NormCDF(0))
	}
	if !approxEqual(pricing.NormCDF(1.96), 0.9750021048517795, 1e-9) {
		t.Errorf("N(1.96): got %v", pricing.NormCDF(1.96))
	}
	if !approxEqual(pricing.NormCDF(-1.3)+pricing.NormCDF(1.3), 1, 1e-12) {
		t.Errorf("N(-x) + N(x) should be 1")
	}
	if !approxEqual(pricing.NormPDF(0), 1/math.Sqrt(2*math.Pi), 1e-12) {
		t.Errorf("n(0): got %v", pricing.NormPDF(0))
	}
}

func TestBlackScholesPrice(t *testing.T) {
	cases := []struct {
		name string
		p    option.Params
		call float64
		put  float64
	}{
		{"Stock_OTM_Quarter", params(60, 65, 0.08, 0.08, 0.30, 0.25, option.Call), 2.1333684449, 5.8462822099},
		{"ATM_ZeroRates", params(100, 100, 0, 0, 0.20, 1, option.Call), 7.9655674554, 7.9655674554},
		{"DeepOTM_Call", params(5, 10, 0.12, 0.12, 0.50, 1, option.Call), 0.2040578815, 4.0732622487},
		{"LongDated", params(100, 100, 0.08, 0.08, 0.30, 30, option.Call), 92.1757038422, 1.2474991712},
		{"ATM_Stock", params(100, 100, 0.05, 0.05, 0.20, 1, option.Call), 10.4505835722, 5.5735260223},
		{"Futures_ATM", params(19, 19, 0.10, 0, 0.28, 0.75, option.Call), 1.7010507252, 1.7010507252},
	}

	engine := pricing.BlackScholes{}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			call := engine.Price(c.p)
			if !approxEqual(call, c.call, tolerance) {
				t.Errorf("call: expected %v, got %v", c.call, call)
			}
			put := engine.Price(c.p.Switched())
			if !approxEqual(put, c.put, tolerance) {
				t.Errorf("put: expected %v, got %v", c.put, put)
			}
			q := c.p
			carry := q.AssetPrice*math.Exp((q.CostOfCarry-q.Rate)*q.ExerciseTime) - q.StrikePrice*math.Exp(-q.Rate*q.ExerciseTime)
			if !approxEqual(call-put, carry, tolerance) {
				t.Errorf("carry parity broken: call-put %v, expected %v", call-put, carry)
			}
			// CheckParity is the stock form C + Ke^(-rT) = P + S, which only
			// holds when the carry equals the rate.
			holds := pricing.CheckParity(call, put, c.p, pricing.DefaultParityTolerance)
			if holds != (q.CostOfCarry == q.Rate) {
				t.Errorf("CheckParity = %v with r=%v b=%v: call %v, put %v", holds, q.Rate, q.CostOfCarry, call, put)
			}
		})
	}
}

func TestBlackScholesDegenerateInputs(t *testing.T) {
	p := params(100, 100, 0, 0, 0, 1, option.Call)
	if v := (pricing.BlackScholes{}).Price(p); !math.IsNaN(v) {
		t.Errorf("zero volatility at the money: expected NaN, got %v", v)
	}
}

func TestBlackScholesGreeks(t *testing.T) {
	p := params(105, 100, 0.10, 0, 0.36, 0.5, option.Call)
	greeks := pricing.BlackScholesGreeks{}

	t.Run("Delta", func(t *testing.T) {
		if d := greeks.Delta(p); !approxEqual(d, 0.5946286597, tolerance) {
			t.Errorf("call delta: expected 0.5946286597, got %v", d)
		}
		if d := greeks.Delta(p.Switched()); !approxEqual(d, -0.3566007648, tolerance) {
			t.Errorf("put delta: expected -0.3566007648, got %v", d)
		}
	})

	t.Run("Gamma", func(t *testing.T) {
		call, put := greeks.Gamma(p), greeks.Gamma(p.Switched())
		if !approxEqual(call, 0.0134936371, tolerance) {
			t.Errorf("gamma: expected 0.0134936371, got %v", call)
		}
		if call != put {
			t.Errorf("gamma should not depend on the option type: call %v, put %v", call, put)
		}
	})

	t.Run("DeltaSpread", func(t *testing.T) {
		// call delta - put delta = e^((b-r)T)
		spread := greeks.Delta(p) - greeks.Delta(p.Switched())
		want := math.Exp((p.CostOfCarry - p.Rate) * p.ExerciseTime)
		if !approxEqual(spread, want, 1e-12) {
			t.Errorf("expected %v, got %v", want, spread)
		}
	})
}

func TestBlackScholesVegaTheta(t *testing.T) {
	greeks := pricing.BlackScholesGreeks{}

	t.Run("CallOption_ATM", func(t *testing.T) {
		p := params(100, 100, 0.05, 0.05, 0.20, 1, option.Call)
		if v := greeks.Vega(p); !approxEqual(v, 37.5240346917, tolerance) {
			t.Errorf("Call Vega: expected 37.5240346917, got %v", v)
		}
		if v := greeks.Theta(p); !approxEqual(v, -6.4140275464, tolerance) {
			t.Errorf("Call Theta (annualized): expected -6.4140275464, got %v", v)
		}
	})

	t.Run("PutOption_ATM", func(t *testing.T) {
		p := params(100, 100, 0.05, 0.05, 0.20, 1, option.Put)
		if v := greeks.Vega(p); !approxEqual(v, 37.5240346917, tolerance) {
			t.Errorf("Put Vega: expected 37.5240346917, got %v", v)
		}
		if v := greeks.Theta(p); !approxEqual(v, -1.6578804239, tolerance) {
			t.Errorf("Put Theta (annualized): expected -1.6578804239, got %v", v)
		}
	})

	t.Run("MatchesBumpedPrice", func(t *testing.T) {
		p := params(55, 60, 0.10, 0.05, 0.30, 0.75, option.Call)
		const h = 1e-5
		up, down := p, p
		up.Volatility += h
		down.Volatility -= h
		engine := pricing.BlackScholes{}
		bumped := (engine.Price(up) - engine.Price(down)) / (2 * h)
		if v := greeks.Vega(p); !approxEqual(v, bumped, 1e-4) {
			t.Errorf("vega %v, bumped %v", v, bumped)
		}

		up, down = p, p
		up.ExerciseTime += h
		down.ExerciseTime -= h
		bumped = -(engine.Price(up) - engine.Price(down)) / (2 * h)
		if v := greeks.Theta(p); !approxEqual(v, bumped, 1e-4) {
			t.Errorf("theta %v, bumped %v", v, bumped)
		}
		if v := greeks.Theta(p.Switched()); !approxEqual(v, -1.5593799293, tolerance) {
			t.Errorf("put theta: expected -1.5593799293, got %v", v)
		}
	})
}

func TestFiniteDifference(t *testing.T) {
	fd := pricing.NewFiniteDifference(pricing.BlackScholes{}, pricing.DefaultStep)
	analytic := pricing.BlackScholesGreeks{}

	if fd.Step() != 0.01 {
		t.Fatalf("step: expected 0.01, got %v", fd.Step())
	}

	t.Run("MatchesReference", func(t *testing.T) {
		p := params(105, 100, 0.10, 0, 0.36, 0.5, option.Call)
		if d := fd.Delta(p); !approxEqual(d, 0.5946286549, 1e-8) {
			t.Errorf("delta: expected 0.5946286549, got %v", d)
		}
		if g := fd.Gamma(p); !approxEqual(g, 0.0134936372, 1e-7) {
			t.Errorf("gamma: expected 0.0134936372, got %v", g)
		}
	})

	t.Run("AgreesWithAnalytic", func(t *testing.T) {
		for _, p := range []option.Params{
			params(60, 65, 0.08, 0.08, 0.30, 0.25, option.Call),
			params(60, 65, 0.08, 0.08, 0.30, 0.25, option.Put),
			params(100, 100, 0.05, 0.02, 0.25, 2, option.Call),
			params(80, 100, 0.03, 0, 0.40, 0.75, option.Put),
		} {
			if !approxEqual(fd.Delta(p), analytic.Delta(p), 1e-4) {
				t.Errorf("%+v delta: fd %v, analytic %v", p, fd.Delta(p), analytic.Delta(p))
			}
			if !approxEqual(fd.Gamma(p), analytic.Gamma(p), 1e-4) {
				t.Errorf("%+v gamma: fd %v, analytic %v", p, fd.Gamma(p), analytic.Gamma(p))
			}
		}
	})

	t.Run("OnlyAssetPriceMoves", func(t *testing.T) {
		var seen []option.Params
		spy := pricing.PricerFunc(func(p option.Params) float64 {
			seen = append(seen, p)
			return p.AssetPrice * p.AssetPrice
		})
		p := params(50, 55, 0.01, 0.02, 0.3, 1, option.Put)
		numeric := pricing.NewFiniteDifference(spy, 0.5)

		// V = S^2, so delta = 2S and gamma = 2 exactly.
		if d := numeric.Delta(p); !approxEqual(d, 100, 1e-9) {
			t.Errorf("delta of S^2: expected 100, got %v", d)
		}
		if g := numeric.Gamma(p); !approxEqual(g, 2, 1e-9) {
			t.Errorf("gamma of S^2: expected 2, got %v", g)
		}
		for _, q := range seen {
			q.AssetPrice = p.AssetPrice
			if q != p {
				t.Errorf("bumped record changed more than the asset price: %+v", q)
			}
		}
	})

	t.Run("ZeroStep", func(t *testing.T) {
		zero := pricing.NewFiniteDifference(pricing.BlackScholes{}, 0)
		if d := zero.Delta(option.DefaultParams()); !math.IsNaN(d) {
			t.Errorf("expected NaN for h=0, got %v", d)
		}
	})
}

func TestPerpetualAmerican(t *testing.T) {
	engine := pricing.PerpetualAmerican{}
	p := params(110, 100, 0.10, 0.02, 0.10, 0, option.Call)

	t.Run("Call", func(t *testing.T) {
		if v := engine.Price(p); !approxEqual(v, 18.5034998830, tolerance) {
			t.Errorf("expected 18.5034998830, got %v", v)
		}
	})

	t.Run("Put", func(t *testing.T) {
		if v := engine.Price(p.Switched()); !approxEqual(v, 3.0310603833, tolerance) {
			t.Errorf("expected 3.0310603833, got %v", v)
		}
	})

	t.Run("IgnoresExerciseTime", func(t *testing.T) {
		later := p
		later.ExerciseTime = 25
		if engine.Price(later) != engine.Price(p) {
			t.Errorf("exercise time should not affect a perpetual option")
		}
	})

	t.Run("AtLeastEuropean", func(t *testing.T) {
		european := pricing.BlackScholes{}.Price(params(110, 100, 0.10, 0.02, 0.10, 1, option.Put))
		if v := engine.Price(p.Switched()); v < european {
			t.Errorf("perpetual put %v below one-year european put %v", v, european)
		}
	})
}

func TestParity(t *testing.T) {
	call := params(60, 65, 0.08, 0.08, 0.30, 0.25, option.Call)
	put := call.Switched()

	t.Run("PutFromCall", func(t *testing.T) {
		v, err := pricing.PutFromCall(2.1333684449, call)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !approxEqual(v, 5.8462822099, tolerance) {
			t.Errorf("expected 5.8462822099, got %v", v)
		}
	})

	t.Run("CallFromPut", func(t *testing.T) {
		v, err := pricing.CallFromPut(5.8462822099, put)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !approxEqual(v, 2.1333684449, tolerance) {
			t.Errorf("expected 2.1333684449, got %v", v)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		c := pricing.BlackScholes{}.Price(call)
		p, _ := pricing.PutFromCall(c, call)
		back, _ := pricing.CallFromPut(p, put)
		if !approxEqual(back, c, 1e-12) {
			t.Errorf("expected %v, got %v", c, back)
		}
	})

	t.Run("WrongType", func(t *testing.T) {
		if _, err := pricing.PutFromCall(1, put); !errors.Is(err, option.ErrInvalidArgument) {
			t.Errorf("put params passed to PutFromCall: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := pricing.CallFromPut(1, call); !errors.Is(err, option.ErrInvalidArgument) {
			t.Errorf("call params passed to CallFromPut: expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("CheckParity", func(t *testing.T) {
		if !pricing.CheckParity(2.1333684449, 5.8462822099, call, pricing.DefaultParityTolerance) {
			t.Errorf("reference prices should satisfy parity")
		}
		if pricing.CheckParity(2.1333684449, 5.9, call, pricing.DefaultParityTolerance) {
			t.Errorf("mispriced put should break parity")
		}
		if !pricing.CheckParity(2.1333684449, 5.9, call, 0.1) {
			t.Errorf("a loose tolerance should accept the mispricing")
		}
	})
}

func TestBatchAndGrid(t *testing.T) {
	batch, err := grid.Sweep1D(option.DefaultParams(), option.AssetPriceField, 40, 80, 5)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	engine := pricing.BlackScholes{}
	greeks := pricing.BlackScholesGreeks{}

	t.Run("BatchIsElementwise", func(t *testing.T) {
		prices := pricing.PriceBatch(engine, batch)
		deltas := pricing.DeltaBatch(greeks, batch)
		gammas := pricing.GammaBatch(greeks, batch)
		if len(prices) != len(batch) || len(deltas) != len(batch) || len(gammas) != len(batch) {
			t.Fatalf("length mismatch: %d records, %d/%d/%d results", len(batch), len(prices), len(deltas), len(gammas))
		}
		for i, p := range batch {
			if prices[i] != engine.Price(p) || deltas[i] != greeks.Delta(p) || gammas[i] != greeks.Gamma(p) {
				t.Errorf("record %d differs from its scalar evaluation", i)
			}
		}
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		if out := pricing.PriceBatch(engine, nil); len(out) != 0 {
			t.Errorf("expected empty result, got %v", out)
		}
	})

	g, err := grid.Sweep2D(option.DefaultParams(),
		option.AssetPriceField, grid.Range{Start: 50, End: 70, Step: 5},
		option.VolatilityField, grid.Range{Start: 0.1, End: 0.5, Step: 0.1})
	if err != nil {
		t.Fatalf("sweep2d: %v", err)
	}

	t.Run("GridIsCellwise", func(t *testing.T) {
		prices := pricing.PriceGrid(engine, g)
		deltas := pricing.DeltaGrid(greeks, g)
		gammas := pricing.GammaGrid(greeks, g)
		if prices.Rows() != g.Rows() || prices.Cols() != g.Cols() {
			t.Fatalf("shape: expected %dx%d, got %dx%d", g.Rows(), g.Cols(), prices.Rows(), prices.Cols())
		}
		for i := 0; i < g.Rows(); i++ {
			for j := 0; j < g.Cols(); j++ {
				p := g.At(i, j)
				if prices.At(i, j) != engine.Price(p) || deltas.At(i, j) != greeks.Delta(p) || gammas.At(i, j) != greeks.Gamma(p) {
					t.Errorf("cell (%d,%d) differs from its scalar evaluation", i, j)
				}
			}
		}
	})

	t.Run("ParallelMatchesSequential", func(t *testing.T) {
		ctx := context.Background()
		prices, err := pricing.PriceGridParallel(ctx, engine, g, 3)
		if err != nil {
			t.Fatalf("price: %v", err)
		}
		deltas, err := pricing.DeltaGridParallel(ctx, greeks, g, 0)
		if err != nil {
			t.Fatalf("delta: %v", err)
		}
		gammas, err := pricing.GammaGridParallel(ctx, greeks, g, 2)
		if err != nil {
			t.Fatalf("gamma: %v", err)
		}
		seqPrices, seqDeltas, seqGammas := pricing.PriceGrid(engine, g), pricing.DeltaGrid(greeks, g), pricing.GammaGrid(greeks, g)
		for k := range prices.Data() {
			if prices.Data()[k] != seqPrices.Data()[k] || deltas.Data()[k] != seqDeltas.Data()[k] || gammas.Data()[k] != seqGammas.Data()[k] {
				t.Errorf("cell %d: parallel result differs", k)
			}
		}
	})

	t.Run("NumericalEnginePlugsIn", func(t *testing.T) {
		fd := pricing.NewFiniteDifference(engine, pricing.DefaultStep)
		numeric := pricing.DeltaGrid(fd, g)
		exact := pricing.DeltaGrid(greeks, g)
		for k := range numeric.Data() {
			if !approxEqual(numeric.Data()[k], exact.Data()[k], 1e-4) {
				t.Errorf("cell %d: fd %v, analytic %v", k, numeric.Data()[k], exact.Data()[k])
			}
		}
	})

	t.Run("CustomMeasure", func(t *testing.T) {
		intrinsic := pricing.Measure(func(p option.Params) float64 {
			return math.Max(0, p.Type.Sign()*(p.AssetPrice-p.StrikePrice))
		})
		out := intrinsic.Batch(batch)
		if out[len(out)-1] != 15 {
			t.Errorf("intrinsic at S=80,K=65: expected 15, got %v", out[len(out)-1])
		}
	})
}

func TestEngineSelection(t *testing.T) {
	european := params(60, 65, 0.08, 0.08, 0.30, 0.25, option.Call)
	perpetual := params(110, 100, 0.10, 0.02, 0.10, 0, option.Call)

	if v := pricing.ForStyle(option.StyleEuropean).Price(european); !approxEqual(v, 2.1333684449, tolerance) {
		t.Errorf("european pricer: expected 2.1333684449, got %v", v)
	}
	if v := pricing.ForStyle(option.StylePerpetualAmerican).Price(perpetual); !approxEqual(v, 18.5034998830, tolerance) {
		t.Errorf("perpetual pricer: expected 18.5034998830, got %v", v)
	}

	if _, ok := pricing.GreeksFor(option.StyleEuropean, false, pricing.DefaultStep).(pricing.BlackScholesGreeks); !ok {
		t.Errorf("european analytic greeks should be BlackScholesGreeks")
	}
	fd, ok := pricing.GreeksFor(option.StyleEuropean, true, 0.05).(*pricing.FiniteDifference)
	if !ok || fd.Step() != 0.05 {
		t.Errorf("numerical greeks should be finite differences with h=0.05, got %#v", fd)
	}
	if _, ok := pricing.GreeksFor(option.StylePerpetualAmerican, false, pricing.DefaultStep).(*pricing.FiniteDifference); !ok {
		t.Errorf("perpetual greeks should fall back to finite differences")
	}
}

func TestValueJSON(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{2.5, `2.5`},
		{0, `0`},
		{math.NaN(), `"NaN"`},
		{math.Inf(1), `"+Inf"`},
		{math.Inf(-1), `"-Inf"`},
	}
	for _, c := range cases {
		b, err := json.Marshal(pricing.Value(c.v))
		if err != nil {
			t.Fatalf("marshal %v: %v", c.v, err)
		}
		if string(b) != c.want {
			t.Errorf("marshal %v: expected %s, got %s", c.v, c.want, b)
		}
		var back pricing.Value
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if float64(back) != c.v && !(math.IsNaN(c.v) && math.IsNaN(float64(back))) {
			t.Errorf("unmarshal %s: expected %v, got %v", b, c.v, back)
		}
	}

	t.Run("DegenerateBatch", func(t *testing.T) {
		batch := []option.Params{
			params(100, 100, 0, 0, 0.2, 1, option.Call),
			params(100, 100, 0, 0, 0, 1, option.Call),
		}
		b, err := json.Marshal(pricing.Values(pricing.PriceBatch(pricing.BlackScholes{}, batch)))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out []any
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if v, ok := out[0].(float64); !ok || !approxEqual(v, 7.9655674554, tolerance) {
			t.Errorf("expected 7.9655674554 first, got %s", b)
		}
		if out[1] != "NaN" {
			t.Errorf(`expected "NaN" second, got %s`, b)
		}
	})

	t.Run("NotANumber", func(t *testing.T) {
		var v pricing.Value
		if err := json.Unmarshal([]byte(`"cheap"`), &v); !errors.Is(err, option.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

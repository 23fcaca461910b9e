package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/souvik131/optionlab/api"
	"github.com/souvik131/optionlab/config"
	"github.com/souvik131/optionlab/engine"
	"github.com/souvik131/optionlab/grid"
	"github.com/souvik131/optionlab/option"
	"github.com/souvik131/optionlab/pricing"
)

// pricingTools holds the MCP tool handlers. Every tool defaults its option
// record to the configured base.
type pricingTools struct {
	cfg   *config.Config
	sinks []engine.Sink
}

// paramOptions declares the option record arguments, defaulting to the configured base.
func paramOptions(base option.Params) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("asset_price", mcp.Description("Spot price of the underlying (S)"), mcp.DefaultNumber(base.AssetPrice)),
		mcp.WithNumber("strike_price", mcp.Description("Strike price (K)"), mcp.DefaultNumber(base.StrikePrice)),
		mcp.WithNumber("r", mcp.Description("Continuously compounded risk-free rate"), mcp.DefaultNumber(base.Rate)),
		mcp.WithNumber("cost_of_carry", mcp.Description("Cost of carry b: r for stocks, r-q with dividend yield q, 0 for futures"), mcp.DefaultNumber(base.CostOfCarry)),
		mcp.WithNumber("volatility", mcp.Description("Annualised volatility (sigma)"), mcp.DefaultNumber(base.Volatility)),
		mcp.WithNumber("exercise_time", mcp.Description("Time to expiry in years (T)"), mcp.DefaultNumber(base.ExerciseTime)),
		mcp.WithString("option_type", mcp.Description("call or put"), mcp.Enum("call", "put"), mcp.DefaultString(base.Type.String())),
	}
}

func paramsFromRequest(request mcp.CallToolRequest, base option.Params) (option.Params, error) {
	p := option.Params{
		AssetPrice:   request.GetFloat("asset_price", base.AssetPrice),
		StrikePrice:  request.GetFloat("strike_price", base.StrikePrice),
		Rate:         request.GetFloat("r", base.Rate),
		CostOfCarry:  request.GetFloat("cost_of_carry", base.CostOfCarry),
		Volatility:   request.GetFloat("volatility", base.Volatility),
		ExerciseTime: request.GetFloat("exercise_time", base.ExerciseTime),
	}
	t, err := option.ParseOptionType(request.GetString("option_type", base.Type.String()))
	if err != nil {
		return p, err
	}
	p.Type = t
	return p, p.Validate()
}

// toolResult encodes v as the text content of the result. Pricing results
// must be wrapped in pricing.Value so that NaN and infinities survive.
func toolResult(v any) (*mcp.CallToolResult, error) {
	resultBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultBytes)), nil
}

func (pt *pricingTools) register(srv *server.MCPServer) {
	styleOption := mcp.WithString("style", mcp.Description("european or perpetual_american"),
		mcp.Enum("european", "perpetual_american"), mcp.DefaultString("european"))

	// Price tool
	priceTool := mcp.NewTool("price_option", append([]mcp.ToolOption{
		mcp.WithDescription("Price a European option (generalized Black-Scholes-Merton) or a perpetual American option"),
		styleOption,
	}, paramOptions(pt.cfg.Base)...)...)
	srv.AddTool(priceTool, pt.price)

	// Greeks tool
	greeksTool := mcp.NewTool("option_greeks", append([]mcp.ToolOption{
		mcp.WithDescription("Delta and gamma, analytic or by central finite differences on the asset price"),
		styleOption,
		mcp.WithString("engine", mcp.Description("analytic or numerical"), mcp.Enum("analytic", "numerical"), mcp.DefaultString("analytic")),
		mcp.WithNumber("h", mcp.Description("Asset price bump for the numerical engine"), mcp.DefaultNumber(pt.cfg.FDStep)),
	}, paramOptions(pt.cfg.Base)...)...)
	srv.AddTool(greeksTool, pt.greeks)

	// Sweep tool
	sweepTool := mcp.NewTool("price_sweep", append([]mcp.ToolOption{
		mcp.WithDescription("Vary one parameter over an inclusive range and return price, delta and gamma at each point"),
		styleOption,
		mcp.WithString("field", mcp.Description("Parameter to vary: asset_price, strike_price, r, cost_of_carry, volatility or exercise_time"), mcp.Required()),
		mcp.WithNumber("start", mcp.Description("First value"), mcp.Required()),
		mcp.WithNumber("end", mcp.Description("Last value, always included"), mcp.Required()),
		mcp.WithNumber("step", mcp.Description("Positive increment"), mcp.Required()),
	}, paramOptions(pt.cfg.Base)...)...)
	srv.AddTool(sweepTool, pt.sweep)

	// Parity tool
	parityTool := mcp.NewTool("put_call_parity", append([]mcp.ToolOption{
		mcp.WithDescription("Derive the other leg from a European call or put price via C + K*exp(-rT) = P + S"),
		mcp.WithNumber("price", mcp.Description("Price of the option described by option_type"), mcp.Required()),
	}, paramOptions(pt.cfg.Base)...)...)
	srv.AddTool(parityTool, pt.parity)

	// Surface tool
	surfaceTool := mcp.NewTool("generate_surfaces",
		mcp.WithDescription(fmt.Sprintf("Write %v surfaces over asset price and exercise time around the configured base to %s",
			engine.SurfaceMeasures, pt.cfg.OutputDir)),
		mcp.WithNumber("points", mcp.Description("Steps per axis"), mcp.DefaultNumber(float64(pt.cfg.SurfacePoints))),
	)
	srv.AddTool(surfaceTool, pt.surfaces)
}

func (pt *pricingTools) price(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	style, err := option.ParseStyle(request.GetString("style", "european"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := paramsFromRequest(request, pt.cfg.Base)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(map[string]any{
		"style":  style.String(),
		"params": p,
		"price":  pricing.Value(pricing.ForStyle(style).Price(p)),
	})
}

func (pt *pricingTools) greeks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	style, err := option.ParseStyle(request.GetString("style", "european"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := paramsFromRequest(request, pt.cfg.Base)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	numerical := request.GetString("engine", "analytic") == "numerical"
	g := pricing.GreeksFor(style, numerical, request.GetFloat("h", pt.cfg.FDStep))
	return toolResult(map[string]any{
		"delta": pricing.Value(g.Delta(p)),
		"gamma": pricing.Value(g.Gamma(p)),
	})
}

func (pt *pricingTools) sweep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	style, err := option.ParseStyle(request.GetString("style", "european"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError("field is required"), nil
	}
	field, err := option.FieldByName(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var bounds [3]float64
	for i, key := range []string{"start", "end", "step"} {
		v, err := request.RequireFloat(key)
		if err != nil {
			return mcp.NewToolResultError(key + " is required"), nil
		}
		bounds[i] = v
	}
	p, err := paramsFromRequest(request, pt.cfg.Base)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := grid.CheckCells(api.MaxCells, grid.Range{Start: bounds[0], End: bounds[1], Step: bounds[2]}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	batch, err := grid.Sweep1D(p, field, bounds[0], bounds[1], bounds[2])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g := pricing.GreeksFor(style, false, pt.cfg.FDStep)
	return toolResult(map[string]any{
		"field":  field.Name,
		"points": grid.Axis(batch, field),
		"price":  pricing.Values(pricing.PriceBatch(pricing.ForStyle(style), batch)),
		"delta":  pricing.Values(pricing.DeltaBatch(g, batch)),
		"gamma":  pricing.Values(pricing.GammaBatch(g, batch)),
	})
}

func (pt *pricingTools) parity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	price, err := request.RequireFloat("price")
	if err != nil {
		return mcp.NewToolResultError("price is required"), nil
	}
	p, err := paramsFromRequest(request, pt.cfg.Base)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	call, put := price, price
	if p.Type == option.Call {
		put, err = pricing.PutFromCall(price, p)
	} else {
		call, err = pricing.CallFromPut(price, p)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(map[string]any{"call": pricing.Value(call), "put": pricing.Value(put)})
}

func (pt *pricingTools) surfaces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	points := request.GetFloat("points", float64(pt.cfg.SurfacePoints))
	if !(points >= 1 && points <= api.MaxCells) {
		return mcp.NewToolResultError(fmt.Sprintf("points must be between 1 and %d", api.MaxCells)), nil
	}
	run := *pt.cfg
	run.SurfacePoints = int(points)
	e := engine.New(&run, pt.sinks...)
	for _, spec := range e.Specs() {
		if err := grid.CheckCells(api.MaxCells, spec.X.Range, spec.Y.Range); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	artifacts, err := e.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate surfaces: %v", err)), nil
	}
	files := make([]map[string]any, len(artifacts))
	for i, a := range artifacts {
		lo, hi := a.Surface.Range()
		files[i] = map[string]any{"measure": a.Surface.Measure, "path": a.Path, "min": pricing.Value(lo), "max": pricing.Value(hi)}
	}
	return toolResult(files)
}

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/souvik131/optionlab/engine"
	"github.com/souvik131/optionlab/grid"
	"github.com/souvik131/optionlab/option"
	"github.com/souvik131/optionlab/pricing"
)

type priceRequest struct {
	option.Params
	Style string `json:"style"`
}

type greeksRequest struct {
	option.Params
	Style  string   `json:"style"`
	Engine string   `json:"engine"`
	H      *float64 `json:"h"`
}

type sweepRequest struct {
	Base  option.Params `json:"base"`
	Style string        `json:"style"`
	Field string        `json:"field"`
	grid.Range
}

type axisRequest struct {
	Field string `json:"field"`
	grid.Range
}

type surfaceRequest struct {
	Base    option.Params `json:"base"`
	X       axisRequest   `json:"x"`
	Y       axisRequest   `json:"y"`
	Measure string        `json:"measure"`
}

type parityRequest struct {
	option.Params
	Price float64 `json:"price"`
}

type parityCheckRequest struct {
	option.Params
	Call      float64  `json:"call"`
	Put       float64  `json:"put"`
	Tolerance *float64 `json:"tolerance"`
}

func (s *Server) price(c *gin.Context) {
	var req priceRequest
	if !bind(c, &req) {
		return
	}
	style, err := option.ParseStyle(req.Style)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Params.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"style":  style.String(),
		"params": req.Params,
		"price":  pricing.Value(pricing.ForStyle(style).Price(req.Params)),
	})
}

func (s *Server) greeks(c *gin.Context) {
	var req greeksRequest
	if !bind(c, &req) {
		return
	}
	style, err := option.ParseStyle(req.Style)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Params.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	g, name, err := s.greeksFor(style, req.Engine, req.H)
	if err != nil {
		badRequest(c, err)
		return
	}
	resp := gin.H{
		"style":  style.String(),
		"engine": name,
		"delta":  pricing.Value(g.Delta(req.Params)),
		"gamma":  pricing.Value(g.Gamma(req.Params)),
	}
	if fd, ok := g.(*pricing.FiniteDifference); ok {
		resp["h"] = fd.Step()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) sweep(c *gin.Context) {
	var req sweepRequest
	if !bind(c, &req) {
		return
	}
	style, err := option.ParseStyle(req.Style)
	if err != nil {
		badRequest(c, err)
		return
	}
	field, err := option.FieldByName(req.Field)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Base.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	if err := grid.CheckCells(MaxCells, req.Range); err != nil {
		badRequest(c, err)
		return
	}
	batch, err := grid.Sweep1D(req.Base, field, req.Start, req.End, req.Step)
	if err != nil {
		badRequest(c, err)
		return
	}
	g := pricing.GreeksFor(style, false, s.fdStep)
	c.JSON(http.StatusOK, gin.H{
		"field":  field.Name,
		"points": grid.Axis(batch, field),
		"price":  pricing.Values(pricing.PriceBatch(pricing.ForStyle(style), batch)),
		"delta":  pricing.Values(pricing.DeltaBatch(g, batch)),
		"gamma":  pricing.Values(pricing.GammaBatch(g, batch)),
	})
}

func (s *Server) surface(c *gin.Context) {
	var req surfaceRequest
	if !bind(c, &req) {
		return
	}
	if err := req.Base.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	x, err := option.FieldByName(req.X.Field)
	if err != nil {
		badRequest(c, fmt.Errorf("x: %w", err))
		return
	}
	y, err := option.FieldByName(req.Y.Field)
	if err != nil {
		badRequest(c, fmt.Errorf("y: %w", err))
		return
	}
	if err := grid.CheckCells(MaxCells, req.X.Range, req.Y.Range); err != nil {
		badRequest(c, err)
		return
	}
	measure := req.Measure
	if measure == "" {
		measure = "price"
	}

	surface, err := engine.Generate(c.Request.Context(), engine.SurfaceSpec{
		Base:    req.Base,
		X:       engine.Axis{Field: x, Range: req.X.Range},
		Y:       engine.Axis{Field: y, Range: req.Y.Range},
		Measure: measure,
	}, s.workers)
	if err != nil {
		badRequest(c, err)
		return
	}

	values := make([][]pricing.Value, surface.Values.Rows())
	for i := range values {
		values[i] = pricing.Values(surface.Values.Row(i))
	}
	c.JSON(http.StatusOK, gin.H{
		"measure":  surface.Measure,
		"x":        x.Name,
		"y":        y.Name,
		"x_values": columnValues(surface.Params, x, 0),
		"y_values": rowValues(surface.Params, y, 0),
		"values":   values,
	})
}

// columnValues reads field down column j.
func columnValues(g grid.Grid[option.Params], field option.Field, j int) []float64 {
	out := make([]float64, g.Rows())
	for i := range out {
		out[i] = field.Get(g.At(i, j))
	}
	return out
}

// rowValues reads field along row i.
func rowValues(g grid.Grid[option.Params], field option.Field, i int) []float64 {
	if g.Rows() == 0 {
		return nil
	}
	return grid.Axis(g.Row(i), field)
}

func (s *Server) parity(c *gin.Context) {
	var req parityRequest
	if !bind(c, &req) {
		return
	}
	if err := req.Params.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	var call, put float64
	var err error
	switch req.Type {
	case option.Call:
		call = req.Price
		put, err = pricing.PutFromCall(req.Price, req.Params)
	case option.Put:
		put = req.Price
		call, err = pricing.CallFromPut(req.Price, req.Params)
	}
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"call": pricing.Value(call), "put": pricing.Value(put)})
}

func (s *Server) parityCheck(c *gin.Context) {
	var req parityCheckRequest
	if !bind(c, &req) {
		return
	}
	tol := pricing.DefaultParityTolerance
	if req.Tolerance != nil {
		tol = *req.Tolerance
	}
	c.JSON(http.StatusOK, gin.H{
		"holds":     pricing.CheckParity(req.Call, req.Put, req.Params, tol),
		"tolerance": tol,
	})
}

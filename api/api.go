// Package api serves the pricing library over HTTP with JSON bodies.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/souvik131/optionlab/option"
	"github.com/souvik131/optionlab/pricing"
)

// MaxCells caps the points of a sweep and the cells of a surface a single
// request may ask for.
const MaxCells = 1 << 20

type Server struct {
	fdStep  float64
	workers int
}

// New returns a Server whose numerical Greeks default to fdStep.
func New(fdStep float64, workers int) *Server {
	return &Server{fdStep: fdStep, workers: workers}
}

// Router wires every endpoint onto a fresh gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/price", s.price)
	r.POST("/greeks", s.greeks)
	r.POST("/sweep", s.sweep)
	r.POST("/surface", s.surface)
	r.POST("/parity", s.parity)
	r.POST("/parity/check", s.parityCheck)
	return r
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("Shutting down HTTP API")
		return srv.Shutdown(shutdownCtx)
	}
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// bind decodes the JSON body and maps decode failures onto ErrInvalidArgument.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, fmt.Errorf("%w: %v", option.ErrInvalidArgument, err))
		return false
	}
	return true
}

// greeksFor picks the Greeks engine. Perpetual options only have the
// numerical engine.
func (s *Server) greeksFor(style option.Style, engine string, h *float64) (pricing.Greeks, string, error) {
	step := s.fdStep
	if h != nil {
		step = *h
	}
	switch strings.ToLower(engine) {
	case "":
		g := pricing.GreeksFor(style, false, step)
		if _, ok := g.(*pricing.FiniteDifference); ok {
			return g, "numerical", nil
		}
		return g, "analytic", nil
	case "analytic":
		if style == option.StylePerpetualAmerican {
			return nil, "", fmt.Errorf("%w: no analytic greeks for %v options", option.ErrInvalidArgument, style)
		}
		return pricing.GreeksFor(style, false, step), "analytic", nil
	case "numerical":
		return pricing.GreeksFor(style, true, step), "numerical", nil
	}
	return nil, "", fmt.Errorf("%w: unknown greeks engine %q", option.ErrInvalidArgument, engine)
}

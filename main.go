package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/souvik131/optionlab/api"
	"github.com/souvik131/optionlab/config"
	"github.com/souvik131/optionlab/engine"
)

func main() {
	// Load environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Base option: %+v", cfg.Base)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.HTTPAddr != "" {
		go func() {
			if err := api.New(cfg.FDStep, cfg.Workers).ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
				log.Printf("HTTP API stopped: %v", err)
			}
		}()
	}
	// Surfaces are written once at startup and then on the schedule, if any
	sinks := engine.SinksFromConfig(cfg)
	go func() {
		if err := engine.New(cfg, sinks...).Serve(ctx); err != nil {
			log.Printf("Surface engine stopped: %v", err)
		}
	}()

	// Create MCP server
	srv := server.NewMCPServer("optionlab", "1.0.0")
	tools := &pricingTools{cfg: cfg, sinks: sinks}
	tools.register(srv)

	// Start the MCP server via stdio
	log.Println("Starting optionlab MCP Server...")
	if err := server.ServeStdio(srv); err != nil {
		log.Fatalf("Failed to start MCP server: %v", err)
	}
}

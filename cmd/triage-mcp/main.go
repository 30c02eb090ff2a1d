// Command triage-mcp serves the triage tools to MCP clients over stdio. It
// needs no external services: history lives in SQLite under TRIAGE_DATA_DIR.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/symptom-triage-engine/internal/app"
	"github.com/symptom-triage-engine/internal/cli"
	"github.com/symptom-triage-engine/internal/config"
	"github.com/symptom-triage-engine/internal/logging"
	"github.com/symptom-triage-engine/internal/mcp"
)

func main() {
	// Check for setup subcommand
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		cmd := cli.NewRootCommand(cli.Options{})
		cmd.SetArgs(os.Args[1:])
		if err := cmd.Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load lightweight configuration
	lite := config.LoadLiteConfig()
	if err := lite.EnsureDataDir(); err != nil {
		log.Fatalf("Failed to prepare data directory: %v", err)
	}

	cfg := lite.ToConfig()
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// stdout carries the protocol, so logs must stay on stderr.
	logger := logging.New(cfg.Logging)
	logger.WithField("data_dir", lite.DataDir).Info("Starting symptom triage MCP server")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down MCP server...")
		cancel()
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize triage engine")
	}
	defer a.Close()

	server, err := mcp.NewServer(a)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create MCP server")
	}

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("MCP server failed")
		a.Close()
		os.Exit(1)
	}

	logger.Info("Symptom triage MCP server stopped")
}

// Package cli implements the triage command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/symptom-triage-engine/internal/app"
	"github.com/symptom-triage-engine/internal/config"
	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/logging"
)

// Options injects the process streams so commands can be driven from tests.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type runtime struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configFile string
	logLevel   string
	jsonOutput bool
}

// Execute runs the triage command against the process streams.
func Execute(ctx context.Context) error {
	return NewRootCommand(Options{}).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	rt := &runtime{stdin: opts.Stdin, stdout: opts.Stdout, stderr: opts.Stderr}
	if rt.stdin == nil {
		rt.stdin = os.Stdin
	}
	if rt.stdout == nil {
		rt.stdout = os.Stdout
	}
	if rt.stderr == nil {
		rt.stderr = os.Stderr
	}

	root := &cobra.Command{
		Use:   "triage",
		Short: "Offline symptom triage",
		Long: `triage extracts symptoms from free text, scores them into likely conditions
and an urgency level, and keeps a local history of analyses.

It is a heuristic aid and not a medical diagnosis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(rt.stdin)
	root.SetOut(rt.stdout)
	root.SetErr(rt.stderr)

	root.PersistentFlags().StringVar(&rt.configFile, "config", "", "config file (default searches ./triage.yaml, ./config, /etc/symptom-triage)")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "override logging.level")
	root.PersistentFlags().BoolVar(&rt.jsonOutput, "json", false, "print JSON instead of text")

	root.AddCommand(
		rt.newResolveCommand(),
		rt.newAnalyzeCommand(),
		rt.newLastCommand(),
		rt.newHistoryCommand(),
		rt.newModelCommand(),
		rt.newServeCommand(),
		rt.newMCPCommand(),
		rt.newSetupCommand(),
		rt.newDBCommand(),
	)
	return root
}

// loadConfig reads and validates configuration and builds the logger. Logs go
// to stderr so stdout stays parseable.
func (r *runtime) loadConfig() (*domain.Config, *logrus.Logger, error) {
	manager, err := config.NewManagerWithFile(r.configFile)
	if err != nil {
		return nil, nil, err
	}
	cfg := manager.GetConfig()
	if r.logLevel != "" {
		cfg.Logging.Level = r.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg.Logging)
	if cfg.Logging.Output != "discard" && cfg.Logging.Output != "none" {
		logger.SetOutput(r.stderr)
	}
	return cfg, logger, nil
}

// loadApp assembles the engine from the loaded configuration.
func (r *runtime) loadApp(ctx context.Context) (*app.App, error) {
	cfg, logger, err := r.loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize triage engine: %w", err)
	}
	return a, nil
}

func (r *runtime) printJSON(v any) error {
	encoder := json.NewEncoder(r.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

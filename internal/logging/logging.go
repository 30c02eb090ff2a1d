// Package logging builds the logrus logger shared by every binary.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/domain"
)

// New creates a logger from cfg. Unknown levels fall back to info and
// unknown outputs to stdout.
func New(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	Configure(logger, cfg)
	return logger
}

// Configure applies cfg to an existing logger.
func Configure(logger *logrus.Logger, cfg domain.LoggingConfig) {
	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetOutput(output(cfg.Output))
}

func output(name string) io.Writer {
	switch strings.ToLower(name) {
	case "stderr":
		return os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		return os.Stdout
	}
}

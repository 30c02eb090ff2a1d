package logging

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/symptom-triage-engine/internal/domain"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       domain.LoggingConfig
		level     logrus.Level
		formatter logrus.Formatter
		out       io.Writer
	}{
		{"defaults", domain.LoggingConfig{}, logrus.InfoLevel, &logrus.JSONFormatter{}, os.Stdout},
		{"debug text stderr", domain.LoggingConfig{Level: "debug", Format: "TEXT", Output: "stderr"},
			logrus.DebugLevel, &logrus.TextFormatter{}, os.Stderr},
		{"unknown level", domain.LoggingConfig{Level: "loud", Format: "json"}, logrus.InfoLevel, &logrus.JSONFormatter{}, os.Stdout},
		{"discard", domain.LoggingConfig{Level: "warn", Output: "discard"}, logrus.WarnLevel, &logrus.JSONFormatter{}, io.Discard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.cfg)
			assert.Equal(t, tt.level, logger.GetLevel())
			assert.IsType(t, tt.formatter, logger.Formatter)
			assert.Equal(t, tt.out, logger.Out)
		})
	}
}

// Package config provides configuration management for the triage binaries.
// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/symptom-triage-engine/internal/domain"
)

// LiteConfig is a simplified configuration for standalone operation.
// It requires no external databases and keeps history in SQLite.
type LiteConfig struct {
	// Data storage
	DataDir      string // Base directory for data files
	HistoryLimit int    // Entries kept in the result history

	// Model settings
	ModelPath   string  // Optional model artifact; empty uses the embedded one
	MLEnabled   bool    // Whether classifier predictions are merged in
	MLThreshold float64 // Minimum classifier probability

	// Cache settings
	CacheMaxItems int           // Maximum items in memory cache
	CacheTTL      time.Duration // Default cache TTL

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".symptom-triage")

	return &LiteConfig{
		DataDir:       dataDir,
		HistoryLimit:  20,
		MLEnabled:     true,
		MLThreshold:   0.35,
		CacheMaxItems: 1000,
		CacheTTL:      15 * time.Minute,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("TRIAGE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TRIAGE_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}

	// Model
	cfg.ModelPath = os.Getenv("TRIAGE_MODEL_PATH")
	if v := os.Getenv("TRIAGE_ML_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MLEnabled = b
		}
	}
	if v := os.Getenv("TRIAGE_ML_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.MLThreshold = f
		}
	}

	// Cache settings
	if v := os.Getenv("TRIAGE_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("TRIAGE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}

	// Logging
	if v := os.Getenv("TRIAGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TRIAGE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// HistoryDBPath returns the path to the history SQLite database.
func (c *LiteConfig) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}

// ToConfig expands the lite settings into a full configuration backed by
// SQLite under the data directory. Logs go to stderr so stdio transports
// keep stdout to themselves.
func (c *LiteConfig) ToConfig() *domain.Config {
	return &domain.Config{
		Server: domain.ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Triage: domain.TriageConfig{
			ModelPath:   c.ModelPath,
			MLEnabled:   c.MLEnabled,
			MLThreshold: c.MLThreshold,
			TopK:        2,
		},
		Storage: domain.StorageConfig{
			Backend:      "sqlite",
			SQLitePath:   c.HistoryDBPath(),
			HistoryLimit: c.HistoryLimit,
		},
		Cache: domain.CacheConfig{
			MaxItems: c.CacheMaxItems,
			TTL:      c.CacheTTL,
		},
		Session: domain.SessionConfig{MaxSessions: 64},
		Logging: domain.LoggingConfig{
			Level:  c.LogLevel,
			Format: c.LogFormat,
			Output: "stderr",
		},
		MCP: domain.MCPConfig{
			ServerName:    "symptom-triage",
			ServerVersion: "1.0.0",
		},
	}
}

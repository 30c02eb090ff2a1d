package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.True(t, cfg.MLEnabled)
	assert.Equal(t, 0.35, cfg.MLThreshold)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Empty(t, cfg.ModelPath)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.True(t, cfg.MLEnabled)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("TRIAGE_DATA_DIR", "/tmp/test-triage")
	t.Setenv("TRIAGE_HISTORY_LIMIT", "5")
	t.Setenv("TRIAGE_MODEL_PATH", "/models/nb.json")
	t.Setenv("TRIAGE_ML_ENABLED", "false")
	t.Setenv("TRIAGE_ML_THRESHOLD", "0.5")
	t.Setenv("TRIAGE_CACHE_MAX_ITEMS", "500")
	t.Setenv("TRIAGE_CACHE_TTL", "12h")
	t.Setenv("TRIAGE_LOG_LEVEL", "debug")
	t.Setenv("TRIAGE_LOG_FORMAT", "text")

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-triage", cfg.DataDir)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, "/models/nb.json", cfg.ModelPath)
	assert.False(t, cfg.MLEnabled)
	assert.Equal(t, 0.5, cfg.MLThreshold)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadLiteConfig_InvalidValuesKeepDefaults(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("TRIAGE_HISTORY_LIMIT", "-3")
	t.Setenv("TRIAGE_ML_ENABLED", "maybe")
	t.Setenv("TRIAGE_ML_THRESHOLD", "1.5")
	t.Setenv("TRIAGE_CACHE_TTL", "soon")

	cfg := LoadLiteConfig()

	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.True(t, cfg.MLEnabled)
	assert.Equal(t, 0.35, cfg.MLThreshold)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
}

func TestLiteConfig_Paths(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.symptom-triage"}

	assert.Equal(t, "/home/user/.symptom-triage/history.db", cfg.HistoryDBPath())
	assert.Equal(t, "/home/user/.symptom-triage/exports", cfg.ExportDir())
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: filepath.Join(t.TempDir(), "triage")}

	require.NoError(t, cfg.EnsureDataDir())

	_, err := os.Stat(cfg.DataDir)
	assert.NoError(t, err)
	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func TestLiteConfig_ToConfig(t *testing.T) {
	lite := DefaultLiteConfig()
	lite.DataDir = "/data"
	lite.HistoryLimit = 7

	cfg := lite.ToConfig()

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/data/history.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 7, cfg.Storage.HistoryLimit)
	assert.Equal(t, 2, cfg.Triage.TopK)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.NoError(t, Validate(cfg))
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"TRIAGE_DATA_DIR",
		"TRIAGE_HISTORY_LIMIT",
		"TRIAGE_MODEL_PATH",
		"TRIAGE_ML_ENABLED",
		"TRIAGE_ML_THRESHOLD",
		"TRIAGE_CACHE_MAX_ITEMS",
		"TRIAGE_CACHE_TTL",
		"TRIAGE_LOG_LEVEL",
		"TRIAGE_LOG_FORMAT",
	}
	for _, v := range vars {
		t.Setenv(v, "")
	}
}

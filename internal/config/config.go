package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/symptom-triage-engine/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

var _ domain.ConfigManager = (*Manager)(nil)

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	return NewManagerWithFile("")
}

// NewManagerWithFile creates a configuration manager reading configFile.
// An empty path searches the default locations for triage.yaml.
func NewManagerWithFile(configFile string) (*Manager, error) {
	m := &Manager{configFile: configFile}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := viper.New()

	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("triage")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/symptom-triage/")
	}

	// Set environment variable prefix and enable automatic env binding
	v.SetEnvPrefix("TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || m.configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	// Triage defaults
	v.SetDefault("triage.model_path", "")
	v.SetDefault("triage.ml_enabled", true)
	v.SetDefault("triage.ml_threshold", 0.35)
	v.SetDefault("triage.top_k", 2)

	// Storage defaults
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.sqlite_path", "./data/triage.db")
	v.SetDefault("storage.postgres_url", "")
	v.SetDefault("storage.redis_url", "redis://localhost:6379/0")
	v.SetDefault("storage.key_prefix", "triage:")
	v.SetDefault("storage.history_limit", 20)
	v.SetDefault("storage.breaker.enabled", true)
	v.SetDefault("storage.breaker.max_requests", 1)
	v.SetDefault("storage.breaker.interval", "60s")
	v.SetDefault("storage.breaker.timeout", "30s")
	v.SetDefault("storage.breaker.failure_threshold", 5)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "symptom_triage")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "30m")
	v.SetDefault("database.run_migrations", true)

	// Cache defaults
	v.SetDefault("cache.max_items", 1000)
	v.SetDefault("cache.ttl", "15m")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	// Session defaults
	v.SetDefault("session.max_sessions", 256)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// MCP defaults
	v.SetDefault("mcp.server_name", "symptom-triage")
	v.SetDefault("mcp.server_version", "1.0.0")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetTriageConfig returns the NLP and resolver configuration
func (m *Manager) GetTriageConfig() *domain.TriageConfig {
	return &m.config.Triage
}

// GetStorageConfig returns the history back end configuration
func (m *Manager) GetStorageConfig() *domain.StorageConfig {
	return &m.config.Storage
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// ConfigFileUsed returns the file the configuration was read from, if any.
func (m *Manager) ConfigFileUsed() string {
	return m.v.ConfigFileUsed()
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	return Validate(m.config)
}

// Validate checks a configuration regardless of where it came from.
func Validate(config *domain.Config) error {
	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate triage configuration
	if config.Triage.MLThreshold <= 0 || config.Triage.MLThreshold > 1 {
		return fmt.Errorf("ml threshold must be in (0, 1]: %v", config.Triage.MLThreshold)
	}
	if config.Triage.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1: %d", config.Triage.TopK)
	}

	// Validate storage configuration
	if config.Storage.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1: %d", config.Storage.HistoryLimit)
	}
	switch strings.ToLower(config.Storage.Backend) {
	case "memory":
	case "sqlite":
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for the sqlite backend")
		}
	case "postgres":
		if config.Storage.PostgresURL == "" && config.Database.Host == "" {
			return fmt.Errorf("postgres url or database host is required for the postgres backend")
		}
	case "redis":
		if config.Storage.RedisURL == "" {
			return fmt.Errorf("Redis URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", config.Storage.Backend)
	}

	if config.Cache.MaxItems < 0 {
		return fmt.Errorf("cache max items cannot be negative: %d", config.Cache.MaxItems)
	}
	if config.RateLimit.Enabled && config.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit requests per second must be positive")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

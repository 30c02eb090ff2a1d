package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Triage    TriageConfig    `mapstructure:"triage"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Session   SessionConfig   `mapstructure:"session"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	MCP       MCPConfig       `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// TriageConfig controls the NLP layer and the resolver threshold
type TriageConfig struct {
	ModelPath   string  `mapstructure:"model_path"` // empty uses the embedded artifact
	MLEnabled   bool    `mapstructure:"ml_enabled"`
	MLThreshold float64 `mapstructure:"ml_threshold"`
	TopK        int     `mapstructure:"top_k"`
}

// StorageConfig selects and configures the result history back end
type StorageConfig struct {
	Backend      string        `mapstructure:"backend"` // memory, sqlite, postgres, redis
	SQLitePath   string        `mapstructure:"sqlite_path"`
	PostgresURL  string        `mapstructure:"postgres_url"`
	RedisURL     string        `mapstructure:"redis_url"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	HistoryLimit int           `mapstructure:"history_limit"`
	Breaker      BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker around remote stores
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// DatabaseConfig represents the Postgres pool used for readiness and migrations
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	RunMigrations   bool          `mapstructure:"run_migrations"`
}

// CacheConfig represents the in-memory resolve cache
type CacheConfig struct {
	MaxItems int           `mapstructure:"max_items"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig represents per-client request limits at the HTTP boundary
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// SessionConfig bounds the number of live selection sessions
type SessionConfig struct {
	MaxSessions int `mapstructure:"max_sessions"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}

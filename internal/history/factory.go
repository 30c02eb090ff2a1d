package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/domain"
)

// Open builds the store selected by cfg.Backend. Remote back ends are
// wrapped in a circuit breaker when cfg.Breaker.Enabled is set.
func Open(ctx context.Context, cfg domain.StorageConfig, logger *logrus.Logger) (domain.ResultStore, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendMemory
	}

	var (
		store  domain.ResultStore
		err    error
		remote bool
	)

	switch backend {
	case BackendMemory:
		store = NewMemoryStore(cfg.HistoryLimit, logger)
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
		store, err = NewSQLiteStore(cfg.SQLitePath, cfg.HistoryLimit, logger)
	case BackendPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("storage.postgres_url is required for the postgres backend")
		}
		store, err = NewPostgresStoreFromURL(cfg.PostgresURL, cfg.HistoryLimit, logger)
		remote = true
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("storage.redis_url is required for the redis backend")
		}
		store, err = NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.KeyPrefix, cfg.HistoryLimit, logger)
		remote = true
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", backend, err)
	}

	if remote && cfg.Breaker.Enabled {
		store = NewResilientStore(store, "history-"+backend, cfg.Breaker, logger)
	}

	logger.WithFields(logrus.Fields{
		"backend":       backend,
		"history_limit": normalizeLimit(cfg.HistoryLimit),
		"breaker":       remote && cfg.Breaker.Enabled,
	}).Info("Result store ready")

	return store, nil
}

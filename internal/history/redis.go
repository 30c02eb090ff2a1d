package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/domain"
)

const defaultKeyPrefix = "triage:"

// RedisStore keeps the most recent result under "<prefix>last" and the
// history in the list "<prefix>history".
type RedisStore struct {
	client *redis.Client
	prefix string
	limit  int
	logger *logrus.Logger
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string, limit int, logger *logrus.Logger) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		limit:  normalizeLimit(limit),
		logger: logger,
	}
}

// NewRedisStoreFromURL connects to redisURL and verifies the connection.
func NewRedisStoreFromURL(ctx context.Context, redisURL, prefix string, limit int, logger *logrus.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisStore(client, prefix, limit, logger), nil
}

func (s *RedisStore) lastKey() string    { return s.prefix + "last" }
func (s *RedisStore) historyKey() string { return s.prefix + "history" }

// Save sets the most recent slot, pushes onto history and trims it in one
// MULTI/EXEC block.
func (s *RedisStore) Save(ctx context.Context, result *domain.AnalysisResult) error {
	data, err := domain.MarshalResult(result)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.lastKey(), data, 0)
	pipe.LPush(ctx, s.historyKey(), data)
	pipe.LTrim(ctx, s.historyKey(), 0, int64(s.limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// LoadMostRecent returns the most recent result or nil.
func (s *RedisStore) LoadMostRecent(ctx context.Context) (*domain.AnalysisResult, error) {
	data, err := s.client.Get(ctx, s.lastKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load most recent result: %w", err)
	}
	return decodeStored(s.logger, BackendRedis, data), nil
}

// History returns up to limit results, newest first.
func (s *RedisStore) History(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	n := clampLimit(limit, s.limit)
	values, err := s.client.LRange(ctx, s.historyKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	payloads := make([][]byte, len(values))
	for i, v := range values {
		payloads[i] = []byte(v)
	}
	return decodeAll(s.logger, BackendRedis, payloads), nil
}

// Clear deletes both keys.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.lastKey(), s.historyKey()).Err()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

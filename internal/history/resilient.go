package history

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/symptom-triage-engine/internal/domain"
)

// ResilientStore guards a remote store with a circuit breaker. While open,
// calls fail immediately with gobreaker.ErrOpenState.
type ResilientStore struct {
	inner   domain.ResultStore
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientStore wraps inner. Zero breaker settings select defaults.
func NewResilientStore(inner domain.ResultStore, name string, cfg domain.BreakerConfig, logger *logrus.Logger) *ResilientStore {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from.String(),
				"to_state":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &ResilientStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// State returns the breaker state name.
func (s *ResilientStore) State() string {
	return s.breaker.State().String()
}

func (s *ResilientStore) Save(ctx context.Context, result *domain.AnalysisResult) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.inner.Save(ctx, result)
	})
	return err
}

func (s *ResilientStore) LoadMostRecent(ctx context.Context) (*domain.AnalysisResult, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.LoadMostRecent(ctx)
	})
	if err != nil {
		return nil, err
	}
	result, _ := out.(*domain.AnalysisResult)
	return result, nil
}

func (s *ResilientStore) History(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.History(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	results, _ := out.([]*domain.AnalysisResult)
	return results, nil
}

func (s *ResilientStore) Clear(ctx context.Context) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.inner.Clear(ctx)
	})
	return err
}

func (s *ResilientStore) Close() error {
	return s.inner.Close()
}

// Ping checks the inner store when it supports health checks. An open
// breaker reports gobreaker.ErrOpenState.
func (s *ResilientStore) Ping(ctx context.Context) error {
	pinger, ok := s.inner.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, pinger.Ping(ctx)
	})
	return err
}

package history

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/domain"
)

// MemoryStore keeps serialized results in process memory.
type MemoryStore struct {
	logger *logrus.Logger
	limit  int

	mu      sync.RWMutex
	last    []byte
	entries [][]byte
}

// NewMemoryStore creates an in-memory store keeping at most limit results.
func NewMemoryStore(limit int, logger *logrus.Logger) *MemoryStore {
	return &MemoryStore{
		logger: logger,
		limit:  normalizeLimit(limit),
	}
}

// Save replaces the most recent result and prepends it to history.
func (s *MemoryStore) Save(ctx context.Context, result *domain.AnalysisResult) error {
	data, err := domain.MarshalResult(result)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = data
	entries := make([][]byte, 0, s.limit)
	entries = append(entries, data)
	for _, e := range s.entries {
		if len(entries) == s.limit {
			break
		}
		entries = append(entries, e)
	}
	s.entries = entries
	return nil
}

// LoadMostRecent returns the last saved result or nil.
func (s *MemoryStore) LoadMostRecent(ctx context.Context) (*domain.AnalysisResult, error) {
	s.mu.RLock()
	data := s.last
	s.mu.RUnlock()

	if data == nil {
		return nil, nil
	}
	return decodeStored(s.logger, BackendMemory, data), nil
}

// History returns up to limit results, newest first.
func (s *MemoryStore) History(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	s.mu.RLock()
	n := clampLimit(limit, len(s.entries))
	payloads := make([][]byte, n)
	copy(payloads, s.entries[:n])
	s.mu.RUnlock()

	return decodeAll(s.logger, BackendMemory, payloads), nil
}

// Clear drops everything.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
	s.entries = nil
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}


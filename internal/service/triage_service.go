package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/cache"
	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/nlp"
)

const defaultHistoryLimit = 20

// ModelInfoProvider reports the state of the classifier model.
type ModelInfoProvider interface {
	Info() nlp.ModelInfo
}

// TriageService is the single entry point used by the HTTP, MCP and CLI
// surfaces. Resolve, Analyze, Save, LastResult and History never return
// errors: failures are logged and narrowed to an empty or nil outcome.
type TriageService struct {
	logger    *logrus.Logger
	resolver  domain.SymptomResolver
	scorer    *TriageScorer
	store     domain.ResultStore
	models    ModelInfoProvider
	cache     *cache.MemoryCache[[]domain.SymptomKey]
	mlEnabled bool
}

// TriageServiceOption customizes a TriageService.
type TriageServiceOption func(*TriageService)

// WithResolveCache memoizes Resolve results.
func WithResolveCache(c *cache.MemoryCache[[]domain.SymptomKey]) TriageServiceOption {
	return func(s *TriageService) {
		s.cache = c
	}
}

// WithModelInfo attaches the model provider used for health output.
func WithModelInfo(models ModelInfoProvider) TriageServiceOption {
	return func(s *TriageService) {
		s.models = models
	}
}

// WithMLEnabled toggles the classifier contribution to Resolve.
func WithMLEnabled(enabled bool) TriageServiceOption {
	return func(s *TriageService) {
		s.mlEnabled = enabled
	}
}

// NewTriageService creates the facade. store may be nil, in which case
// results are scored but not kept.
func NewTriageService(logger *logrus.Logger, resolver domain.SymptomResolver, scorer *TriageScorer, store domain.ResultStore, opts ...TriageServiceOption) *TriageService {
	s := &TriageService{
		logger:    logger,
		resolver:  resolver,
		scorer:    scorer,
		store:     store,
		mlEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MLEnabled reports whether Resolve consults the classifier.
func (s *TriageService) MLEnabled() bool {
	return s.mlEnabled
}

// Resolve maps free text to symptom keys.
func (s *TriageService) Resolve(text, locale string) domain.SymptomKeySet {
	if strings.TrimSpace(text) == "" {
		return domain.NewSymptomKeySet()
	}

	cacheKey := locale + "\x00" + text
	if s.cache != nil {
		if keys, ok := s.cache.Get(cacheKey); ok {
			return domain.NewSymptomKeySet(keys...)
		}
	}

	keys := s.resolver.Resolve(text, locale, s.mlEnabled)
	if s.cache != nil {
		s.cache.Set(cacheKey, keys.Keys())
	}

	s.logger.WithFields(logrus.Fields{
		"locale":   locale,
		"resolved": keys.Strings(),
	}).Debug("Resolved symptom text")

	return keys
}

// ResolveExcluding resolves text and drops keys the user rejected.
func (s *TriageService) ResolveExcluding(text, locale string, excluded domain.SymptomKeySet) domain.SymptomKeySet {
	return s.Resolve(text, locale).Without(excluded)
}

// MergeTextKeys returns keys followed by the symptoms resolved from text
// that are not already selected.
func (s *TriageService) MergeTextKeys(keys []domain.SymptomKey, text, locale string) []domain.SymptomKey {
	return domain.NewSymptomKeySet(keys...).Union(s.Resolve(text, locale)).Keys()
}

// Analyze scores keys without persisting the result.
func (s *TriageService) Analyze(keys []domain.SymptomKey, text, locale string) *domain.AnalysisResult {
	return s.scorer.Analyze(keys, text, locale)
}

// AnalyzeAndSave scores keys and stores the result.
func (s *TriageService) AnalyzeAndSave(ctx context.Context, keys []domain.SymptomKey, text, locale string) *domain.AnalysisResult {
	result := s.Analyze(keys, text, locale)
	s.Save(ctx, result)
	return result
}

// Save stores result and reports whether it was kept.
func (s *TriageService) Save(ctx context.Context, result *domain.AnalysisResult) bool {
	if s.store == nil || result == nil {
		return false
	}
	if err := s.store.Save(ctx, result); err != nil {
		s.logger.WithError(err).Warn("Failed to save analysis result")
		return false
	}
	return true
}

// LastResult returns the most recently saved result or nil.
func (s *TriageService) LastResult(ctx context.Context) *domain.AnalysisResult {
	if s.store == nil {
		return nil
	}
	result, err := s.store.LoadMostRecent(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load most recent analysis result")
		return nil
	}
	return result
}

// History returns up to limit saved results, newest first.
func (s *TriageService) History(ctx context.Context, limit int) []*domain.AnalysisResult {
	if s.store == nil {
		return []*domain.AnalysisResult{}
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	results, err := s.store.History(ctx, limit)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load analysis history")
		return []*domain.AnalysisResult{}
	}
	return results
}

// Clear drops the stored most-recent result and history.
func (s *TriageService) Clear(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Clear(ctx); err != nil {
		return domain.NewTriageError(domain.ErrStorage, "Failed to clear history", err.Error(), "")
	}
	s.logger.Info("Cleared analysis history")
	return nil
}

// ModelInfo describes the classifier model, or reports it as absent.
func (s *TriageService) ModelInfo() nlp.ModelInfo {
	if s.models == nil {
		return nlp.ModelInfo{Labels: []domain.SymptomKey{}}
	}
	return s.models.Info()
}

// CacheStats returns resolve cache statistics when a cache is attached.
func (s *TriageService) CacheStats() *cache.Stats {
	if s.cache == nil {
		return nil
	}
	stats := s.cache.Stats()
	return &stats
}

// NewSession starts a selection session bound to this service.
func (s *TriageService) NewSession(locale string) *SelectionSession {
	return NewSelectionSession(s, locale)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/symptom-triage-engine/internal/cache"
	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/nlp"
)

// MockResolver is a mock implementation of domain.SymptomResolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(text, locale string, mlEnabled bool) domain.SymptomKeySet {
	args := m.Called(text, locale, mlEnabled)
	return domain.NewSymptomKeySet(args.Get(0).([]domain.SymptomKey)...)
}

// MockResultStore is a mock implementation of domain.ResultStore
type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) Save(ctx context.Context, result *domain.AnalysisResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultStore) LoadMostRecent(ctx context.Context) (*domain.AnalysisResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockResultStore) History(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AnalysisResult), args.Error(1)
}

func (m *MockResultStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockResultStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type staticModelInfo struct {
	info nlp.ModelInfo
}

func (s staticModelInfo) Info() nlp.ModelInfo { return s.info }

func TestTriageService_ResolveUsesCache(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("Resolve", "fever and cough", "en", true).
		Return([]domain.SymptomKey{domain.FEVER, domain.COUGH}).Once()

	resolveCache, err := cache.NewMemoryCache[[]domain.SymptomKey](10, time.Minute)
	require.NoError(t, err)

	svc := NewTriageService(testLogger(), resolver, newTestScorer(), nil, WithResolveCache(resolveCache))

	first := svc.Resolve("fever and cough", "en")
	second := svc.Resolve("fever and cough", "en")

	assert.Equal(t, []domain.SymptomKey{domain.FEVER, domain.COUGH}, first.Keys())
	assert.Equal(t, first.Keys(), second.Keys())
	resolver.AssertNumberOfCalls(t, "Resolve", 1)

	stats := svc.CacheStats()
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Hits)

	// Mutating a returned set never leaks into the cache.
	second.Add(domain.HEADACHE)
	assert.Equal(t, []domain.SymptomKey{domain.FEVER, domain.COUGH}, svc.Resolve("fever and cough", "en").Keys())
}

func TestTriageService_ResolveBlank(t *testing.T) {
	resolver := new(MockResolver)
	svc := NewTriageService(testLogger(), resolver, newTestScorer(), nil)

	assert.True(t, svc.Resolve("   ", "en").IsEmpty())
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
	assert.Nil(t, svc.CacheStats())
}

func TestTriageService_ResolveExcluding(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("Resolve", "headache and fever", "en", false).
		Return([]domain.SymptomKey{domain.FEVER, domain.HEADACHE})

	svc := NewTriageService(testLogger(), resolver, newTestScorer(), nil, WithMLEnabled(false))
	keys := svc.ResolveExcluding("headache and fever", "en", domain.NewSymptomKeySet(domain.FEVER))

	assert.Equal(t, []domain.SymptomKey{domain.HEADACHE}, keys.Keys())
	assert.False(t, svc.MLEnabled())
}

func TestTriageService_MergeTextKeys(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("Resolve", "fever and cough", "en", true).
		Return([]domain.SymptomKey{domain.FEVER, domain.COUGH})

	svc := NewTriageService(testLogger(), resolver, newTestScorer(), nil)

	keys := svc.MergeTextKeys([]domain.SymptomKey{domain.HEADACHE, domain.FEVER}, "fever and cough", "en")
	assert.Equal(t, []domain.SymptomKey{domain.HEADACHE, domain.FEVER, domain.COUGH}, keys)

	keys = svc.MergeTextKeys(nil, "fever and cough", "en")
	assert.Equal(t, []domain.SymptomKey{domain.FEVER, domain.COUGH}, keys)

	keys = svc.MergeTextKeys([]domain.SymptomKey{domain.COLD}, "  ", "en")
	assert.Equal(t, []domain.SymptomKey{domain.COLD}, keys)
	resolver.AssertNumberOfCalls(t, "Resolve", 2)
}

func TestTriageService_AnalyzeAndSave(t *testing.T) {
	ctx := context.Background()
	store := new(MockResultStore)
	store.On("Save", ctx, mock.AnythingOfType("*domain.AnalysisResult")).Return(nil)

	svc := NewTriageService(testLogger(), new(MockResolver), newTestScorer(), store)
	result := svc.AnalyzeAndSave(ctx, []domain.SymptomKey{domain.FEVER, domain.COUGH}, "fever", "en")

	require.NotNil(t, result)
	assert.Equal(t, 72, result.Conditions[0].ConfidencePct)
	store.AssertExpectations(t)
}

func TestTriageService_FailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("database is locked")

	store := new(MockResultStore)
	store.On("Save", ctx, mock.Anything).Return(storeErr)
	store.On("LoadMostRecent", ctx).Return(nil, storeErr)
	store.On("History", ctx, 20).Return(nil, storeErr)
	store.On("Clear", ctx).Return(storeErr)

	svc := NewTriageService(testLogger(), new(MockResolver), newTestScorer(), store)

	result := svc.Analyze(nil, "", "en")
	assert.False(t, svc.Save(ctx, result))
	assert.Nil(t, svc.LastResult(ctx))
	assert.Empty(t, svc.History(ctx, 0))

	err := svc.Clear(ctx)
	var triageErr *domain.TriageError
	require.True(t, errors.As(err, &triageErr))
	assert.Equal(t, domain.ErrStorage, triageErr.Code)
}

func TestTriageService_WithoutStore(t *testing.T) {
	ctx := context.Background()
	svc := NewTriageService(testLogger(), new(MockResolver), newTestScorer(), nil)

	assert.False(t, svc.Save(ctx, svc.Analyze(nil, "", "en")))
	assert.Nil(t, svc.LastResult(ctx))
	assert.Empty(t, svc.History(ctx, 5))
	assert.NoError(t, svc.Clear(ctx))
}

func TestTriageService_LastResultAndHistory(t *testing.T) {
	ctx := context.Background()
	saved := newTestScorer().Analyze([]domain.SymptomKey{domain.COLD}, "", "en")

	store := new(MockResultStore)
	store.On("LoadMostRecent", ctx).Return(saved, nil)
	store.On("History", ctx, 5).Return([]*domain.AnalysisResult{saved}, nil)

	svc := NewTriageService(testLogger(), new(MockResolver), newTestScorer(), store)

	assert.Same(t, saved, svc.LastResult(ctx))
	assert.Len(t, svc.History(ctx, 5), 1)
}

func TestTriageService_ModelInfo(t *testing.T) {
	svc := NewTriageService(testLogger(), new(MockResolver), newTestScorer(), nil)
	assert.False(t, svc.ModelInfo().Available)

	withInfo := NewTriageService(testLogger(), new(MockResolver), newTestScorer(), nil,
		WithModelInfo(staticModelInfo{info: nlp.ModelInfo{Available: true, VocabSize: 12}}))
	assert.Equal(t, 12, withInfo.ModelInfo().VocabSize)
}

// keywordOnlyService wires the real keyword rules with no classifier.
func keywordOnlyService(store domain.ResultStore) *TriageService {
	resolver := nlp.NewResolver(nlp.NewKeywordExtractor(), nil)
	return NewTriageService(testLogger(), resolver, newTestScorer(), store)
}

func TestSelectionSession_TextAndToggle(t *testing.T) {
	session := keywordOnlyService(nil).NewSession("en")
	assert.NotEmpty(t, session.ID())
	assert.False(t, session.CanAnalyze())

	snap := session.UpdateText("fever and a bad cough")
	assert.Equal(t, []domain.SymptomKey{domain.FEVER, domain.COUGH}, snap.Auto)
	assert.True(t, snap.CanAnalyze)

	// Rejecting a suggestion keeps it out after the text changes.
	snap, err := session.Toggle(domain.COUGH)
	require.NoError(t, err)
	assert.Equal(t, []domain.SymptomKey{domain.COUGH}, snap.Excluded)
	assert.Equal(t, []domain.SymptomKey{domain.FEVER}, snap.Selected)

	snap = session.UpdateText("fever and a bad cough, also headache")
	assert.Equal(t, []domain.SymptomKey{domain.FEVER, domain.HEADACHE}, snap.Auto)

	// Picking a rejected key by hand clears the rejection.
	snap, err = session.Toggle(domain.COUGH)
	require.NoError(t, err)
	assert.Empty(t, snap.Excluded)
	assert.Equal(t, []domain.SymptomKey{domain.COUGH}, snap.Manual)
	assert.Equal(t, []domain.SymptomKey{domain.COUGH, domain.FEVER, domain.HEADACHE}, session.Selected())

	// Toggling a hand-picked key drops it without rejecting it.
	snap, err = session.Toggle(domain.COUGH)
	require.NoError(t, err)
	assert.Empty(t, snap.Manual)
	assert.Empty(t, snap.Excluded)

	_, err = session.Toggle(domain.SymptomKey("SNEEZE"))
	var validationErr *domain.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestSelectionSession_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("Nothing to analyze", func(t *testing.T) {
		session := keywordOnlyService(nil).NewSession("en")
		session.UpdateText("   ")
		_, err := session.Analyze(ctx)
		assert.ErrorIs(t, err, ErrNothingToAnalyze)
	})

	t.Run("Text without keys falls back", func(t *testing.T) {
		store := new(MockResultStore)
		store.On("Save", ctx, mock.Anything).Return(nil)

		session := keywordOnlyService(store).NewSession("en")
		session.UpdateText("  my knee hurts  ")
		result, err := session.Analyze(ctx)

		require.NoError(t, err)
		assert.Equal(t, "my knee hurts", result.Desc)
		assert.Equal(t, 55, result.Conditions[0].ConfidencePct)
		store.AssertExpectations(t)
	})

	t.Run("Manual keys", func(t *testing.T) {
		store := new(MockResultStore)
		store.On("Save", ctx, mock.Anything).Return(nil)

		session := keywordOnlyService(store).NewSession("en")
		_, err := session.Toggle(domain.STOMACH_PAIN)
		require.NoError(t, err)
		_, err = session.Toggle(domain.COUGH)
		require.NoError(t, err)

		result, err := session.Analyze(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.GASTROENTEROLOGY, result.SuggestedSpecialityKey)
		assert.Equal(t, []domain.SymptomKey{domain.STOMACH_PAIN, domain.COUGH}, result.SelectedKeys)
	})
}

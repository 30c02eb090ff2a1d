package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/history"
	"github.com/symptom-triage-engine/internal/nlp"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func testConfig(backend string) *domain.Config {
	return &domain.Config{
		Triage: domain.TriageConfig{
			MLEnabled:   true,
			MLThreshold: 0.35,
			TopK:        2,
		},
		Storage: domain.StorageConfig{
			Backend:      backend,
			HistoryLimit: 20,
		},
		Cache: domain.CacheConfig{MaxItems: 100, TTL: time.Minute},
	}
}

func TestModelSource(t *testing.T) {
	source := ModelSource(domain.TriageConfig{})
	assert.IsType(t, nlp.BytesSource{}, source)
	assert.Equal(t, "embedded:symptom_model_nb_v1.json", source.Name())

	source = ModelSource(domain.TriageConfig{ModelPath: "/models/nb.json"})
	assert.Equal(t, nlp.FileSource{Path: "/models/nb.json"}, source)
}

func TestNew_EmbeddedModelAndMemoryStore(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig("memory"), testLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.Classifier.Available())
	assert.True(t, a.Models.Info().Available)
	assert.Nil(t, a.DB)
	assert.NoError(t, a.Health(ctx))

	keys := a.Service.Resolve("I have fevr", "en")
	assert.True(t, keys.Has(domain.FEVER))

	result := a.Service.AnalyzeAndSave(ctx, keys.Keys(), "I have fevr", "en")
	require.NotNil(t, result)
	assert.Equal(t, result, a.Service.LastResult(ctx))

	_, supported, err := a.UrgencyBreakdown(ctx)
	assert.False(t, supported)
	assert.NoError(t, err)
}

func TestNew_MissingModelFallsBackToRules(t *testing.T) {
	cfg := testConfig("memory")
	cfg.Triage.ModelPath = filepath.Join(t.TempDir(), "absent.json")

	a, err := New(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Classifier.Available())
	info := a.Models.Info()
	assert.True(t, info.Loaded)
	assert.NotEmpty(t, info.Error)

	assert.Equal(t, []domain.SymptomKey{domain.FEVER}, a.Service.Resolve("I have fever", "en").Keys())
	assert.True(t, a.Service.Resolve("I have fevr", "en").IsEmpty())
}

func TestNew_WithStoreAndSQLite(t *testing.T) {
	ctx := context.Background()

	store := history.NewMemoryStore(5, testLogger())
	a, err := New(ctx, testConfig("redis"), testLogger(), WithStore(store))
	require.NoError(t, err)
	assert.Same(t, store, a.Store)

	cfg := testConfig("sqlite")
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "history.db")
	a, err = New(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer a.Close()
	assert.IsType(t, &history.SQLiteStore{}, a.Store)
	assert.NoError(t, a.Health(ctx))
}

func TestNew_StoreFailure(t *testing.T) {
	_, err := New(context.Background(), testConfig("cassandra"), testLogger())
	assert.Error(t, err)
}

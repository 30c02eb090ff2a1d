package domain

import (
	"context"
)

// SymptomClassifier scores free text against the known symptom labels.
// Implementations never fail: without a model they return no predictions.
type SymptomClassifier interface {
	PredictTopK(text, locale string, k int) []Prediction
}

// KeywordExtractor maps free text to symptom keys using literal keyword tables.
type KeywordExtractor interface {
	Extract(text, locale string) SymptomKeySet
}

// SymptomResolver merges rule and classifier output into the final key set.
type SymptomResolver interface {
	Resolve(text, locale string, mlEnabled bool) SymptomKeySet
}

// ResultStore caches analysis results: one most-recent slot plus a bounded history.
type ResultStore interface {
	Save(ctx context.Context, result *AnalysisResult) error
	LoadMostRecent(ctx context.Context) (*AnalysisResult, error)
	History(ctx context.Context, limit int) ([]*AnalysisResult, error)
	Clear(ctx context.Context) error
	Close() error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetTriageConfig() *TriageConfig
	GetStorageConfig() *StorageConfig
	Reload() error
	Validate() error
}

// Package history persists analysis results: a single most-recent slot plus
// a bounded history kept newest first.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/domain"
)

// DefaultLimit is the number of results kept in history.
const DefaultLimit = 20

// Backend names accepted by storage.backend.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// clampLimit bounds a requested page size by the configured capacity.
func clampLimit(requested, capacity int) int {
	if requested <= 0 || requested > capacity {
		return capacity
	}
	return requested
}

// decodeStored turns a stored payload back into a result. Corrupt payloads
// are logged and reported as absent.
func decodeStored(logger *logrus.Logger, backend string, data []byte) *domain.AnalysisResult {
	result, err := domain.UnmarshalResult(data)
	if err != nil {
		logger.WithError(err).WithField("backend", backend).Warn("Ignoring corrupt stored analysis result")
		return nil
	}
	return result
}

// decodeAll decodes payloads in order, skipping corrupt entries.
func decodeAll(logger *logrus.Logger, backend string, payloads [][]byte) []*domain.AnalysisResult {
	results := make([]*domain.AnalysisResult, 0, len(payloads))
	for _, payload := range payloads {
		if result := decodeStored(logger, backend, payload); result != nil {
			results = append(results, result)
		}
	}
	return results
}

// Export is the JSON document written by ExportJSON.
type Export struct {
	Version    string                   `json:"version"`
	ExportedAt time.Time                `json:"exportedAt"`
	Count      int                      `json:"count"`
	Results    []*domain.AnalysisResult `json:"results"`
}

// ExportJSON writes the full history of store, newest first.
func ExportJSON(ctx context.Context, store domain.ResultStore, limit int, writer io.Writer) error {
	results, err := store.History(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(results),
		Results:    results,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON saves the results of an export into store, oldest first, so the
// newest exported result ends up as the most recent one. Invalid entries are
// skipped.
func ImportJSON(ctx context.Context, store domain.ResultStore, reader io.Reader) (imported int, skipped int, err error) {
	var export struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, &domain.SerializationError{Op: "decode", Err: err}
	}

	for i := len(export.Results) - 1; i >= 0; i-- {
		result, err := domain.UnmarshalResult(export.Results[i])
		if err != nil {
			skipped++
			continue
		}
		if err := store.Save(ctx, result); err != nil {
			return imported, skipped, fmt.Errorf("failed to save imported result: %w", err)
		}
		imported++
	}
	return imported, skipped, nil
}

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/domain"
)

// sqlQueries holds the dialect-specific statements of a SQL back end.
type sqlQueries struct {
	upsertLast    string
	insertHistory string
	trimHistory   string
	selectLast    string
	selectHistory string
	deleteLast    string
	deleteHistory string
}

// sqlStore implements the result store on database/sql. The most recent
// slot is a single row with id 1; history rows are ordered by id.
type sqlStore struct {
	db      *sql.DB
	queries sqlQueries
	backend string
	limit   int
	logger  *logrus.Logger
}

// Save writes the most recent slot, appends to history and trims it in one
// transaction.
func (s *sqlStore) Save(ctx context.Context, result *domain.AnalysisResult) error {
	data, err := domain.MarshalResult(result)
	if err != nil {
		return err
	}
	payload := string(data)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.queries.upsertLast, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save most recent result: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.queries.insertHistory, result.CreatedAt, payload); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.queries.trimHistory, s.limit); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// LoadMostRecent returns the most recent result, or nil when none is stored
// or the stored payload is corrupt.
func (s *sqlStore) LoadMostRecent(ctx context.Context) (*domain.AnalysisResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.queries.selectLast).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load most recent result: %w", err)
	}
	return decodeStored(s.logger, s.backend, []byte(payload)), nil
}

// History returns up to limit results, newest first.
func (s *sqlStore) History(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.selectHistory, clampLimit(limit, s.limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var payloads [][]byte
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		payloads = append(payloads, []byte(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return decodeAll(s.logger, s.backend, payloads), nil
}

// Clear removes the most recent slot and all history.
func (s *sqlStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.queries.deleteLast); err != nil {
		return fmt.Errorf("failed to clear most recent result: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.queries.deleteHistory); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

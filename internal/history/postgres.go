package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var postgresQueries = sqlQueries{
	upsertLast: `
		INSERT INTO triage_last_result (id, payload, saved_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at
	`,
	insertHistory: `INSERT INTO triage_history (created_at, payload) VALUES ($1, $2)`,
	trimHistory: `
		DELETE FROM triage_history WHERE id NOT IN (
			SELECT id FROM triage_history ORDER BY id DESC LIMIT $1
		)
	`,
	selectLast:    `SELECT payload FROM triage_last_result WHERE id = 1`,
	selectHistory: `SELECT payload FROM triage_history ORDER BY id DESC LIMIT $1`,
	deleteLast:    `DELETE FROM triage_last_result`,
	deleteHistory: `DELETE FROM triage_history`,
}

// PostgresStore keeps results in PostgreSQL. It expects the schema to exist
// (created via migrations).
type PostgresStore struct {
	*sqlStore
}

// NewPostgresStore wraps an open connection.
func NewPostgresStore(db *sql.DB, limit int, logger *logrus.Logger) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{
		sqlStore: &sqlStore{
			db:      db,
			queries: postgresQueries,
			backend: BackendPostgres,
			limit:   normalizeLimit(limit),
			logger:  logger,
		},
	}, nil
}

// NewPostgresStoreFromURL opens a connection pool for databaseURL.
func NewPostgresStoreFromURL(databaseURL string, limit int, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db, limit, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var sqliteQueries = sqlQueries{
	upsertLast: `
		INSERT INTO last_result (id, payload, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`,
	insertHistory: `INSERT INTO result_history (created_at, payload) VALUES (?, ?)`,
	trimHistory: `
		DELETE FROM result_history WHERE id NOT IN (
			SELECT id FROM result_history ORDER BY id DESC LIMIT ?
		)
	`,
	selectLast:    `SELECT payload FROM last_result WHERE id = 1`,
	selectHistory: `SELECT payload FROM result_history ORDER BY id DESC LIMIT ?`,
	deleteLast:    `DELETE FROM last_result`,
	deleteHistory: `DELETE FROM result_history`,
}

// SQLiteStore keeps results in a local SQLite file.
type SQLiteStore struct {
	*sqlStore
	dbPath string
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string, limit int, logger *logrus.Logger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		sqlStore: &sqlStore{
			db:      db,
			queries: sqliteQueries,
			backend: BackendSQLite,
			limit:   normalizeLimit(limit),
			logger:  logger,
		},
		dbPath: dbPath,
	}, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS last_result (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL,
		saved_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS result_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_result_history_created_at ON result_history(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Package cache provides a SQLite-backed store of parse results and
// validation runs. Documents whose checksum is unchanged since the previous
// run are served from the cache instead of being re-parsed; reference
// checking always runs over the full corpus.
package cache

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hallgrim/notelint/internal/models"
)

// DocumentCache defines the cache operations the validation pipeline uses.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type DocumentCache interface {
	Lookup(path, checksum string) (*models.Document, bool, error)
	Store(doc *models.Document) error
	Prune(live map[string]struct{}) error
	RecordRun(documents int, defects []models.Defect) error
	Close() error
}

// Verify *DB satisfies DocumentCache at compile time.
var _ DocumentCache = (*DB)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL,
	record     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	documents   INTEGER NOT NULL,
	defect_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS defects (
	run_id  INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	path    TEXT NOT NULL,
	slug    TEXT NOT NULL DEFAULT '',
	kind    TEXT NOT NULL,
	target  TEXT NOT NULL,
	line    INTEGER NOT NULL DEFAULT 0,
	heading TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_defects_run ON defects(run_id);
`

// DB wraps a sql.DB with cache-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

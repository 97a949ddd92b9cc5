package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hallgrim/notelint/internal/models"
)

// Lookup returns the cached record for path, but only when the stored
// checksum matches: a stale record is indistinguishable from a miss.
func (db *DB) Lookup(path, checksum string) (*models.Document, bool, error) {
	var (
		storedSum string
		record    string
	)
	err := db.conn.QueryRow(`SELECT checksum, record FROM documents WHERE path = ?`, path).
		Scan(&storedSum, &record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup %s: %w", path, err)
	}
	if storedSum != checksum {
		return nil, false, nil
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(record), &doc); err != nil {
		// Corrupt record: treat as a miss so the file is re-parsed.
		return nil, false, nil
	}
	return &doc, true, nil
}

// Store inserts or replaces the parsed record for a document.
func (db *DB) Store(doc *models.Document) error {
	record, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cache: marshal record: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO documents (path, checksum, record, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			record     = excluded.record,
			updated_at = excluded.updated_at
	`, doc.Path, doc.Checksum, string(record))
	if err != nil {
		return fmt.Errorf("cache: store %s: %w", doc.Path, err)
	}
	return nil
}

// Prune removes cached records for paths that are no longer on disk.
func (db *DB) Prune(live map[string]struct{}) error {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return fmt.Errorf("cache: prune query: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return err
		}
		if _, ok := live[p]; !ok {
			stale = append(stale, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range stale {
		if _, err := db.conn.Exec(`DELETE FROM documents WHERE path = ?`, p); err != nil {
			return fmt.Errorf("cache: prune %s: %w", p, err)
		}
	}
	return nil
}

// RecordRun persists a validation run and its defects within a transaction.
// The run history lets an author compare reports across edits.
func (db *DB) RecordRun(documents int, defects []models.Defect) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`INSERT INTO runs (documents, defect_count) VALUES (?, ?)`,
		documents, len(defects))
	if err != nil {
		return fmt.Errorf("cache: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("cache: run id: %w", err)
	}

	if len(defects) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO defects (run_id, path, slug, kind, target, line, heading) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("cache: prepare defect insert: %w", err)
		}
		defer stmt.Close()
		for _, d := range defects {
			if _, err := stmt.Exec(runID, d.Path, d.Slug, string(d.Kind), d.Target, d.Line, d.Heading); err != nil {
				return fmt.Errorf("cache: insert defect: %w", err)
			}
		}
	}

	return tx.Commit()
}

// LastRunDefects returns the defects recorded by the most recent run, in
// insertion order. Used by the watch loop to avoid reprinting an unchanged
// report.
func (db *DB) LastRunDefects() ([]models.Defect, error) {
	var runID int64
	err := db.conn.QueryRow(`SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: last run: %w", err)
	}

	rows, err := db.conn.Query(`SELECT path, slug, kind, target, line, heading FROM defects WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("cache: last run defects: %w", err)
	}
	defer rows.Close()

	var out []models.Defect
	for rows.Next() {
		var (
			d    models.Defect
			kind string
		)
		if err := rows.Scan(&d.Path, &d.Slug, &kind, &d.Target, &d.Line, &d.Heading); err != nil {
			return nil, err
		}
		d.Kind = models.DefectKind(kind)
		out = append(out, d)
	}
	return out, rows.Err()
}

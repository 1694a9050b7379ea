// Package store is the SQLite data access layer for run history. Each lint
// run records the documents it processed, their outcomes, and every mapped
// diagnostic, so past runs can be inspected with the history command. The
// pipeline itself never reads this data back; a run always re-scans and
// re-lints from scratch.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for run history.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the history tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id               INTEGER PRIMARY KEY,
  started_at       TIMESTAMP NOT NULL,
  language         TEXT NOT NULL,
  analyzer         TEXT NOT NULL,
  failed           BOOLEAN NOT NULL DEFAULT FALSE,
  document_count   INTEGER NOT NULL DEFAULT 0,
  diagnostic_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_documents (
  id               INTEGER PRIMARY KEY,
  run_id           INTEGER NOT NULL REFERENCES runs(id),
  path             TEXT NOT NULL,
  status           TEXT NOT NULL,
  diagnostic_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_diagnostics (
  id               INTEGER PRIMARY KEY,
  document_id      INTEGER NOT NULL REFERENCES run_documents(id),
  line             INTEGER NOT NULL,
  col              INTEGER NOT NULL,
  severity         TEXT NOT NULL,
  code             TEXT,
  message          TEXT NOT NULL,
  source_line      TEXT
);

CREATE INDEX IF NOT EXISTS idx_run_documents_run ON run_documents(run_id);
CREATE INDEX IF NOT EXISTS idx_run_diagnostics_document ON run_diagnostics(document_id);
`

// InsertRun inserts a run record and returns its ID.
func (s *Store) InsertRun(r *Run) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (started_at, language, analyzer, failed, document_count, diagnostic_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.StartedAt, r.Language, r.Analyzer, r.Failed, r.DocumentCount, r.DiagnosticCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// InsertDocument inserts a per-document record for a run and returns its ID.
func (s *Store) InsertDocument(d *DocumentRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO run_documents (run_id, path, status, diagnostic_count)
		 VALUES (?, ?, ?, ?)`,
		d.RunID, d.Path, d.Status, d.DiagnosticCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	return res.LastInsertId()
}

// InsertDiagnostic inserts a diagnostic record and returns its ID.
func (s *Store) InsertDiagnostic(d *DiagnosticRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO run_diagnostics (document_id, line, col, severity, code, message, source_line)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.DocumentID, d.Line, d.Col, d.Severity, d.Code, d.Message, d.SourceLine,
	)
	if err != nil {
		return 0, fmt.Errorf("insert diagnostic: %w", err)
	}
	return res.LastInsertId()
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, language, analyzer, failed, document_count, diagnostic_count
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Language, &r.Analyzer,
			&r.Failed, &r.DocumentCount, &r.DiagnosticCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunDocuments returns the document records for a run, in insertion order.
func (s *Store) RunDocuments(runID int64) ([]DocumentRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, path, status, diagnostic_count
		 FROM run_documents WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		var d DocumentRecord
		if err := rows.Scan(&d.ID, &d.RunID, &d.Path, &d.Status, &d.DiagnosticCount); err != nil {
			return nil, fmt.Errorf("scan run document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DocumentDiagnostics returns the diagnostics recorded for a document.
func (s *Store) DocumentDiagnostics(documentID int64) ([]DiagnosticRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, document_id, line, col, severity, code, message, source_line
		 FROM run_diagnostics WHERE document_id = ? ORDER BY id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	var diags []DiagnosticRecord
	for rows.Next() {
		var d DiagnosticRecord
		if err := rows.Scan(&d.ID, &d.DocumentID, &d.Line, &d.Col,
			&d.Severity, &d.Code, &d.Message, &d.SourceLine); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		diags = append(diags, d)
	}
	return diags, rows.Err()
}

// Prune deletes runs that started before the cutoff along with their
// documents and diagnostics. Returns the number of runs removed.
func (s *Store) Prune(before time.Time) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM run_diagnostics WHERE document_id IN
		   (SELECT d.id FROM run_documents d
		    JOIN runs r ON r.id = d.run_id WHERE r.started_at < ?)`, before); err != nil {
		return 0, fmt.Errorf("prune diagnostics: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM run_documents WHERE run_id IN
		   (SELECT id FROM runs WHERE started_at < ?)`, before); err != nil {
		return 0, fmt.Errorf("prune documents: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE started_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

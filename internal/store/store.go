// Package store persists run history in a local SQLite database. The web
// layer records one row per finished conversion; the history endpoint reads
// it back. The store is optional and the rest of the service works without
// it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/enerflow/compresor-report/internal/extract"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	succeeded INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	total_rows INTEGER NOT NULL,
	skipped_lines INTEGER NOT NULL,
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	elapsed_ms INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
`

// RunRecord is one finished conversion run.
type RunRecord struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	Rows         int       `json:"rows"`
	SkippedLines int       `json:"skipped_lines"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	ElapsedMS    int64     `json:"elapsed_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store wraps the SQLite connection. Safe for concurrent use; database/sql
// serializes access to the single connection sqlite provides.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordRun inserts one finished run. The report's aggregate counters map
// onto the row; per-document detail is not persisted.
func (s *Store) RecordRun(ctx context.Context, id, source string, rep *extract.Report, runErr error) error {
	status := "completed"
	errText := ""
	if runErr != nil {
		status = "failed"
		errText = runErr.Error()
	} else if rep.Failed > 0 {
		status = "partial"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, succeeded, failed, total_rows, skipped_lines, status, error, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, source, rep.Succeeded, rep.Failed, rep.TotalRows, rep.SkippedLines,
		status, errText, rep.Elapsed.Milliseconds(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", id, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, succeeded, failed, total_rows, skipped_lines, status, error, elapsed_ms, created_at
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.Succeeded, &r.Failed, &r.Rows,
			&r.SkippedLines, &r.Status, &r.Error, &r.ElapsedMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

package sink

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS fold_results (
    job_id       TEXT PRIMARY KEY,
    status       TEXT NOT NULL,
    sequence     TEXT NOT NULL,
    artifact     BLOB,
    energy       REAL,
    completed_at DATETIME NOT NULL
)`

// Compile-time interface satisfaction check.
var _ Sink = (*SQLiteSink)(nil)

// SQLiteSink mirrors results into a local SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens the database at dbPath and runs migrations.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createResultsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Record upserts the result row for the job id.
func (s *SQLiteSink) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fold_results (job_id, status, sequence, artifact, energy, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			sequence = excluded.sequence,
			artifact = excluded.artifact,
			energy = excluded.energy,
			completed_at = excluded.completed_at`,
		r.JobID, r.Status, r.Sequence, r.Artifact, r.Energy, r.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// Get retrieves a mirrored result by job id, or sql.ErrNoRows.
func (s *SQLiteSink) Get(ctx context.Context, jobID string) (*Result, error) {
	r := &Result{}
	err := s.db.QueryRowContext(ctx,
		`SELECT job_id, status, sequence, artifact, energy, completed_at
		FROM fold_results WHERE job_id = ?`, jobID,
	).Scan(&r.JobID, &r.Status, &r.Sequence, &r.Artifact, &r.Energy, &r.CompletedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

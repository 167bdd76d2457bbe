// Package runlog persists a journal of confound-processing runs in SQLite,
// one row per processed table, so batches can be audited after the fact.
package runlog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/llevitis/fmriprep-load-confounds/internal/timeutil"
)

// Run statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// DB wraps the journal database handle.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the journal database at path. Call MigrateUp to
// bring the schema up to date before using a Store.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

// Run is one journal row: a single confounds table processed within a batch.
type Run struct {
	RunID       string
	BatchID     string
	SourcePath  string
	OutputPath  string
	Strategies  string
	MotionModel string
	Reduction   string
	Columns     int
	Rows        int
	RowsDropped int
	Components  int
	Explained   float64
	Status      string
	Error       string
	DurationMS  int64
	CreatedAt   int64
}

// Store provides persistence for run records.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewStore creates a Store on an open journal database.
func NewStore(db *DB) *Store {
	return &Store{db: db.DB, clock: timeutil.RealClock{}}
}

// Insert persists a run record. Missing RunID and CreatedAt fields are
// filled in.
func (s *Store) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	var outputPath, errMsg interface{}
	if run.OutputPath != "" {
		outputPath = run.OutputPath
	}
	if run.Error != "" {
		errMsg = run.Error
	}

	err := retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO confound_runs (
				run_id, batch_id, source_path, output_path,
				strategies, motion_model, reduction,
				column_count, row_count, rows_dropped, components, explained,
				status, error, duration_ms, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.BatchID, run.SourcePath, outputPath,
			run.Strategies, run.MotionModel, run.Reduction,
			run.Columns, run.Rows, run.RowsDropped, run.Components, run.Explained,
			run.Status, errMsg, run.DurationMS, run.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.RunID, err)
	}
	return nil
}

// ListByBatch returns all runs of a batch, oldest first.
func (s *Store) ListByBatch(batchID string) ([]*Run, error) {
	rows, err := s.db.Query(selectRunColumns+`
		FROM confound_runs
		WHERE batch_id = ?
		ORDER BY created_at ASC`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch %s: %w", batchID, err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// Recent returns the most recent runs across all batches, newest first.
func (s *Store) Recent(limit int) ([]*Run, error) {
	rows, err := s.db.Query(selectRunColumns+`
		FROM confound_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

const selectRunColumns = `
	SELECT run_id, batch_id, source_path, output_path,
	       strategies, motion_model, reduction,
	       column_count, row_count, rows_dropped, components, explained,
	       status, error, duration_ms, created_at`

func collectRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var r Run
	var outputPath, errMsg sql.NullString
	if err := rows.Scan(
		&r.RunID, &r.BatchID, &r.SourcePath, &outputPath,
		&r.Strategies, &r.MotionModel, &r.Reduction,
		&r.Columns, &r.Rows, &r.RowsDropped, &r.Components, &r.Explained,
		&r.Status, &errMsg, &r.DurationMS, &r.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.OutputPath = outputPath.String
	r.Error = errMsg.String
	return &r, nil
}

const busyMaxAttempts = 5

// isSQLiteBusy checks if an error is a transient SQLITE_BUSY lock failure.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// retryOnBusy retries fn with exponential backoff while it fails with a
// busy error. Other errors fail immediately.
func retryOnBusy(fn func() error) error {
	delay := 10 * time.Millisecond
	var err error
	for attempt := 1; attempt <= busyMaxAttempts; attempt++ {
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		if attempt < busyMaxAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("database busy after %d attempts: %w", busyMaxAttempts, err)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists pipeline run history in a SQLite database so
// past verdicts can be inspected after the fact.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/conflict-monitor/internal/pipeline"
	"github.com/pdiddy/conflict-monitor/pkg/types"
)

const dbFile = "history.db"

// Store manages the run-history SQLite database.
type Store struct {
	db      *sql.DB
	maxRuns int
}

// Open opens or creates the history database at archiveDir/history.db and
// bootstraps the schema.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.ArchiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.ArchiveDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxRuns := cfg.MaxRuns
	if maxRuns <= 0 {
		maxRuns = 10
	}

	s := &Store{db: db, maxRuns: maxRuns}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			processed INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			filename TEXT NOT NULL,
			date TEXT,
			verdict TEXT NOT NULL,
			error_count INTEGER NOT NULL,
			warning_count INTEGER NOT NULL,
			findings TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_run_id ON snapshots(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun persists one pipeline run and its per-snapshot outcomes in a
// single transaction, returning the new run id.
func (s *Store) RecordRun(result pipeline.Result) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (started_at, finished_at, processed, passed, failed) VALUES (?, ?, ?, ?, ?)`,
		result.StartedAt.UTC().Format(time.RFC3339),
		result.FinishedAt.UTC().Format(time.RFC3339),
		result.Processed, result.Passed, result.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, o := range result.Outcomes {
		findings := ""
		if len(o.Result.Errors) > 0 || len(o.Result.Warnings) > 0 {
			data, err := json.Marshal(o.Result)
			if err != nil {
				return 0, fmt.Errorf("marshaling findings for %s: %w", o.Filename, err)
			}
			findings = string(data)
		}

		date := ""
		if !o.Date.IsZero() {
			date = o.Date.Format("2006-01-02")
		}

		if _, err := tx.Exec(
			`INSERT INTO snapshots (run_id, filename, date, verdict, error_count, warning_count, findings)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, o.Filename, date, string(o.Verdict),
			len(o.Result.Errors), len(o.Result.Warnings), findings,
		); err != nil {
			return 0, fmt.Errorf("inserting snapshot %s: %w", o.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Passed     int
	Failed     int
}

// SnapshotRecord is one row of the snapshots table.
type SnapshotRecord struct {
	RunID        int64
	Filename     string
	Date         string
	Verdict      types.Verdict
	ErrorCount   int
	WarningCount int
	Findings     string
}

// RecentRuns returns up to n runs, newest first. When n is 0 the store's
// configured maximum is used.
func (s *Store) RecentRuns(n int) ([]RunRecord, error) {
	if n <= 0 {
		n = s.maxRuns
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, processed, passed, failed
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Processed, &r.Passed, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunSnapshots returns the per-snapshot outcomes of one run in processing order.
func (s *Store) RunSnapshots(runID int64) ([]SnapshotRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, filename, date, verdict, error_count, warning_count, findings
		 FROM snapshots WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		var verdict string
		if err := rows.Scan(&rec.RunID, &rec.Filename, &rec.Date, &verdict,
			&rec.ErrorCount, &rec.WarningCount, &rec.Findings); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		rec.Verdict = types.Verdict(verdict)
		snaps = append(snaps, rec)
	}
	return snaps, rows.Err()
}

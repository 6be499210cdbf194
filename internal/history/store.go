// Package history persists completed runs and their check outcomes to a
// local SQLite database.
//
// History is an audit trail, not a cache: a stored outcome is never fed back
// into a later search, since the project under test changes between runs. The
// recorder is wired into the run as a passive reporter and records exactly
// what the live reporters were told.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// RunOutcome is the stored terminal state of a run.
type RunOutcome string

const (
	// OutcomeSuccess means the run finished with a satisfying version.
	OutcomeSuccess RunOutcome = "success"
	// OutcomeFailure means the run finished with no satisfying version.
	OutcomeFailure RunOutcome = "failure"
	// OutcomeAborted means the run never reached a terminal event.
	OutcomeAborted RunOutcome = "aborted"
)

// Run is one stored invocation.
type Run struct {
	ID            string
	Intent        string
	ProjectDir    string
	Command       string
	StartedAt     time.Time
	FinishedAt    time.Time
	Outcome       RunOutcome
	ResultVersion string
}

// Check is one stored toolchain check.
type Check struct {
	Version   string
	Passed    bool
	CheckedAt time.Time
}

// Store manages the SQLite run history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// ":memory:" is accepted for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("history: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun records the start of a run and returns its id.
func (s *Store) BeginRun(intent, projectDir, command string) (string, error) {
	id := uuid.New().String()

	_, err := s.db.Exec(
		`INSERT INTO runs (id, intent, project_dir, command, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, intent, projectDir, command, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("history: begin run: %w", err)
	}
	return id, nil
}

// RecordCheck appends one check outcome to a run.
func (s *Store) RecordCheck(runID, version string, passed bool) error {
	_, err := s.db.Exec(
		`INSERT INTO checks (run_id, version, passed, checked_at) VALUES (?, ?, ?, ?)`,
		runID, version, passed, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("history: record check: %w", err)
	}
	return nil
}

// FinishRun records the terminal state of a run. resultVersion may be empty
// for failed runs.
func (s *Store) FinishRun(runID string, outcome RunOutcome, resultVersion string) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, outcome = ?, result_version = ? WHERE id = ?`,
		time.Now().UTC(), string(outcome), resultVersion, runID,
	)
	if err != nil {
		return fmt.Errorf("history: finish run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, intent, project_dir, command, started_at,
		        COALESCE(finished_at, started_at), outcome, COALESCE(result_version, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var outcome string
		if err := rows.Scan(&r.ID, &r.Intent, &r.ProjectDir, &r.Command,
			&r.StartedAt, &r.FinishedAt, &outcome, &r.ResultVersion); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.Outcome = RunOutcome(outcome)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ChecksForRun returns the checks of a run in execution order.
func (s *Store) ChecksForRun(runID string) ([]Check, error) {
	rows, err := s.db.Query(
		`SELECT version, passed, checked_at FROM checks WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query checks: %w", err)
	}
	defer rows.Close()

	var checks []Check
	for rows.Next() {
		var c Check
		if err := rows.Scan(&c.Version, &c.Passed, &c.CheckedAt); err != nil {
			return nil, fmt.Errorf("history: scan check: %w", err)
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

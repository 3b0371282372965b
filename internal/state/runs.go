package state

import (
	"database/sql"
	"fmt"
	"time"
)

// RunStatus represents the status of a recorded run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunAborted   RunStatus = "aborted"
)

// Run is one recorded simulation: which models talked, under which
// scenario, and where its JSONL log landed.
type Run struct {
	ExperimentID string     `json:"experiment_id"`
	Scenario     string     `json:"scenario"`
	ModelA       string     `json:"model_a"`
	ModelB       string     `json:"model_b"`
	NumTurns     int        `json:"num_turns"`
	Entries      int        `json:"entries"`
	Status       RunStatus  `json:"status"`
	LogPath      string     `json:"log_path"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at"`
}

// CreateRun records a new run in the index.
func (db *DB) CreateRun(r *Run) error {
	_, err := db.Exec(`
		INSERT INTO runs (experiment_id, scenario, model_a, model_b, num_turns, entries, status, log_path, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ExperimentID, r.Scenario, r.ModelA, r.ModelB, r.NumTurns, r.Entries, string(r.Status), r.LogPath, formatTime(r.StartedAt), nil)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by experiment ID. Returns nil when no run
// with that ID exists.
func (db *DB) GetRun(experimentID string) (*Run, error) {
	row := db.QueryRow(`
		SELECT experiment_id, scenario, model_a, model_b, num_turns, entries, status, log_path, started_at, finished_at
		FROM runs WHERE experiment_id = ?
	`, experimentID)

	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// FinishRun marks a run as finished with the given status and entry count.
func (db *DB) FinishRun(experimentID string, status RunStatus, entries int, finishedAt time.Time) error {
	_, err := db.Exec(`
		UPDATE runs SET status = ?, entries = ?, finished_at = ?
		WHERE experiment_id = ?
	`, string(status), entries, formatTime(finishedAt), experimentID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// DeleteRun deletes a run by experiment ID.
func (db *DB) DeleteRun(experimentID string) error {
	_, err := db.Exec("DELETE FROM runs WHERE experiment_id = ?", experimentID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// ListRuns lists runs most recent first, optionally filtered by status.
// A limit of 0 means no limit.
func (db *DB) ListRuns(status *RunStatus, limit int) ([]Run, error) {
	query := `
		SELECT experiment_id, scenario, model_a, model_b, num_turns, entries, status, log_path, started_at, finished_at
		FROM runs`
	var args []any

	if status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// ListRunsByScenario lists runs for a scenario, most recent first.
func (db *DB) ListRunsByScenario(scenario string) ([]Run, error) {
	rows, err := db.Query(`
		SELECT experiment_id, scenario, model_a, model_b, num_turns, entries, status, log_path, started_at, finished_at
		FROM runs WHERE scenario = ? ORDER BY started_at DESC
	`, scenario)
	if err != nil {
		return nil, fmt.Errorf("list runs by scenario: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var logPath sql.NullString
	var startedAt string
	var finishedAt sql.NullString
	if err := s.Scan(&r.ExperimentID, &r.Scenario, &r.ModelA, &r.ModelB, &r.NumTurns, &r.Entries, &r.Status, &logPath, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	if logPath.Valid {
		r.LogPath = logPath.String
	}
	r.StartedAt, _ = parseTime(startedAt)
	r.FinishedAt = parseNullableTime(finishedAt)
	return &r, nil
}

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Fixed-width UTC layout so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) StartRun(run Run) error {
	if run.Status == "" {
		run.Status = StatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO runs (id, pipeline_id, task_type, run_date, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.PipelineID, run.TaskType, run.RunDate, run.Status, formatTime(run.StartedAt))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

func (r *runRepository) FinishRun(id string, status string, rowCount int, outputPath string, errMsg string) error {
	result, err := r.db.Exec(`
		UPDATE runs
		SET status = ?, row_count = ?, output_path = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, status, rowCount, outputPath, errMsg, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check finished run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

func (r *runRepository) GetRun(id string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT id, pipeline_id, task_type, run_date, status, row_count, output_path, error, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs first.
func (r *runRepository) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, pipeline_id, task_type, run_date, status, row_count, output_path, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}

	return runs, nil
}

func (r *runRepository) GetRunCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get run count: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt sql.NullString

	err := s.Scan(
		&run.ID, &run.PipelineID, &run.TaskType, &run.RunDate, &run.Status,
		&run.RowCount, &run.OutputPath, &run.Error, &startedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return nil, err
		}
		run.FinishedAt = &t
	}

	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", value, err)
	}
	return t, nil
}

package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "ledger", "runs.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewConnection_CreatesDirectoryAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "runs.db")

	db, err := NewConnection(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected database file to exist: %v", err)
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("Expected clean version 1, got %d (dirty=%v)", version, dirty)
	}
}

func TestNewConnection_InvalidPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := NewConnection(filepath.Join(file, "runs.db")); err == nil {
		t.Error("Expected error when the parent path is a file")
	}
}

func TestRunRepository_Lifecycle(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	started := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	err := repo.StartRun(Run{
		ID:         "run-1",
		PipelineID: "pipe-1",
		TaskType:   "extract_links",
		RunDate:    "2024-05-01",
		StartedAt:  started,
	})
	if err != nil {
		t.Fatalf("Failed to start run: %v", err)
	}

	run, err := repo.GetRun("run-1")
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if run.Status != StatusRunning || run.FinishedAt != nil {
		t.Errorf("Expected a running run, got status '%s'", run.Status)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("Expected started_at %v, got %v", started, run.StartedAt)
	}

	if err := repo.FinishRun("run-1", StatusSuccess, 12, "data/raw/2024-05-01/01_all_links.csv", ""); err != nil {
		t.Fatalf("Failed to finish run: %v", err)
	}

	run, _ = repo.GetRun("run-1")
	if run.Status != StatusSuccess || run.RowCount != 12 {
		t.Errorf("Expected success with 12 rows, got '%s' with %d", run.Status, run.RowCount)
	}
	if run.OutputPath != "data/raw/2024-05-01/01_all_links.csv" {
		t.Errorf("Unexpected output path: %s", run.OutputPath)
	}
	if run.FinishedAt == nil {
		t.Error("Expected finished_at to be set")
	}
}

func TestRunRepository_Missing(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run, err := repo.GetRun("nope")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if run != nil {
		t.Errorf("Expected nil for missing run, got %+v", run)
	}

	if err := repo.FinishRun("nope", StatusFailed, 0, "", "boom"); err == nil {
		t.Error("Expected error when finishing an unknown run")
	}
}

func TestRunRepository_ListAndCount(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		err := repo.StartRun(Run{
			ID:         id,
			PipelineID: "pipe",
			TaskType:   "classify_events",
			RunDate:    "2024-05-01",
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Failed to start run %s: %v", id, err)
		}
	}

	runs, err := repo.ListRuns(2)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("Expected newest two runs [c b], got %+v", runs)
	}

	count, err := repo.GetRunCount()
	if err != nil {
		t.Fatalf("Failed to count runs: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 runs, got %d", count)
	}
}

func TestRun_Duration(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	finish := start.Add(90 * time.Second)

	if (Run{StartedAt: start}).Duration() != 0 {
		t.Error("Expected zero duration for an unfinished run")
	}
	if d := (Run{StartedAt: start, FinishedAt: &finish}).Duration(); d != 90*time.Second {
		t.Errorf("Expected 90s, got %v", d)
	}
}

package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/event-comb/app/classify"
	"github.com/lysyi3m/event-comb/app/run"
	"github.com/lysyi3m/event-comb/app/store"
)

type ClassifyEventsTask struct {
	Task
	pinned     run.Stamp
	stamp      run.Stamp
	candidates CandidateSource
	classifier *classify.Classifier
	writer     *store.Writer
}

// NewClassifyEventsTask takes the run stamp when the task starts unless
// pinned is set. Rows and the output partition always share that stamp.
func NewClassifyEventsTask(pinned run.Stamp, candidates CandidateSource, classifier *classify.Classifier, writer *store.Writer) *ClassifyEventsTask {
	task := &ClassifyEventsTask{
		Task:       NewTask(TaskTypeClassifyEvents, ""),
		pinned:     pinned,
		candidates: candidates,
		classifier: classifier,
		writer:     writer,
	}
	if !pinned.IsZero() {
		task.RunDate = pinned.Date()
	}
	return task
}

func (t *ClassifyEventsTask) Start() {
	t.Task.Start()
	t.stamp = t.pinned.OrNow()
	t.RunDate = t.stamp.Date()
}

func (t *ClassifyEventsTask) Execute(ctx context.Context) error {
	candidates, err := t.candidates()
	if err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}

	if t.stamp.IsZero() {
		t.stamp = t.pinned.OrNow()
		t.RunDate = t.stamp.Date()
	}

	rows, err := t.classifier.RunAt(ctx, t.stamp, candidates)
	if err != nil {
		t.savePartial(rows)
		return fmt.Errorf("failed to classify events: %w", err)
	}

	path, err := t.writer.WriteEvents(t.RunDate, store.EventsFilename, rows)
	if err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}

	t.RowCount = len(rows)
	t.OutputPath = path

	fmt.Printf("Saved %d rows to: %s\n", len(rows), path)

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"candidates", len(candidates),
		"rows", len(rows))

	return nil
}

// savePartial keeps the rows classified before a failure next to the
// regular output. The complete table is never written in that case.
func (t *ClassifyEventsTask) savePartial(rows []classify.EventRecord) {
	if len(rows) == 0 {
		return
	}

	path, err := t.writer.WriteEvents(t.RunDate, store.PartialName(store.EventsFilename), rows)
	if err != nil {
		slog.Error("Failed to save partial events", "rows", len(rows), "error", err)
		return
	}

	t.RowCount = len(rows)
	t.OutputPath = path

	slog.Warn("Partial events saved", "rows", len(rows), "path", path)
}

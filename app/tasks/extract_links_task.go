package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/event-comb/app/links"
	"github.com/lysyi3m/event-comb/app/store"
)

type ExtractLinksTask struct {
	Task
	targets    []links.Target
	normalizer *links.Normalizer
	source     links.Source
	writer     *store.Writer

	// Rows holds the persisted table once Execute succeeds.
	Rows []links.Record
}

func NewExtractLinksTask(targets []links.Target, normalizer *links.Normalizer, source links.Source, writer *store.Writer) *ExtractLinksTask {
	return &ExtractLinksTask{
		Task:       NewTask(TaskTypeExtractLinks, normalizer.Stamp().Date()),
		targets:    targets,
		normalizer: normalizer,
		source:     source,
		writer:     writer,
	}
}

func (t *ExtractLinksTask) Execute(ctx context.Context) error {
	rows, err := t.normalizer.RunTargets(ctx, t.targets, t.source)
	if err != nil {
		return fmt.Errorf("failed to extract links: %w", err)
	}

	path, err := t.writer.WriteLinks(t.RunDate, store.LinksFilename, rows)
	if err != nil {
		return fmt.Errorf("failed to save links: %w", err)
	}

	t.Rows = rows
	t.RowCount = len(rows)
	t.OutputPath = path

	fmt.Printf("Saved %d rows to: %s\n", len(rows), path)

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"homepages", len(t.targets),
		"rows", len(rows))

	return nil
}

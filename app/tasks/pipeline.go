package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lysyi3m/event-comb/app/database"
)

// Pipeline executes tasks sequentially and records each one in the run
// ledger. The first failing task stops the pipeline.
type Pipeline struct {
	id      string
	runRepo database.RunRepository
	tasks   []TaskInterface
}

// NewPipeline accepts a nil runRepo, in which case nothing is recorded.
func NewPipeline(runRepo database.RunRepository) *Pipeline {
	return &Pipeline{
		id:      uuid.NewString(),
		runRepo: runRepo,
	}
}

func (p *Pipeline) ID() string {
	return p.id
}

func (p *Pipeline) Add(task TaskInterface) {
	p.tasks = append(p.tasks, task)
}

func (p *Pipeline) Run(ctx context.Context) error {
	for _, task := range p.tasks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		task.Start()
		p.recordStart(task)

		slog.Debug("Task started", "type", task.GetType(), "id", task.GetID(), "run_date", task.GetRunDate())

		err := task.Execute(ctx)
		p.recordFinish(task, err)

		if err != nil {
			slog.Error("Task failed",
				"type", task.GetType(),
				"id", task.GetID(),
				"duration", task.GetDuration(),
				"error", err)
			return fmt.Errorf("%s: %w", task.GetType(), err)
		}
	}

	return nil
}

func (p *Pipeline) recordStart(task TaskInterface) {
	if p.runRepo == nil {
		return
	}

	err := p.runRepo.StartRun(database.Run{
		ID:         task.GetID(),
		PipelineID: p.id,
		TaskType:   string(task.GetType()),
		RunDate:    task.GetRunDate(),
	})
	if err != nil {
		slog.Warn("Failed to record run start", "type", task.GetType(), "id", task.GetID(), "error", err)
	}
}

func (p *Pipeline) recordFinish(task TaskInterface, taskErr error) {
	if p.runRepo == nil {
		return
	}

	status, errMsg := database.StatusSuccess, ""
	if taskErr != nil {
		status, errMsg = database.StatusFailed, taskErr.Error()
	}

	rowCount, outputPath := task.GetResult()
	if err := p.runRepo.FinishRun(task.GetID(), status, rowCount, outputPath, errMsg); err != nil {
		slog.Warn("Failed to record run finish", "type", task.GetType(), "id", task.GetID(), "error", err)
	}
}

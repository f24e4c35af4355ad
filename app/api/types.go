package api

import (
	"time"

	"github.com/lysyi3m/event-comb/app/database"
)

type RowsReader func(path string) ([]map[string]string, error)

type Handler struct {
	runRepo  database.RunRepository
	readRows RowsReader
	version  string
}

type runResponse struct {
	ID         string     `json:"id"`
	PipelineID string     `json:"pipeline_id"`
	TaskType   string     `json:"task_type"`
	RunDate    string     `json:"run_date"`
	Status     string     `json:"status"`
	RowCount   int        `json:"row_count"`
	OutputPath string     `json:"output_path,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Duration   string     `json:"duration,omitempty"`
}

func newRunResponse(run database.Run) runResponse {
	response := runResponse{
		ID:         run.ID,
		PipelineID: run.PipelineID,
		TaskType:   run.TaskType,
		RunDate:    run.RunDate,
		Status:     run.Status,
		RowCount:   run.RowCount,
		OutputPath: run.OutputPath,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if run.FinishedAt != nil {
		response.Duration = run.Duration().String()
	}
	return response
}

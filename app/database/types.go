package database

import (
	"time"
)

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Run is one stage execution recorded in the ledger.
type Run struct {
	ID         string
	PipelineID string // Shared by the stages of one command invocation
	TaskType   string
	RunDate    string
	Status     string
	RowCount   int
	OutputPath string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

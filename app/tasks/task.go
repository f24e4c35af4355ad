package tasks

import (
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeExtractLinks   TaskType = "extract_links"
	TaskTypeClassifyEvents TaskType = "classify_events"
)

type Task struct {
	ID         string
	Type       TaskType
	RunDate    string
	StartedAt  *time.Time
	RowCount   int
	OutputPath string
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetRunDate() string {
	return t.RunDate
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

// GetResult returns the number of rows written and where they went.
func (t *Task) GetResult() (int, string) {
	return t.RowCount, t.OutputPath
}

func NewTask(taskType TaskType, runDate string) Task {
	return Task{
		ID:      uuid.NewString(),
		Type:    taskType,
		RunDate: runDate,
	}
}

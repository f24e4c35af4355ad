package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/event-comb/app/classify"
)

// TaskInterface is one pipeline stage. Tasks run once, in the order they
// were added to a Pipeline.
type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetRunDate() string
	GetResult() (int, string)
	Start()
	GetDuration() time.Duration
}

// CandidateSource supplies classification input when the task executes,
// which lets a classify stage consume the rows of a links stage that ran
// before it.
type CandidateSource func() ([]classify.Candidate, error)

package database

type RunRepository interface {
	StartRun(run Run) error
	FinishRun(id string, status string, rowCount int, outputPath string, errMsg string) error

	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]Run, error)
	GetRunCount() (int, error)
}

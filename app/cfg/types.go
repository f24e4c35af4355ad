package cfg

import (
	"time"

	"github.com/lysyi3m/event-comb/app/run"
)

const (
	CommandLinks    = "links"
	CommandClassify = "classify"
	CommandRun      = "run"
	CommandRuns     = "runs"
	CommandServe    = "serve"
)

type Cfg struct {
	// Selected command and its arguments
	Command string
	URLs    []string

	// Storage
	OutputDir  string
	SitesDir   string
	LedgerPath string

	// HTTP fetching
	UserAgent      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	ContentLimit   int

	// Language model
	LLMProvider string
	LLMModel    string
	LLMEndpoint string
	LLMAPIKey   string

	// Stage options
	RunStamp       run.Stamp // zero unless pinned with --run-timestamp
	KeepSameDomain bool
	Limit          int
	Input          string

	// Browse API
	Port         string
	APIAccessKey string

	// Application metadata
	Debug   bool
	Version string
}

package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/lysyi3m/event-comb/app/fetch"
	"github.com/lysyi3m/event-comb/app/run"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type urlArgs struct {
	URLs []string `positional-arg-name:"URL" description:"Homepage URLs, processed before the sites directory"`
}

type linksCommand struct {
	AllDomains bool    `long:"all-domains" description:"Keep links pointing to other domains"`
	Args       urlArgs `positional-args:"yes"`
}

type classifyCommand struct {
	Input string `long:"input" short:"i" description:"CSV with url,homepage_url or event_url_abs,page_url columns (default: the links table of the run date)"`
	Limit int    `long:"limit" default:"50" description:"Maximum number of pages to classify"`
}

type runCommand struct {
	AllDomains bool    `long:"all-domains" description:"Keep links pointing to other domains"`
	Limit      int     `long:"limit" default:"50" description:"Maximum number of pages to classify"`
	Args       urlArgs `positional-args:"yes"`
}

type runsCommand struct {
	Limit int `long:"limit" default:"20" description:"Number of ledger entries to show"`
}

type serveCommand struct {
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
}

type rawCfg struct {
	// Storage
	OutputDir  string `long:"output-dir" env:"OUTPUT_DIR" default:"./data/raw" description:"Root directory for run-date partitioned output"`
	SitesDir   string `long:"sites-dir" env:"SITES_DIR" default:"./sites" description:"Directory containing site configuration files"`
	LedgerPath string `long:"ledger" env:"LEDGER_PATH" default:"./data/runs.db" description:"SQLite run ledger path"`

	// HTTP fetching
	UserAgent      string        `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests (default: desktop browser)"`
	ConnectTimeout time.Duration `long:"connect-timeout" env:"CONNECT_TIMEOUT" default:"10s" description:"TCP connect timeout"`
	ReadTimeout    time.Duration `long:"read-timeout" env:"READ_TIMEOUT" default:"30s" description:"Response read timeout"`
	ContentLimit   int           `long:"content-limit" env:"CONTENT_LIMIT" default:"2000" description:"Characters of page text sent to the model"`

	// Language model
	LLMProvider     string `long:"llm-provider" env:"LLM_PROVIDER" default:"openai" choice:"openai" choice:"anthropic" description:"Language model provider"`
	LLMModel        string `long:"llm-model" env:"LLM_MODEL" default:"gpt-4.1-mini" description:"Model name"`
	LLMEndpoint     string `long:"llm-endpoint" env:"LLM_ENDPOINT" description:"Base URL of an OpenAI-compatible or Anthropic endpoint"`
	OpenAIAPIKey    string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key"`
	AnthropicAPIKey string `long:"anthropic-api-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key"`

	RunTimestamp string `long:"run-timestamp" env:"RUN_TIMESTAMP" description:"Pin the run timestamp (RFC 3339 or YYYY-MM-DD)"`
	Debug        bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Links    linksCommand    `command:"links" description:"Harvest candidate links from homepages"`
	Classify classifyCommand `command:"classify" description:"Classify candidate pages with the language model"`
	Run      runCommand      `command:"run" description:"Harvest links and classify them in one pass"`
	Runs     runsCommand     `command:"runs" description:"Show recent entries of the run ledger"`
	Serve    serveCommand    `command:"serve" description:"Serve the run ledger and output tables over HTTP"`
}

// Load reads .env (when present), the environment and args. It returns
// nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if parser.Active == nil {
		return nil, fmt.Errorf("no command given")
	}

	cfg := &Cfg{
		Command:        parser.Active.Name,
		OutputDir:      raw.OutputDir,
		SitesDir:       raw.SitesDir,
		LedgerPath:     raw.LedgerPath,
		UserAgent:      cmp.Or(raw.UserAgent, fetch.DefaultUserAgent),
		ConnectTimeout: raw.ConnectTimeout,
		ReadTimeout:    raw.ReadTimeout,
		ContentLimit:   raw.ContentLimit,
		LLMProvider:    raw.LLMProvider,
		LLMModel:       raw.LLMModel,
		LLMEndpoint:    raw.LLMEndpoint,
		KeepSameDomain: true,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	switch raw.LLMProvider {
	case "anthropic":
		cfg.LLMAPIKey = raw.AnthropicAPIKey
	default:
		cfg.LLMAPIKey = raw.OpenAIAPIKey
	}

	switch cfg.Command {
	case CommandLinks:
		cfg.URLs = raw.Links.Args.URLs
		cfg.KeepSameDomain = !raw.Links.AllDomains
	case CommandClassify:
		cfg.Input = raw.Classify.Input
		cfg.Limit = raw.Classify.Limit
	case CommandRun:
		cfg.URLs = raw.Run.Args.URLs
		cfg.KeepSameDomain = !raw.Run.AllDomains
		cfg.Limit = raw.Run.Limit
	case CommandRuns:
		cfg.Limit = raw.Runs.Limit
	case CommandServe:
		cfg.Port = raw.Serve.Port
		cfg.APIAccessKey = raw.Serve.APIAccessKey
	}

	if raw.RunTimestamp != "" {
		stamp, err := run.Parse(raw.RunTimestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration: %w", err)
		}
		cfg.RunStamp = stamp
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.ConnectTimeout <= 0 || cfg.ReadTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if cfg.ContentLimit <= 0 {
		return fmt.Errorf("content limit must be positive")
	}
	switch cfg.Command {
	case CommandClassify, CommandRun, CommandRuns:
		if cfg.Limit < 1 {
			return fmt.Errorf("limit must be at least 1")
		}
	}
	return nil
}

package cfg

import (
	"os"
	"testing"
	"time"

	"github.com/lysyi3m/event-comb/app/fetch"
)

var envKeys = []string{
	"OUTPUT_DIR", "SITES_DIR", "LEDGER_PATH", "USER_AGENT",
	"CONNECT_TIMEOUT", "READ_TIMEOUT", "CONTENT_LIMIT",
	"LLM_PROVIDER", "LLM_MODEL", "LLM_ENDPOINT",
	"OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	"RUN_TIMESTAMP", "DEBUG", "PORT", "API_ACCESS_KEY",
}

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	original := Version
	defer func() { Version = original }()

	Version = ""
	if GetVersion() != "unknown" {
		t.Errorf("Expected 'unknown', got '%s'", GetVersion())
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"links"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Command != CommandLinks {
		t.Errorf("Expected command '%s', got '%s'", CommandLinks, cfg.Command)
	}
	if cfg.OutputDir != "./data/raw" {
		t.Errorf("Expected output dir './data/raw', got '%s'", cfg.OutputDir)
	}
	if cfg.SitesDir != "./sites" {
		t.Errorf("Expected sites dir './sites', got '%s'", cfg.SitesDir)
	}
	if cfg.LedgerPath != "./data/runs.db" {
		t.Errorf("Expected ledger './data/runs.db', got '%s'", cfg.LedgerPath)
	}
	if cfg.UserAgent != fetch.DefaultUserAgent {
		t.Errorf("Expected default user agent, got '%s'", cfg.UserAgent)
	}
	if cfg.ConnectTimeout != 10*time.Second || cfg.ReadTimeout != 30*time.Second {
		t.Errorf("Expected 10s/30s timeouts, got %v/%v", cfg.ConnectTimeout, cfg.ReadTimeout)
	}
	if cfg.ContentLimit != 2000 {
		t.Errorf("Expected content limit 2000, got %d", cfg.ContentLimit)
	}
	if cfg.LLMProvider != "openai" || cfg.LLMModel != "gpt-4.1-mini" {
		t.Errorf("Expected openai/gpt-4.1-mini, got %s/%s", cfg.LLMProvider, cfg.LLMModel)
	}
	if !cfg.KeepSameDomain {
		t.Error("Expected same-domain filtering by default")
	}
	if !cfg.RunStamp.IsZero() {
		t.Error("Expected no pinned run timestamp")
	}
	if len(cfg.URLs) != 0 {
		t.Errorf("Expected no URLs, got %v", cfg.URLs)
	}
}

func TestLoad_LinksArguments(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"--output-dir", "/tmp/out", "links", "--all-domains", "https://a.test/", "https://b.test/"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("Expected output dir '/tmp/out', got '%s'", cfg.OutputDir)
	}
	if cfg.KeepSameDomain {
		t.Error("Expected --all-domains to disable same-domain filtering")
	}
	if len(cfg.URLs) != 2 || cfg.URLs[0] != "https://a.test/" || cfg.URLs[1] != "https://b.test/" {
		t.Errorf("Unexpected URLs: %v", cfg.URLs)
	}
}

func TestLoad_ClassifyOptions(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"classify"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Limit != 50 || cfg.Input != "" {
		t.Errorf("Expected limit 50 and no input, got %d and '%s'", cfg.Limit, cfg.Input)
	}

	cfg, err = Load([]string{"classify", "--input", "links.csv", "--limit", "5"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Limit != 5 || cfg.Input != "links.csv" {
		t.Errorf("Expected limit 5 and input 'links.csv', got %d and '%s'", cfg.Limit, cfg.Input)
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_MODEL", "claude-test")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("READ_TIMEOUT", "5s")
	t.Setenv("PORT", "9090")

	cfg, err := Load([]string{"serve"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.LLMProvider != "anthropic" || cfg.LLMModel != "claude-test" {
		t.Errorf("Expected anthropic/claude-test, got %s/%s", cfg.LLMProvider, cfg.LLMModel)
	}
	if cfg.LLMAPIKey != "anthropic-key" {
		t.Errorf("Expected the Anthropic key to be selected, got '%s'", cfg.LLMAPIKey)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("Expected read timeout 5s, got %v", cfg.ReadTimeout)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
}

func TestLoad_RunTimestamp(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"--run-timestamp", "2024-05-01T10:30:00Z", "run"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.RunStamp.Date() != "2024-05-01" {
		t.Errorf("Expected run date '2024-05-01', got '%s'", cfg.RunStamp.Date())
	}

	if _, err := Load([]string{"--run-timestamp", "yesterday", "run"}); err == nil {
		t.Error("Expected error for an unparseable run timestamp")
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", []string{}},
		{"unknown command", []string{"crawl"}},
		{"unknown provider", []string{"--llm-provider", "mistral", "run"}},
		{"zero content limit", []string{"--content-limit", "0", "run"}},
		{"negative limit", []string{"classify", "--limit", "-1"}},
		{"zero classify limit", []string{"classify", "--limit", "0"}},
		{"zero run limit", []string{"run", "--limit", "0"}},
		{"zero runs limit", []string{"runs", "--limit", "0"}},
		{"bad duration", []string{"--read-timeout", "soon", "run"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.args)
			if err == nil {
				t.Errorf("Expected error, got config %+v", cfg)
			}
		})
	}
}

func TestLoad_Help(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"--help"})
	if err != nil || cfg != nil {
		t.Errorf("Expected nil, nil for help, got %v, %v", cfg, err)
	}
}

// Package llm wraps the language model providers used for page classification.
package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DefaultModel     = "gpt-4.1-mini"
	defaultMaxTokens = 1024
)

// Client sends one prompt and returns the text of the reply.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

// Request is a single system + user exchange. With JSON set the reply is
// reduced to the first JSON value it contains.
type Request struct {
	System      string
	User        string
	Temperature float32
	JSON        bool
	MaxTokens   int
}

type Config struct {
	Provider string
	Endpoint string // Base URL override, empty for the provider default
	Model    string
	APIKey   string
}

// NewClient builds the client for cfg.Provider.
func NewClient(cfg Config) (Client, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(cfg)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}

func finish(req Request, content string) (string, error) {
	if !req.JSON {
		return content, nil
	}
	return ExtractJSON(content)
}

package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lysyi3m/event-comb/app/llm"
)

// LLMModel sends ModelRequests to a language model with SystemPrompt, in JSON
// mode at temperature 0.
type LLMModel struct {
	client llm.Client
	prompt string
}

func NewLLMModel(client llm.Client) *LLMModel {
	return &LLMModel{client: client, prompt: SystemPrompt}
}

func (m *LLMModel) Classify(ctx context.Context, req ModelRequest) (string, error) {
	payload, err := encodeRequest(req)
	if err != nil {
		return "", err
	}

	return m.client.Complete(ctx, llm.Request{
		System:      m.prompt,
		User:        payload,
		Temperature: 0,
		JSON:        true,
	})
}

// encodeRequest keeps non-ASCII text and HTML characters as is.
func encodeRequest(req ModelRequest) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(req); err != nil {
		return "", fmt.Errorf("failed to encode model request: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

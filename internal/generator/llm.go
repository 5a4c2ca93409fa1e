// Package generator produces article text from a language model, with a
// deterministic local fallback.
package generator

import (
	"context"
	"time"
)

// CompletionClient abstracts the chat-completion backend so it can be mocked.
type CompletionClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Prompt is a two-message chat request.
type Prompt struct {
	System string
	User   string
}

// Defaults for the Hugging Face router.
const (
	DefaultModel       = "deepseek-ai/DeepSeek-V3.2"
	DefaultBaseURL     = "https://router.huggingface.co/v1"
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second
)

// Settings configures a RouterClient.
type Settings struct {
	Token       string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
	Timeout     time.Duration
}

// withDefaults fills zero fields from the package defaults.
func (s Settings) withDefaults() Settings {
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	if s.Temperature <= 0 {
		s.Temperature = DefaultTemperature
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	return s
}

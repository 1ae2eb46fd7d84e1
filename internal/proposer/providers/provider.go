// Package providers contains implementations of different LLM chat
// providers used as the proposal oracle backend.
package providers

import (
	"context"
	"time"
)

const (
	// Provider constants
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	// DefaultTimeout bounds a single chat call. Retry discipline lives in
	// the oracle adapter, not here: providers make exactly one attempt.
	DefaultTimeout = 60 * time.Second
)

// Completion is a single chat response with its token accounting, as
// reported by the provider.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// ChatProvider defines the interface for a single-shot chat completion
// backend.
type ChatProvider interface {
	// Complete sends one prompt and returns the model's reply.
	Complete(ctx context.Context, prompt string) (Completion, error)

	// Name returns the provider name
	Name() string
}

// Config holds common configuration for chat providers
type Config struct {
	APIKey  string
	ModelID string
	BaseURL string
	Timeout time.Duration
}

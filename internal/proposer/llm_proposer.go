package proposer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/proposer/providers"
)

// Errors
var (
	ErrEmptyProposal = errors.New("proposal oracle returned empty text")
)

// LLMProposer implements the Proposer interface on top of a chat provider.
// It owns prompt construction and cost accounting; retry discipline belongs
// to the oracle adapter.
type LLMProposer struct {
	provider providers.ChatProvider

	// promptCostPer1K and completionCostPer1K convert oracle-reported
	// token counts into money. Both default to zero, which matches a
	// locally hosted model.
	promptCostPer1K     float64
	completionCostPer1K float64
}

// LLMProposerConfig holds configuration for the LLMProposer
type LLMProposerConfig struct {
	Provider            providers.ChatProvider
	PromptCostPer1K     float64
	CompletionCostPer1K float64
}

// NewLLMProposer creates a new LLMProposer with the specified provider and
// token pricing.
func NewLLMProposer(config LLMProposerConfig) *LLMProposer {
	return &LLMProposer{
		provider:            config.Provider,
		promptCostPer1K:     config.PromptCostPer1K,
		completionCostPer1K: config.CompletionCostPer1K,
	}
}

// Initialize sets up the proposer with any required configuration.
func (p *LLMProposer) Initialize() error {
	if p.provider == nil {
		return fmt.Errorf("proposer requires a chat provider")
	}
	return nil
}

// Propose builds the prompt from the request, performs one chat call and
// returns the cleaned guess text with its token-derived cost. An empty or
// whitespace-only reply is an error so the caller can treat it as a failed
// attempt.
func (p *LLMProposer) Propose(ctx context.Context, req Request) (Proposal, error) {
	prompt := BuildPrompt(req)

	completion, err := p.provider.Complete(ctx, prompt)
	if err != nil {
		return Proposal{}, err
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return Proposal{}, ErrEmptyProposal
	}

	cost := float64(completion.PromptTokens)/1000.0*p.promptCostPer1K +
		float64(completion.CompletionTokens)/1000.0*p.completionCostPer1K

	return Proposal{
		Text: text,
		Cost: cost,
	}, nil
}

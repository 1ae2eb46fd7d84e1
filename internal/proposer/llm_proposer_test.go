package proposer

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/history"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/proposer/providers"
)

// MockChatProvider implements the providers.ChatProvider interface for testing
type MockChatProvider struct {
	returnError bool
	returnText  string
	prompts     []string
	promptTok   int
	completeTok int
}

// Complete implements the providers.ChatProvider interface for testing
func (m *MockChatProvider) Complete(ctx context.Context, prompt string) (providers.Completion, error) {
	m.prompts = append(m.prompts, prompt)
	if m.returnError {
		return providers.Completion{}, errors.New("mock chat error")
	}
	return providers.Completion{
		Text:             m.returnText,
		PromptTokens:     m.promptTok,
		CompletionTokens: m.completeTok,
	}, nil
}

// Name returns the provider name
func (m *MockChatProvider) Name() string {
	return "mock"
}

func sampleRequest() Request {
	return Request{
		Feedback: history.Feedback{
			Best: []history.Record{
				{Seq: 1, Text: "Be aware", Err: 0.8794},
			},
			Recent: []history.Record{
				{Seq: 2, Text: "Be happy", Err: 0.9910},
				{Seq: 3, Text: "Be kind", Err: 0.9279},
			},
		},
		LastGuess: "Be aware",
		LastError: 0.8794,
		Clue:      "TWO WORDS; FIRST WORD IS `Be`.",
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleRequest())

	for _, want := range []string{
		"BEST_GUESSES:",
		"RECENT_PRIOR_GUESSES:",
		`ERROR 0.8794, "Be aware"`,
		`ERROR 0.9910, "Be happy"`,
		"[clue]",
		"TWO WORDS; FIRST WORD IS `Be`.",
		"[RESPONSE CRITERIA]",
		"[userinput]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptOmitsEmptyClue(t *testing.T) {
	req := sampleRequest()
	req.Clue = ""

	prompt := BuildPrompt(req)
	if strings.Contains(prompt, "[clue]") {
		t.Errorf("Expected no clue block for empty clue, got:\n%s", prompt)
	}
}

func TestGuessSummary(t *testing.T) {
	req := Request{LastGuess: "Be", LastError: 1.2}
	want := `ERROR 1.2000, "Be"`
	if got := GuessSummary(req); got != want {
		t.Errorf("GuessSummary() = %q, want %q", got, want)
	}
}

func TestProposeReturnsTrimmedText(t *testing.T) {
	mock := &MockChatProvider{returnText: "  Be mindful\n"}
	p := NewLLMProposer(LLMProposerConfig{Provider: mock})

	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	proposal, err := p.Propose(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Propose() error: %v", err)
	}
	if proposal.Text != "Be mindful" {
		t.Errorf("Expected trimmed proposal text, got %q", proposal.Text)
	}
	if len(mock.prompts) != 1 {
		t.Errorf("Expected exactly one chat call, got %d", len(mock.prompts))
	}
}

func TestProposeCostAccounting(t *testing.T) {
	mock := &MockChatProvider{
		returnText:  "Be mindful",
		promptTok:   500,
		completeTok: 20,
	}
	p := NewLLMProposer(LLMProposerConfig{
		Provider:            mock,
		PromptCostPer1K:     0.02,
		CompletionCostPer1K: 0.06,
	})

	proposal, err := p.Propose(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Propose() error: %v", err)
	}

	want := 0.5*0.02 + 0.02*0.06
	if math.Abs(proposal.Cost-want) > 1e-9 {
		t.Errorf("Expected cost %v, got %v", want, proposal.Cost)
	}
}

func TestProposeEmptyReplyIsError(t *testing.T) {
	mock := &MockChatProvider{returnText: "   \n\t"}
	p := NewLLMProposer(LLMProposerConfig{Provider: mock})

	_, err := p.Propose(context.Background(), sampleRequest())
	if !errors.Is(err, ErrEmptyProposal) {
		t.Errorf("Expected ErrEmptyProposal for whitespace reply, got %v", err)
	}
}

func TestProposePropagatesProviderError(t *testing.T) {
	mock := &MockChatProvider{returnError: true}
	p := NewLLMProposer(LLMProposerConfig{Provider: mock})

	_, err := p.Propose(context.Background(), sampleRequest())
	if err == nil {
		t.Errorf("Expected provider error to propagate")
	}
}

func TestInitializeWithoutProvider(t *testing.T) {
	p := NewLLMProposer(LLMProposerConfig{})
	if err := p.Initialize(); err == nil {
		t.Errorf("Expected Initialize to fail without a provider")
	}
}

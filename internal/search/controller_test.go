package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/errortypes"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/oracle"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/proposer"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/transcript"
)

// ScriptedEmbedder returns a fixed vector per text.
type ScriptedEmbedder struct {
	Vectors map[string][]float32
	Calls   int
}

func (e *ScriptedEmbedder) Initialize() error {
	return nil
}

func (e *ScriptedEmbedder) CreateEmbedding(text string) ([]float32, error) {
	e.Calls++
	vec, ok := e.Vectors[text]
	if !ok {
		return nil, fmt.Errorf("no scripted vector for %q", text)
	}
	return vec, nil
}

// ScriptedProposer returns a fixed sequence of guesses.
type ScriptedProposer struct {
	Proposals []string
	Cost      float64
	Calls     int
	Requests  []proposer.Request
}

func (p *ScriptedProposer) Initialize() error {
	return nil
}

func (p *ScriptedProposer) Propose(ctx context.Context, req proposer.Request) (proposer.Proposal, error) {
	p.Requests = append(p.Requests, req)
	if p.Calls >= len(p.Proposals) {
		return proposer.Proposal{}, fmt.Errorf("script exhausted after %d proposals", p.Calls)
	}
	text := p.Proposals[p.Calls]
	p.Calls++
	return proposer.Proposal{Text: text, Cost: p.Cost}, nil
}

// RecordingSink captures transcript entries in memory.
type RecordingSink struct {
	Entries []transcript.Entry
	Err     error
}

func (s *RecordingSink) Append(entry transcript.Entry) error {
	if s.Err != nil {
		return s.Err
	}
	s.Entries = append(s.Entries, entry)
	return nil
}

func newTestController(t *testing.T, embedder *ScriptedEmbedder, prop *ScriptedProposer, sink TranscriptSink) *Controller {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := oracle.NewAdapter(oracle.AdapterConfig{
		Embedder:          embedder,
		Proposer:          prop,
		MaxAttempts:       2,
		EmbedRetryDelay:   time.Millisecond,
		ProposeRetryDelay: time.Millisecond,
		Logger:            logger,
	})
	return NewController(ControllerConfig{
		Oracle:     adapter,
		Transcript: sink,
		Logger:     logger,
	})
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func TestConvergenceScenario(t *testing.T) {
	// Errors against the 1-dimensional target at 0: "Be" 1.20,
	// "Be aware" 0.88, "Be mindful" 0.38.
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{
		"Be":         {1.20},
		"Be aware":   {0.88},
		"Be mindful": {0.38},
	}}
	prop := &ScriptedProposer{Proposals: []string{"Be aware", "Be mindful"}, Cost: 1.0}
	sink := &RecordingSink{}
	controller := newTestController(t, embedder, prop, sink)

	res, err := controller.Run(context.Background(), Params{
		TargetVector: []float32{0},
		InitialGuess: "Be",
		MatchError:   0.6,
		CostLimit:    60.0,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.State != StateConverged {
		t.Fatalf("expected CONVERGED, got %s", res.State)
	}
	if res.GuessesMade != 3 {
		t.Errorf("expected 3 guesses made, got %d", res.GuessesMade)
	}
	if len(res.Best) < 2 {
		t.Fatalf("expected at least 2 best records, got %d", len(res.Best))
	}
	if res.Best[0].Text != "Be mindful" || !approxEqual(res.Best[0].Err, 0.38) {
		t.Errorf("unexpected best record: %v", res.Best[0])
	}
	if res.Best[1].Text != "Be aware" || !approxEqual(res.Best[1].Err, 0.88) {
		t.Errorf("unexpected second best record: %v", res.Best[1])
	}
	if !approxEqual(res.BestError, 0.38) {
		t.Errorf("expected best error 0.38, got %v", res.BestError)
	}
	if !approxEqual(res.CostSpent, 2.0) {
		t.Errorf("expected cost 2.0 from two proposals, got %v", res.CostSpent)
	}
	if len(sink.Entries) != 3 {
		t.Errorf("expected 3 transcript entries, got %d", len(sink.Entries))
	}
}

func TestExactRecoveryConvergesInTwoIterations(t *testing.T) {
	target := "open sesame"
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{
		target:    {1, 0, 0},
		"a guess": {0, 1, 0},
	}}
	prop := &ScriptedProposer{Proposals: []string{target}}
	controller := newTestController(t, embedder, prop, nil)

	res, err := controller.Run(context.Background(), Params{
		TargetText:   target,
		InitialGuess: "a guess",
		MatchError:   0,
		CostLimit:    100,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.State != StateConverged {
		t.Fatalf("expected CONVERGED, got %s", res.State)
	}
	if res.GuessesMade != 2 {
		t.Errorf("expected 2 guesses made, got %d", res.GuessesMade)
	}
	if res.BestError != 0 {
		t.Errorf("expected best error 0, got %v", res.BestError)
	}
	if res.Best[0].Text != target {
		t.Errorf("expected best guess %q, got %q", target, res.Best[0].Text)
	}
}

func TestBudgetExceeded(t *testing.T) {
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{
		"g0": {5}, "g1": {4}, "g2": {6}, "g3": {3},
	}}
	prop := &ScriptedProposer{Proposals: []string{"g1", "g2", "g3"}, Cost: 10}
	controller := newTestController(t, embedder, prop, nil)

	res, err := controller.Run(context.Background(), Params{
		TargetVector: []float32{0},
		InitialGuess: "g0",
		MatchError:   0.5,
		CostLimit:    25,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.State != StateBudgetExceeded {
		t.Fatalf("expected BUDGET_EXCEEDED, got %s", res.State)
	}
	// Cost crosses 25 after the third proposal, which is still scored.
	if res.GuessesMade != 4 {
		t.Errorf("expected 4 guesses made, got %d", res.GuessesMade)
	}
	if !approxEqual(res.CostSpent, 30) {
		t.Errorf("expected cost 30, got %v", res.CostSpent)
	}
	if !approxEqual(res.BestError, 3) {
		t.Errorf("expected best error 3, got %v", res.BestError)
	}
}

func TestZeroCostLimitScoresOnlyInitialGuess(t *testing.T) {
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{"first": {9}}}
	prop := &ScriptedProposer{Proposals: []string{"never used"}}
	controller := newTestController(t, embedder, prop, nil)

	res, err := controller.Run(context.Background(), Params{
		TargetVector: []float32{0},
		InitialGuess: "first",
		MatchError:   0.1,
		CostLimit:    0,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.State != StateBudgetExceeded {
		t.Fatalf("expected BUDGET_EXCEEDED, got %s", res.State)
	}
	if res.GuessesMade != 1 {
		t.Errorf("expected 1 guess made, got %d", res.GuessesMade)
	}
	if prop.Calls != 0 {
		t.Errorf("expected no proposal calls, got %d", prop.Calls)
	}
}

func TestConvergenceCheckedBeforeBudget(t *testing.T) {
	target := "the answer"
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{
		target:  {0},
		"start": {7},
	}}
	prop := &ScriptedProposer{Proposals: []string{target}, Cost: 50}
	controller := newTestController(t, embedder, prop, nil)

	// The winning proposal costs more than the whole budget. Convergence
	// still takes precedence over the budget check.
	res, err := controller.Run(context.Background(), Params{
		TargetVector: []float32{0},
		InitialGuess: "start",
		MatchError:   0.1,
		CostLimit:    5,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.State != StateConverged {
		t.Fatalf("expected CONVERGED, got %s", res.State)
	}
	if res.CostSpent < 50 {
		t.Errorf("expected cost at least 50, got %v", res.CostSpent)
	}
}

func TestBestErrorMonotonicAcrossRun(t *testing.T) {
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{
		"g0": {5}, "g1": {7}, "g2": {3}, "g3": {8}, "g4": {2}, "g5": {6},
	}}
	prop := &ScriptedProposer{Proposals: []string{"g1", "g2", "g3", "g4", "g5"}, Cost: 1}
	sink := &RecordingSink{}
	controller := newTestController(t, embedder, prop, sink)

	res, err := controller.Run(context.Background(), Params{
		TargetVector: []float32{0},
		InitialGuess: "g0",
		MatchError:   0.5,
		CostLimit:    5,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.State != StateBudgetExceeded {
		t.Fatalf("expected BUDGET_EXCEEDED, got %s", res.State)
	}

	prev := math.Inf(1)
	for i, entry := range sink.Entries {
		if entry.BestError > prev {
			t.Errorf("entry %d: best error %v rose above %v", i, entry.BestError, prev)
		}
		prev = entry.BestError
		if entry.Seq != i {
			t.Errorf("entry %d: expected seq %d, got %d", i, i, entry.Seq)
		}
	}
	if len(sink.Entries) != res.GuessesMade {
		t.Errorf("expected %d transcript entries, got %d", res.GuessesMade, len(sink.Entries))
	}
}

func TestDuplicateProposalAccepted(t *testing.T) {
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{
		"g0":   {5},
		"same": {4},
	}}
	prop := &ScriptedProposer{Proposals: []string{"same", "same", "same"}, Cost: 10}
	controller := newTestController(t, embedder, prop, nil)

	res, err := controller.Run(context.Background(), Params{
		TargetVector: []float32{0},
		InitialGuess: "g0",
		MatchError:   0.5,
		CostLimit:    25,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.State != StateBudgetExceeded {
		t.Fatalf("expected BUDGET_EXCEEDED, got %s", res.State)
	}
	// The duplicate is still scored every time it is proposed.
	if res.GuessesMade != 4 {
		t.Errorf("expected 4 guesses made, got %d", res.GuessesMade)
	}
	// History stays deduplicated regardless.
	if len(res.Best) != 2 {
		t.Errorf("expected 2 distinct best records, got %d", len(res.Best))
	}

	last := prop.Requests[len(prop.Requests)-1]
	if len(last.Feedback.Recent) > 1 {
		t.Errorf("expected deduplicated recent window, got %d entries", len(last.Feedback.Recent))
	}
}

func TestDimensionMismatchIsFatal(t *testing.T) {
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{
		"short": {1, 2},
	}}
	prop := &ScriptedProposer{}
	controller := newTestController(t, embedder, prop, nil)

	res, err := controller.Run(context.Background(), Params{
		TargetVector: []float32{0, 0, 0},
		InitialGuess: "short",
		MatchError:   0.5,
		CostLimit:    10,
	})
	if err == nil {
		t.Fatal("expected an error for mismatched dimensions")
	}
	if !errortypes.IsValidationError(err) {
		t.Errorf("expected a validation error, got %v", err)
	}
	if res.State.Terminal() {
		t.Errorf("expected a non-terminal state on abort, got %s", res.State)
	}
	// The mismatch is detected after a single successful oracle call.
	if embedder.Calls != 1 {
		t.Errorf("expected 1 embedding call, got %d", embedder.Calls)
	}
}

func TestOracleExhaustionSurfaced(t *testing.T) {
	// No scripted vector for the guess, so every embedding attempt fails.
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{}}
	prop := &ScriptedProposer{}
	controller := newTestController(t, embedder, prop, nil)

	_, err := controller.Run(context.Background(), Params{
		TargetVector: []float32{0},
		InitialGuess: "unknown",
		MatchError:   0.5,
		CostLimit:    10,
	})
	if err == nil {
		t.Fatal("expected an error once retries are exhausted")
	}
}

func TestTargetEmbeddedOnce(t *testing.T) {
	target := "mystery"
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{
		target: {0},
		"g0":   {3},
		"g1":   {2},
		"g2":   {1},
	}}
	prop := &ScriptedProposer{Proposals: []string{"g1", "g2"}, Cost: 10}
	controller := newTestController(t, embedder, prop, nil)

	res, err := controller.Run(context.Background(), Params{
		TargetText:   target,
		InitialGuess: "g0",
		MatchError:   0.5,
		CostLimit:    15,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.State != StateBudgetExceeded {
		t.Fatalf("expected BUDGET_EXCEEDED, got %s", res.State)
	}

	// One call for the target plus one per scored guess.
	if embedder.Calls != 1+res.GuessesMade {
		t.Errorf("expected %d embedding calls, got %d", 1+res.GuessesMade, embedder.Calls)
	}
}

func TestParamValidation(t *testing.T) {
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{"g": {1}}}
	prop := &ScriptedProposer{}
	controller := newTestController(t, embedder, prop, nil)

	tests := []struct {
		name   string
		params Params
	}{
		{"no target", Params{InitialGuess: "g", MatchError: 0.5, CostLimit: 10}},
		{"no initial guess", Params{TargetVector: []float32{0}, MatchError: 0.5, CostLimit: 10}},
		{"negative match error", Params{TargetVector: []float32{0}, InitialGuess: "g", MatchError: -1, CostLimit: 10}},
		{"negative cost limit", Params{TargetVector: []float32{0}, InitialGuess: "g", MatchError: 0.5, CostLimit: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := controller.Run(context.Background(), tt.params)
			if !errortypes.IsValidationError(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestTranscriptFailureDoesNotStopSearch(t *testing.T) {
	target := "done"
	embedder := &ScriptedEmbedder{Vectors: map[string][]float32{
		target:  {0},
		"start": {2},
	}}
	prop := &ScriptedProposer{Proposals: []string{target}}
	sink := &RecordingSink{Err: fmt.Errorf("disk full")}
	controller := newTestController(t, embedder, prop, sink)

	res, err := controller.Run(context.Background(), Params{
		TargetVector: []float32{0},
		InitialGuess: "start",
		MatchError:   0.1,
		CostLimit:    10,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.State != StateConverged {
		t.Errorf("expected CONVERGED despite transcript failures, got %s", res.State)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateInit, "INIT"},
		{StateScore, "SCORE"},
		{StateDecide, "DECIDE"},
		{StatePropose, "PROPOSE"},
		{StateConverged, "CONVERGED"},
		{StateBudgetExceeded, "BUDGET_EXCEEDED"},
		{State(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

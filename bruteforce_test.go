package bruteforce

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/config"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/oracle"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/proposer"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/search"
)

// TableEmbedder maps texts to fixed one-dimensional vectors.
type TableEmbedder struct {
	vectors map[string][]float32
}

func (e *TableEmbedder) Initialize() error { return nil }

func (e *TableEmbedder) CreateEmbedding(text string) ([]float32, error) {
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0}, nil
}

// QueueProposer returns its texts in order, counting calls.
type QueueProposer struct {
	texts []string
	calls int
}

func (p *QueueProposer) Initialize() error { return nil }

func (p *QueueProposer) Propose(ctx context.Context, req proposer.Request) (proposer.Proposal, error) {
	p.calls++
	if p.calls > len(p.texts) {
		return proposer.Proposal{Text: p.texts[len(p.texts)-1], Cost: 1}, nil
	}
	return proposer.Proposal{Text: p.texts[p.calls-1], Cost: 1}, nil
}

// newTestService wires a Service around in-memory oracles, skipping the
// provider and store construction NewService would do.
func newTestService(cfg *config.Config, emb *TableEmbedder, prop *QueueProposer) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := oracle.NewAdapter(oracle.AdapterConfig{
		Embedder:          emb,
		Proposer:          prop,
		MaxAttempts:       2,
		EmbedRetryDelay:   time.Millisecond,
		ProposeRetryDelay: time.Millisecond,
		Logger:            logger,
	})
	controller := search.NewController(search.ControllerConfig{
		Oracle: adapter,
		Logger: logger,
	})
	return &Service{config: cfg, controller: controller, logger: logger}
}

func TestInvertHonorsExplicitZeroCostLimit(t *testing.T) {
	cfg := config.NewConfig()
	prop := &QueueProposer{texts: []string{"closer"}}
	svc := newTestService(cfg, &TableEmbedder{vectors: map[string][]float32{
		"closer": {0.9},
	}}, prop)

	result, err := svc.Invert(context.Background(), Params{
		TargetVector: []float32{1},
		InitialGuess: "far away",
		MatchError:   Float64(0.1),
		CostLimit:    Float64(0),
	})
	if err != nil {
		t.Fatalf("Invert() error: %v", err)
	}
	if result.State != search.StateBudgetExceeded {
		t.Errorf("Expected BUDGET_EXCEEDED with a zero cost limit, got %s", result.State)
	}
	if prop.calls != 0 {
		t.Errorf("Expected no proposals under a zero cost limit, got %d", prop.calls)
	}
	if result.GuessesMade != 1 {
		t.Errorf("Expected only the initial guess scored, got %d", result.GuessesMade)
	}
}

func TestInvertHonorsExplicitZeroMatchError(t *testing.T) {
	cfg := config.NewConfig()
	prop := &QueueProposer{texts: []string{"exact"}}
	svc := newTestService(cfg, &TableEmbedder{vectors: map[string][]float32{
		"exact": {1},
		"near":  {0.99},
	}}, prop)

	result, err := svc.Invert(context.Background(), Params{
		TargetVector: []float32{1},
		InitialGuess: "near",
		MatchError:   Float64(0),
		CostLimit:    Float64(50),
	})
	if err != nil {
		t.Fatalf("Invert() error: %v", err)
	}
	if result.State != search.StateConverged {
		t.Fatalf("Expected CONVERGED, got %s", result.State)
	}
	// The near miss must not satisfy a zero bound; the exact proposal does.
	if result.BestError != 0 {
		t.Errorf("Expected exact recovery, got best error %v", result.BestError)
	}
	if prop.calls != 1 {
		t.Errorf("Expected one proposal, got %d", prop.calls)
	}
}

func TestInvertNilBoundsUseConfiguredDefaults(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Search.MatchError = 2.0
	svc := newTestService(cfg, &TableEmbedder{}, &QueueProposer{texts: []string{"unused"}})

	result, err := svc.Invert(context.Background(), Params{
		TargetVector: []float32{1},
		InitialGuess: "anything",
	})
	if err != nil {
		t.Fatalf("Invert() error: %v", err)
	}
	// The initial guess scores an error of 1, within the configured bound
	// of 2. A literal zero bound would not have converged here.
	if result.State != search.StateConverged {
		t.Errorf("Expected CONVERGED under the configured default bound, got %s", result.State)
	}
}

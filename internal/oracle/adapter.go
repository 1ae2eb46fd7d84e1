// Package oracle wraps the embedding and proposal oracles behind a uniform
// resilience contract: bounded retries with a fixed per-oracle delay,
// scaled per attempt. Once the attempts are exhausted the call fails with
// ErrOracleUnavailable instead of blocking the search forever.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/errortypes"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/proposer"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/telemetry"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/vector"
)

const (
	// DefaultMaxAttempts bounds how often a failing oracle call is tried.
	DefaultMaxAttempts = 5

	// DefaultEmbedRetryDelay is the base wait between embedding attempts.
	DefaultEmbedRetryDelay = 7 * time.Second

	// DefaultProposeRetryDelay is the base wait between proposal attempts.
	DefaultProposeRetryDelay = 5 * time.Second
)

// ErrOracleUnavailable is returned once an oracle keeps failing after all
// retry attempts. It is session-fatal: the controller aborts rather than
// blocking forever.
var ErrOracleUnavailable = errors.New("oracle unavailable after retries")

// Adapter is the uniform resilience wrapper around both oracles.
type Adapter struct {
	embedder vector.Embedder
	proposer proposer.Proposer

	maxAttempts       int
	embedRetryDelay   time.Duration
	proposeRetryDelay time.Duration
	embedCostPerCall  float64

	metrics *telemetry.MetricsCollector
	logger  *slog.Logger
}

// AdapterConfig holds configuration for the Adapter.
type AdapterConfig struct {
	Embedder vector.Embedder
	Proposer proposer.Proposer

	// MaxAttempts is the total number of tries per call, including the
	// first. Zero or negative selects DefaultMaxAttempts.
	MaxAttempts int

	EmbedRetryDelay   time.Duration
	ProposeRetryDelay time.Duration

	// EmbedCostPerCall is the flat cost accrued by each successful
	// embedding call. Zero matches a locally hosted model.
	EmbedCostPerCall float64

	Metrics *telemetry.MetricsCollector
	Logger  *slog.Logger
}

// NewAdapter creates a new Adapter instance.
func NewAdapter(config AdapterConfig) *Adapter {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.EmbedRetryDelay <= 0 {
		config.EmbedRetryDelay = DefaultEmbedRetryDelay
	}
	if config.ProposeRetryDelay <= 0 {
		config.ProposeRetryDelay = DefaultProposeRetryDelay
	}
	if config.Metrics == nil {
		config.Metrics = telemetry.NewMetricsCollector()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Adapter{
		embedder:          config.Embedder,
		proposer:          config.Proposer,
		maxAttempts:       config.MaxAttempts,
		embedRetryDelay:   config.EmbedRetryDelay,
		proposeRetryDelay: config.ProposeRetryDelay,
		embedCostPerCall:  config.EmbedCostPerCall,
		metrics:           config.Metrics,
		logger:            config.Logger,
	}
}

// Metrics returns the metrics collector used by this adapter.
func (a *Adapter) Metrics() *telemetry.MetricsCollector {
	return a.metrics
}

// Embed scores a text through the embedding oracle. It returns the vector
// and the cost the call accrued.
func (a *Adapter) Embed(ctx context.Context, text string) ([]float32, float64, error) {
	var lastErr error

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		if attempt > 0 {
			a.metrics.IncrementCounter(telemetry.MetricRetryAttempts, 1)
			delay := a.embedRetryDelay * time.Duration(attempt)
			a.logger.Warn("embedding oracle call failed, retrying",
				"attempt", attempt, "delay", delay.String(), "error", lastErr)
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, 0, err
			}
		}

		a.metrics.IncrementCounter(telemetry.MetricEmbedCalls, 1)
		start := time.Now()
		vec, err := a.embedder.CreateEmbedding(text)
		a.metrics.RecordTimer(telemetry.MetricResponseTimeEmbed, time.Since(start))

		if err == nil && len(vec) == 0 {
			err = fmt.Errorf("embedding oracle returned an empty vector")
		}
		if err == nil {
			a.metrics.IncrementCounter(telemetry.MetricOracleCallsSuccess, 1)
			if attempt > 0 {
				a.metrics.IncrementCounter(telemetry.MetricRetrySuccess, 1)
			}
			return vec, a.embedCostPerCall, nil
		}

		a.metrics.IncrementCounter(telemetry.MetricOracleCallsFailure, 1)
		if !isRetryable(err) {
			return nil, 0, err
		}
		lastErr = err
	}

	return nil, 0, fmt.Errorf("embedding oracle: %w: %v", ErrOracleUnavailable, lastErr)
}

// Propose requests the next guess from the proposal oracle. An empty or
// malformed reply counts as a failed attempt and is retried.
func (a *Adapter) Propose(ctx context.Context, req proposer.Request) (proposer.Proposal, error) {
	var lastErr error

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		if attempt > 0 {
			a.metrics.IncrementCounter(telemetry.MetricRetryAttempts, 1)
			delay := a.proposeRetryDelay * time.Duration(attempt)
			a.logger.Warn("proposal oracle call failed, retrying",
				"attempt", attempt, "delay", delay.String(), "error", lastErr)
			if err := sleepCtx(ctx, delay); err != nil {
				return proposer.Proposal{}, err
			}
		}

		a.metrics.IncrementCounter(telemetry.MetricProposeCalls, 1)
		start := time.Now()
		proposal, err := a.proposer.Propose(ctx, req)
		a.metrics.RecordTimer(telemetry.MetricResponseTimePropose, time.Since(start))

		if err == nil && strings.TrimSpace(proposal.Text) == "" {
			err = fmt.Errorf("proposal oracle returned empty text")
		}
		if err == nil {
			a.metrics.IncrementCounter(telemetry.MetricOracleCallsSuccess, 1)
			if attempt > 0 {
				a.metrics.IncrementCounter(telemetry.MetricRetrySuccess, 1)
			}
			return proposal, nil
		}

		a.metrics.IncrementCounter(telemetry.MetricOracleCallsFailure, 1)
		if !isRetryable(err) {
			return proposer.Proposal{}, err
		}
		lastErr = err
	}

	return proposer.Proposal{}, fmt.Errorf("proposal oracle: %w: %v", ErrOracleUnavailable, lastErr)
}

// CheckHealth makes one direct call against each oracle and reports which
// are reachable. Health gauges are updated as a side effect.
func (a *Adapter) CheckHealth(ctx context.Context) map[string]bool {
	results := make(map[string]bool)

	_, embedErr := a.embedder.CreateEmbedding("health check")
	results["embed"] = embedErr == nil
	a.metrics.SetGauge(telemetry.MetricOracleHealthEmbed, boolToFloat64(results["embed"]))

	_, proposeErr := a.proposer.Propose(ctx, proposer.Request{
		LastGuess: "health check",
		LastError: 1.0,
	})
	results["propose"] = proposeErr == nil
	a.metrics.SetGauge(telemetry.MetricOracleHealthPropose, boolToFloat64(results["propose"]))

	return results
}

// isRetryable reports whether a failure is transient. Validation and
// configuration errors are permanent and pass through immediately.
func isRetryable(err error) bool {
	if errortypes.IsValidationError(err) || errortypes.IsConfigError(err) {
		return false
	}
	return true
}

// sleepCtx blocks for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// boolToFloat64 converts a boolean to a float64 (1.0 for true, 0.0 for false)
func boolToFloat64(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

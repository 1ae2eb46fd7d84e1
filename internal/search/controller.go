// Package search drives the embedding-inversion loop: embed the current
// guess, score it against the target vector, record the attempt, and ask the
// proposal oracle for the next candidate until the error falls within the
// match threshold or the cost budget runs out.
package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/errortypes"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/history"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/oracle"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/proposer"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/telemetry"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/transcript"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/vector"
)

// Params configures one search session.
type Params struct {
	// TargetText is the mystery text. It is embedded exactly once, at
	// session start, and then discarded; only its vector participates in
	// the search. Ignored when TargetVector is supplied.
	TargetText string

	// TargetVector is a precomputed target embedding. When set, the
	// embedding oracle is never shown the target text.
	TargetVector []float32

	// InitialGuess is the first text scored by the loop.
	InitialGuess string

	// MatchError is the stopping error bound. A guess whose error is at
	// or below it ends the session as converged.
	MatchError float64

	// CostLimit is the stopping cost bound.
	CostLimit float64

	// Clue is optional guidance forwarded verbatim to the proposal
	// oracle, e.g. "the mystery text is two words".
	Clue string

	// BestSetSize and RecentWindowSize bound the history handed back to
	// the proposal oracle. Zero selects the defaults.
	BestSetSize      int
	RecentWindowSize int
}

// Result is the outcome of a session: the terminal state, the top guesses
// found, and the run statistics.
type Result struct {
	SessionID   string
	State       State
	Best        []history.Record
	BestError   float64
	GuessesMade int
	CostSpent   float64
	Elapsed     time.Duration
}

// TranscriptSink receives one entry per scored iteration. It is an
// observational side channel; nothing in the loop reads it back.
type TranscriptSink interface {
	Append(entry transcript.Entry) error
}

// Controller owns the state machine for one or more search sessions.
type Controller struct {
	oracle     *oracle.Adapter
	transcript TranscriptSink
	logger     *slog.Logger
}

// ControllerConfig holds configuration for the Controller.
type ControllerConfig struct {
	Oracle *oracle.Adapter

	// Transcript may be nil; iterations are then only logged.
	Transcript TranscriptSink

	Logger *slog.Logger
}

// NewController creates a new Controller instance.
func NewController(config ControllerConfig) *Controller {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Controller{
		oracle:     config.Oracle,
		transcript: config.Transcript,
		logger:     config.Logger,
	}
}

// session is the mutable loop state. It lives for one Run call and is
// never shared.
type session struct {
	id      string
	params  Params
	target  []float32
	history *history.History

	guess     string
	guessVec  []float32
	guessErr  float64
	seq       int
	guesses   int
	totalCost float64
	started   time.Time
}

// Run executes one search session to a terminal state. The returned Result
// is valid even on error: it reports whatever the loop achieved before the
// failure.
func (c *Controller) Run(ctx context.Context, params Params) (Result, error) {
	sess := &session{
		id:      uuid.NewString(),
		params:  params,
		history: history.New(params.BestSetSize, params.RecentWindowSize),
		started: time.Now(),
	}

	log := c.logger.With("session_id", sess.id)

	if err := c.validate(params); err != nil {
		return c.result(sess, StateInit), err
	}

	if err := c.resolveTarget(ctx, sess); err != nil {
		return c.result(sess, StateInit), err
	}

	log.Info("search session started",
		"initial_guess", params.InitialGuess,
		"match_error", params.MatchError,
		"cost_limit", params.CostLimit,
		"dimensions", len(sess.target))

	sess.guess = params.InitialGuess

	state := StateScore
	for !state.Terminal() {
		var err error
		switch state {
		case StateScore:
			state, err = c.score(ctx, sess)
		case StateDecide:
			state = c.decide(sess, log)
		case StatePropose:
			state, err = c.propose(ctx, sess, log)
		}
		if err != nil {
			return c.result(sess, state), err
		}
	}

	res := c.result(sess, state)
	log.Info("search session finished",
		"state", state.String(),
		"best_error", res.BestError,
		"guesses_made", res.GuessesMade,
		"cost_spent", res.CostSpent,
		"elapsed", res.Elapsed.String())
	return res, nil
}

func (c *Controller) validate(params Params) error {
	if params.TargetText == "" && len(params.TargetVector) == 0 {
		return errortypes.ValidationError(nil, "either a target text or a target vector is required")
	}
	if params.InitialGuess == "" {
		return errortypes.ValidationError(nil, "an initial guess is required")
	}
	if params.MatchError < 0 {
		return errortypes.ValidationError(nil, "match error must be non-negative")
	}
	if params.CostLimit < 0 {
		return errortypes.ValidationError(nil, "cost limit must be non-negative")
	}
	return nil
}

// resolveTarget fixes the target embedding for the whole session. It is
// computed at most once; every later score call reuses the same vector.
func (c *Controller) resolveTarget(ctx context.Context, sess *session) error {
	if len(sess.params.TargetVector) > 0 {
		sess.target = sess.params.TargetVector
		return nil
	}

	vec, cost, err := c.oracle.Embed(ctx, sess.params.TargetText)
	if err != nil {
		return err
	}
	sess.target = vec
	sess.totalCost += cost
	return nil
}

// score embeds the current guess and computes its error against the target.
func (c *Controller) score(ctx context.Context, sess *session) (State, error) {
	vec, cost, err := c.oracle.Embed(ctx, sess.guess)
	if err != nil {
		return StateScore, err
	}
	sess.totalCost += cost

	dist, err := vector.Distance(vec, sess.target)
	if err != nil {
		// Dimension mismatch between guess and target. The oracle is
		// misconfigured, so the session aborts rather than retrying.
		return StateScore, errortypes.ValidationError(err, "embedding dimension mismatch")
	}

	sess.guessVec = vec
	sess.guessErr = dist
	sess.guesses++

	metrics := c.oracle.Metrics()
	metrics.IncrementCounter(telemetry.MetricGuessesMade, 1)
	metrics.SetGauge(telemetry.MetricCostSpent, sess.totalCost)

	return StateDecide, nil
}

// decide records the scored attempt and evaluates the stopping conditions.
// Convergence is checked before the budget, so a guess that lands within
// the threshold on the iteration that exhausts the budget still wins.
func (c *Controller) decide(sess *session, log *slog.Logger) State {
	rec := history.Record{Seq: sess.seq, Text: sess.guess, Err: sess.guessErr}
	improved := sess.history.RecordAttempt(rec)

	c.oracle.Metrics().SetGauge(telemetry.MetricBestError, sess.history.BestError())

	log.Info("guess scored",
		"seq", sess.seq,
		"guess", sess.guess,
		"error", sess.guessErr,
		"best_error", sess.history.BestError(),
		"improved", improved,
		"cost_spent", sess.totalCost)

	c.record(sess, log)

	if sess.guessErr <= sess.params.MatchError {
		return StateConverged
	}
	if sess.totalCost >= sess.params.CostLimit {
		return StateBudgetExceeded
	}
	return StatePropose
}

// propose asks the proposal oracle for the next guess. A returned text that
// duplicates a history entry is still accepted; repetition suppression is
// guidance inside the prompt, not a controller rule.
func (c *Controller) propose(ctx context.Context, sess *session, log *slog.Logger) (State, error) {
	req := proposer.Request{
		Feedback:  sess.history.Feedback(),
		LastGuess: sess.guess,
		LastError: sess.guessErr,
		Clue:      sess.params.Clue,
	}

	prop, err := c.oracle.Propose(ctx, req)
	if err != nil {
		return StatePropose, err
	}

	sess.totalCost += prop.Cost
	sess.seq++
	sess.guess = prop.Text

	log.Debug("next guess proposed", "seq", sess.seq, "guess", prop.Text, "cost", prop.Cost)
	return StateScore, nil
}

// record writes one transcript entry for the iteration just scored.
// Transcript failures are logged and otherwise ignored; the side channel
// never stops the search.
func (c *Controller) record(sess *session, log *slog.Logger) {
	if c.transcript == nil {
		return
	}

	embedding, err := vector.Float32SliceToBytes(sess.guessVec)
	if err != nil {
		log.Warn("failed to encode guess embedding for transcript", "error", err)
		embedding = nil
	}

	entry := transcript.Entry{
		SessionID:   sess.id,
		Seq:         sess.seq,
		Guess:       sess.guess,
		VectorError: sess.guessErr,
		BestError:   sess.history.BestError(),
		Embedding:   embedding,
		Timestamp:   time.Now(),
	}
	if err := c.transcript.Append(entry); err != nil {
		log.Warn("failed to append transcript entry", "seq", sess.seq, "error", err)
	}
}

func (c *Controller) result(sess *session, state State) Result {
	return Result{
		SessionID:   sess.id,
		State:       state,
		Best:        sess.history.Best(),
		BestError:   sess.history.BestError(),
		GuessesMade: sess.guesses,
		CostSpent:   sess.totalCost,
		Elapsed:     time.Since(sess.started),
	}
}

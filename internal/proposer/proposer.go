// Package proposer provides the proposal-oracle clients for the
// reverse-vector search loop: given feedback about past guesses, a proposer
// returns the next candidate text.
package proposer

import (
	"context"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/history"
)

// Request carries everything the proposal oracle is allowed to see: the
// history feedback payload, a summary of the last guess, and an optional
// clue. The target text and target embedding are deliberately absent.
type Request struct {
	Feedback  history.Feedback
	LastGuess string
	LastError float64

	// Clue is optional free-form guidance injected into the prompt, e.g.
	// a known word count or a known first word.
	Clue string
}

// Proposal is the oracle's answer: the next guess text and the monetary
// cost the call incurred.
type Proposal struct {
	Text string
	Cost float64
}

// Proposer defines the interface for proposing the next guess.
type Proposer interface {
	// Propose returns a candidate text for the next iteration.
	Propose(ctx context.Context, req Request) (Proposal, error)

	// Initialize sets up the proposer with any required configuration.
	Initialize() error
}

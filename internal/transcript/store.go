// Package transcript provides storage for the per-iteration record of a
// search session. The transcript is an observational side channel: it is
// written as the loop runs and never read back into any decision.
package transcript

import (
	"time"
)

// Entry is one scored iteration of a search session.
type Entry struct {
	SessionID   string
	Seq         int
	Guess       string
	VectorError float64
	BestError   float64
	Embedding   []byte
	Timestamp   time.Time
}

// Store defines the interface for persisting and reading transcripts.
type Store interface {
	// Initialize initializes the store with configuration options.
	Initialize(dbPath string) error

	// Close closes the store and releases any resources.
	Close() error

	// Append records one iteration of a session.
	Append(entry Entry) error

	// Session returns all entries of a session, ordered by sequence number.
	Session(sessionID string) ([]Entry, error)

	// Clear removes all stored transcripts and reports how many entries
	// were deleted.
	Clear() (int, error)
}

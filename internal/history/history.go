// Package history maintains the bounded, deduplicated record of past
// guesses made by the reverse-vector search loop: a small set of the best
// attempts and a sliding window of recent rejected ones.
package history

import (
	"fmt"
	"math"
	"sort"
)

const (
	// DefaultBestSetSize bounds how many top guesses are kept.
	DefaultBestSetSize = 3

	// DefaultRecentWindowSize bounds how many recent rejected guesses are
	// kept as context. The cap is a cost control: every entry is replayed
	// to the proposal oracle each iteration, but too few entries cause the
	// oracle to repeat older guesses.
	DefaultRecentWindowSize = 8
)

// Record is one scored guess.
type Record struct {
	Seq  int
	Text string
	Err  float64
}

// String renders the presentation form consumed by the proposal oracle and
// the transcript, e.g. `ERROR 0.8794, "Be aware"`.
func (r Record) String() string {
	return fmt.Sprintf("ERROR %.4f, %q", r.Err, r.Text)
}

// Feedback is the payload handed to the proposal oracle. It is the only
// channel through which the oracle observes history; it never carries the
// target embedding or the target text.
type Feedback struct {
	Best   []Record
	Recent []Record
}

// History tracks the best set and the recent window for one search session.
// It is not safe for concurrent use; the search loop is single-threaded by
// construction.
type History struct {
	best       []Record
	recent     []Record
	bestSize   int
	recentSize int
	bestErr    float64
}

// New creates an empty History with the given bounds. Non-positive bounds
// fall back to the defaults.
func New(bestSetSize, recentWindowSize int) *History {
	if bestSetSize <= 0 {
		bestSetSize = DefaultBestSetSize
	}
	if recentWindowSize <= 0 {
		recentWindowSize = DefaultRecentWindowSize
	}
	return &History{
		bestSize:   bestSetSize,
		recentSize: recentWindowSize,
		bestErr:    math.Inf(1),
	}
}

// BestError returns the lowest error recorded so far, +Inf before the first
// attempt. It is monotonically non-increasing across a session.
func (h *History) BestError() float64 {
	return h.bestErr
}

// Best returns a copy of the best set, ascending by error.
func (h *History) Best() []Record {
	out := make([]Record, len(h.best))
	copy(out, h.best)
	return out
}

// Recent returns a copy of the recent window, oldest first.
func (h *History) Recent() []Record {
	out := make([]Record, len(h.recent))
	copy(out, h.recent)
	return out
}

// RecordAttempt records one scored guess. A strict improvement on the best
// error enters the best set; anything else (including an exact tie, which
// would only churn the set) lands in the recent window. Returns whether the
// attempt improved on the best error.
func (h *History) RecordAttempt(rec Record) bool {
	if rec.Err < h.bestErr {
		h.bestErr = rec.Err
		h.insertBest(rec)
		return true
	}
	h.appendRecent(rec)
	return false
}

// insertBest inserts a record into the best set, deduplicates on guess
// text, re-sorts ascending by error and truncates to the bound.
func (h *History) insertBest(rec Record) {
	h.best = removeText(h.best, rec.Text)
	h.best = append(h.best, rec)
	sort.SliceStable(h.best, func(i, j int) bool {
		return h.best[i].Err < h.best[j].Err
	})
	if len(h.best) > h.bestSize {
		h.best = h.best[:h.bestSize]
	}
}

// appendRecent appends a record to the recent window, deduplicates on guess
// text and evicts from the front until the bound holds.
func (h *History) appendRecent(rec Record) {
	h.recent = removeText(h.recent, rec.Text)
	h.recent = append(h.recent, rec)
	for len(h.recent) > h.recentSize {
		h.recent = h.recent[1:]
	}
}

// Feedback builds the presentation payload for the proposal oracle from
// copies of the current best set and recent window.
func (h *History) Feedback() Feedback {
	return Feedback{
		Best:   h.Best(),
		Recent: h.Recent(),
	}
}

// removeText drops the entry with the given guess text, if present.
func removeText(recs []Record, text string) []Record {
	for i, r := range recs {
		if r.Text == text {
			return append(recs[:i], recs[i+1:]...)
		}
	}
	return recs
}

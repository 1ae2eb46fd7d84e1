// Package tools defines the interfaces and data structures
// for the reverse-vector MCP tools.
package tools

const (
	// ToolInvertEmbedding is the name of the invert_embedding MCP tool
	ToolInvertEmbedding = "invert_embedding"

	// ToolGetTranscript is the name of the get_transcript MCP tool
	ToolGetTranscript = "get_transcript"

	// ToolClearTranscripts is the name of the clear_transcripts MCP tool
	ToolClearTranscripts = "clear_transcripts"
)

// InvertEmbeddingRequest defines the input schema for invert_embedding tool
type InvertEmbeddingRequest struct {
	// TargetText is the mystery text to invert. It is embedded once and
	// then never shown to the proposal oracle.
	TargetText string `json:"target_text,omitempty"`

	// TargetVector is a precomputed target embedding. When set,
	// TargetText is ignored.
	TargetVector []float32 `json:"target_vector,omitempty"`

	// InitialGuess is the first text to score
	InitialGuess string `json:"initial_guess"`

	// MatchError is the stopping error bound
	// If not specified, the configured default will be used
	MatchError float64 `json:"match_error,omitempty"`

	// CostLimit is the stopping cost bound
	// If not specified, the configured default will be used
	CostLimit float64 `json:"cost_limit,omitempty"`

	// Clue is optional guidance forwarded to the proposal oracle
	Clue string `json:"clue,omitempty"`
}

// BestGuess is one recovered candidate with its error
type BestGuess struct {
	Text  string  `json:"text"`
	Error float64 `json:"error"`
}

// InvertEmbeddingResponse defines the output schema for invert_embedding tool
type InvertEmbeddingResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// SessionID identifies the search session for transcript lookups
	SessionID string `json:"session_id,omitempty"`

	// State is the terminal state reached ("CONVERGED" or "BUDGET_EXCEEDED")
	State string `json:"state,omitempty"`

	// BestGuesses contains the top candidates, ascending by error
	BestGuesses []BestGuess `json:"best_guesses,omitempty"`

	// GuessesMade is the number of guesses scored during the session
	GuessesMade int `json:"guesses_made,omitempty"`

	// CostSpent is the total cost accrued by the session
	CostSpent float64 `json:"cost_spent,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// GetTranscriptRequest defines the input schema for get_transcript tool
type GetTranscriptRequest struct {
	// SessionID is the identifier of the session to read back
	SessionID string `json:"session_id"`
}

// TranscriptEntry is one scored iteration of a stored session
type TranscriptEntry struct {
	Seq         int     `json:"seq"`
	Guess       string  `json:"guess"`
	VectorError float64 `json:"vector_error"`
	BestError   float64 `json:"best_error"`
}

// GetTranscriptResponse defines the output schema for get_transcript tool
type GetTranscriptResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Entries contains the session iterations, ordered by sequence number
	Entries []TranscriptEntry `json:"entries,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ClearTranscriptsRequest defines the input schema for clear_transcripts tool
type ClearTranscriptsRequest struct {
	// Confirmation is a required field to confirm the operation
	// Must be set to "confirm" to prevent accidental clearing
	Confirmation string `json:"confirmation"`
}

// ClearTranscriptsResponse defines the output schema for clear_transcripts tool
type ClearTranscriptsResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Deleted is the number of transcript entries removed
	Deleted int `json:"deleted"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/localrivet/gomcp/server"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/errortypes"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/search"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/tools"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/transcript"
)

// SearchDefaults are applied to invert_embedding requests that leave the
// stopping bounds unset.
type SearchDefaults struct {
	MatchError       float64
	CostLimit        float64
	BestSetSize      int
	RecentWindowSize int
}

// MCPInversionToolServer implements the InversionToolServer interface for
// handling MCP tool calls that run and inspect inversion sessions.
type MCPInversionToolServer struct {
	controller *search.Controller
	store      transcript.Store
	defaults   SearchDefaults
	mcpServer  server.Server
}

// NewInversionToolServer creates a new MCPInversionToolServer instance.
func NewInversionToolServer(controller *search.Controller, store transcript.Store, defaults SearchDefaults) *MCPInversionToolServer {
	return &MCPInversionToolServer{
		controller: controller,
		store:      store,
		defaults:   defaults,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPInversionToolServer) Initialize() error {
	slog.Info("Initializing MCP Inversion Tool Server")

	if s.controller == nil || s.store == nil {
		return errortypes.ConfigError(errors.New("missing dependencies"), "server initialization failed")
	}

	// Create the MCP server
	srv := server.NewServer("reverse-vector")

	// Register invert_embedding tool
	srv = srv.Tool(tools.ToolInvertEmbedding, "Search for a text whose embedding matches a target vector",
		s.handleInvertEmbedding)

	// Register get_transcript tool
	srv = srv.Tool(tools.ToolGetTranscript, "Read back the iteration transcript of a search session",
		s.handleGetTranscript)

	// Register clear_transcripts tool
	srv = srv.Tool(tools.ToolClearTranscripts, "Delete all stored session transcripts",
		s.handleClearTranscripts)

	s.mcpServer = srv
	slog.Info("MCP Inversion Tool Server initialized successfully", "tool_count", 3)
	return nil
}

// Start starts the MCP server on the specified transport.
func (s *MCPInversionToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(errors.New("server not initialized"), "cannot start server")
	}

	slog.Info("Starting MCP Inversion Tool Server")

	// Start the server using stdio transport
	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPInversionToolServer) Stop() error {
	slog.Info("Stopping MCP Inversion Tool Server")
	// The server will exit when stdin is closed
	return nil
}

// handleInvertEmbedding handles the invert_embedding MCP tool call.
func (s *MCPInversionToolServer) handleInvertEmbedding(ctx *server.Context, req tools.InvertEmbeddingRequest) (tools.InvertEmbeddingResponse, error) {
	slog.Info("Processing invert_embedding request",
		"initial_guess", req.InitialGuess,
		"has_target_vector", len(req.TargetVector) > 0)

	response := tools.InvertEmbeddingResponse{
		Status: "success",
	}

	params := search.Params{
		TargetText:       req.TargetText,
		TargetVector:     req.TargetVector,
		InitialGuess:     req.InitialGuess,
		MatchError:       req.MatchError,
		CostLimit:        req.CostLimit,
		Clue:             req.Clue,
		BestSetSize:      s.defaults.BestSetSize,
		RecentWindowSize: s.defaults.RecentWindowSize,
	}
	if params.MatchError <= 0 {
		params.MatchError = s.defaults.MatchError
	}
	if params.CostLimit <= 0 {
		params.CostLimit = s.defaults.CostLimit
	}

	result, err := s.controller.Run(context.Background(), params)
	if err != nil {
		err = errortypes.APIError(err, "inversion session failed").
			WithField("initial_guess", req.InitialGuess)
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	response.SessionID = result.SessionID
	response.State = result.State.String()
	response.GuessesMade = result.GuessesMade
	response.CostSpent = result.CostSpent
	for _, rec := range result.Best {
		response.BestGuesses = append(response.BestGuesses, tools.BestGuess{
			Text:  rec.Text,
			Error: rec.Err,
		})
	}

	slog.Info("Successfully completed inversion session",
		"session_id", result.SessionID,
		"state", response.State,
		"guesses_made", result.GuessesMade)
	return response, nil
}

// handleGetTranscript handles the get_transcript MCP tool call.
func (s *MCPInversionToolServer) handleGetTranscript(ctx *server.Context, req tools.GetTranscriptRequest) (tools.GetTranscriptResponse, error) {
	slog.Info("Processing get_transcript request", "session_id", req.SessionID)

	response := tools.GetTranscriptResponse{
		Status: "success",
	}

	if req.SessionID == "" {
		err := errortypes.ValidationError(errors.New("session_id cannot be empty for get_transcript"), "invalid get_transcript request")
		errortypes.LogError(nil, err)
		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	entries, err := s.store.Session(req.SessionID)
	if err != nil {
		err = errortypes.DatabaseError(err, "failed to read transcript").
			WithField("session_id", req.SessionID)
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	for _, entry := range entries {
		response.Entries = append(response.Entries, tools.TranscriptEntry{
			Seq:         entry.Seq,
			Guess:       entry.Guess,
			VectorError: entry.VectorError,
			BestError:   entry.BestError,
		})
	}

	slog.Info("Successfully retrieved transcript", "session_id", req.SessionID, "count", len(entries))
	return response, nil
}

// handleClearTranscripts handles the clear_transcripts MCP tool call.
func (s *MCPInversionToolServer) handleClearTranscripts(ctx *server.Context, req tools.ClearTranscriptsRequest) (tools.ClearTranscriptsResponse, error) {
	slog.Info("Processing clear_transcripts request")

	response := tools.ClearTranscriptsResponse{
		Status: "success",
	}

	// Check confirmation string
	if req.Confirmation != "confirm" {
		response.Status = "error"
		response.Error = "Confirmation required. Set confirmation to 'confirm' to proceed with clearing all transcripts"
		slog.Warn("Clear transcripts operation rejected: missing confirmation")
		return response, nil
	}

	count, err := s.store.Clear()
	if err != nil {
		err = errortypes.DatabaseError(err, "failed to clear transcript store")
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	slog.Info("Successfully cleared transcript entries", "count", count)
	response.Deleted = count
	return response, nil
}

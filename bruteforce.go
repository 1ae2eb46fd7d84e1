// Package bruteforce assembles the reverse-vector service: an iterative
// search that recovers a text from its embedding vector by repeatedly
// scoring guesses against a target and asking a chat model for better ones.
package bruteforce

import (
	"context"
	"log/slog"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/config"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/errortypes"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/oracle"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/proposer"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/proposer/providers"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/search"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/server"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/transcript"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/vector"
)

// Config represents the configuration for the reverse-vector service.
type Config = config.Config

// Params configures one inversion session. MatchError and CostLimit are
// optional: nil means "use the configured default", while an explicit
// pointer is honored as-is, including a literal zero. A zero MatchError
// demands exact recovery and a zero CostLimit stops after the initial
// score.
type Params struct {
	TargetText   string    // Text whose embedding is the target. Embedded once at session start.
	TargetVector []float32 // Pre-computed target vector. Takes precedence over TargetText.
	InitialGuess string    // First guess to score. Required.
	Clue         string    // Optional hint forwarded to the proposal oracle.

	MatchError *float64 // Stopping error bound. Nil uses the configured default.
	CostLimit  *float64 // Spend ceiling in dollars. Nil uses the configured default.

	BestSetSize      int // Capacity of the best-guess set. Zero uses the configured default.
	RecentWindowSize int // Capacity of the recent-guess window. Zero uses the configured default.
}

// Float64 returns a pointer to v, for filling the optional Params bounds.
func Float64(v float64) *float64 {
	return &v
}

// Result is the outcome of one inversion session.
type Result = search.Result

// Service wires the oracles, the search controller, and the transcript
// store together behind one handle.
type Service struct {
	config     *config.Config
	store      transcript.Store
	embedder   vector.Embedder
	proposer   proposer.Proposer
	adapter    *oracle.Adapter
	controller *search.Controller
	toolServer server.InversionToolServer
	logger     *slog.Logger
}

// ServiceOptions defines the options for creating a new Service.
type ServiceOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewService creates a new reverse-vector Service with the given options.
// If opts.Config is provided, it is used directly. Otherwise, if
// opts.ConfigPath is provided, configuration is loaded from that path.
// If neither is provided, DefaultConfig() is used.
func NewService(opts ServiceOptions) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for service initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for service initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration")
		cfg = DefaultConfig()
	}

	store, embedder, prop, err := CreateComponents(cfg, logger)
	if err != nil {
		logger.Error("Failed to create components during service initialization", "error", err)
		return nil, err
	}

	adapter := oracle.NewAdapter(oracle.AdapterConfig{
		Embedder:          embedder,
		Proposer:          prop,
		MaxAttempts:       cfg.Oracle.MaxAttempts,
		EmbedRetryDelay:   cfg.EmbedRetryDelay(),
		ProposeRetryDelay: cfg.ProposeRetryDelay(),
		EmbedCostPerCall:  cfg.Embedder.CostPerCall,
		Logger:            logger,
	})

	controller := search.NewController(search.ControllerConfig{
		Oracle:     adapter,
		Transcript: store,
		Logger:     logger,
	})

	logger.Info("Initializing inversion tool server component")
	mcpServer := server.NewInversionToolServer(controller, store, server.SearchDefaults{
		MatchError:       cfg.Search.MatchError,
		CostLimit:        cfg.Search.CostLimit,
		BestSetSize:      cfg.Search.BestSetSize,
		RecentWindowSize: cfg.Search.RecentWindowSize,
	})
	err = mcpServer.Initialize()
	if err != nil {
		logger.Error("Failed to initialize MCP inversion tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP inversion tool server component")
	}

	logger.Info("Reverse-vector service successfully initialized")
	return &Service{
		config:     cfg,
		store:      store,
		embedder:   embedder,
		proposer:   prop,
		adapter:    adapter,
		controller: controller,
		toolServer: mcpServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the reverse-vector
// service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Invert runs one inversion session with the configured defaults filled in
// for any unset parameters.
func (s *Service) Invert(ctx context.Context, params Params) (Result, error) {
	run := search.Params{
		TargetText:       params.TargetText,
		TargetVector:     params.TargetVector,
		InitialGuess:     params.InitialGuess,
		Clue:             params.Clue,
		MatchError:       s.config.Search.MatchError,
		CostLimit:        s.config.Search.CostLimit,
		BestSetSize:      params.BestSetSize,
		RecentWindowSize: params.RecentWindowSize,
	}
	if params.MatchError != nil {
		run.MatchError = *params.MatchError
	}
	if params.CostLimit != nil {
		run.CostLimit = *params.CostLimit
	}
	if run.BestSetSize <= 0 {
		run.BestSetSize = s.config.Search.BestSetSize
	}
	if run.RecentWindowSize <= 0 {
		run.RecentWindowSize = s.config.Search.RecentWindowSize
	}

	return s.controller.Run(ctx, run)
}

// Transcript returns the stored transcript of a session, ordered by
// sequence number.
func (s *Service) Transcript(sessionID string) ([]transcript.Entry, error) {
	return s.store.Session(sessionID)
}

// Start starts the MCP tool server on the stdio transport. It blocks until
// the transport closes.
func (s *Service) Start() error {
	s.logger.Info("Starting reverse-vector service")
	return s.toolServer.Start()
}

// Stop stops the service and closes the transcript store.
func (s *Service) Stop() error {
	s.logger.Info("Stopping reverse-vector service")
	err := s.toolServer.Stop()
	if err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	s.logger.Info("Closing transcript store")
	err = s.store.Close()
	if err != nil {
		s.logger.Error("Failed to close transcript store", "error", err)
		return err
	}

	s.logger.Info("Reverse-vector service stopped")
	return nil
}

// GetStore returns the transcript store instance used by the service.
func (s *Service) GetStore() transcript.Store {
	return s.store
}

// GetEmbedder returns the embedder instance used by the service.
func (s *Service) GetEmbedder() vector.Embedder {
	return s.embedder
}

// GetAdapter returns the oracle adapter, which also carries the run metrics.
func (s *Service) GetAdapter() *oracle.Adapter {
	return s.adapter
}

// CreateComponents creates and initializes the components of the
// reverse-vector service without creating a Service instance. This is
// useful for callers that need direct access to the store and the oracles.
func CreateComponents(cfg *Config, logger *slog.Logger) (transcript.Store, vector.Embedder, proposer.Proposer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize SQLite transcript store
	logger.Info("Initializing SQLite transcript store", "path", cfg.Transcript.SQLitePath)
	store := transcript.NewSQLiteStore()
	err := store.Initialize(cfg.Transcript.SQLitePath)
	if err != nil {
		logger.Error("Failed to initialize SQLite transcript store", "path", cfg.Transcript.SQLitePath, "error", err)
		return nil, nil, nil, errortypes.DatabaseError(err, "Failed to initialize SQLite transcript store")
	}

	// Initialize embedder
	logger.Info("Initializing embedder", "provider", cfg.Embedder.Provider, "model", cfg.Embedder.Model)
	var emb vector.Embedder
	dimensions := cfg.Embedder.Dimensions
	if dimensions <= 0 {
		dimensions = vector.DefaultEmbeddingDimensions
	}

	switch cfg.Embedder.Provider {
	case "ollama", "":
		emb = vector.NewOllamaEmbedder(vector.OllamaEmbedderConfig{
			BaseURL: cfg.Embedder.BaseURL,
			Model:   cfg.Embedder.Model,
		})
	case "openai":
		emb = vector.NewOpenAIEmbedder(vector.OpenAIEmbedderConfig{
			BaseURL: cfg.Embedder.BaseURL,
			APIKey:  cfg.Embedder.ApiKey,
			Model:   cfg.Embedder.Model,
		})
	case "mock":
		emb = vector.NewMockEmbedder(dimensions)
	default:
		logger.Warn("Unknown embedder provider, using mock embedder", "provider", cfg.Embedder.Provider)
		emb = vector.NewMockEmbedder(dimensions)
	}

	if err := emb.Initialize(); err != nil {
		logger.Error("Failed to initialize embedder", "error", err)
		return nil, nil, nil, errortypes.ConfigError(err, "Failed to initialize embedder")
	}

	// Initialize proposer
	logger.Info("Initializing proposer", "provider", cfg.Proposer.Provider, "model", cfg.Proposer.Model)
	chatProvider, err := providers.NewProvider(cfg.Proposer.Provider, providers.Config{
		APIKey:  cfg.Proposer.ApiKey,
		ModelID: cfg.Proposer.Model,
		BaseURL: cfg.Proposer.BaseURL,
	})
	if err != nil {
		logger.Error("Failed to create chat provider", "provider", cfg.Proposer.Provider, "error", err)
		return nil, nil, nil, errortypes.ConfigError(err, "Failed to create chat provider")
	}

	prop := proposer.NewLLMProposer(proposer.LLMProposerConfig{
		Provider:            chatProvider,
		PromptCostPer1K:     cfg.Proposer.PromptCostPer1K,
		CompletionCostPer1K: cfg.Proposer.CompletionCostPer1K,
	})
	if err := prop.Initialize(); err != nil {
		logger.Error("Failed to initialize proposer", "error", err)
		return nil, nil, nil, errortypes.ConfigError(err, "Failed to initialize proposer")
	}

	logger.Info("Components successfully initialized")
	return store, emb, prop, nil
}

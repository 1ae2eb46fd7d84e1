package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the reverse-vector configuration
type Config struct {
	// Target identifies the mystery text for runs driven purely by
	// configuration. Flags override it.
	Target struct {
		// Text is embedded once at session start; only its vector is
		// searched against.
		Text string `json:"text" env:"TARGET_TEXT"`
	} `json:"target"`

	// Search contains the stopping bounds and history sizes for a session.
	Search struct {
		// InitialGuess is the first text scored when none is given on the
		// command line.
		InitialGuess string `json:"initial_guess" env:"INITIAL_GUESS"`

		// Clue is an optional hint forwarded to the proposal oracle.
		Clue string `json:"clue" env:"CLUE"`

		// MatchError is the error at or below which a guess counts as a
		// recovery of the target.
		MatchError float64 `json:"match_error" env:"MATCH_ERROR" validate:"min:0"`

		// CostLimit is the budget at which the search gives up.
		CostLimit float64 `json:"cost_limit" env:"COST_LIMIT" validate:"min:0"`

		// BestSetSize is the number of top guesses fed back to the
		// proposal oracle.
		BestSetSize int `json:"best_set_size" env:"BEST_SET_SIZE" validate:"min:1"`

		// RecentWindowSize is the number of recent rejected guesses fed
		// back to the proposal oracle.
		RecentWindowSize int `json:"recent_window_size" env:"RECENT_WINDOW_SIZE" validate:"min:1"`
	} `json:"search"`

	// Embedder contains embedding-oracle configuration.
	Embedder struct {
		// Provider is the name of the embedding provider to use
		// ("ollama", "openai", "mock").
		Provider string `json:"provider" env:"EMBEDDER_PROVIDER"`

		// Model is the embedding model identifier.
		Model string `json:"model" env:"EMBEDDER_MODEL"`

		// BaseURL overrides the provider endpoint.
		BaseURL string `json:"base_url" env:"EMBEDDER_BASE_URL"`

		// ApiKey is the API key for the embedding provider.
		ApiKey string `json:"api_key" env:"EMBEDDER_API_KEY"`

		// Dimensions is the number of dimensions for the embeddings.
		Dimensions int `json:"dimensions" env:"EMBEDDER_DIMENSIONS" validate:"min:1"`

		// CostPerCall is the flat cost accrued per embedding call.
		CostPerCall float64 `json:"cost_per_call" env:"EMBEDDER_COST_PER_CALL"`
	} `json:"embedder"`

	// Proposer contains proposal-oracle configuration.
	Proposer struct {
		// Provider is the name of the chat provider to use
		// ("ollama", "openai").
		Provider string `json:"provider" env:"PROPOSER_PROVIDER"`

		// Model is the chat model identifier.
		Model string `json:"model" env:"PROPOSER_MODEL"`

		// BaseURL overrides the provider endpoint.
		BaseURL string `json:"base_url" env:"PROPOSER_BASE_URL"`

		// ApiKey is the API key for the chat provider.
		ApiKey string `json:"api_key" env:"PROPOSER_API_KEY"`

		// PromptCostPer1K prices prompt tokens for budget accounting.
		PromptCostPer1K float64 `json:"prompt_cost_per_1k" env:"PROPOSER_PROMPT_COST_PER_1K"`

		// CompletionCostPer1K prices completion tokens for budget accounting.
		CompletionCostPer1K float64 `json:"completion_cost_per_1k" env:"PROPOSER_COMPLETION_COST_PER_1K"`
	} `json:"proposer"`

	// Oracle contains the retry policy shared by both oracle calls.
	Oracle struct {
		// MaxAttempts is the total number of tries per oracle call.
		MaxAttempts int `json:"max_attempts" env:"ORACLE_MAX_ATTEMPTS" validate:"min:1"`

		// EmbedRetryDelaySeconds is the base delay between embedding
		// attempts.
		EmbedRetryDelaySeconds int `json:"embed_retry_delay_seconds" env:"ORACLE_EMBED_RETRY_DELAY_SECONDS" validate:"min:0"`

		// ProposeRetryDelaySeconds is the base delay between proposal
		// attempts.
		ProposeRetryDelaySeconds int `json:"propose_retry_delay_seconds" env:"ORACLE_PROPOSE_RETRY_DELAY_SECONDS" validate:"min:0"`
	} `json:"oracle"`

	// Transcript contains storage-related configuration.
	Transcript struct {
		// SQLitePath is the path to the SQLite database file.
		SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH" validate:"required"`
	} `json:"transcript"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`

		// FilePath, when set, tees log output into a file.
		FilePath string `json:"file_path" env:"LOG_FILE_PATH"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename   = ".reversevectorconfig"
	DefaultSQLitePath       = ".reversevector.db"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultLogFilePath      = "reverse_vector.log"
	DefaultMatchError       = 0.6
	DefaultCostLimit        = 60.0
	DefaultBestSetSize      = 3
	DefaultRecentWindowSize = 8
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Search.MatchError = DefaultMatchError
	config.Search.CostLimit = DefaultCostLimit
	config.Search.BestSetSize = DefaultBestSetSize
	config.Search.RecentWindowSize = DefaultRecentWindowSize
	config.Embedder.Provider = "ollama"
	config.Embedder.Model = "nomic-embed-text"
	config.Embedder.Dimensions = 768
	config.Proposer.Provider = "ollama"
	config.Proposer.Model = "llama3.2:3b"
	config.Oracle.MaxAttempts = 5
	config.Oracle.EmbedRetryDelaySeconds = 7
	config.Oracle.ProposeRetryDelaySeconds = 5
	config.Transcript.SQLitePath = DefaultSQLitePath
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	config.Logging.FilePath = DefaultLogFilePath
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Create a default logger for configuration loading
	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create default configuration
	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	// Check if the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// File doesn't exist, return default config
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		cfg.configPath = configPath
		cfg.lastModifiedAt = time.Now()
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	// Create configurator instance
	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider("REVERSEVECTOR")).
		WithValidator(configurator.NewDefaultValidator())

	// Load configuration
	ctx := context.Background()
	if err := config.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Store the config path for future operations
	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// EmbedRetryDelay returns the embedding retry delay as a duration.
func (c *Config) EmbedRetryDelay() time.Duration {
	return time.Duration(c.Oracle.EmbedRetryDelaySeconds) * time.Second
}

// ProposeRetryDelay returns the proposal retry delay as a duration.
func (c *Config) ProposeRetryDelay() time.Duration {
	return time.Duration(c.Oracle.ProposeRetryDelaySeconds) * time.Second
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Save using configurator's SaveToFile function
	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Update internal state
	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	bruteforce "github.com/ranfysvalle02/embedding-bruteforce"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/config"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/errortypes"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/logger"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/search"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
		target     = flag.String("target", "", "mystery text to embed once and then recover")
		guess      = flag.String("guess", "", "initial guess text")
		clue       = flag.String("clue", "", "optional clue forwarded to the proposal model")
		matchError = flag.Float64("match-error", 0, "stopping error bound (unset uses the configured default)")
		costLimit  = flag.Float64("cost-limit", 0, "stopping cost bound (unset uses the configured default)")
	)
	flag.Parse()

	// Load .env before anything reads the environment.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded environment from .env")
	}

	appLogger := setupLogging()
	defer appLogger.Close()

	appLogger.Info("reverse-vector - starting")

	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		errortypes.LogError(nil, err)
		appLogger.Fatal("Failed to load configuration")
	}

	applyLoggingConfig(appLogger, cfg)

	params := bruteforce.Params{
		TargetText:   *target,
		InitialGuess: *guess,
		Clue:         *clue,
	}

	// Flags fall back to the configured target and guess when omitted.
	if params.TargetText == "" {
		params.TargetText = cfg.Target.Text
	}
	if params.InitialGuess == "" {
		params.InitialGuess = cfg.Search.InitialGuess
	}
	if params.Clue == "" {
		params.Clue = cfg.Search.Clue
	}
	if params.TargetText == "" || params.InitialGuess == "" {
		appLogger.Fatal("a target and an initial guess are required, via flags or the configuration file")
	}

	// A bound is passed through only when its flag was set on the command
	// line, so an explicit zero is distinguishable from "use the default".
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "match-error":
			params.MatchError = bruteforce.Float64(*matchError)
		case "cost-limit":
			params.CostLimit = bruteforce.Float64(*costLimit)
		}
	})

	svc, err := bruteforce.NewService(bruteforce.ServiceOptions{Config: cfg})
	if err != nil {
		errortypes.LogError(nil, err)
		appLogger.Fatal("Failed to initialize service")
	}
	defer svc.Stop()

	result, err := svc.Invert(context.Background(), params)
	if err != nil {
		errortypes.LogError(nil, err)
		appLogger.Fatal("Inversion session failed")
	}

	printResult(result)

	if result.State == search.StateBudgetExceeded {
		os.Exit(1)
	}
}

// printResult writes the session outcome to stdout for the human operator.
func printResult(result bruteforce.Result) {
	fmt.Printf("\nsession %s finished: %s\n", result.SessionID, result.State)
	fmt.Printf("guesses made: %d, cost spent: %.4f, elapsed: %s\n",
		result.GuessesMade, result.CostSpent, result.Elapsed.Round(time.Millisecond))
	fmt.Println("best guesses:")
	for _, rec := range result.Best {
		fmt.Printf("  %s\n", rec)
	}
}

// setupLogging configures and returns the application logger
func setupLogging() *logger.Logger {
	cfg := logger.DefaultConfig()

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		cfg.Level = logger.ParseLevel(levelStr)
	}
	cfg.FilePath = config.DefaultLogFilePath

	appLogger := logger.New(cfg)
	logger.SetDefaultLogger(appLogger)

	return appLogger
}

// applyLoggingConfig adjusts the logger from the loaded configuration.
func applyLoggingConfig(appLogger *logger.Logger, cfg *config.Config) {
	if cfg.Logging.Level != "" {
		appLogger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		appLogger.Info("Log level set to %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format == "json" {
		appLogger.SetFormat(logger.JSON)
		appLogger.Info("Log format set to JSON")
	}
}

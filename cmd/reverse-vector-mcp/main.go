package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	bruteforce "github.com/ranfysvalle02/embedding-bruteforce"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/config"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/errortypes"
	"github.com/ranfysvalle02/embedding-bruteforce/internal/logger"
)

func main() {
	// Load .env before anything reads the environment.
	godotenv.Load()

	// Initialize logging first thing. Stdout carries the MCP protocol, so
	// log output stays on stderr plus the transcript file.
	appLogger := setupLogging()
	defer appLogger.Close()

	appLogger.Info("reverse-vector MCP Server - Starting...")

	cfg, err := config.LoadConfigWithPath(configPath())
	if err != nil {
		errortypes.LogError(nil, err)
		appLogger.Fatal("Failed to load configuration")
	}

	if cfg.Logging.Level != "" {
		appLogger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		appLogger.Info("Log level set to %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format == "json" {
		appLogger.SetFormat(logger.JSON)
		appLogger.Info("Log format set to JSON")
	}

	svc, err := bruteforce.NewService(bruteforce.ServiceOptions{Config: cfg})
	if err != nil {
		errortypes.LogError(nil, err)
		appLogger.Fatal("Failed to initialize service")
	}
	appLogger.Info("Service initialized")

	// Handle graceful shutdown
	setupSignalHandler(svc, appLogger)

	// Start the MCP server (this will block until the transport closes)
	appLogger.Info("Starting MCP server...")
	if err := svc.Start(); err != nil {
		err = errortypes.APIError(err, "MCP server failed")
		errortypes.LogError(nil, err)
		appLogger.Fatal("Failed to start MCP server")
	}
}

// configPath resolves the configuration file path from the environment.
func configPath() string {
	if path := os.Getenv("REVERSEVECTOR_CONFIG"); path != "" {
		return path
	}
	return config.DefaultConfigFilename
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

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(svc *bruteforce.Service, log *logger.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")

		if err := svc.Stop(); err != nil {
			err = errortypes.DatabaseError(err, "Error stopping service during shutdown")
			errortypes.LogError(nil, err)
		} else {
			log.Info("Service stopped successfully")
		}

		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}

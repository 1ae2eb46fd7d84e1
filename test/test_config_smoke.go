package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ranfysvalle02/embedding-bruteforce/internal/config"
)

// Manual smoke check for the configuration provider chain: defaults,
// file round-trip, and environment override, in that precedence order.
func main() {
	fmt.Println("=== Defaults ===")
	cfg, err := config.LoadConfigWithPath(filepath.Join(os.TempDir(), "reversevector-missing.json"))
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("SQLite Path: %s\n", cfg.Transcript.SQLitePath)
	fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
	fmt.Printf("Match Error: %.2f\n", cfg.Search.MatchError)
	fmt.Printf("Cost Limit: %.2f\n", cfg.Search.CostLimit)

	fmt.Println("\n=== File Round-Trip ===")
	path := filepath.Join(os.TempDir(), "reversevector-smoke.json")
	cfg.Target.Text = "Be mindful"
	cfg.Search.InitialGuess = "Be"
	cfg.Search.MatchError = 0.25
	if err := cfg.SaveToFile(path); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(path)

	cfg2, err := config.LoadConfigWithPath(path)
	if err != nil {
		fmt.Printf("Error reloading config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Target Text: %s\n", cfg2.Target.Text)
	fmt.Printf("Initial Guess: %s\n", cfg2.Search.InitialGuess)
	fmt.Printf("Match Error: %.2f\n", cfg2.Search.MatchError)

	fmt.Println("\n=== Environment Override ===")
	os.Setenv("REVERSEVECTOR_MATCH_ERROR", "0.10")
	defer os.Unsetenv("REVERSEVECTOR_MATCH_ERROR")

	cfg3, err := config.LoadConfigWithPath(path)
	if err != nil {
		fmt.Printf("Error reloading config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Match Error: %.2f (file said %.2f)\n", cfg3.Search.MatchError, cfg2.Search.MatchError)

	fmt.Println("\n=== Smoke Check Complete ===")
}

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/halfbit/cmd/memctl/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool

	// cfg holds the environment defaults, loaded before any command runs.
	cfg = Config{LogLevel: "warn", ArenaSize: 4096}
)

var rootCmd = &cobra.Command{
	Use:   "memctl",
	Short: "Replay and audit allocation scenarios",
	Long: `memctl replays YAML allocation scenarios against the halfbit allocators
and reports every step outcome, overlapping block, and leak.

Environment:
  MEMCTL_LOG_LEVEL   debug, info, warn or error (default warn)
  MEMCTL_LOG_JSON    emit JSON log records (default false)
  MEMCTL_ARENA_SIZE  buffer size for bump and single allocators (default 4096)`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logs")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

// setup loads the environment and initialises the logger.
func setup(*cobra.Command, []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = loaded

	level, _ := parseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	logger.Init(logger.Options{Level: level, JSON: cfg.LogJSON})
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

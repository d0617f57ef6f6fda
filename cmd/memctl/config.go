package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix of every environment variable memctl reads.
const envPrefix = "MEMCTL"

// Config holds the defaults memctl reads from the environment. Flags override them.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogJSON   bool   `envconfig:"LOG_JSON" default:"false"`
	ArenaSize int    `envconfig:"ARENA_SIZE" default:"4096"`
}

// loadConfig reads MEMCTL_* variables.
func loadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	if cfg.ArenaSize <= 0 {
		return Config{}, fmt.Errorf("%s_ARENA_SIZE must be positive, got %d", envPrefix, cfg.ArenaSize)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseLevel maps a level name to its slog level.
func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

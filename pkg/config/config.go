// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Library location on disk.
	LibraryPath string

	// Optional YAML layout profile used when none is given on the command line.
	LayoutPath string

	LogLevel string

	// Quiet period before a changed source file is re-segmented.
	WatchDebounce time.Duration

	// HTTP server timeouts.
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("TREATISE_PORT", "8080"),

		LibraryPath: envOr("TREATISE_LIBRARY", ".treatise"),
		LayoutPath:  os.Getenv("TREATISE_LAYOUT"),

		LogLevel: envOr("TREATISE_LOG_LEVEL", "info"),

		WatchDebounce: envDuration("TREATISE_WATCH_DEBOUNCE", 300*time.Millisecond),

		ReadTimeout:     envDuration("TREATISE_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    envDuration("TREATISE_WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: envDuration("TREATISE_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 300 * time.Millisecond
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("TREATISE_PORT must be a port number, got %q", c.Port)
	}
	if c.LibraryPath == "" {
		return fmt.Errorf("TREATISE_LIBRARY must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("TREATISE_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// NewLogger builds a logger at the configured level. Long-running commands
// log JSON; one-shot commands log human-readable text.
func (c Config) NewLogger(w io.Writer, json bool) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

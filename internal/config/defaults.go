package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config holds the tool settings.
type Config struct {
	LogLevel string      `mapstructure:"log_level"` // debug, info, warn, error
	Workers  int         `mapstructure:"workers"`   // 0 = one per CPU
	Strict   bool        `mapstructure:"strict"`    // fail documents on schema violations
	Watch    WatchConfig `mapstructure:"watch"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	InitialScan bool          `mapstructure:"initial_scan"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Workers:  0,
		Strict:   false,
		Watch: WatchConfig{
			Debounce:    2 * time.Second,
			InitialScan: true,
		},
	}
}

// Level parses the configured log level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

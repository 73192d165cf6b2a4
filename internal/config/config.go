// Package config loads the tool configuration. The extraction heuristics
// themselves take no configuration; this governs the outer tooling only
// (workers, logging, watch behavior).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a config manager and loads the initial config.
func NewManager(cfgFile string) (*Manager, error) {
	m := &Manager{}

	if err := m.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.config = cfg

	return m, nil
}

// initViper sets up viper with defaults, env overrides and the optional
// config file.
func (m *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("workers", defaults.Workers)
	viper.SetDefault("strict", defaults.Strict)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("watch.initial_scan", defaults.Watch.InitialScan)

	viper.SetEnvPrefix("FREIGHTSIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.freightsift")
	}

	// The config file is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func (m *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// WatchConfig enables hot-reloading: the config file is re-read on change
// and the in-memory config swapped.
func (m *Manager) WatchConfig() {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := m.load()
		if err != nil {
			slog.Warn("config reload failed", "error", err)
			return
		}
		m.mu.Lock()
		m.config = cfg
		m.mu.Unlock()
		slog.Info("config reloaded")
	})
	viper.WatchConfig()
}

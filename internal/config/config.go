package config

import (
	"fmt"
	"time"

	config_pkg "github.com/kumarabd/gokit/config"
	"github.com/kumarabd/validation-plane/tuner/internal/metrics"
	"github.com/kumarabd/validation-plane/tuner/pkg/cache"
	"github.com/kumarabd/validation-plane/tuner/pkg/notifier"
	"github.com/kumarabd/validation-plane/tuner/pkg/server"
	"github.com/kumarabd/validation-plane/tuner/pkg/store"
)

var (
	ApplicationName    = "tuner"
	ApplicationVersion = "dev"
)

type Config struct {
	Server   *server.Config   `json:"server,omitempty" yaml:"server,omitempty"`
	Store    *store.Config    `json:"store" yaml:"store"`
	Notifier *notifier.Config `json:"notifier" yaml:"notifier"`
	History  *cache.Config    `json:"history" yaml:"history"`
	Metrics  *metrics.Options `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// New creates a new config instance
func New() (*Config, error) {
	// Create default config object
	configObject := &Config{
		Server: &server.Config{
			HTTP: &server.HTTPConfig{
				Host:         "0.0.0.0",
				Port:         "8080",
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
				MaxBodyBytes: 1048576, // 1MB request bodies
				HistoryLimit: 20,      // Revisions per history page
			},
			GRPC: &server.GRPCConfig{
				Host:                 "0.0.0.0",
				Port:                 "9090",
				MaxConcurrentStreams: 100,
			},
		},
		Store: &store.Config{
			Path:     "options.json",
			MaxBytes: 1048576, // 1MB document cap
			Watch:    true,    // Reload on external edits
		},
		Notifier: &notifier.Config{
			Enabled:            true,
			Endpoints:          []string{},
			Timeout:            5 * time.Second,
			MaxRetries:         2,
			RetryBaseDelay:     20 * time.Millisecond,
			QueueSize:          64,
			FlushInterval:      2 * time.Second,
			BreakerMaxFailures: 3,
			BreakerCooldown:    30 * time.Second,
		},
		History: &cache.Config{
			TTL:        24 * time.Hour,
			MaxEntries: 100,
		},
		Metrics: &metrics.Options{},
	}

	// Load config using gokit config package
	finalConfig, err := config_pkg.New(configObject)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Safe type assertion
	if finalConfig == nil {
		return nil, fmt.Errorf("config is nil")
	}

	cfg, ok := finalConfig.(*Config)
	if !ok {
		return nil, fmt.Errorf("config type assertion failed: expected *Config, got %T", finalConfig)
	}

	return cfg, nil
}

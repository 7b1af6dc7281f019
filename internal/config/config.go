// Package config provides configuration management for the yield analysis
// MCP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the MCP server
type Config struct {
	// Knowledge base catalog (loaded at query time)
	KBPath string `json:"kb_path"`

	// Analysis defaults
	MaintenanceEventType string `json:"maintenance_event_type"`

	// Health HTTP server (0 disables it)
	HealthPort      int    `json:"health_port"`
	HealthBindAddr  string `json:"health_bind_addr"`
	MetricsEndpoint bool   `json:"metrics_endpoint"`

	// Rate limiting of tool executions
	RateLimit       int  `json:"rate_limit"` // executions per second
	RateLimitBurst  int  `json:"rate_limit_burst"`
	EnableRateLimit bool `json:"enable_rate_limit"`

	// Observability
	EnableTracing  bool `json:"enable_tracing"`
	EnableAuditLog bool `json:"enable_audit_log"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // json or console

	// Shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// Load configuration from environment variables and an optional config file
func Load() (*Config, error) {
	cfg := &Config{
		KBPath:               "knowledge_base.json",
		MaintenanceEventType: "maintenance_completed",
		HealthBindAddr:       "127.0.0.1",
		RateLimit:            20,
		RateLimitBurst:       10,
		EnableRateLimit:      true,
		EnableTracing:        false,
		EnableAuditLog:       true,
		LogLevel:             "info",
		LogFormat:            "json",
		ShutdownTimeout:      10 * time.Second,
	}

	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Environment variables take precedence
	loadFromEnv(cfg)

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid file path: path traversal detected")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is validated above
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return json.Unmarshal(data, cfg)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("YIELD_KB_PATH"); v != "" {
		cfg.KBPath = v
	}
	if v := os.Getenv("YIELD_MAINTENANCE_EVENT_TYPE"); v != "" {
		cfg.MaintenanceEventType = v
	}
	if v := os.Getenv("YIELD_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HealthPort = port
		}
	}
	if v := os.Getenv("YIELD_HEALTH_BIND_ADDR"); v != "" {
		cfg.HealthBindAddr = v
	}
	if v := os.Getenv("YIELD_METRICS_ENDPOINT"); v != "" {
		cfg.MetricsEndpoint = parseBool(v)
	}
	if v := os.Getenv("YIELD_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit = n
		}
	}
	if v := os.Getenv("YIELD_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("YIELD_ENABLE_RATE_LIMIT"); v != "" {
		cfg.EnableRateLimit = parseBool(v)
	}
	if v := os.Getenv("YIELD_ENABLE_TRACING"); v != "" {
		cfg.EnableTracing = parseBool(v)
	}
	if v := os.Getenv("YIELD_ENABLE_AUDIT_LOG"); v != "" {
		cfg.EnableAuditLog = parseBool(v)
	}
	if v := os.Getenv("YIELD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("YIELD_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("YIELD_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Validate checks the configuration for invalid combinations
func (c *Config) Validate() error {
	if c.KBPath == "" {
		return fmt.Errorf("knowledge base path cannot be empty")
	}
	if c.MaintenanceEventType == "" {
		return fmt.Errorf("maintenance event type cannot be empty")
	}
	if c.HealthPort < 0 || c.HealthPort > 65535 {
		return fmt.Errorf("health port must be between 0 and 65535, got %d", c.HealthPort)
	}
	if c.EnableRateLimit && c.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive when rate limiting is enabled, got %d", c.RateLimit)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got %q", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

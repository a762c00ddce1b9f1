// Package config loads and validates the bridge configuration from YAML.
// All durations are expressed in milliseconds in the file; accessors
// convert them to time.Duration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the bridge.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Matter  MatterConfig  `yaml:"matter"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	CORSEnable     bool   `yaml:"cors_enable"`
	ReadTimeoutMS  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms"`
}

// MatterConfig contains correlation bridge settings.
type MatterConfig struct {
	// StackLockTimeoutMS bounds device-stack lock acquisition.
	StackLockTimeoutMS int `yaml:"stack_lock_timeout_ms"`

	// RequestTimeoutMS bounds the wait for a request's terminal callback.
	RequestTimeoutMS int `yaml:"request_timeout_ms"`

	// TableLockTimeoutMS bounds correlation table lock acquisition.
	TableLockTimeoutMS int `yaml:"table_lock_timeout_ms"`

	// PartialResults returns items accumulated before a timeout instead
	// of discarding them.
	PartialResults bool `yaml:"partial_results"`
}

// StoreConfig contains node registry settings.
type StoreConfig struct {
	// Path is the SQLite database path. ":memory:" for ephemeral use.
	Path string `yaml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns the built-in configuration, matching the firmware
// defaults of the original controller.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "",
			Port:           8080,
			CORSEnable:     true,
			ReadTimeoutMS:  10000,
			WriteTimeoutMS: 10000,
		},
		Matter: MatterConfig{
			StackLockTimeoutMS: 2000,
			RequestTimeoutMS:   10000,
			TableLockTimeoutMS: 1000,
			PartialResults:     false,
		},
		Store: StoreConfig{
			Path: "./matter-bridge.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file and merges it over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Matter.StackLockTimeoutMS <= 0 {
		return fmt.Errorf("stack_lock_timeout_ms must be positive")
	}
	if c.Matter.RequestTimeoutMS <= 0 {
		return fmt.Errorf("request_timeout_ms must be positive")
	}
	if c.Matter.TableLockTimeoutMS <= 0 {
		return fmt.Errorf("table_lock_timeout_ms must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	return nil
}

// StackLockTimeout returns the stack lock bound as a duration.
func (c *MatterConfig) StackLockTimeout() time.Duration {
	return time.Duration(c.StackLockTimeoutMS) * time.Millisecond
}

// RequestTimeout returns the request wait bound as a duration.
func (c *MatterConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// TableLockTimeout returns the table lock bound as a duration.
func (c *MatterConfig) TableLockTimeout() time.Duration {
	return time.Duration(c.TableLockTimeoutMS) * time.Millisecond
}

// ReadTimeout returns the HTTP read timeout as a duration.
func (c *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns the HTTP write timeout as a duration.
func (c *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

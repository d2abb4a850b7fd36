// Package config loads server configuration from a file with environment
// overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig defines the HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr"`
	// CORSOrigins lists allowed origins for browser clients.
	CORSOrigins []string `json:"cors_origins"`
	// Metrics toggles the Prometheus /metrics endpoint.
	Metrics bool `json:"metrics"`
	// LoadTimeoutSeconds bounds the initial per-owner data load.
	LoadTimeoutSeconds int `json:"load_timeout_seconds"`
}

// DatabaseConfig defines the SQLite settings.
type DatabaseConfig struct {
	// Path is the SQLite file location. ":memory:" keeps data in process.
	Path string `json:"path"`
}

// LoggingConfig defines log output settings.
type LoggingConfig struct {
	// Level is one of zerolog's named levels: "debug", "info", "warn", "error".
	Level string `json:"level"`
	// Pretty switches from JSON to human-readable console output.
	Pretty bool `json:"pretty"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.LoadTimeoutSeconds == 0 {
		c.Server.LoadTimeoutSeconds = 8
	}
	if c.Database.Path == "" {
		c.Database.Path = "escala.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.LoadTimeoutSeconds <= 0 {
		return fmt.Errorf("server.load_timeout_seconds must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %s", c.Logging.Level)
	}
	return nil
}

// LoadTimeout returns the configured load bound as a duration.
func (c Config) LoadTimeout() time.Duration {
	return time.Duration(c.Server.LoadTimeoutSeconds) * time.Second
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads the file at path (YAML or JSON by extension), applies
// ESCALA_-prefixed environment overrides (ESCALA_SERVER__ADDR maps to
// server.addr), then defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("ESCALA_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "escala_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

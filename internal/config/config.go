// Package config loads the websession CLI configuration from an optional
// YAML/JSON file, then applies WEBSESSION_* environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "WEBSESSION_"

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full CLI configuration.
type Config struct {
	// Endpoint is the absolute URL of the remote session resource.
	Endpoint string `mapstructure:"endpoint" env:"ENDPOINT"`

	// Timeout bounds each request to the endpoint. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout" env:"TIMEOUT"`

	// PollInterval is how often `watch` refreshes the session.
	PollInterval time.Duration `mapstructure:"poll_interval" env:"POLL_INTERVAL"`

	LogLevel string `mapstructure:"log_level" env:"LOG_LEVEL"`

	// MetricsAddr exposes Prometheus metrics when set (e.g. ":2112").
	MetricsAddr string `mapstructure:"metrics_addr" env:"METRICS_ADDR"`

	Redis  RedisConfig  `mapstructure:"redis" envPrefix:"REDIS_"`
	Server ServerConfig `mapstructure:"server" envPrefix:"SERVER_"`
}

// RedisConfig enables the cross-process expiry channel.
type RedisConfig struct {
	// URL in the form redis://:password@localhost:6379/0. Empty disables Redis.
	URL    string `mapstructure:"url" env:"URL"`
	Prefix string `mapstructure:"prefix" env:"PREFIX"`
}

// ServerConfig configures the reference session endpoint started by `serve`.
type ServerConfig struct {
	Addr       string        `mapstructure:"addr" env:"ADDR"`
	TTL        time.Duration `mapstructure:"ttl" env:"TTL"`
	CookieName string        `mapstructure:"cookie_name" env:"COOKIE_NAME"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Endpoint:     "http://localhost:8080/session",
		Timeout:      10 * time.Second,
		PollInterval: 30 * time.Second,
		LogLevel:     "info",
		Redis: RedisConfig{
			Prefix: "websession:",
		},
		Server: ServerConfig{
			Addr:       ":8080",
			TTL:        30 * time.Minute,
			CookieName: "websession",
		},
	}
}

// Load reads the configuration file at path (YAML or JSON, by extension) on top of
// Default, then applies environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := readFile(path)
		if err != nil {
			return cfg, err
		}
		if err := decode(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: endpoint %q must be an absolute URL", ErrInvalidConfig, c.Endpoint)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	}
	if c.Server.TTL <= 0 {
		return fmt.Errorf("%w: server.ttl must be positive", ErrInvalidConfig)
	}
	return nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := make(map[string]any)
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return raw, nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

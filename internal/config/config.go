// Package config loads service configuration from an optional config.yaml
// and the process environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Tokens    TokensConfig    `koanf:"tokens"`
	Storage   StorageConfig   `koanf:"storage"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
	// RequestTimeout is a duration string like "30s".
	RequestTimeout string `koanf:"request_timeout"`
}

type AuthConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type RateLimitConfig struct {
	// Requests is the number of requests admitted per Window per client.
	Requests int `koanf:"requests"`
	// Window is a duration string like "1m".
	Window string `koanf:"window"`
	// IdleTTL is how long an inactive client entry is kept before pruning.
	IdleTTL string `koanf:"idle_ttl"`
}

type TokensConfig struct {
	// Models is an optional allow-list restricting which model identifiers
	// are accepted. Empty means any model a registered tokenizer supports.
	Models []string `koanf:"models"`
	// BatchConcurrency bounds parallel tokenization within one batch.
	BatchConcurrency int `koanf:"batch_concurrency"`
	// EnableEstimatorFallback counts unknown models with the chars/4
	// estimator instead of rejecting them.
	EnableEstimatorFallback bool `koanf:"enable_estimator_fallback"`
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // memory, sqlite, none
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// RequestTimeout parses the configured request timeout.
func (c ServerConfig) Timeout() time.Duration {
	return parseDuration(c.RequestTimeout, 30*time.Second)
}

// WindowDuration parses the configured rate limit window.
func (c RateLimitConfig) WindowDuration() time.Duration {
	return parseDuration(c.Window, time.Minute)
}

// IdleTTLDuration parses the configured idle client TTL.
func (c RateLimitConfig) IdleTTLDuration() time.Duration {
	return parseDuration(c.IdleTTL, 10*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Load reads configuration from config.yaml (if present) and the
// environment. Environment variables override file values.
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	// Load environment variables (can override file config)
	if err := k.Load(env.Provider("TOKENCOUNTER_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "TOKENCOUNTER_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Short-form env vars are the documented deployment contract and win
	// over everything else.
	for envVar, key := range map[string]string{
		"API_USERNAME": "auth.username",
		"API_PASSWORD": "auth.password",
		"API_PORT":     "server.port",
	} {
		if v := os.Getenv(envVar); v != "" {
			k.Set(key, v)
		}
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8000)
	}
	if !k.Exists("rate_limit.requests") {
		k.Set("rate_limit.requests", 30)
	}
	if !k.Exists("tokens.batch_concurrency") {
		k.Set("tokens.batch_concurrency", 4)
	}
	if !k.Exists("storage.type") {
		k.Set("storage.type", "memory")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Auth.Username == "" || c.Auth.Password == "" {
		return fmt.Errorf("auth credentials are required (API_USERNAME / API_PASSWORD)")
	}
	if c.RateLimit.Requests <= 0 {
		return fmt.Errorf("rate_limit.requests must be positive")
	}
	return nil
}

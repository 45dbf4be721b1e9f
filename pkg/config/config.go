// Package config loads gateway configuration from defaults and environment
// variables using koanf. Precedence: environment > defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for all gateway environment variables.
// SWAPI_SERVER_ADDR -> server.addr, SWAPI_AUTH_TOKEN_TTL -> auth.token_ttl.
const EnvPrefix = "SWAPI_"

// Config is the root gateway configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Redis    RedisConfig    `koanf:"redis"`
	Store    StoreConfig    `koanf:"store"`
	Auth     AuthConfig     `koanf:"auth"`
	Resolver ResolverConfig `koanf:"resolver"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
}

// UpstreamConfig holds settings for the upstream catalog API.
type UpstreamConfig struct {
	// BaseURL is the upstream catalog root, e.g. "https://swapi.dev/api".
	BaseURL string `koanf:"base_url"`

	// Timeout bounds every single upstream request.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the maximum upstream requests per second (0 = unlimited).
	RateLimit float64 `koanf:"rate_limit"`

	// Burst is the rate limiter burst size.
	Burst int `koanf:"burst"`
}

// RedisConfig holds cache backend settings.
type RedisConfig struct {
	Addr string `koanf:"addr"`
	DB   int    `koanf:"db"`
}

// StoreConfig holds document store settings.
type StoreConfig struct {
	// Path is the badger data directory. Empty means in-memory.
	Path string `koanf:"path"`
}

// AuthConfig holds token issuance settings.
type AuthConfig struct {
	// Secret signs access tokens (HS256). Required.
	Secret string `koanf:"secret"`

	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`
}

// ResolverConfig holds reference resolution settings.
type ResolverConfig struct {
	// Concurrency bounds parallel reference fetches within one relation.
	Concurrency int `koanf:"concurrency"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// Default returns the built-in defaults, overridden by environment variables
// during Load.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Upstream: UpstreamConfig{
			BaseURL:   "https://swapi.dev/api",
			Timeout:   15 * time.Second,
			RateLimit: 10,
			Burst:     20,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		Store: StoreConfig{
			Path: "data/gateway",
		},
		Auth: AuthConfig{
			Secret:   "",
			TokenTTL: 30 * time.Minute,
		},
		Resolver: ResolverConfig{
			Concurrency: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load builds the configuration from defaults and SWAPI_* environment
// variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envToPath), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive (got %s)", c.Upstream.Timeout)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth secret is required (set SWAPI_AUTH_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive (got %s)", c.Auth.TokenTTL)
	}
	if c.Resolver.Concurrency <= 0 {
		return fmt.Errorf("resolver concurrency must be positive (got %d)", c.Resolver.Concurrency)
	}
	return nil
}

// envToPath maps SWAPI_SECTION_SOME_KEY to section.some_key.
// Only the first underscore after the prefix separates the section; the rest
// of the key keeps its underscores.
func envToPath(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}

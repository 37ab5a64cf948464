// Package config loads the layered pokedex configuration: defaults, then a
// YAML file, then POKEDEX_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Sternrassler/pokedex/pkg/cache"
	"github.com/Sternrassler/pokedex/pkg/client"
	"github.com/Sternrassler/pokedex/pkg/logging"
	"github.com/Sternrassler/pokedex/pkg/pagination"
	"github.com/Sternrassler/pokedex/pkg/viewer"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: POKEDEX_API__BASE_URL -> api.base_url.
const EnvPrefix = "POKEDEX_"

// Load reads configuration from the given YAML file, when it exists, then
// overlays environment variable overrides. The result is validated.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

var validBackends = map[string]bool{
	CacheMemory: true,
	CacheRedis:  true,
	CacheNone:   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.UserAgent == "" {
		return fmt.Errorf("api.user_agent is required")
	}
	if c.API.MaxConcurrency <= 0 {
		return fmt.Errorf("api.max_concurrency must be positive")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must be non-negative")
	}

	if err := c.PagingPolicy().Validate(); err != nil {
		return fmt.Errorf("paging: %w", err)
	}
	if c.Paging.TriggerMargin < 0 {
		return fmt.Errorf("paging.trigger_margin must be non-negative")
	}

	if c.Filter.Debounce < 0 {
		return fmt.Errorf("filter.debounce must be non-negative")
	}

	if !validBackends[c.Cache.Backend] {
		return fmt.Errorf("invalid cache.backend %q: must be one of memory, redis, none", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}

	return nil
}

// PagingPolicy returns the controller page sizing policy.
func (c *Config) PagingPolicy() viewer.PagingConfig {
	return viewer.PagingConfig{
		FirstPageSize: c.Paging.FirstPageSize,
		PageSize:      c.Paging.PageSize,
	}
}

// Session returns the viewer session configuration.
func (c *Config) Session() viewer.Config {
	return viewer.Config{
		Paging:   c.PagingPolicy(),
		Debounce: c.Filter.Debounce,
	}
}

// Pool returns the fan-out pool configuration.
func (c *Config) Pool() pagination.Config {
	cfg := pagination.DefaultConfig()
	cfg.MaxConcurrency = c.API.MaxConcurrency
	return cfg
}

// Client returns the upstream client configuration for store.
func (c *Config) Client(store cache.Store) client.Config {
	cfg := client.DefaultConfig(store, c.API.UserAgent)
	cfg.BaseURL = c.API.BaseURL
	cfg.Timeout = c.API.Timeout
	cfg.CacheTTL = c.Cache.DefaultTTL
	cfg.Retry.MaxAttempts = c.API.MaxRetries
	if c.API.InitialBackoff > 0 {
		cfg.Retry.InitialBackoff = c.API.InitialBackoff
	}
	if cfg.Retry.MaxBackoff < cfg.Retry.InitialBackoff {
		cfg.Retry.MaxBackoff = 20 * cfg.Retry.InitialBackoff
	}
	return cfg
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}

package config

import "time"

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://pokeapi.co/api/v2",
			UserAgent:      "pokedex/0.1.0",
			Timeout:        30 * time.Second,
			MaxConcurrency: 8,
			MaxRetries:     3,
			InitialBackoff: 500 * time.Millisecond,
		},
		Paging: PagingConfig{
			FirstPageSize: 60,
			PageSize:      30,
			TriggerMargin: 20,
		},
		Filter: FilterConfig{
			Debounce: 200 * time.Millisecond,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			DefaultTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

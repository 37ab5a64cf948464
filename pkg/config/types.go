package config

import "time"

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the top-level pokedex configuration, corresponding to pokedex.yml.
type Config struct {
	API    APIConfig    `yaml:"api" koanf:"api"`
	Paging PagingConfig `yaml:"paging" koanf:"paging"`
	Filter FilterConfig `yaml:"filter" koanf:"filter"`
	Cache  CacheConfig  `yaml:"cache" koanf:"cache"`
	Log    LogConfig    `yaml:"log" koanf:"log"`
	Ops    OpsConfig    `yaml:"ops" koanf:"ops"`
}

// APIConfig holds upstream settings.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" koanf:"base_url"`
	UserAgent      string        `yaml:"user_agent" koanf:"user_agent"`
	Timeout        time.Duration `yaml:"timeout" koanf:"timeout"`
	MaxConcurrency int           `yaml:"max_concurrency" koanf:"max_concurrency"`

	// MaxRetries is the attempt budget per request, the first one included.
	MaxRetries     int           `yaml:"max_retries" koanf:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff" koanf:"initial_backoff"`
}

// PagingConfig holds the page sizing policy and the trigger margin in rows.
type PagingConfig struct {
	FirstPageSize int `yaml:"first_page_size" koanf:"first_page_size"`
	PageSize      int `yaml:"page_size" koanf:"page_size"`
	TriggerMargin int `yaml:"trigger_margin" koanf:"trigger_margin"`
}

// FilterConfig holds the query debounce.
type FilterConfig struct {
	Debounce time.Duration `yaml:"debounce" koanf:"debounce"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend       string        `yaml:"backend" koanf:"backend"`
	DefaultTTL    time.Duration `yaml:"default_ttl" koanf:"default_ttl"`
	RedisAddr     string        `yaml:"redis_addr" koanf:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" koanf:"redis_password"`
	RedisDB       int           `yaml:"redis_db" koanf:"redis_db"`
}

// LogConfig holds logging settings. File, when set, receives the logs.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Pretty bool   `yaml:"pretty" koanf:"pretty"`
	File   string `yaml:"file" koanf:"file"`
}

// OpsConfig holds the operator listener address; empty disables it.
type OpsConfig struct {
	Addr string `yaml:"addr" koanf:"addr"`
}

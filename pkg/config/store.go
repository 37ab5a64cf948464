package config

import (
	"context"
	"fmt"

	"github.com/Sternrassler/pokedex/pkg/cache"
	"github.com/redis/go-redis/v9"
)

// NewStore builds the configured response cache. The returned function
// releases the backend. The none backend yields a nil store, which
// disables caching.
func (c *Config) NewStore(ctx context.Context) (cache.Store, func() error, error) {
	noop := func() error { return nil }

	switch c.Cache.Backend {
	case CacheNone:
		return nil, noop, nil
	case CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		})
		store := cache.NewRedisStore(rdb)
		if err := store.Ping(ctx); err != nil {
			rdb.Close()
			return nil, noop, fmt.Errorf("connect to redis at %s: %w", c.Cache.RedisAddr, err)
		}
		return store, rdb.Close, nil
	default:
		return cache.NewMemoryStore(), noop, nil
	}
}

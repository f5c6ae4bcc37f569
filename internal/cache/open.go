package cache

import (
	"context"
	"fmt"

	"github.com/spherical/mcq-extractor/internal/config"
)

// Open builds the extraction cache selected by cfg. It returns nil when
// caching is disabled.
func Open(ctx context.Context, cfg config.CacheConfig) (*ExtractionCache, error) {
	var client Client

	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		client = NewMemoryClient(cfg.MaxEntries, 0)
	case "redis":
		rc, err := NewRedisClient(ctx, RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		client = rc
	default:
		return nil, fmt.Errorf("unknown cache driver: %s", cfg.Driver)
	}

	return NewExtractionCache(client, cfg.TTL), nil
}

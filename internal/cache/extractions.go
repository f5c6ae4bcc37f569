package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/spherical/mcq-extractor/internal/domain"
)

const documentKeyPrefix = "doc"

// ExtractionCache stores extraction results keyed by document checksum.
// It implements domain.ExtractionCache.
type ExtractionCache struct {
	client Client
	ttl    time.Duration
}

// NewExtractionCache wraps a Client.
func NewExtractionCache(client Client, ttl time.Duration) *ExtractionCache {
	return &ExtractionCache{client: client, ttl: ttl}
}

// DocumentKey returns the cache key for a document checksum.
func DocumentKey(sha256 string) string {
	return CacheKey(documentKeyPrefix, sha256)
}

// Get returns the cached extraction, or nil on a miss.
func (c *ExtractionCache) Get(ctx context.Context, sha256 string) (*domain.Extraction, error) {
	data, err := c.client.Get(ctx, DocumentKey(sha256))
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.CacheError("cache get failed", err)
	}

	var e domain.Extraction
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, domain.CacheError("cached extraction is corrupt", err)
	}
	return &e, nil
}

// Set caches an extraction under its checksum.
func (c *ExtractionCache) Set(ctx context.Context, e *domain.Extraction) error {
	data, err := json.Marshal(e)
	if err != nil {
		return domain.CacheError("marshal extraction", err)
	}
	if err := c.client.Set(ctx, DocumentKey(e.SHA256), data, c.ttl); err != nil {
		return domain.CacheError("cache set failed", err)
	}
	return nil
}

// Purge drops every cached extraction.
func (c *ExtractionCache) Purge(ctx context.Context) error {
	if err := c.client.DeleteByPrefix(ctx, documentKeyPrefix+":"); err != nil {
		return domain.CacheError("cache purge failed", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *ExtractionCache) Close() error {
	return c.client.Close()
}

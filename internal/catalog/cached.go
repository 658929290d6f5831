package catalog

import (
	"context"
	"log/slog"
	"time"

	"mediahub/internal/cache"
)

// Cached wraps a Searcher with a read-through query cache.
type Cached struct {
	provider string
	next     Searcher
	store    cache.Store
	ttl      time.Duration
	logger   *slog.Logger
}

func NewCached(provider string, next Searcher, store cache.Store, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{provider: provider, next: next, store: store, ttl: ttl, logger: logger}
}

// Search serves from the cache when possible. Cache failures degrade to a
// direct lookup and provider errors are never cached.
func (c *Cached) Search(ctx context.Context, query string) ([]Item, error) {
	key := cache.CatalogSearchKey(c.provider, normalizeQuery(query))

	var items []Item
	ok, err := cache.GetJSON(ctx, c.store, key, &items)
	if err != nil {
		c.logger.Warn("catalog_cache_read_failed", "provider", c.provider, "error", err)
	}
	if ok {
		return items, nil
	}

	items, err = c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, c.store, key, items, c.ttl); err != nil {
		c.logger.Warn("catalog_cache_write_failed", "provider", c.provider, "error", err)
	}
	return items, nil
}

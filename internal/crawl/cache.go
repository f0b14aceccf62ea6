package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/antoinebi/antoine/internal/model"
)

// Cache stores a company's last BatchCrawlResult keyed by base URL so a
// repeat run within the TTL skips the network entirely. Grounded on the
// teacher's GetCachedCrawl/SetCachedCrawl in internal/pipeline/crawl.go,
// minus the Postgres-backed store: crawling itself never owns persistence
// (spec §1), so the only implementation here is in-memory.
type Cache interface {
	Get(ctx context.Context, baseURL string) (model.BatchCrawlResult, bool)
	Set(ctx context.Context, baseURL string, result model.BatchCrawlResult, ttl time.Duration)
}

type cacheEntry struct {
	result    model.BatchCrawlResult
	expiresAt time.Time
}

// memoryCache is a mutex-guarded map, good enough for a single-process CLI
// run; a longer-lived service would back this with the store the teacher
// used instead.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewMemoryCache returns an in-memory Cache.
func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string]cacheEntry)}
}

func (c *memoryCache) Get(_ context.Context, baseURL string) (model.BatchCrawlResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[baseURL]
	if !ok {
		return model.BatchCrawlResult{}, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, baseURL)
		return model.BatchCrawlResult{}, false
	}
	return e.result, true
}

func (c *memoryCache) Set(_ context.Context, baseURL string, result model.BatchCrawlResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[baseURL] = cacheEntry{result: result, expiresAt: time.Now().Add(ttl)}
}

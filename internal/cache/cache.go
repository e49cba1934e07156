package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/lexdashapp/lexdash/internal/engine"
	"github.com/patrickmn/go-cache"
)

type Cache interface {
	Get(key string) (*engine.Report, bool)
	Set(key string, value *engine.Report) error
	Delete(key string)
	Clear()
	Stats() CacheStats
}

type CacheStats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Size       int       `json:"size"`
	LastAccess time.Time `json:"last_access"`
}

type ReportCache struct {
	cache   *cache.Cache
	mu      sync.RWMutex
	stats   CacheStats
	maxSize int
}

func NewCache(maxSize int, ttl time.Duration) Cache {
	return &ReportCache{
		cache:   cache.New(ttl, ttl*2),
		maxSize: maxSize,
		stats:   CacheStats{},
	}
}

func (c *ReportCache) Get(key string) (*engine.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()

	if data, found := c.cache.Get(key); found {
		c.stats.Hits++
		if report, ok := data.(*engine.Report); ok {
			return report, true
		}
	}

	c.stats.Misses++
	return nil, false
}

func (c *ReportCache) Set(key string, value *engine.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache.ItemCount() >= c.maxSize {
		c.removeOldest()
	}

	c.cache.Set(key, value, cache.DefaultExpiration)
	return nil
}

func (c *ReportCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Delete(key)
}

func (c *ReportCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	c.stats = CacheStats{}
}

func (c *ReportCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.stats.Size = c.cache.ItemCount()
	return c.stats
}

func (c *ReportCache) removeOldest() {
	items := c.cache.Items()
	if len(items) == 0 {
		return
	}

	var oldestKey string
	var oldestTime time.Time

	for key, item := range items {
		if oldestTime.IsZero() || item.Expiration < oldestTime.Unix() {
			oldestKey = key
			oldestTime = time.Unix(item.Expiration, 0)
		}
	}

	if oldestKey != "" {
		c.cache.Delete(oldestKey)
	}
}

// GenerateCacheKey builds a report cache key. The engine revision is part of
// the key, so a cached report can only ever be served when no mutation
// happened since it was generated.
func GenerateCacheKey(revision uint64, periodStart, periodEnd time.Time) string {
	return fmt.Sprintf("report:%d:%s:%s", revision, periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"))
}

// Package cache wraps the in-process TTL store used for dashboard and
// summary aggregates. The cache is never a source of truth: every entry
// is recomputable from template and instance state, the TTL bounds
// staleness, and write paths invalidate proactively after commit.
package cache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DashboardKey is the fixed key for the dashboard overview snapshot
const DashboardKey = "dashboard:overview"

// Cache is a TTL key/value store with named invalidation helpers
type Cache struct {
	store  *gocache.Cache
	logger *zap.Logger
}

// New creates a cache with the given default TTL and cleanup interval
func New(defaultTTL, cleanupInterval time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		store:  gocache.New(defaultTTL, cleanupInterval),
		logger: logger,
	}
}

// SupplierKey returns the cache key for a supplier summary
func SupplierKey(id int64) string {
	return fmt.Sprintf("supplier:%d", id)
}

// ProjectKey returns the cache key for a project summary
func ProjectKey(id int64) string {
	return fmt.Sprintf("project:%d", id)
}

// Get returns the cached value for key, if present and unexpired
func (c *Cache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

// Set stores value under key with the given TTL
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// InvalidateDashboard drops the dashboard overview snapshot
func (c *Cache) InvalidateDashboard() {
	c.store.Delete(DashboardKey)
	c.logger.Debug("Cache invalidated", zap.String("key", DashboardKey))
}

// InvalidateSupplier drops the summary for one supplier
func (c *Cache) InvalidateSupplier(id int64) {
	key := SupplierKey(id)
	c.store.Delete(key)
	c.logger.Debug("Cache invalidated", zap.String("key", key))
}

// InvalidateProject drops the summary for one project
func (c *Cache) InvalidateProject(id int64) {
	key := ProjectKey(id)
	c.store.Delete(key)
	c.logger.Debug("Cache invalidated", zap.String("key", key))
}

package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bahikhata/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// Constants for tenant cache configuration
const (
	DefaultTenantTTL            = 5 * time.Minute
	DefaultTenantSweepThreshold = 100
)

// TenantCache is an in-memory slug-to-tenant cache with a fixed TTL. It is
// constructed once per process and injected into request handlers; entries
// are only ever inserted or evicted, never mutated in place.
//
// Eviction is a lazy sweep triggered when the cache grows past its
// threshold, not a background timer: staleness is bounded by the TTL alone.
type TenantCache struct {
	mu             sync.RWMutex
	entries        map[string]tenantCacheEntry
	ttl            time.Duration
	sweepThreshold int
	logger         *zap.Logger

	// Stats for monitoring
	hits   int64
	misses int64
}

// tenantCacheEntry wraps a cached tenant with its insertion time
type tenantCacheEntry struct {
	tenant     *identity.Tenant
	insertedAt time.Time
}

// TenantCacheOption is a functional option for configuring the cache
type TenantCacheOption func(*TenantCache)

// WithTenantTTL sets the entry time-to-live
func WithTenantTTL(ttl time.Duration) TenantCacheOption {
	return func(c *TenantCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSweepThreshold sets the size past which an insert sweeps expired entries
func WithSweepThreshold(n int) TenantCacheOption {
	return func(c *TenantCache) {
		if n > 0 {
			c.sweepThreshold = n
		}
	}
}

// WithTenantCacheLogger sets the logger for the cache
func WithTenantCacheLogger(logger *zap.Logger) TenantCacheOption {
	return func(c *TenantCache) {
		c.logger = logger
	}
}

// NewTenantCache creates a new tenant resolution cache
func NewTenantCache(opts ...TenantCacheOption) *TenantCache {
	cache := &TenantCache{
		entries:        make(map[string]tenantCacheEntry),
		ttl:            DefaultTenantTTL,
		sweepThreshold: DefaultTenantSweepThreshold,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Get returns the cached tenant for a slug. An entry older than the TTL is
// treated as absent and removed.
func (c *TenantCache) Get(slug string) (*identity.Tenant, bool) {
	key := strings.ToLower(slug)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Since(entry.insertedAt) < c.ttl {
		atomic.AddInt64(&c.hits, 1)
		return entry.tenant, true
	}

	if ok {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have refreshed it.
		if current, still := c.entries[key]; still && time.Since(current.insertedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Put caches a resolved tenant under its slug. When the cache exceeds the
// sweep threshold, all expired entries are removed to bound memory.
func (c *TenantCache) Put(slug string, tenant *identity.Tenant) {
	key := strings.ToLower(slug)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = tenantCacheEntry{tenant: tenant, insertedAt: now}

	if len(c.entries) <= c.sweepThreshold {
		return
	}
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("Swept expired tenant cache entries",
			zap.Int("removed", removed),
			zap.Int("remaining", len(c.entries)),
		)
	}
}

// Invalidate drops a slug from the cache, for example after a suspension
func (c *TenantCache) Invalidate(slug string) {
	key := strings.ToLower(slug)
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the current number of entries, expired or not
func (c *TenantCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counters
func (c *TenantCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

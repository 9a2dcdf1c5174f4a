package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bahikhata/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultOutstandingTTL bounds how stale the cached udhaar view may get
const DefaultOutstandingTTL = 2 * time.Minute

// OutstandingCache caches the per-tenant outstanding (udhaar) view in
// Redis. It is a pure read accelerator: a nil client degrades every
// operation to a no-op cache miss, and reconciliation invalidates the key.
type OutstandingCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewOutstandingCache creates a new outstanding view cache
func NewOutstandingCache(client *redis.Client, ttl time.Duration) *OutstandingCache {
	if ttl <= 0 {
		ttl = DefaultOutstandingTTL
	}
	return &OutstandingCache{
		client:    client,
		keyPrefix: "outstanding:",
		ttl:       ttl,
	}
}

func (c *OutstandingCache) key(tenantID uuid.UUID) string {
	return c.keyPrefix + tenantID.String()
}

// Get retrieves the cached view for a tenant. A nil slice with nil error is
// a cache miss.
func (c *OutstandingCache) Get(ctx context.Context, tenantID uuid.UUID) ([]partner.OutstandingSummary, error) {
	if c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.key(tenantID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var summaries []partner.OutstandingSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Set caches the view for a tenant
func (c *OutstandingCache) Set(ctx context.Context, tenantID uuid.UUID, summaries []partner.OutstandingSummary) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(summaries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(tenantID), data, c.ttl).Err()
}

// Invalidate drops the cached view, typically after a reconciliation
func (c *OutstandingCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(tenantID)).Err()
}

package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fintechrail/paygate/internal/cache"
)

// CacheStore adapts an internal/cache.Cache into an idempotency Store.
// It is the fast path used ahead of (or instead of) a durable Store;
// a deployment without Redis/Postgres can run on this alone, trading
// cross-instance idempotency for zero external dependencies.
type CacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewCacheStore wraps c. ttl bounds how long the underlying cache entry
// is kept; it should be >= the longest Record.ExpiresAt the Gate will
// ever write, since the cache TTL, not ExpiresAt, is what reclaims
// memory.
func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CacheStore{cache: c, ttl: ttl}
}

func cacheKey(tenantID, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", tenantID, key)
}

func (s *CacheStore) Get(ctx context.Context, tenantID, key string) (Record, bool, error) {
	raw, ok := s.cache.Get(ctx, cacheKey(tenantID, key))
	if !ok {
		return Record{}, false, nil
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("idempotency: decode cached record: %w", err)
	}
	return rec, true, nil
}

func (s *CacheStore) Put(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("idempotency: encode record: %w", err)
	}
	return s.cache.Set(ctx, cacheKey(rec.TenantID, rec.Key), raw, s.ttl)
}

func (s *CacheStore) Delete(ctx context.Context, tenantID, key string) error {
	return s.cache.Delete(ctx, cacheKey(tenantID, key))
}

var _ Store = (*CacheStore)(nil)

// Package resultcache stores aggregated results in a two-tier cache: an
// in-process LRU in front of a shared Valkey/Redis store.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shardagg/internal/db"
	"github.com/kailas-cloud/shardagg/internal/domain/search/method"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

const keyPrefix = "shardagg:result:"

// Cache tiers, used as metric label values.
const (
	TierLocal = "local"
	TierStore = "store"
)

// Store is the shared tier. Satisfied by db.BlobStore implementations.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Cache caches aggregated results. Entries are kept as JSON, so every hit
// decodes into a result the caller owns. Cache failures are logged and
// reported as misses; they never fail a query.
type Cache struct {
	local  *lru.Cache[string, []byte]
	store  Store
	ttl    time.Duration
	total  *prometheus.CounterVec
	logger *zap.Logger
}

// New creates a result cache.
// localSize <= 0 disables the in-process tier; a nil store disables the shared one.
// total is a counter vec with labels "tier" and "result", passed explicitly.
func New(localSize int, s Store, ttl time.Duration, total *prometheus.CounterVec, logger *zap.Logger) (*Cache, error) {
	c := &Cache{store: s, ttl: ttl, total: total, logger: logger}
	if localSize > 0 {
		l, err := lru.New[string, []byte](localSize)
		if err != nil {
			return nil, fmt.Errorf("create local cache: %w", err)
		}
		c.local = l
	}
	return c, nil
}

// Key derives the cache key of a request: the method plus the canonical JSON
// of params, hashed.
func Key(m method.Method, params any) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(m))
	h.Write([]byte{0})
	h.Write(data)
	return keyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns a cached result. A shared-tier hit is promoted to the local tier.
func (c *Cache) Get(ctx context.Context, key string) (*result.GlobalResult, bool) {
	if c.local != nil {
		if data, ok := c.local.Get(key); ok {
			if res, err := decode(data); err == nil {
				c.inc(TierLocal, "hit")
				return res, true
			}
			c.local.Remove(key)
		}
		c.inc(TierLocal, "miss")
	}

	if c.store == nil {
		return nil, false
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		c.inc(TierStore, "miss")
		return nil, false
	}

	res, err := decode(data)
	if err != nil {
		c.logger.Warn("Dropping corrupt cached result", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to delete cached result", zap.String("key", key), zap.Error(err))
		}
		c.inc(TierStore, "miss")
		return nil, false
	}

	c.inc(TierStore, "hit")
	if c.local != nil {
		c.local.Add(key, data)
	}
	return res, true
}

// Put stores res in every enabled tier.
func (c *Cache) Put(ctx context.Context, key string, res *result.GlobalResult) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("Failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if c.local != nil {
		c.local.Add(key, data)
	}
	if c.store != nil {
		if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
		}
	}
}

// Len returns the number of entries in the local tier.
func (c *Cache) Len() int {
	if c.local == nil {
		return 0
	}
	return c.local.Len()
}

func (c *Cache) inc(tier, outcome string) {
	if c.total != nil {
		c.total.WithLabelValues(tier, outcome).Inc()
	}
}

func decode(data []byte) (*result.GlobalResult, error) {
	if len(data) == 0 {
		return nil, errors.New("empty cache entry")
	}
	var res result.GlobalResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return &res, nil
}

// Key derives the cache key of a request. See the package-level Key.
func (c *Cache) Key(m method.Method, params any) (string, error) {
	return Key(m, params)
}

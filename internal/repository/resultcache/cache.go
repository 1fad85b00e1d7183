// Package resultcache memoizes expensive operation results in a key-value
// store, keyed by a digest of the operation name and its arguments.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/db"
)

// delBatchSize bounds the number of keys deleted per store round trip
// during pattern invalidation.
const delBatchSize = 100

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	DelBatch(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Cache memoizes operation results as JSON values with a uniform TTL.
// A nil Cache or a Cache without a store is valid and degrades every
// lookup to direct computation.
type Cache struct {
	store    store
	prefix   string
	ttl      time.Duration
	opsTotal *prometheus.CounterVec
	logger   *zap.Logger
}

// New creates a result cache on top of a key-value store.
// opsTotal is a counter vec with labels "operation" and "result"
// ("hit"/"miss"/"error"), passed explicitly.
func New(
	s store,
	prefix string,
	ttl time.Duration,
	opsTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:    s,
		prefix:   prefix,
		ttl:      ttl,
		opsTotal: opsTotal,
		logger:   logger,
	}
}

// Enabled reports whether lookups actually reach a store.
func (c *Cache) Enabled() bool {
	return c != nil && c.store != nil
}

// Key derives a deterministic cache key from an operation name, its
// positional arguments and its named options. Named options are
// serialized with sorted keys, so argument order never changes the key.
func (c *Cache) Key(op string, positional []any, named map[string]any) (string, error) {
	pos, err := json.Marshal(positional)
	if err != nil {
		return "", fmt.Errorf("marshal positional args: %w", err)
	}
	nam, err := json.Marshal(named)
	if err != nil {
		return "", fmt.Errorf("marshal named args: %w", err)
	}

	h := sha256.Sum256([]byte(op + ":" + string(pos) + ":" + string(nam)))
	return c.prefix + op + ":" + hex.EncodeToString(h[:]), nil
}

// Do returns the cached value for key, or computes it, stores the result
// and returns it. Store failures never surface: a broken cache degrades
// to direct computation. compute errors are returned as-is and nothing
// is cached for them. An empty key skips the cache entirely.
func Do[T any](ctx context.Context, c *Cache, op, key string, compute func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() || key == "" {
		return compute(ctx)
	}

	if value, ok := getTyped[T](ctx, c, op, key); ok {
		c.incOps(op, "hit")
		return value, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}

	c.put(ctx, key, value)
	return value, nil
}

// Invalidate removes a single cached entry.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.store.Del(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

// InvalidateOperation removes every cached entry of one operation,
// deleting in bounded batches.
func (c *Cache) InvalidateOperation(ctx context.Context, op string) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}

	keys, err := c.store.Scan(ctx, c.prefix+op+":*")
	if err != nil {
		return 0, fmt.Errorf("scan %s keys: %w", op, err)
	}

	for start := 0; start < len(keys); start += delBatchSize {
		end := start + delBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := c.store.DelBatch(ctx, keys[start:end]); err != nil {
			return start, fmt.Errorf("delete %s keys: %w", op, err)
		}
	}

	return len(keys), nil
}

func getTyped[T any](ctx context.Context, c *Cache, op, key string) (T, bool) {
	var value T

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.incOps(op, "miss")
		} else {
			c.incOps(op, "error")
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		// Stale or corrupt entry: treat as a miss and recompute.
		c.incOps(op, "error")
		c.logger.Warn("Failed to decode cached result", zap.String("key", key), zap.Error(err))
		return value, false
	}

	return value, true
}

func (c *Cache) put(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) incOps(op, result string) {
	if c.opsTotal != nil {
		c.opsTotal.WithLabelValues(op, result).Inc()
	}
}

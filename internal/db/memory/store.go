// Package memory implements the db store contract on an in-process
// expirable LRU, for single-node deployments and tests.
package memory

import (
	"context"
	"path"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/edukit-cloud/edukit/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultSize is the default entry capacity.
const DefaultSize = 4096

// Store is a capacity-bounded in-memory store. The LRU carries one TTL for
// the whole store; per-call TTLs passed to SetWithTTL are subsumed by it.
type Store struct {
	entries *lru.LRU[string, []byte]
}

// NewStore creates a memory store with the given capacity and TTL.
// size <= 0 falls back to DefaultSize; ttl <= 0 disables expiry.
func NewStore(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{entries: lru.NewLRU[string, []byte](size, nil, ttl)}
}

// Ping always succeeds: the store lives in-process.
func (s *Store) Ping(context.Context) error { return nil }

// Close purges all entries.
func (s *Store) Close() { s.entries.Purge() }

// WaitForReady returns immediately: the store is always ready.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := s.entries.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return value, nil
}

// Set stores a value at the given key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.entries.Add(key, value)
	return nil
}

// SetWithTTL stores a value; expiry follows the store-wide TTL.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, _ time.Duration) error {
	return s.Set(ctx, key, value)
}

// Del deletes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

// DelBatch deletes multiple keys.
func (s *Store) DelBatch(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.Del(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	return s.entries.Contains(key), nil
}

// Scan returns keys matching a glob pattern.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	var keys []string
	for _, key := range s.entries.Keys() {
		ok, err := path.Match(pattern, key)
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		if ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

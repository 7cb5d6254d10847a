// Package cache stores the per post type "has queued posts" flags between
// scheduler runs.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ExistenceKey is the redis key holding the JSON encoded flags.
const ExistenceKey = "ptq_queued_existence"

// DefaultTTL is used when a non-positive TTL is requested.
const DefaultTTL = time.Hour

// ExistenceStore keeps a post type -> bool map with an expiry.
// Get reports false when nothing is cached or the entry expired.
type ExistenceStore interface {
	Get(ctx context.Context) (map[string]bool, bool, error)
	Set(ctx context.Context, existence map[string]bool, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// Existence store backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// NewExistenceStore picks the store for backend. The memory store is used
// when asked for or when there is no redis client.
func NewExistenceStore(backend string, client redis.UniversalClient) ExistenceStore {
	if backend == BackendMemory || client == nil {
		return NewMemoryExistenceStore(nil)
	}
	return NewRedisExistenceStore(client)
}

type redisExistenceStore struct {
	client redis.UniversalClient
	key    string
}

func NewRedisExistenceStore(client redis.UniversalClient) ExistenceStore {
	return &redisExistenceStore{client: client, key: ExistenceKey}
}

func (s *redisExistenceStore) Get(ctx context.Context) (map[string]bool, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get queued existence: %w", err)
	}

	existence := map[string]bool{}
	if err := json.Unmarshal(raw, &existence); err != nil {
		// A corrupt entry is treated as a miss so it gets recomputed.
		return nil, false, nil
	}
	return existence, true, nil
}

func (s *redisExistenceStore) Set(ctx context.Context, existence map[string]bool, ttl time.Duration) error {
	raw, err := json.Marshal(existence)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, raw, normalizeTTL(ttl)).Err(); err != nil {
		return fmt.Errorf("set queued existence: %w", err)
	}
	return nil
}

func (s *redisExistenceStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete queued existence: %w", err)
	}
	return nil
}

// MemoryExistenceStore is an in-process ExistenceStore, selected with
// EXISTENCE_CACHE=memory on a single instance and used in tests.
type MemoryExistenceStore struct {
	mu        sync.Mutex
	existence map[string]bool
	expires   time.Time
	now       func() time.Time
}

// NewMemoryExistenceStore returns an empty store. A nil clock means time.Now.
func NewMemoryExistenceStore(now func() time.Time) *MemoryExistenceStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryExistenceStore{now: now}
}

func (m *MemoryExistenceStore) Get(_ context.Context) (map[string]bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existence == nil || !m.now().Before(m.expires) {
		return nil, false, nil
	}
	out := make(map[string]bool, len(m.existence))
	for k, v := range m.existence {
		out[k] = v
	}
	return out, true, nil
}

func (m *MemoryExistenceStore) Set(_ context.Context, existence map[string]bool, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existence = make(map[string]bool, len(existence))
	for k, v := range existence {
		m.existence[k] = v
	}
	m.expires = m.now().Add(normalizeTTL(ttl))
	return nil
}

func (m *MemoryExistenceStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existence = nil
	return nil
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

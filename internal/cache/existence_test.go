package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryExistenceStore(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)
	store := NewMemoryExistenceStore(func() time.Time { return now })
	ctx := context.Background()

	if _, ok, err := store.Get(ctx); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	in := map[string]bool{"post": true, "page": false}
	if err := store.Set(ctx, in, 30*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	in["post"] = false // callers may mutate their map afterwards

	got, ok, err := store.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !got["post"] || got["page"] {
		t.Fatalf("Get = %v", got)
	}

	now = now.Add(30 * time.Minute)
	if _, ok, _ := store.Get(ctx); ok {
		t.Fatal("entry should expire after its TTL")
	}
}

func TestMemoryExistenceStoreDelete(t *testing.T) {
	t.Parallel()
	store := NewMemoryExistenceStore(nil)
	ctx := context.Background()

	_ = store.Set(ctx, map[string]bool{"post": true}, time.Hour)
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx); ok {
		t.Fatal("entry present after Delete")
	}
}

func TestNormalizeTTL(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		in, want time.Duration
	}{
		{0, DefaultTTL},
		{-time.Second, DefaultTTL},
		{time.Minute, time.Minute},
	} {
		if got := normalizeTTL(tc.in); got != tc.want {
			t.Errorf("normalizeTTL(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewExistenceStore(t *testing.T) {
	t.Parallel()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	for _, tc := range []struct {
		backend  string
		client   redis.UniversalClient
		inMemory bool
	}{
		{BackendRedis, client, false},
		{"", client, false},
		{BackendMemory, client, true},
		{BackendRedis, nil, true},
	} {
		_, isMemory := NewExistenceStore(tc.backend, tc.client).(*MemoryExistenceStore)
		if isMemory != tc.inMemory {
			t.Errorf("NewExistenceStore(%q, client=%v) in memory = %v, want %v", tc.backend, tc.client != nil, isMemory, tc.inMemory)
		}
	}
}

package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/shardagg/internal/domain/search/method"
)

func TestKey_StableAndDistinct(t *testing.T) {
	type params struct {
		Query string
		Start int
	}
	k1, err := Key(method.Search, params{"go", 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k2, _ := Key(method.Search, params{"go", 0})
	k3, _ := Key(method.Search, params{"go", 10})
	k4, _ := Key(method.Documents, params{"go", 0})

	if k1 != k2 {
		t.Error("same request should produce the same key")
	}
	if k1 == k3 || k1 == k4 {
		t.Error("different requests should produce different keys")
	}
	if len(k1) != len(keyPrefix)+64 {
		t.Errorf("unexpected key length %d", len(k1))
	}
}

func TestKey_EncodeError(t *testing.T) {
	if _, err := Key(method.Search, make(chan int)); err == nil {
		t.Fatal("expected encode error")
	}
}

func TestCache_LocalHitReturnsIndependentCopy(t *testing.T) {
	c, total := newTestCache(t, 8, nil)
	ctx := context.Background()

	c.Put(ctx, "k", sampleResult())

	first, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected local hit")
	}
	first.Documents[0] = 99
	first.Display.Snippets[0][0] = "changed"

	second, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected local hit")
	}
	if second.Documents[0] != 1 || second.Display.Snippets[0][0] != "a" {
		t.Error("cache hits share state")
	}
	if second.OverallTotalCount != 15 || second.PageCount != 2 {
		t.Errorf("unexpected decoded result: %+v", second)
	}
	if got := testutil.ToFloat64(total.WithLabelValues(TierLocal, "hit")); got != 2 {
		t.Errorf("local hits = %f, want 2", got)
	}
}

func TestCache_StoreHitPromotesToLocal(t *testing.T) {
	data, _ := json.Marshal(sampleResult())
	ms := &mockStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return data, nil
	}}
	c, total := newTestCache(t, 8, ms)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("expected store hit")
	}
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("expected local hit")
	}
	if ms.gets != 1 {
		t.Errorf("store gets = %d, want 1", ms.gets)
	}
	if got := testutil.ToFloat64(total.WithLabelValues(TierStore, "hit")); got != 1 {
		t.Errorf("store hits = %f, want 1", got)
	}
	if got := testutil.ToFloat64(total.WithLabelValues(TierLocal, "miss")); got != 1 {
		t.Errorf("local misses = %f, want 1", got)
	}
}

func TestCache_StoreErrorIsMiss(t *testing.T) {
	ms := &mockStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}}
	c, total := newTestCache(t, 0, ms)

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Fatal("expected miss")
	}
	if got := testutil.ToFloat64(total.WithLabelValues(TierStore, "miss")); got != 1 {
		t.Errorf("store misses = %f, want 1", got)
	}
}

func TestCache_CorruptEntryDeleted(t *testing.T) {
	var deleted string
	ms := &mockStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) { return []byte("{not json"), nil },
		delFn: func(_ context.Context, key string) error {
			deleted = key
			return nil
		},
	}
	c, _ := newTestCache(t, 0, ms)

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Fatal("expected miss on corrupt entry")
	}
	if deleted != "k" {
		t.Errorf("expected corrupt key to be deleted, got %q", deleted)
	}
}

func TestCache_PutWritesStoreWithTTL(t *testing.T) {
	var gotTTL time.Duration
	var gotValue []byte
	ms := &mockStore{setFn: func(_ context.Context, _ string, value []byte, ttl time.Duration) error {
		gotTTL, gotValue = ttl, value
		return nil
	}}
	c, _ := newTestCache(t, 0, ms)

	c.Put(context.Background(), "k", sampleResult())

	if gotTTL != time.Minute {
		t.Errorf("ttl = %v, want 1m", gotTTL)
	}
	if len(gotValue) == 0 {
		t.Error("expected encoded result to be stored")
	}
	if c.Len() != 0 {
		t.Errorf("local tier disabled but Len() = %d", c.Len())
	}
}

func TestCache_PutStoreErrorIgnored(t *testing.T) {
	ms := &mockStore{setFn: func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("read-only replica")
	}}
	c, _ := newTestCache(t, 4, ms)

	c.Put(context.Background(), "k", sampleResult())
	if c.Len() != 1 {
		t.Errorf("local tier should still hold the entry, Len() = %d", c.Len())
	}
}

func TestCache_LocalEviction(t *testing.T) {
	c, _ := newTestCache(t, 1, nil)
	ctx := context.Background()

	c.Put(ctx, "a", sampleResult())
	c.Put(ctx, "b", sampleResult())

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get(ctx, "b"); !ok {
		t.Error("newest entry should be cached")
	}
}

func TestCache_Disabled(t *testing.T) {
	c, _ := newTestCache(t, 0, nil)
	c.Put(context.Background(), "k", sampleResult())
	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("cache with no tiers should never hit")
	}
}

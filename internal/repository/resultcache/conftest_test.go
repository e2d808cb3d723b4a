package resultcache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shardagg/internal/db"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// mockStore implements Store for tests.
type mockStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn func(ctx context.Context, key string) error

	gets int
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.gets++
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_result_cache_total"}, []string{"tier", "result"})
}

func newTestCache(t *testing.T, localSize int, s Store) (*Cache, *prometheus.CounterVec) {
	t.Helper()
	total := newCounter()
	c, err := New(localSize, s, time.Minute, total, zap.NewNop())
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return c, total
}

func sampleResult() *result.GlobalResult {
	return &result.GlobalResult{
		PageStart:          0,
		PageCount:          2,
		OverallTotalCount:  15,
		OverallResultCount: 4,
		Documents:          []result.DocID{1, 2},
		Workers:            []result.WorkerID{1, 2},
		Scores:             []float64{9, 8},
		CustomScores:       []float64{0, 0},
		Display: result.Display{
			Snippets:  [][]string{{"a", "b"}},
			FullTexts: [][]string{{"A", "B"}},
		},
	}
}

package search

import (
	"context"

	"github.com/kailas-cloud/shardagg/internal/domain/search/method"
	"github.com/kailas-cloud/shardagg/internal/domain/search/request"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// Dispatcher fans requests out to the shard workers and gathers their
// responses. Failed workers are left out of the returned slices.
type Dispatcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.WorkerResult, error)
	Summaries(ctx context.Context, req *request.Request, parts []result.WorkerResult) ([]result.WorkerResult, error)
	Documents(ctx context.Context, req *request.Documents) ([]result.WorkerResult, error)
	// Size returns the number of configured workers.
	Size() int
}

// Cache stores aggregated results. Failures surface as misses.
type Cache interface {
	Key(m method.Method, params any) (string, error)
	Get(ctx context.Context, key string) (*result.GlobalResult, bool)
	Put(ctx context.Context, key string, res *result.GlobalResult)
}

package health

import (
	"context"

	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// CachePinger checks result cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// WorkerChecker checks every shard worker. The map holds nil for healthy workers.
type WorkerChecker interface {
	Health(ctx context.Context) map[result.WorkerID]error
}

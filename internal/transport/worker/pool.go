package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shardagg/internal/domain"
	"github.com/kailas-cloud/shardagg/internal/domain/search/method"
	"github.com/kailas-cloud/shardagg/internal/domain/search/request"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
	"github.com/kailas-cloud/shardagg/internal/metrics"
)

// Pool fans requests out to every configured worker.
//
// Results come back in configuration order, so the merge tie-break is stable
// across queries. A worker that fails or times out is logged, counted and
// left out; its documents are simply missing from the result.
type Pool struct {
	clients []*Client
	timeout time.Duration
	limit   int
	summary bool
	logger  *zap.Logger
}

// PoolConfig holds fan-out settings.
type PoolConfig struct {
	// CallTimeout bounds each worker call. Zero means no per-call deadline.
	CallTimeout time.Duration
	// MaxConcurrency caps in-flight calls. Zero means one goroutine per worker.
	MaxConcurrency int
	// Summaries asks workers for summary text in the secondary phase.
	Summaries bool
}

// NewPool creates a worker pool.
func NewPool(clients []*Client, cfg PoolConfig, logger *zap.Logger) *Pool {
	return &Pool{
		clients: clients,
		timeout: cfg.CallTimeout,
		limit:   cfg.MaxConcurrency,
		summary: cfg.Summaries,
		logger:  logger,
	}
}

// Size returns the number of configured workers.
func (p *Pool) Size() int { return len(p.clients) }

// Search runs the primary phase. It fails only when there are no workers or
// every worker failed.
func (p *Pool) Search(ctx context.Context, req *request.Request) ([]result.WorkerResult, error) {
	if len(p.clients) == 0 {
		return nil, domain.ErrNoWorkers
	}
	wire := &SearchRequest{Query: req.Query(), TopK: req.TopK(), Properties: req.Properties()}

	calls := make([]call, len(p.clients))
	for i, c := range p.clients {
		calls[i] = call{client: c, do: func(ctx context.Context) (*result.ShardResult, error) {
			return c.Search(ctx, wire)
		}}
	}

	out := p.fanOut(ctx, method.Search, calls)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %d workers", domain.ErrAllWorkersFailed, len(p.clients))
	}
	return out, nil
}

// Summaries runs the secondary phase for the page partitions. Partitions of
// workers the pool does not know are skipped. Failures never fail the phase:
// the slots of a failed worker stay empty.
func (p *Pool) Summaries(
	ctx context.Context, req *request.Request, parts []result.WorkerResult,
) ([]result.WorkerResult, error) {
	byID := p.index()
	calls := make([]call, 0, len(parts))
	for _, part := range parts {
		c, ok := byID[part.Worker]
		if !ok || part.Result == nil {
			p.logger.Warn("Skipping partition of unknown worker", zap.Uint32("worker", uint32(part.Worker)))
			continue
		}
		wire := &SummaryRequest{
			Query:      req.Query(),
			Documents:  fromDocIDs(part.Result.Documents),
			Positions:  part.Result.Positions,
			Properties: req.Properties(),
			QueryTerms: part.Result.QueryTerms,
			Summary:    p.summary,
		}
		calls = append(calls, call{client: c, do: func(ctx context.Context) (*result.ShardResult, error) {
			return c.Summary(ctx, wire)
		}})
	}
	return p.fanOut(ctx, method.Summary, calls), nil
}

// Documents asks every worker for the ids it owns.
func (p *Pool) Documents(ctx context.Context, req *request.Documents) ([]result.WorkerResult, error) {
	if len(p.clients) == 0 {
		return nil, domain.ErrNoWorkers
	}
	wire := &DocumentsRequest{IDs: fromDocIDs(req.IDs()), Properties: req.Properties()}

	calls := make([]call, len(p.clients))
	for i, c := range p.clients {
		calls[i] = call{client: c, do: func(ctx context.Context) (*result.ShardResult, error) {
			return c.Documents(ctx, wire)
		}}
	}

	out := p.fanOut(ctx, method.Documents, calls)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %d workers", domain.ErrAllWorkersFailed, len(p.clients))
	}
	return out, nil
}

// Health checks every worker concurrently. The map holds nil for healthy workers.
func (p *Pool) Health(ctx context.Context) map[result.WorkerID]error {
	errs := make([]error, len(p.clients))
	g := p.group()
	for i, c := range p.clients {
		g.Go(func() error {
			cctx, cancel := p.callContext(ctx)
			defer cancel()
			errs[i] = c.Health(cctx)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[result.WorkerID]error, len(p.clients))
	for i, c := range p.clients {
		out[c.ID()] = errs[i]
	}
	return out
}

type call struct {
	client *Client
	do     func(ctx context.Context) (*result.ShardResult, error)
}

// fanOut runs calls concurrently and returns the successful results in call order.
func (p *Pool) fanOut(ctx context.Context, m method.Method, calls []call) []result.WorkerResult {
	results := make([]*result.ShardResult, len(calls))
	g := p.group()

	for i, c := range calls {
		g.Go(func() error {
			cctx, cancel := p.callContext(ctx)
			defer cancel()

			start := time.Now()
			sr, err := c.do(cctx)
			metrics.WorkerRequestDuration.WithLabelValues(m.Phase()).Observe(time.Since(start).Seconds())

			worker := strconv.FormatUint(uint64(c.client.ID()), 10)
			if err != nil {
				metrics.WorkerRequestsTotal.WithLabelValues(worker, m.Phase(), "error").Inc()
				p.logger.Warn("Worker call failed",
					zap.Error(domain.NewWorkerError(uint32(c.client.ID()), m.Phase(), err)))
				return nil // degrade: the worker is left out
			}
			metrics.WorkerRequestsTotal.WithLabelValues(worker, m.Phase(), "ok").Inc()
			results[i] = sr
			return nil
		})
	}
	_ = g.Wait()

	out := make([]result.WorkerResult, 0, len(calls))
	for i, sr := range results {
		if sr != nil {
			out = append(out, result.WorkerResult{Worker: calls[i].client.ID(), Result: sr})
		}
	}
	return out
}

func (p *Pool) group() *errgroup.Group {
	g := new(errgroup.Group)
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}
	return g
}

func (p *Pool) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(ctx, p.timeout)
	}
	return context.WithCancel(ctx)
}

func (p *Pool) index() map[result.WorkerID]*Client {
	m := make(map[result.WorkerID]*Client, len(p.clients))
	for _, c := range p.clients {
		m[c.ID()] = c
	}
	return m
}

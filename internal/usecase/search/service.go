package search

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shardagg/internal/domain/search/method"
	"github.com/kailas-cloud/shardagg/internal/domain/search/request"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
	"github.com/kailas-cloud/shardagg/internal/logger"
	"github.com/kailas-cloud/shardagg/internal/metrics"
	"github.com/kailas-cloud/shardagg/internal/usecase/aggregate"
)

// Response is the outcome of one aggregated request.
type Response struct {
	QueryID string
	Result  *result.GlobalResult
	Cached  bool
}

// Service runs the two-phase distributed search: a primary round trip that
// ranks documents across workers and a secondary one that fetches display
// data for the page.
type Service struct {
	workers Dispatcher
	agg     *aggregate.Aggregator
	cache   Cache
}

// New creates a search service. cache can be nil.
func New(workers Dispatcher, agg *aggregate.Aggregator, cache Cache) *Service {
	return &Service{workers: workers, agg: agg, cache: cache}
}

// searchKey is the canonical identity of a search for caching.
type searchKey struct {
	Query      string   `json:"q"`
	Start      int      `json:"s"`
	Count      int      `json:"c"`
	Properties []string `json:"p"`
}

// Search executes a query across all workers and returns the merged page
// with display data.
func (s *Service) Search(ctx context.Context, req *request.Request) (Response, error) {
	queryID := ksuid.New().String()
	log := logger.FromContext(ctx).With(zap.String("query_id", queryID))

	key := s.cacheKey(log, method.Search, searchKey{
		Query: req.Query(), Start: req.Start(), Count: req.Count(), Properties: req.Properties(),
	})
	if res, ok := s.lookup(ctx, key); ok {
		log.Debug("Served search from cache")
		return Response{QueryID: queryID, Result: res, Cached: true}, nil
	}

	workers, err := s.workers.Search(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("search workers: %w", err)
	}

	res := &result.GlobalResult{
		PageStart:  req.Start(),
		PageCount:  req.Count(),
		QueryTerms: req.QueryTerms(),
	}
	merged, err := s.join(method.Search, res, workers)
	if err != nil {
		return Response{}, err
	}
	log.Debug("Merged worker results",
		zap.Int("workers", merged.Merge.Workers),
		zap.Int("total", merged.Merge.OverallTotalCount),
		zap.Int("returned", merged.Merge.OverallResultCount),
		zap.Int("filled", merged.Merge.Filled),
		zap.Bool("early_stop", merged.Merge.EarlyStop),
	)

	complete := len(workers) >= s.workers.Size()
	if !complete {
		log.Warn("Primary phase answered by a subset of workers",
			zap.Int("answered", len(workers)),
			zap.Int("workers", s.workers.Size()),
		)
	}

	if parts := aggregate.PartitionOrdered(res); len(parts) > 0 {
		subs, err := s.workers.Summaries(ctx, req, parts)
		if err != nil {
			return Response{}, fmt.Errorf("summary workers: %w", err)
		}
		joined, err := s.join(method.Summary, res, subs)
		if err != nil {
			return Response{}, err
		}
		if joined.Reassemble.Unmatched > 0 {
			complete = false
			log.Warn("Page slots left without display data",
				zap.Int("unmatched", joined.Reassemble.Unmatched),
				zap.Int("partitions", len(parts)),
				zap.Int("answered", len(subs)),
			)
		}
	}

	// degraded pages are served but never cached
	if complete {
		s.store(ctx, key, res)
	}
	return Response{QueryID: queryID, Result: res}, nil
}

// Documents fetches display data for an explicit list of document ids.
func (s *Service) Documents(ctx context.Context, req *request.Documents) (Response, error) {
	queryID := ksuid.New().String()
	log := logger.FromContext(ctx).With(zap.String("query_id", queryID))

	workers, err := s.workers.Documents(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("document workers: %w", err)
	}

	res := &result.GlobalResult{Documents: req.IDs()}
	joined, err := s.join(method.Documents, res, workers)
	if err != nil {
		return Response{}, err
	}
	log.Debug("Assembled documents",
		zap.Int("requested", joined.Reassemble.Slots),
		zap.Int("found", joined.Reassemble.Filled),
	)
	return Response{QueryID: queryID, Result: res}, nil
}

// join runs one aggregation phase and records its metrics.
func (s *Service) join(m method.Method, res *result.GlobalResult, workers []result.WorkerResult) (aggregate.JoinStats, error) {
	st, err := s.agg.Join(m, res, workers)
	if err != nil {
		metrics.MergesTotal.WithLabelValues(m.Phase(), "error").Inc()
		return st, fmt.Errorf("aggregate %s: %w", m, err)
	}
	metrics.MergesTotal.WithLabelValues(m.Phase(), "ok").Inc()

	switch m {
	case method.Search:
		metrics.WorkersPerMerge.Observe(float64(st.Merge.Workers))
		if st.Merge.EarlyStop {
			metrics.EarlyStopsTotal.Inc()
		}
	case method.Summary, method.Documents:
		metrics.UnmatchedSlotsTotal.WithLabelValues(m.Phase()).Add(float64(st.Reassemble.Unmatched))
	}
	return st, nil
}

func (s *Service) cacheKey(log *zap.Logger, m method.Method, params any) string {
	if s.cache == nil {
		return ""
	}
	key, err := s.cache.Key(m, params)
	if err != nil {
		log.Warn("Failed to derive cache key", zap.Error(err))
		return ""
	}
	return key
}

func (s *Service) lookup(ctx context.Context, key string) (*result.GlobalResult, bool) {
	if key == "" {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *Service) store(ctx context.Context, key string, res *result.GlobalResult) {
	if key == "" {
		return
	}
	s.cache.Put(ctx, key, res)
}

package aggregate

import (
	"slices"

	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// MergeStats describes one primary merge.
type MergeStats struct {
	Workers            int
	OverallTotalCount  int
	OverallResultCount int
	// Requested is the number of ranks the merge tried to materialise (PageStart+PageCount).
	Requested int
	// Filled is the number of ranks actually materialised; the global arrays have this length.
	Filled      int
	EarlyStop   bool
	Passthrough bool
}

// Merge k-way merges the ranked lists of workers into res.
//
// res.PageStart and res.PageCount are the requested window on input and are
// clipped to the number of documents the workers returned. Every rank from 0
// to the end of the window is materialised. Each worker's Scores must already
// be sorted descending; on equal head scores the worker listed first wins.
//
// A single worker is passed through verbatim. The query terms analysed by the
// first worker that reports them replace those already in res.
func (a *Aggregator) Merge(res *result.GlobalResult, workers []result.WorkerResult) (MergeStats, error) {
	if a.validate {
		if err := validateRanked(workers); err != nil {
			return MergeStats{}, err
		}
	}

	if len(workers) == 1 {
		return passthrough(res, workers[0]), nil
	}
	return mergeRanked(res, workers), nil
}

func passthrough(res *result.GlobalResult, w result.WorkerResult) MergeStats {
	sr := w.Result
	if sr == nil {
		sr = &result.ShardResult{}
	}
	n := len(sr.Documents)

	res.OverallTotalCount = sr.TotalCount
	res.OverallResultCount = n
	res.Documents = slices.Clone(sr.Documents)
	res.Scores = slices.Clone(sr.Scores)
	res.CustomScores = slices.Clone(sr.CustomScores)
	if len(res.CustomScores) != len(res.Scores) {
		// keep the custom column aligned when the worker does not send one
		res.CustomScores = make([]float64, len(res.Scores))
	}
	res.Workers = make([]result.WorkerID, n)
	for i := range res.Workers {
		res.Workers[i] = w.Worker
	}
	if sr.Display.FieldCount() > 0 {
		res.Display = sr.Display.Clone()
	}
	if len(sr.QueryTerms) > 0 {
		res.QueryTerms = sr.QueryTerms.Clone()
	}
	clipPage(res, n)

	return MergeStats{
		Workers:            1,
		OverallTotalCount:  sr.TotalCount,
		OverallResultCount: n,
		Requested:          n,
		Filled:             n,
		Passthrough:        true,
	}
}

func mergeRanked(res *result.GlobalResult, workers []result.WorkerResult) MergeStats {
	st := MergeStats{Workers: len(workers)}
	for _, w := range workers {
		if w.Result == nil {
			continue
		}
		st.OverallTotalCount += w.Result.TotalCount
		st.OverallResultCount += len(w.Result.Documents)
	}
	res.OverallTotalCount = st.OverallTotalCount
	res.OverallResultCount = st.OverallResultCount
	if qt := workerQueryTerms(workers); qt != nil {
		res.QueryTerms = qt
	}

	clipPage(res, st.OverallResultCount)
	st.Requested = res.PageStart + res.PageCount
	res.Grow(st.Requested)

	cursors := make([]int, len(workers))
	for res.Len() < st.Requested {
		best := pickHead(workers, cursors)
		if best < 0 {
			st.EarlyStop = true
			break
		}

		sr := workers[best].Result
		c := cursors[best]
		var custom float64
		if c < len(sr.CustomScores) {
			custom = sr.CustomScores[c]
		}
		res.Append(sr.Documents[c], workers[best].Worker, sr.Scores[c], custom)
		cursors[best]++
	}

	st.Filled = res.Len()
	if st.EarlyStop {
		clipPage(res, st.Filled)
	}
	return st
}

func workerQueryTerms(workers []result.WorkerResult) result.QueryTerms {
	for _, w := range workers {
		if w.Result != nil && len(w.Result.QueryTerms) > 0 {
			return w.Result.QueryTerms.Clone()
		}
	}
	return nil
}

// pickHead returns the index of the worker whose current head score is the
// maximum, or -1 when every worker is exhausted. The first maximum wins.
func pickHead(workers []result.WorkerResult, cursors []int) int {
	best := -1
	var top float64
	for i, w := range workers {
		sr := w.Result
		if sr == nil || cursors[i] >= min(len(sr.Scores), len(sr.Documents)) {
			continue
		}
		if s := sr.Scores[cursors[i]]; best < 0 || s > top {
			best, top = i, s
		}
	}
	return best
}

// clipPage shrinks the window of res so it ends within total ranks.
func clipPage(res *result.GlobalResult, total int) {
	res.PageStart = max(res.PageStart, 0)
	res.PageCount = max(res.PageCount, 0)
	if res.PageStart > total {
		res.PageStart = total
	}
	if res.PageStart+res.PageCount > total {
		res.PageCount = total - res.PageStart
	}
}

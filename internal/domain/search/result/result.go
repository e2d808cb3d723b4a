package result

import (
	"maps"
	"slices"
)

// WorkerID identifies a shard worker.
type WorkerID uint32

// DocID identifies a document inside the corpus.
type DocID uint32

// QueryTerms maps a display property to the query terms highlighted in it.
type QueryTerms map[string][]string

// Clone returns a deep copy. A nil receiver yields nil.
func (q QueryTerms) Clone() QueryTerms {
	if q == nil {
		return nil
	}
	out := make(QueryTerms, len(q))
	for k, v := range q {
		out[k] = slices.Clone(v)
	}
	return out
}

// ShardResult is one worker's contribution to a query.
//
// Scores must be sorted descending. Positions is only set on secondary-phase
// results and holds the global page slot of each local document.
type ShardResult struct {
	TotalCount   int
	Documents    []DocID
	Scores       []float64
	CustomScores []float64
	Positions    []int
	QueryTerms   QueryTerms
	Display      Display
	Mining       map[string][]string
}

// Len returns the number of documents the shard returned.
func (r *ShardResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Documents)
}

// WorkerResult pairs a shard result with the worker that produced it.
type WorkerResult struct {
	Worker WorkerID
	Result *ShardResult
}

// GlobalResult is the query-wide result, filled in place by the merge and
// reassembly phases. Documents, Workers, Scores and CustomScores always have
// the same length.
type GlobalResult struct {
	PageStart          int
	PageCount          int
	OverallTotalCount  int
	OverallResultCount int

	Documents    []DocID
	Workers      []WorkerID
	Scores       []float64
	CustomScores []float64

	QueryTerms QueryTerms
	Display    Display
	Mining     map[string][]string
}

// Len returns the number of materialised ranks.
func (g *GlobalResult) Len() int { return len(g.Documents) }

// Grow resets the ranking arrays to zero length with capacity n.
func (g *GlobalResult) Grow(n int) {
	g.Documents = make([]DocID, 0, n)
	g.Workers = make([]WorkerID, 0, n)
	g.Scores = make([]float64, 0, n)
	g.CustomScores = make([]float64, 0, n)
}

// Append adds one ranked document to every parallel array.
func (g *GlobalResult) Append(doc DocID, worker WorkerID, score, custom float64) {
	g.Documents = append(g.Documents, doc)
	g.Workers = append(g.Workers, worker)
	g.Scores = append(g.Scores, score)
	g.CustomScores = append(g.CustomScores, custom)
}

// PageBounds returns the half-open slot range of the requested page, clamped
// to the materialised arrays.
func (g *GlobalResult) PageBounds() (start, end int) {
	n := min(len(g.Documents), len(g.Workers))
	start = min(max(g.PageStart, 0), n)
	end = min(max(g.PageStart+max(g.PageCount, 0), start), n)
	return start, end
}

// Clone returns a deep copy of the result.
func (g *GlobalResult) Clone() *GlobalResult {
	out := *g
	out.Documents = slices.Clone(g.Documents)
	out.Workers = slices.Clone(g.Workers)
	out.Scores = slices.Clone(g.Scores)
	out.CustomScores = slices.Clone(g.CustomScores)
	out.QueryTerms = g.QueryTerms.Clone()
	out.Display = g.Display.Clone()
	out.Mining = cloneColumns(g.Mining)
	return &out
}

func cloneColumns(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = slices.Clone(v)
	}
	return out
}

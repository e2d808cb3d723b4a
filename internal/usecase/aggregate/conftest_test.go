package aggregate

import (
	"fmt"

	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

const (
	workerA result.WorkerID = 1
	workerB result.WorkerID = 2
	workerC result.WorkerID = 3
)

func ranked(total int, docs []result.DocID, scores []float64) *result.ShardResult {
	return &result.ShardResult{TotalCount: total, Documents: docs, Scores: scores}
}

// exampleWorkers is the two-shard scenario: A=[d1 9.0, d3 5.0], B=[d2 8.0, d4 1.0].
func exampleWorkers() []result.WorkerResult {
	return []result.WorkerResult{
		{Worker: workerA, Result: ranked(10, []result.DocID{1, 3}, []float64{9, 5})},
		{Worker: workerB, Result: ranked(5, []result.DocID{2, 4}, []float64{8, 1})},
	}
}

// displayFor builds the secondary response a worker would send for a partition:
// fields display properties, every value derived from the document id.
func displayFor(part *result.ShardResult, fields int, withSummary bool) *result.ShardResult {
	n := len(part.Documents)
	d := result.NewDisplay(fields, n, withSummary)
	for f := 0; f < fields; f++ {
		for i, doc := range part.Documents {
			d.Snippets[f][i] = fmt.Sprintf("snip-%d-%d", f, doc)
			d.FullTexts[f][i] = fmt.Sprintf("full-%d-%d", f, doc)
			if withSummary {
				d.Summaries[f][i] = fmt.Sprintf("sum-%d-%d", f, doc)
			}
		}
	}
	return &result.ShardResult{
		Documents: part.Documents,
		Positions: part.Positions,
		Display:   d,
	}
}

func equalDocs(a, b []result.DocID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

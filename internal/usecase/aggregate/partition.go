package aggregate

import "github.com/kailas-cloud/shardagg/internal/domain/search/result"

// Partition groups the documents of the current page by originating worker.
//
// Only slots inside [PageStart, PageStart+PageCount) are split out; ranks
// before the page were merged for counting only. Each partition records the
// global slot of every document in Positions, in increasing order, and gets
// its own copy of the query terms. The map is allocated per call.
func Partition(res *result.GlobalResult) map[result.WorkerID]*result.ShardResult {
	parts := make(map[result.WorkerID]*result.ShardResult)
	start, end := res.PageBounds()
	for i := start; i < end; i++ {
		w := res.Workers[i]
		sub, ok := parts[w]
		if !ok {
			sub = &result.ShardResult{QueryTerms: res.QueryTerms.Clone()}
			parts[w] = sub
		}
		sub.Documents = append(sub.Documents, res.Documents[i])
		sub.Positions = append(sub.Positions, i)
	}
	return parts
}

// PartitionOrdered is Partition with the partitions ordered by the first
// page slot each worker owns.
func PartitionOrdered(res *result.GlobalResult) []result.WorkerResult {
	parts := Partition(res)
	out := make([]result.WorkerResult, 0, len(parts))
	start, end := res.PageBounds()
	for i := start; i < end && len(out) < len(parts); i++ {
		w := res.Workers[i]
		if sub, ok := parts[w]; ok && sub.Positions[0] == i {
			out = append(out, result.WorkerResult{Worker: w, Result: sub})
		}
	}
	return out
}

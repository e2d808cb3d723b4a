package aggregate

import "github.com/kailas-cloud/shardagg/internal/domain/search/result"

// Documents fills display data for a documents-by-id lookup.
//
// res.Documents holds the requested ids in caller order. Every worker returns
// the subset it owns; each returned document lands in the slot of the first
// occurrence of its id. Ids nobody returned keep empty display data and
// worker 0. No scores are produced.
func (a *Aggregator) Documents(res *result.GlobalResult, workers []result.WorkerResult) ReassembleStats {
	slots := res.Len()
	st := ReassembleStats{Workers: len(workers), Slots: slots}

	index := make(map[result.DocID]int, slots)
	for i, id := range res.Documents {
		if _, ok := index[id]; !ok {
			index[id] = i
		}
	}

	var schema result.Display
	total := 0
	for _, w := range workers {
		if w.Result == nil {
			continue
		}
		if schema.FieldCount() == 0 {
			schema = w.Result.Display
		}
		total += w.Result.TotalCount
	}

	res.PageStart, res.PageCount = 0, slots
	res.Workers = make([]result.WorkerID, slots)
	res.Scores = make([]float64, slots)
	res.CustomScores = make([]float64, slots)
	res.Display = result.NewDisplay(schema.FieldCount(), slots, schema.SummaryEnabled())

	filled := make([]bool, slots)
	for _, w := range workers {
		sr := w.Result
		if sr == nil {
			continue
		}
		for local, id := range sr.Documents {
			slot, ok := index[id]
			if !ok || filled[slot] {
				continue
			}
			filled[slot] = true
			res.Workers[slot] = w.Worker
			res.Display.CopySlot(slot, &sr.Display, local)
			st.Filled++
		}
	}

	st.Unmatched = slots - st.Filled
	res.OverallResultCount = st.Filled
	res.OverallTotalCount = total
	return st
}

package aggregate

import "github.com/kailas-cloud/shardagg/internal/domain/search/result"

// ReassembleStats describes one position-keyed reassembly.
type ReassembleStats struct {
	Workers int
	Slots   int
	// Filled counts slots that received data from a worker.
	Filled int
	// Unmatched counts page slots no worker claimed; they stay empty.
	Unmatched int
}

// Reassemble copies the display data of secondary sub-results into the
// global slots recorded in their Positions.
//
// The field count and whether summaries are present are taken from the first
// sub-result. Display is sized to every materialised rank; slots no worker
// claims are left empty. The order of subs does not affect the outcome.
func (a *Aggregator) Reassemble(res *result.GlobalResult, subs []result.WorkerResult) (ReassembleStats, error) {
	if len(subs) == 0 {
		return ReassembleStats{}, nil
	}
	if a.validate {
		if err := validateSchema(subs); err != nil {
			return ReassembleStats{}, err
		}
	}

	var schema result.Display
	if first := subs[0].Result; first != nil {
		schema = first.Display
	}
	res.Display = result.NewDisplay(schema.FieldCount(), res.Len(), schema.SummaryEnabled())

	st := walkPositions(res, subs, func(slot int, sr *result.ShardResult, local int) {
		res.Display.CopySlot(slot, &sr.Display, local)
	})
	return st, nil
}

// walkPositions visits every materialised slot of res once and hands it to
// the sub-result whose next position equals the slot. Sub-results are
// consumed front to back, so their Positions must be increasing.
func walkPositions(
	res *result.GlobalResult, subs []result.WorkerResult,
	visit func(slot int, sr *result.ShardResult, local int),
) ReassembleStats {
	st := ReassembleStats{Workers: len(subs), Slots: res.Len()}
	pageStart, pageEnd := res.PageBounds()
	cursors := make([]int, len(subs))

	for slot := 0; slot < st.Slots; slot++ {
		claimed := -1
		for s, sub := range subs {
			sr := sub.Result
			if sr == nil {
				continue
			}
			if c := cursors[s]; c < len(sr.Positions) && sr.Positions[c] == slot {
				claimed = s
				break
			}
		}
		if claimed < 0 {
			if slot >= pageStart && slot < pageEnd {
				st.Unmatched++
			}
			continue
		}

		visit(slot, subs[claimed].Result, cursors[claimed])
		cursors[claimed]++
		st.Filled++
	}
	return st
}

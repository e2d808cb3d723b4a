package aggregate

import "github.com/kailas-cloud/shardagg/internal/domain/search/result"

// MiningReassembler merges per-worker mining annotations into the global
// result after the summary phase. Implementations receive the same
// position-tagged sub-results as Reassemble and must not reorder res.
type MiningReassembler interface {
	ReassembleMining(res *result.GlobalResult, subs []result.WorkerResult) error
}

// NopMining is the default MiningReassembler. It leaves res untouched.
type NopMining struct{}

// ReassembleMining implements MiningReassembler.
func (NopMining) ReassembleMining(*result.GlobalResult, []result.WorkerResult) error { return nil }

// PositionalMining copies every annotation column of the first sub-result
// into res.Mining, slot by slot, using the same position matching as Reassemble.
type PositionalMining struct{}

// ReassembleMining implements MiningReassembler.
func (PositionalMining) ReassembleMining(res *result.GlobalResult, subs []result.WorkerResult) error {
	if len(subs) == 0 || subs[0].Result == nil || len(subs[0].Result.Mining) == 0 {
		return nil
	}

	res.Mining = make(map[string][]string, len(subs[0].Result.Mining))
	for name := range subs[0].Result.Mining {
		res.Mining[name] = make([]string, res.Len())
	}

	walkPositions(res, subs, func(slot int, sr *result.ShardResult, local int) {
		for name, column := range res.Mining {
			if values := sr.Mining[name]; local < len(values) {
				column[slot] = values[local]
			}
		}
	})
	return nil
}

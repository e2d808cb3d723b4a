package aggregate

import (
	"fmt"

	"github.com/kailas-cloud/shardagg/internal/domain"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// validateRanked checks the merge preconditions of every worker result.
func validateRanked(workers []result.WorkerResult) error {
	for _, w := range workers {
		sr := w.Result
		if sr == nil {
			continue
		}
		if len(sr.Scores) != len(sr.Documents) {
			return fmt.Errorf("%w: worker %d has %d documents and %d scores",
				domain.ErrLengthMismatch, w.Worker, len(sr.Documents), len(sr.Scores))
		}
		if n := len(sr.CustomScores); n != 0 && n != len(sr.Documents) {
			return fmt.Errorf("%w: worker %d has %d documents and %d custom scores",
				domain.ErrLengthMismatch, w.Worker, len(sr.Documents), n)
		}
		for i := 1; i < len(sr.Scores); i++ {
			if sr.Scores[i] > sr.Scores[i-1] {
				return fmt.Errorf("%w: worker %d at rank %d (%g > %g)",
					domain.ErrUnsortedScores, w.Worker, i, sr.Scores[i], sr.Scores[i-1])
			}
		}
	}
	return nil
}

// validateSchema checks that every sub-result carries the same display
// fields as the first one and one position per document.
func validateSchema(subs []result.WorkerResult) error {
	var want result.Display
	if subs[0].Result != nil {
		want = subs[0].Result.Display
	}
	for _, s := range subs {
		sr := s.Result
		if sr == nil {
			continue
		}
		if len(sr.Positions) != len(sr.Documents) {
			return fmt.Errorf("%w: worker %d has %d documents and %d positions",
				domain.ErrLengthMismatch, s.Worker, len(sr.Documents), len(sr.Positions))
		}
		if sr.Display.FieldCount() != want.FieldCount() || sr.Display.SummaryEnabled() != want.SummaryEnabled() {
			return fmt.Errorf("%w: worker %d has %d fields (summary=%t), want %d (summary=%t)",
				domain.ErrSchemaMismatch, s.Worker,
				sr.Display.FieldCount(), sr.Display.SummaryEnabled(),
				want.FieldCount(), want.SummaryEnabled())
		}
		for i := 1; i < len(sr.Positions); i++ {
			if sr.Positions[i] <= sr.Positions[i-1] {
				return fmt.Errorf("%w: worker %d positions not increasing at %d",
					domain.ErrSchemaMismatch, s.Worker, i)
			}
		}
	}
	return nil
}

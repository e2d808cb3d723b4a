package aggregate

import (
	"fmt"

	"github.com/kailas-cloud/shardagg/internal/domain"
	"github.com/kailas-cloud/shardagg/internal/domain/search/method"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// JoinStats carries the statistics of whichever phase Join ran.
type JoinStats struct {
	Method     method.Method
	Merge      MergeStats
	Reassemble ReassembleStats
}

// Join combines the gathered worker responses of one request into res,
// choosing the phase by request method.
func (a *Aggregator) Join(m method.Method, res *result.GlobalResult, workers []result.WorkerResult) (JoinStats, error) {
	st := JoinStats{Method: m}
	if !m.IsValid() {
		return st, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, m)
	}

	var err error

	switch m {
	case method.Search:
		st.Merge, err = a.Merge(res, workers)
	case method.Summary:
		st.Reassemble, err = a.Reassemble(res, workers)
		if err == nil {
			err = a.mining.ReassembleMining(res, workers)
		}
	case method.Documents:
		st.Reassemble = a.Documents(res, workers)
	}

	if err != nil {
		return st, fmt.Errorf("join %s: %w", m, err)
	}
	return st, nil
}

// Package aggregate merges per-worker partial results into one globally
// ranked page and reconciles the secondary round trip that fetches display
// data for the documents on that page.
//
// Every operation is a synchronous transformation over data the caller has
// already gathered. A worker missing from the input list is treated exactly
// like a worker that returned no documents: nothing is retried and no error
// is raised for it.
package aggregate

// Aggregator runs the merge, partition and reassembly phases of a query.
// It holds no per-query state and is safe for concurrent use.
type Aggregator struct {
	validate bool
	mining   MiningReassembler
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithValidation enables input checks (sorted scores, aligned arrays,
// uniform display schema). Disabled by default: malformed input then yields
// a silently wrong order instead of an error.
func WithValidation(on bool) Option {
	return func(a *Aggregator) { a.validate = on }
}

// WithMining sets the reassembler for mining annotations. nil restores the no-op default.
func WithMining(m MiningReassembler) Option {
	return func(a *Aggregator) {
		if m == nil {
			m = NopMining{}
		}
		a.mining = m
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{mining: NopMining{}}
	for _, o := range opts {
		o(a)
	}
	return a
}

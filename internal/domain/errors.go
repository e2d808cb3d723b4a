package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals a malformed or out-of-range query.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoWorkers signals that no shard workers are configured.
	ErrNoWorkers = errors.New("no workers configured")
	// ErrAllWorkersFailed signals that every worker failed the primary phase.
	ErrAllWorkersFailed = errors.New("all workers failed")
	// ErrUnknownMethod signals a join request with an unsupported method name.
	ErrUnknownMethod = errors.New("unknown aggregation method")

	// ErrUnsortedScores signals a shard result whose scores are not descending.
	// Only reported when validation is enabled.
	ErrUnsortedScores = errors.New("shard scores not sorted descending")
	// ErrLengthMismatch signals shard arrays of different lengths.
	ErrLengthMismatch = errors.New("shard result length mismatch")
	// ErrSchemaMismatch signals sub-results that disagree on display fields.
	ErrSchemaMismatch = errors.New("display schema mismatch")
)

// WorkerError wraps a failure of a single worker call with its identity.
type WorkerError struct {
	Worker uint32
	Phase  string
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d %s: %s", e.Worker, e.Phase, e.Err.Error())
}

func (e *WorkerError) Unwrap() error { return e.Err }

// NewWorkerError creates a worker call error.
func NewWorkerError(worker uint32, phase string, err error) error {
	return &WorkerError{Worker: worker, Phase: phase, Err: err}
}

package sdk

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/shardagg/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest   = domain.ErrInvalidRequest
	ErrNoWorkers        = domain.ErrNoWorkers
	ErrAllWorkersFailed = domain.ErrAllWorkersFailed

	// ErrUnauthorized is returned when the server rejects the API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadShardResult is returned when workers answered with inconsistent data.
	ErrBadShardResult = errors.New("bad shard result")
)

// codeSentinels maps server error codes to sentinels.
var codeSentinels = map[string]error{
	"bad_request":       ErrInvalidRequest,
	"validation_failed": ErrInvalidRequest,
	"unauthorized":      ErrUnauthorized,
	"no_workers":        ErrNoWorkers,
	"workers_failed":    ErrAllWorkersFailed,
	"bad_shard_result":  ErrBadShardResult,
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sdk: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap exposes the sentinel matching the error code, if any.
func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}

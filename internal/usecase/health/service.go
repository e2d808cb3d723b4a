package health

import (
	"context"
	"strconv"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure: some workers or the cache are down
	// but queries can still be answered.
	Degraded Status = "degraded"
	// Unhealthy indicates no worker answers.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results. Worker checks are keyed "worker-<id>".
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	cache   CachePinger
	workers WorkerChecker
}

// New creates a Service. cache can be nil when no shared cache is configured.
func New(workers WorkerChecker, cache CachePinger) *Service {
	return &Service{workers: workers, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.cache != nil {
		checks["cache"] = outcome(s.cache.Ping(ctx))
	}

	up := 0
	workers := s.workers.Health(ctx)
	for id, err := range workers {
		checks["worker-"+strconv.FormatUint(uint64(id), 10)] = outcome(err)
		if err == nil {
			up++
		}
	}

	status := Healthy
	switch {
	case up == 0:
		status = Unhealthy
	case up < len(workers):
		status = Degraded
	case checks["cache"] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func outcome(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}

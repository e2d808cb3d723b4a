package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shardagg/internal/domain"
	"github.com/kailas-cloud/shardagg/internal/domain/search/request"
	"github.com/kailas-cloud/shardagg/internal/logger"
	healthuc "github.com/kailas-cloud/shardagg/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shardagg/internal/usecase/search"
	"github.com/kailas-cloud/shardagg/internal/version"
)

// maxBodyBytes bounds request bodies; a documents lookup of MaxDocuments ids fits easily.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the aggregation tier over HTTP.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	limits        request.Limits
	logger        *zap.Logger
	metrics       http.Handler
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	limits request.Limits,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		health:  health,
		limits:  limits,
		logger:  logger,
		metrics: promhttp.Handler(),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrUnknownMethod, http.StatusBadRequest, ErrorCodeUnknownMethod),
		sentinelHandler(domain.ErrNoWorkers, http.StatusServiceUnavailable, ErrorCodeNoWorkers),
		sentinelHandler(domain.ErrAllWorkersFailed, http.StatusBadGateway, ErrorCodeWorkersFailed),
		sentinelHandler(domain.ErrUnsortedScores, http.StatusBadGateway, ErrorCodeBadShardResult),
		sentinelHandler(domain.ErrLengthMismatch, http.StatusBadGateway, ErrorCodeBadShardResult),
		sentinelHandler(domain.ErrSchemaMismatch, http.StatusBadGateway, ErrorCodeBadShardResult),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Post("/search", s.Search)
	r.Post("/documents", s.Documents)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if !s.decode(w, r, &body) {
		return
	}

	req, err := s.limits.New(body.Query, body.Start, body.Count, body.Properties)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(resp.QueryID, resp.Cached, resp.Result, req.Properties()))
}

// Documents handles POST /documents.
func (s *Server) Documents(w http.ResponseWriter, r *http.Request) {
	var body DocumentsRequest
	if !s.decode(w, r, &body) {
		return
	}

	req, err := request.NewDocuments(toDocIDs(body.IDs), body.Properties)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Documents(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(resp.QueryID, false, resp.Result, req.Properties()))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthToResponse(report, version.Version))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrUnknownMethod,
		domain.ErrNoWorkers,
		domain.ErrAllWorkersFailed,
		domain.ErrUnsortedScores,
		domain.ErrLengthMismatch,
		domain.ErrSchemaMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

package chi

import (
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/shardagg/internal/usecase/health"
)

// ErrorCode is a machine-readable error class returned to API clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeUnknownMethod    ErrorCode = "unknown_method"
	ErrorCodeNoWorkers        ErrorCode = "no_workers"
	ErrorCodeWorkersFailed    ErrorCode = "workers_failed"
	ErrorCodeBadShardResult   ErrorCode = "bad_shard_result"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query      string   `json:"query"`
	Start      int      `json:"start"`
	Count      int      `json:"count"`
	Properties []string `json:"properties,omitempty"`
}

// DocumentsRequest is the body of POST /documents.
type DocumentsRequest struct {
	IDs        []uint32 `json:"ids"`
	Properties []string `json:"properties,omitempty"`
}

// FieldDisplay holds the display payload of one property for one document.
type FieldDisplay struct {
	Snippet  string `json:"snippet,omitempty"`
	FullText string `json:"full_text,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// Item is one ranked document of the page.
type Item struct {
	Rank        int                     `json:"rank"`
	Doc         uint32                  `json:"doc"`
	Worker      uint32                  `json:"worker"`
	Score       float64                 `json:"score"`
	CustomScore float64                 `json:"custom_score"`
	Fields      map[string]FieldDisplay `json:"fields,omitempty"`
	Mining      map[string]string       `json:"mining,omitempty"`
}

// SearchResponse is the body of a successful POST /search or POST /documents.
type SearchResponse struct {
	QueryID     string              `json:"query_id"`
	Cached      bool                `json:"cached"`
	Total       int                 `json:"total"`
	ResultCount int                 `json:"result_count"`
	Start       int                 `json:"start"`
	Count       int                 `json:"count"`
	QueryTerms  map[string][]string `json:"query_terms,omitempty"`
	Items       []Item              `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// pageToResponse renders the page window of res. properties name the display
// rows in the order they were requested.
func pageToResponse(queryID string, cached bool, res *result.GlobalResult, properties []string) SearchResponse {
	start, end := res.PageBounds()
	resp := SearchResponse{
		QueryID:     queryID,
		Cached:      cached,
		Total:       res.OverallTotalCount,
		ResultCount: res.OverallResultCount,
		Start:       res.PageStart,
		Count:       res.PageCount,
		QueryTerms:  res.QueryTerms,
		Items:       make([]Item, 0, end-start),
	}

	for slot := start; slot < end; slot++ {
		item := Item{
			Rank:   slot,
			Doc:    uint32(res.Documents[slot]),
			Worker: uint32(res.Workers[slot]),
		}
		if slot < len(res.Scores) {
			item.Score = res.Scores[slot]
		}
		if slot < len(res.CustomScores) {
			item.CustomScore = res.CustomScores[slot]
		}
		item.Fields = fieldsAt(&res.Display, properties, slot)
		item.Mining = miningAt(res.Mining, slot)
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func fieldsAt(d *result.Display, properties []string, slot int) map[string]FieldDisplay {
	n := min(len(properties), d.FieldCount())
	if n == 0 {
		return nil
	}
	fields := make(map[string]FieldDisplay, n)
	for f := range n {
		fd := FieldDisplay{
			Snippet:  cell(d.Snippets, f, slot),
			FullText: cell(d.FullTexts, f, slot),
			Summary:  cell(d.Summaries, f, slot),
		}
		if fd == (FieldDisplay{}) {
			continue
		}
		fields[properties[f]] = fd
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func miningAt(columns map[string][]string, slot int) map[string]string {
	if len(columns) == 0 {
		return nil
	}
	out := make(map[string]string, len(columns))
	for name, values := range columns {
		if slot < len(values) && values[slot] != "" {
			out[name] = values[slot]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cell(rows [][]string, field, slot int) string {
	if field >= len(rows) || slot >= len(rows[field]) {
		return ""
	}
	return rows[field][slot]
}

func toDocIDs(ids []uint32) []result.DocID {
	out := make([]result.DocID, len(ids))
	for i, id := range ids {
		out[i] = result.DocID(id)
	}
	return out
}

func healthToResponse(report healthuc.Report, version string) HealthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{
		Status:  string(report.Status),
		Version: version,
		Checks:  checks,
	}
}

package request

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/shardagg/internal/domain"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultCount   = 10
	MaxCount       = 100
	// MaxStart bounds how deep a page may start; every rank before it is merged too.
	MaxStart     = 10000
	MaxDocuments = 1000
)

// Limits holds the page size policy applied when building requests.
type Limits struct {
	DefaultCount int
	MaxCount     int
}

// DefaultLimits returns the built-in page size policy.
func DefaultLimits() Limits {
	return Limits{DefaultCount: DefaultCount, MaxCount: MaxCount}
}

// Request is a validated search query with its page window.
type Request struct {
	query      string
	start      int
	count      int
	properties []string
}

// New validates a search query using the default limits.
func New(query string, start, count int, properties []string) (Request, error) {
	return DefaultLimits().New(query, start, count, properties)
}

// New validates and normalizes search parameters.
// count <= 0 falls back to the default page size and is clamped to the maximum.
func (l Limits) New(query string, start, count int, properties []string) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if start < 0 {
		return Request{}, fmt.Errorf("%w: start must not be negative", domain.ErrInvalidRequest)
	}
	if start > MaxStart {
		return Request{}, fmt.Errorf("%w: start exceeds %d", domain.ErrInvalidRequest, MaxStart)
	}
	if l.DefaultCount <= 0 {
		l.DefaultCount = DefaultCount
	}
	if l.MaxCount <= 0 {
		l.MaxCount = MaxCount
	}
	if count <= 0 {
		count = l.DefaultCount
	}
	if count > l.MaxCount {
		count = l.MaxCount
	}

	return Request{
		query:      query,
		start:      start,
		count:      count,
		properties: dedupe(properties),
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Start returns the first requested rank.
func (r *Request) Start() int { return r.start }

// Count returns the requested page size.
func (r *Request) Count() int { return r.count }

// TopK returns how many ranks each worker must return for the page to merge correctly.
func (r *Request) TopK() int { return r.start + r.count }

// Properties returns the display properties to fetch in the summary phase.
func (r *Request) Properties() []string { return r.properties }

// QueryTerms returns the lower-cased query terms for every display property.
func (r *Request) QueryTerms() result.QueryTerms {
	if len(r.properties) == 0 {
		return nil
	}
	terms := strings.Fields(strings.ToLower(r.query))
	qt := make(result.QueryTerms, len(r.properties))
	for _, p := range r.properties {
		qt[p] = slices.Clone(terms)
	}
	return qt
}

// Documents is a validated documents-by-id lookup.
type Documents struct {
	ids        []result.DocID
	properties []string
}

// NewDocuments validates a documents-by-id lookup. Duplicate ids are kept;
// only the first occurrence receives data.
func NewDocuments(ids []result.DocID, properties []string) (Documents, error) {
	if len(ids) == 0 {
		return Documents{}, fmt.Errorf("%w: ids are required", domain.ErrInvalidRequest)
	}
	if len(ids) > MaxDocuments {
		return Documents{}, fmt.Errorf("%w: too many ids (max %d)", domain.ErrInvalidRequest, MaxDocuments)
	}
	return Documents{ids: slices.Clone(ids), properties: dedupe(properties)}, nil
}

// IDs returns the requested ids in caller order.
func (d *Documents) IDs() []result.DocID { return d.ids }

// Properties returns the display properties to fetch.
func (d *Documents) Properties() []string { return d.properties }

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

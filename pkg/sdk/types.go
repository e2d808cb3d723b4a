package sdk

// SearchQuery describes one page of a distributed search.
type SearchQuery struct {
	Query string `json:"query"`
	// Start is the zero-based rank of the first document on the page.
	Start int `json:"start"`
	// Count is the page size; 0 uses the server default.
	Count int `json:"count"`
	// Properties lists the document fields to fetch display data for.
	Properties []string `json:"properties,omitempty"`
}

type documentsQuery struct {
	IDs        []uint32 `json:"ids"`
	Properties []string `json:"properties,omitempty"`
}

// Field is the display data of one property of a document.
type Field struct {
	Snippet  string `json:"snippet,omitempty"`
	FullText string `json:"full_text,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// Item is one document on a page.
type Item struct {
	Rank        int               `json:"rank"`
	Doc         uint32            `json:"doc"`
	Worker      uint32            `json:"worker"`
	Score       float64           `json:"score"`
	CustomScore float64           `json:"custom_score"`
	Fields      map[string]Field  `json:"fields,omitempty"`
	Mining      map[string]string `json:"mining,omitempty"`
}

// Page is a merged result page.
type Page struct {
	QueryID string `json:"query_id"`
	Cached  bool   `json:"cached"`
	// Total is the sum of every worker's total match count.
	Total int `json:"total"`
	// ResultCount is how many ranks the server materialised.
	ResultCount int                 `json:"result_count"`
	Start       int                 `json:"start"`
	Count       int                 `json:"count"`
	QueryTerms  map[string][]string `json:"query_terms,omitempty"`
	Items       []Item              `json:"items"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status  string            `json:"status"` // "ok", "degraded", "error"
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"` // component → "ok"/"error"
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

package worker

import (
	"slices"

	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// SearchRequest asks a worker for its top ranks of a query.
type SearchRequest struct {
	Query      string   `json:"query"`
	TopK       int      `json:"top_k"`
	Properties []string `json:"properties,omitempty"`
}

// SearchResponse is a worker's ranked list, scores descending.
type SearchResponse struct {
	TotalCount   int                 `json:"total_count"`
	Documents    []uint32            `json:"documents"`
	Scores       []float64           `json:"scores"`
	CustomScores []float64           `json:"custom_scores,omitempty"`
	QueryTerms   map[string][]string `json:"query_terms,omitempty"`
}

// SummaryRequest asks a worker for display data of the page documents it owns.
// Positions are the global page slots and must be echoed back.
type SummaryRequest struct {
	Query      string              `json:"query"`
	Documents  []uint32            `json:"documents"`
	Positions  []int               `json:"positions"`
	Properties []string            `json:"properties,omitempty"`
	QueryTerms map[string][]string `json:"query_terms,omitempty"`
	Summary    bool                `json:"summary"`
}

// SummaryResponse carries display data indexed [property][document].
type SummaryResponse struct {
	Documents []uint32            `json:"documents"`
	Positions []int               `json:"positions,omitempty"`
	Snippets  [][]string          `json:"snippets"`
	FullTexts [][]string          `json:"full_texts"`
	Summaries [][]string          `json:"summaries,omitempty"`
	Mining    map[string][]string `json:"mining,omitempty"`
}

// DocumentsRequest asks a worker for the documents it owns among IDs.
type DocumentsRequest struct {
	IDs        []uint32 `json:"ids"`
	Properties []string `json:"properties,omitempty"`
}

// DocumentsResponse lists the owned documents with their display data.
type DocumentsResponse struct {
	TotalCount int        `json:"total_count"`
	Documents  []uint32   `json:"documents"`
	Snippets   [][]string `json:"snippets"`
	FullTexts  [][]string `json:"full_texts"`
	Summaries  [][]string `json:"summaries,omitempty"`
}

func (r *SearchResponse) toDomain() *result.ShardResult {
	return &result.ShardResult{
		TotalCount:   r.TotalCount,
		Documents:    toDocIDs(r.Documents),
		Scores:       r.Scores,
		CustomScores: r.CustomScores,
		QueryTerms:   r.QueryTerms,
	}
}

// toDomain converts the response. Positions missing from the response are
// restored from the request by document id.
func (r *SummaryResponse) toDomain(req *SummaryRequest) *result.ShardResult {
	positions := r.Positions
	if len(positions) == 0 {
		positions = restorePositions(req, r.Documents)
	}
	return &result.ShardResult{
		Documents: toDocIDs(r.Documents),
		Positions: positions,
		Display: result.Display{
			Snippets:  r.Snippets,
			FullTexts: r.FullTexts,
			Summaries: r.Summaries,
		},
		Mining: r.Mining,
	}
}

// restorePositions tags each returned document with the slot it was requested
// for. It returns nil when a document was not requested, leaving its slots
// unmatched rather than misplaced.
func restorePositions(req *SummaryRequest, docs []uint32) []int {
	if len(req.Positions) != len(req.Documents) {
		return nil
	}
	if slices.Equal(docs, req.Documents) {
		return slices.Clone(req.Positions)
	}

	// a document can be asked for more than once; hand out its slots in order
	slots := make(map[uint32][]int, len(req.Documents))
	for i, doc := range req.Documents {
		slots[doc] = append(slots[doc], req.Positions[i])
	}
	out := make([]int, len(docs))
	for i, doc := range docs {
		free := slots[doc]
		if len(free) == 0 {
			return nil
		}
		out[i], slots[doc] = free[0], free[1:]
	}
	return out
}

func (r *DocumentsResponse) toDomain() *result.ShardResult {
	return &result.ShardResult{
		TotalCount: r.TotalCount,
		Documents:  toDocIDs(r.Documents),
		Display: result.Display{
			Snippets:  r.Snippets,
			FullTexts: r.FullTexts,
			Summaries: r.Summaries,
		},
	}
}

func toDocIDs(ids []uint32) []result.DocID {
	out := make([]result.DocID, len(ids))
	for i, id := range ids {
		out[i] = result.DocID(id)
	}
	return out
}

func fromDocIDs(ids []result.DocID) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

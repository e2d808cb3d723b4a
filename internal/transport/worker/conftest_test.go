package worker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// fakeWorker serves canned responses for every worker endpoint.
type fakeWorker struct {
	search    SearchResponse
	documents DocumentsResponse
	status    int
	delay     time.Duration

	calls       atomic.Int32
	mu          sync.Mutex
	lastSummary SummaryRequest
	lastSearch  SearchRequest
}

func (f *fakeWorker) searchReceived() SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSearch
}

func (f *fakeWorker) summaryReceived() SummaryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSummary
}

func (f *fakeWorker) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if !f.prelude(w, r) {
			return
		}
		var req SearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.lastSearch = req
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.search)
	})
	mux.HandleFunc("POST /summary", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if !f.prelude(w, r) {
			return
		}
		var req SummaryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.lastSummary = req
		f.mu.Unlock()
		// one display property, values derived from the document id
		resp := SummaryResponse{Documents: req.Documents, Positions: req.Positions}
		resp.Snippets = [][]string{make([]string, len(req.Documents))}
		resp.FullTexts = [][]string{make([]string, len(req.Documents))}
		for i, d := range req.Documents {
			resp.Snippets[0][i] = "snip-" + itoa(d)
			resp.FullTexts[0][i] = "full-" + itoa(d)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("POST /documents", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if !f.prelude(w, r) {
			return
		}
		_ = json.NewEncoder(w).Encode(f.documents)
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		f.prelude(w, r)
	})
	return mux
}

// prelude applies the configured delay and failure status.
func (f *fakeWorker) prelude(w http.ResponseWriter, r *http.Request) bool {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return false
		}
	}
	if f.status != 0 && f.status != http.StatusOK {
		http.Error(w, "worker unavailable", f.status)
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	return true
}

func itoa(d uint32) string {
	b, _ := json.Marshal(d)
	return string(b)
}

// startWorkers launches one server per fake and returns clients with ids 1..n.
func startWorkers(t *testing.T, fakes ...*fakeWorker) []*Client {
	t.Helper()
	clients := make([]*Client, len(fakes))
	for i, f := range fakes {
		srv := httptest.NewServer(f.handler())
		t.Cleanup(srv.Close)
		clients[i] = NewClient(result.WorkerID(i+1), srv.URL, srv.Client())
	}
	return clients
}

func newTestPool(t *testing.T, cfg PoolConfig, fakes ...*fakeWorker) *Pool {
	t.Helper()
	return NewPool(startWorkers(t, fakes...), cfg, zap.NewNop())
}

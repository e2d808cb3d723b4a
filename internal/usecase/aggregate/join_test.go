package aggregate

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/shardagg/internal/domain"
	"github.com/kailas-cloud/shardagg/internal/domain/search/method"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

func TestJoin_Search(t *testing.T) {
	res := &result.GlobalResult{PageCount: 3}
	st, err := New().Join(method.Search, res, exampleWorkers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Method != method.Search || st.Merge.Filled != 3 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if !equalDocs(res.Documents, []result.DocID{1, 2, 3}) {
		t.Errorf("Documents = %v", res.Documents)
	}
}

func TestJoin_SummaryRunsMining(t *testing.T) {
	res, subs := mergedPage(t, 1, false)
	rec := &recordingMining{}

	st, err := New(WithMining(rec)).Join(method.Summary, res, subs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Reassemble.Filled != 2 {
		t.Errorf("Filled = %d, want 2", st.Reassemble.Filled)
	}
	if rec.calls != 1 || rec.subs != len(subs) {
		t.Errorf("mining calls=%d subs=%d, want 1 and %d", rec.calls, rec.subs, len(subs))
	}
}

func TestJoin_SummaryErrorSkipsMining(t *testing.T) {
	res, subs := mergedPage(t, 2, false)
	subs[1].Result.Display = result.NewDisplay(1, len(subs[1].Result.Documents), false)
	rec := &recordingMining{}

	_, err := New(WithValidation(true), WithMining(rec)).Join(method.Summary, res, subs)
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if rec.calls != 0 {
		t.Error("mining should not run after a failed reassembly")
	}
}

func TestJoin_Documents(t *testing.T) {
	res := &result.GlobalResult{Documents: []result.DocID{5, 6}}
	workers := []result.WorkerResult{{Worker: workerA, Result: lookupResponse(1, []result.DocID{6})}}

	st, err := New().Join(method.Documents, res, workers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Reassemble.Filled != 1 || st.Reassemble.Unmatched != 1 {
		t.Errorf("unexpected stats: %+v", st.Reassemble)
	}
}

func TestJoin_UnknownMethod(t *testing.T) {
	for _, m := range []method.Method{"", "getMiningResult", "SEARCH"} {
		_, err := New().Join(m, &result.GlobalResult{}, exampleWorkers())
		if !errors.Is(err, domain.ErrUnknownMethod) {
			t.Errorf("method %q: expected ErrUnknownMethod, got %v", m, err)
		}
	}
}

func TestJoin_ValidationErrorWrapped(t *testing.T) {
	workers := []result.WorkerResult{
		{Worker: workerA, Result: ranked(2, []result.DocID{1, 2}, []float64{1, 9})},
		{Worker: workerB, Result: ranked(1, []result.DocID{3}, []float64{5})},
	}
	_, err := New(WithValidation(true)).Join(method.Search, &result.GlobalResult{PageCount: 3}, workers)
	if !errors.Is(err, domain.ErrUnsortedScores) {
		t.Errorf("expected ErrUnsortedScores, got %v", err)
	}
}

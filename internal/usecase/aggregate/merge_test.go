package aggregate

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/shardagg/internal/domain"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

func TestMerge_ExampleScenario(t *testing.T) {
	res := &result.GlobalResult{PageStart: 0, PageCount: 3}
	st, err := New().Merge(res, exampleWorkers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !equalDocs(res.Documents, []result.DocID{1, 2, 3}) {
		t.Errorf("Documents = %v, want [1 2 3]", res.Documents)
	}
	wantWorkers := []result.WorkerID{workerA, workerB, workerA}
	for i, w := range wantWorkers {
		if res.Workers[i] != w {
			t.Errorf("Workers[%d] = %d, want %d", i, res.Workers[i], w)
		}
	}
	wantScores := []float64{9, 8, 5}
	for i, s := range wantScores {
		if res.Scores[i] != s {
			t.Errorf("Scores[%d] = %f, want %f", i, res.Scores[i], s)
		}
	}
	if res.OverallTotalCount != 15 {
		t.Errorf("OverallTotalCount = %d, want 15", res.OverallTotalCount)
	}
	if res.OverallResultCount != 4 {
		t.Errorf("OverallResultCount = %d, want 4", res.OverallResultCount)
	}
	if res.PageStart != 0 || res.PageCount != 3 {
		t.Errorf("page = (%d,%d), want (0,3)", res.PageStart, res.PageCount)
	}
	if st.Filled != 3 || st.Requested != 3 || st.EarlyStop || st.Passthrough {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestMerge_SingleWorkerPassthrough(t *testing.T) {
	sr := ranked(7, []result.DocID{5, 6}, []float64{2, 1})
	res := &result.GlobalResult{PageStart: 10, PageCount: 5}

	st, err := New().Merge(res, []result.WorkerResult{{Worker: 9, Result: sr}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Passthrough {
		t.Error("expected passthrough")
	}
	if !equalDocs(res.Documents, sr.Documents) {
		t.Errorf("Documents = %v", res.Documents)
	}
	if res.Scores[0] != 2 || res.Scores[1] != 1 {
		t.Errorf("Scores = %v", res.Scores)
	}
	for i, w := range res.Workers {
		if w != 9 {
			t.Errorf("Workers[%d] = %d, want 9", i, w)
		}
	}
	if res.OverallTotalCount != 7 {
		t.Errorf("OverallTotalCount = %d, want 7", res.OverallTotalCount)
	}
	if res.PageStart != 2 || res.PageCount != 0 {
		t.Errorf("page = (%d,%d), want (2,0)", res.PageStart, res.PageCount)
	}
	if len(res.CustomScores) != len(res.Documents) {
		t.Errorf("CustomScores len = %d, want %d", len(res.CustomScores), len(res.Documents))
	}

	res.Documents[0] = 42
	if sr.Documents[0] != 5 {
		t.Error("passthrough must not alias worker arrays")
	}
}

func TestMerge_PassthroughClipsPage(t *testing.T) {
	sr := ranked(7, []result.DocID{5, 6, 7}, []float64{3, 2, 1})
	res := &result.GlobalResult{PageStart: 1, PageCount: 10}

	if _, err := New().Merge(res, []result.WorkerResult{{Worker: 9, Result: sr}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PageStart != 1 || res.PageCount != 2 {
		t.Errorf("page = (%d,%d), want (1,2)", res.PageStart, res.PageCount)
	}
}

func TestMerge_WorkerQueryTerms(t *testing.T) {
	requested := result.QueryTerms{"title": {"shard", "merge"}}
	analysed := result.QueryTerms{"title": {"shard", "merg"}}

	withTerms := func(sr *result.ShardResult) *result.ShardResult {
		sr.QueryTerms = analysed
		return sr
	}
	tests := []struct {
		name    string
		workers []result.WorkerResult
		want    []string
	}{
		{"passthrough", []result.WorkerResult{
			{Worker: workerA, Result: withTerms(ranked(1, []result.DocID{1}, []float64{1}))},
		}, []string{"shard", "merg"}},
		{"first worker without terms", []result.WorkerResult{
			{Worker: workerA, Result: ranked(1, []result.DocID{1}, []float64{2})},
			{Worker: workerB, Result: withTerms(ranked(1, []result.DocID{2}, []float64{1}))},
		}, []string{"shard", "merg"}},
		{"no worker terms", []result.WorkerResult{
			{Worker: workerA, Result: ranked(1, []result.DocID{1}, []float64{2})},
			{Worker: workerB, Result: ranked(1, []result.DocID{2}, []float64{1})},
		}, []string{"shard", "merge"}},
		{"passthrough without terms", []result.WorkerResult{
			{Worker: workerA, Result: ranked(1, []result.DocID{1}, []float64{1})},
		}, []string{"shard", "merge"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &result.GlobalResult{PageCount: 2, QueryTerms: requested.Clone()}
			if _, err := New().Merge(res, tt.workers); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := res.QueryTerms["title"]
			if len(got) != len(tt.want) || got[0] != tt.want[0] || got[1] != tt.want[1] {
				t.Errorf("QueryTerms[title] = %v, want %v", got, tt.want)
			}

			parts := PartitionOrdered(res)
			if len(parts) == 0 {
				t.Fatal("expected partitions")
			}
			if pt := parts[0].Result.QueryTerms["title"]; len(pt) != 2 || pt[1] != tt.want[1] {
				t.Errorf("partition QueryTerms[title] = %v, want %v", pt, tt.want)
			}
		})
	}
}

func TestMerge_DescendingGlobalOrder(t *testing.T) {
	workers := []result.WorkerResult{
		{Worker: workerA, Result: ranked(3, []result.DocID{1, 2, 3}, []float64{0.9, 0.4, 0.1})},
		{Worker: workerB, Result: ranked(4, []result.DocID{4, 5, 6, 7}, []float64{0.95, 0.5, 0.5, 0.05})},
		{Worker: workerC, Result: ranked(2, []result.DocID{8, 9}, []float64{0.6, 0.3})},
	}
	res := &result.GlobalResult{PageStart: 0, PageCount: 100}
	if _, err := New().Merge(res, workers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Len() != 9 {
		t.Fatalf("Len() = %d, want 9", res.Len())
	}
	for i := 1; i < len(res.Scores); i++ {
		if res.Scores[i] > res.Scores[i-1] {
			t.Errorf("scores not sorted: %f > %f at index %d", res.Scores[i], res.Scores[i-1], i)
		}
	}
}

func TestMerge_CountConservation(t *testing.T) {
	windows := [][2]int{{0, 1}, {0, 4}, {2, 2}, {3, 10}, {50, 10}}
	for _, w := range windows {
		res := &result.GlobalResult{PageStart: w[0], PageCount: w[1]}
		if _, err := New().Merge(res, exampleWorkers()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.OverallTotalCount != 15 {
			t.Errorf("window %v: OverallTotalCount = %d, want 15", w, res.OverallTotalCount)
		}
	}
}

func TestMerge_PaginationClipping(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		count     int
		wantStart int
		wantCount int
		wantLen   int
	}{
		{"within", 1, 2, 1, 2, 3},
		{"count shrinks", 2, 5, 2, 2, 4},
		{"exact end", 0, 4, 0, 4, 4},
		{"start beyond total", 6, 3, 4, 0, 4},
		{"zero count", 1, 0, 1, 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := &result.GlobalResult{PageStart: tc.start, PageCount: tc.count}
			if _, err := New().Merge(res, exampleWorkers()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.PageStart != tc.wantStart || res.PageCount != tc.wantCount {
				t.Errorf("page = (%d,%d), want (%d,%d)",
					res.PageStart, res.PageCount, tc.wantStart, tc.wantCount)
			}
			if res.Len() != tc.wantLen {
				t.Errorf("Len() = %d, want %d", res.Len(), tc.wantLen)
			}
			if res.PageStart+res.PageCount > res.OverallResultCount {
				t.Error("window exceeds OverallResultCount")
			}
		})
	}
}

func TestMerge_StartBeyondTotalYieldsEmptyPage(t *testing.T) {
	res := &result.GlobalResult{PageStart: 100, PageCount: 10}
	if _, err := New().Merge(res, exampleWorkers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start, end := res.PageBounds(); start != end {
		t.Errorf("PageBounds() = (%d,%d), want empty", start, end)
	}
}

func TestMerge_TieBreakFirstWorkerWins(t *testing.T) {
	a := result.WorkerResult{Worker: workerA, Result: ranked(1, []result.DocID{1}, []float64{5})}
	b := result.WorkerResult{Worker: workerB, Result: ranked(1, []result.DocID{2}, []float64{5})}

	res := &result.GlobalResult{PageCount: 2}
	if _, err := New().Merge(res, []result.WorkerResult{a, b}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalDocs(res.Documents, []result.DocID{1, 2}) {
		t.Errorf("Documents = %v, want [1 2]", res.Documents)
	}

	res = &result.GlobalResult{PageCount: 2}
	if _, err := New().Merge(res, []result.WorkerResult{b, a}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalDocs(res.Documents, []result.DocID{2, 1}) {
		t.Errorf("Documents = %v, want [2 1]", res.Documents)
	}
}

func TestMerge_NonPositiveScores(t *testing.T) {
	workers := []result.WorkerResult{
		{Worker: workerA, Result: ranked(1, []result.DocID{1}, []float64{-1})},
		{Worker: workerB, Result: ranked(2, []result.DocID{2, 3}, []float64{0, -2})},
	}
	res := &result.GlobalResult{PageCount: 3}
	if _, err := New().Merge(res, workers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalDocs(res.Documents, []result.DocID{2, 1, 3}) {
		t.Errorf("Documents = %v, want [2 1 3]", res.Documents)
	}
}

func TestMerge_CustomScores(t *testing.T) {
	withCustom := ranked(2, []result.DocID{1, 2}, []float64{9, 3})
	withCustom.CustomScores = []float64{100, 300}
	workers := []result.WorkerResult{
		{Worker: workerA, Result: withCustom},
		{Worker: workerB, Result: ranked(1, []result.DocID{3}, []float64{5})},
	}

	res := &result.GlobalResult{PageCount: 3}
	if _, err := New().Merge(res, workers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{100, 0, 300}
	for i, c := range want {
		if res.CustomScores[i] != c {
			t.Errorf("CustomScores[%d] = %f, want %f", i, res.CustomScores[i], c)
		}
	}
}

func TestMerge_EmptyInput(t *testing.T) {
	res := &result.GlobalResult{PageStart: 5, PageCount: 10}
	st, err := New().Merge(res, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Len() != 0 || res.PageStart != 0 || res.PageCount != 0 {
		t.Errorf("expected empty result, got len=%d page=(%d,%d)", res.Len(), res.PageStart, res.PageCount)
	}
	if st.EarlyStop {
		t.Error("empty input should not report an early stop")
	}
}

func TestMerge_MissingWorkerTolerance(t *testing.T) {
	full := exampleWorkers()
	res := &result.GlobalResult{PageCount: 10}
	if _, err := New().Merge(res, full[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OverallTotalCount != 10 {
		t.Errorf("OverallTotalCount = %d, want 10", res.OverallTotalCount)
	}

	// A missing worker and an empty worker are indistinguishable.
	withEmpty := append(exampleWorkers(), result.WorkerResult{Worker: workerC, Result: ranked(0, nil, nil)})
	withNil := append(exampleWorkers(), result.WorkerResult{Worker: workerC})
	for _, workers := range [][]result.WorkerResult{withEmpty, withNil} {
		res := &result.GlobalResult{PageCount: 10}
		if _, err := New().Merge(res, workers); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.OverallTotalCount != 15 || res.OverallResultCount != 4 {
			t.Errorf("counts = (%d,%d), want (15,4)", res.OverallTotalCount, res.OverallResultCount)
		}
		if !equalDocs(res.Documents, []result.DocID{1, 2, 3, 4}) {
			t.Errorf("Documents = %v", res.Documents)
		}
	}
}

func TestMerge_EarlyStopIsExplicit(t *testing.T) {
	// worker A claims three documents but only scores two of them
	workers := []result.WorkerResult{
		{Worker: workerA, Result: ranked(3, []result.DocID{1, 2, 3}, []float64{3, 2})},
		{Worker: workerB, Result: ranked(1, []result.DocID{4}, []float64{1})},
	}
	res := &result.GlobalResult{PageStart: 0, PageCount: 4}
	st, err := New().Merge(res, workers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.EarlyStop {
		t.Fatal("expected early stop")
	}
	if st.Requested != 4 || st.Filled != 3 {
		t.Errorf("Requested=%d Filled=%d, want 4 and 3", st.Requested, st.Filled)
	}
	if res.Len() != 3 || len(res.Workers) != 3 || len(res.Scores) != 3 || len(res.CustomScores) != 3 {
		t.Errorf("arrays not truncated to filled length")
	}
	if res.PageStart+res.PageCount != 3 {
		t.Errorf("page = (%d,%d), want it to end at 3", res.PageStart, res.PageCount)
	}
}

func TestMerge_LenientUnsortedInput(t *testing.T) {
	workers := []result.WorkerResult{
		{Worker: workerA, Result: ranked(2, []result.DocID{1, 2}, []float64{1, 9})},
		{Worker: workerB, Result: ranked(1, []result.DocID{3}, []float64{5})},
	}
	res := &result.GlobalResult{PageCount: 3}
	if _, err := New().Merge(res, workers); err != nil {
		t.Fatalf("lenient merge should not fail: %v", err)
	}
	if !equalDocs(res.Documents, []result.DocID{3, 1, 2}) {
		t.Errorf("Documents = %v, want [3 1 2]", res.Documents)
	}
}

func TestMerge_Validation(t *testing.T) {
	tests := []struct {
		name    string
		shard   *result.ShardResult
		wantErr error
	}{
		{"unsorted", ranked(2, []result.DocID{1, 2}, []float64{1, 9}), domain.ErrUnsortedScores},
		{"scores short", ranked(2, []result.DocID{1, 2}, []float64{1}), domain.ErrLengthMismatch},
		{"custom short", &result.ShardResult{
			Documents: []result.DocID{1, 2}, Scores: []float64{2, 1}, CustomScores: []float64{1},
		}, domain.ErrLengthMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			workers := []result.WorkerResult{
				{Worker: workerA, Result: tc.shard},
				{Worker: workerB, Result: ranked(1, []result.DocID{3}, []float64{5})},
			}
			_, err := New(WithValidation(true)).Merge(&result.GlobalResult{PageCount: 3}, workers)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestMerge_ValidationAcceptsSortedInput(t *testing.T) {
	res := &result.GlobalResult{PageCount: 3}
	if _, err := New(WithValidation(true)).Merge(res, exampleWorkers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Len() != 3 {
		t.Errorf("Len() = %d, want 3", res.Len())
	}
}

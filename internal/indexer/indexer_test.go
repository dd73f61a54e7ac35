package indexer

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/solrpress/solrpress/internal/checkpoint"
	"github.com/solrpress/solrpress/internal/content"
	"github.com/solrpress/solrpress/internal/docbuild"
	"github.com/solrpress/solrpress/internal/domain/document"
	"github.com/solrpress/solrpress/internal/domain/record"
)

type fakeSource struct {
	ids       []int64
	recordErr map[int64]error
	pages     []int
}

func (f *fakeSource) ListIDs(ctx context.Context, filter content.ListFilter) ([]int64, error) {
	f.pages = append(f.pages, filter.Page)
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(f.ids) {
		return nil, nil
	}
	end := start + filter.PageSize
	if end > len(f.ids) {
		end = len(f.ids)
	}
	return f.ids[start:end], nil
}

func (f *fakeSource) Count(ctx context.Context, filter content.ListFilter) (int, error) {
	return len(f.ids), nil
}

func (f *fakeSource) Record(ctx context.Context, id int64) (*record.ContentRecord, error) {
	if err := f.recordErr[id]; err != nil {
		return nil, err
	}
	return &record.ContentRecord{
		ID:     id,
		Type:   "post",
		Status: "publish",
		Title:  "title " + strconv.FormatInt(id, 10),
	}, nil
}

func (f *fakeSource) Types(ctx context.Context) ([]string, error) {
	return []string{"post"}, nil
}

type fakeSubmitter struct {
	batches  [][]*document.Document
	failNext int
	lastErr  error
}

func (f *fakeSubmitter) Upsert(ctx context.Context, docs []*document.Document, optimize bool) bool {
	if f.failNext > 0 {
		f.failNext--
		f.lastErr = errors.New("backend down")
		return false
	}
	f.batches = append(f.batches, docs)
	return true
}

func (f *fakeSubmitter) LastError() error { return f.lastErr }

func seq(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids
}

func newController(source *fakeSource, sub *fakeSubmitter, store checkpoint.Store, opts ...Option) *Controller {
	return New(source, docbuild.New(docbuild.Settings{}), sub, store, nil, opts...)
}

func TestRunIndexesEverythingAndClearsCursor(t *testing.T) {
	source := &fakeSource{ids: seq(5)}
	sub := &fakeSubmitter{}
	store := checkpoint.NewMemory()
	params := Params{PageSize: 2}

	var completed bool
	ctrl := newController(source, sub, store,
		WithCompletionHook(func(ctx context.Context, p Params, r Result) { completed = true }))

	res, err := ctrl.Run(context.Background(), params, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Completed || res.Indexed != 5 || res.Failed != 0 || res.Total != 5 {
		t.Fatalf("result = %+v", res)
	}
	if len(sub.batches) != 3 {
		t.Fatalf("batches = %d, want 3 pages", len(sub.batches))
	}
	if !completed {
		t.Fatal("completion hook not fired")
	}
	if _, found, _ := store.Get(context.Background(), params.Key()); found {
		t.Fatal("cursor not cleared after completion")
	}
}

func TestRunResumesFromCursor(t *testing.T) {
	source := &fakeSource{ids: seq(6)}
	sub := &fakeSubmitter{}
	store := checkpoint.NewMemory()
	params := Params{PageSize: 2}

	prior := checkpoint.Cursor{Page: 2, Total: 6, Succeeded: 2, Status: checkpoint.StatusPaused}
	if err := store.Set(context.Background(), params.Key(), prior); err != nil {
		t.Fatalf("seed cursor: %v", err)
	}

	ctrl := newController(source, sub, store)
	res, err := ctrl.Run(context.Background(), params, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if source.pages[0] != 2 {
		t.Fatalf("first page requested = %d, want resume at 2", source.pages[0])
	}
	// Two prior successes plus pages 2 and 3.
	if res.Indexed != 6 {
		t.Fatalf("Indexed = %d, want 6", res.Indexed)
	}
}

func TestRunForceIgnoresCursor(t *testing.T) {
	source := &fakeSource{ids: seq(4)}
	sub := &fakeSubmitter{}
	store := checkpoint.NewMemory()
	params := Params{PageSize: 2}

	prior := checkpoint.Cursor{Page: 2, Succeeded: 2, Status: checkpoint.StatusPaused}
	_ = store.Set(context.Background(), params.Key(), prior)

	ctrl := newController(source, sub, store)
	res, err := ctrl.Run(context.Background(), params, true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if source.pages[0] != 1 {
		t.Fatalf("first page requested = %d, want 1 under force", source.pages[0])
	}
	if res.Indexed != 4 {
		t.Fatalf("Indexed = %d, want fresh count 4", res.Indexed)
	}
}

func TestRunCountsItemFailuresAndContinues(t *testing.T) {
	source := &fakeSource{
		ids:       seq(4),
		recordErr: map[int64]error{2: errors.New("row gone")},
	}
	sub := &fakeSubmitter{}
	ctrl := newController(source, sub, checkpoint.NewMemory())

	res, err := ctrl.Run(context.Background(), Params{PageSize: 2}, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Indexed != 3 || res.Failed != 1 || !res.Completed {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunCountsBatchFailureAndContinues(t *testing.T) {
	source := &fakeSource{ids: seq(4)}
	sub := &fakeSubmitter{failNext: 1}
	ctrl := newController(source, sub, checkpoint.NewMemory())

	res, err := ctrl.Run(context.Background(), Params{PageSize: 2}, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Indexed != 2 || res.Failed != 2 || !res.Completed {
		t.Fatalf("result = %+v", res)
	}
	if res.LastError == nil {
		t.Fatal("LastError = nil after batch failure")
	}
}

func TestRunPausesOnCancellation(t *testing.T) {
	source := &fakeSource{ids: seq(4)}
	sub := &fakeSubmitter{}
	store := checkpoint.NewMemory()
	params := Params{PageSize: 2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := newController(source, sub, store)
	_, err := ctrl.Run(ctx, params, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	cursor, found, getErr := store.Get(context.Background(), params.Key())
	if getErr != nil || !found {
		t.Fatalf("cursor missing after pause (found=%v err=%v)", found, getErr)
	}
	if cursor.Status != checkpoint.StatusPaused {
		t.Fatalf("cursor status = %q, want paused", cursor.Status)
	}
}

func TestRunIdempotentUnderForce(t *testing.T) {
	source := &fakeSource{ids: seq(5)}
	sub := &fakeSubmitter{}
	ctrl := newController(source, sub, checkpoint.NewMemory())
	params := Params{PageSize: 2}

	first, err := ctrl.Run(context.Background(), params, true)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := ctrl.Run(context.Background(), params, true)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if first.Indexed != second.Indexed || first.Failed != second.Failed {
		t.Fatalf("runs diverged: %+v vs %+v", first, second)
	}
}

func TestParamsKeyCanonical(t *testing.T) {
	a := Params{Types: []string{"post", "page"}, PageSize: 10}
	b := Params{Types: []string{"page", "post"}, PageSize: 10}
	if a.Key() != b.Key() {
		t.Fatal("type order changed the job key")
	}

	c := Params{Types: []string{"post", "page"}, PageSize: 20}
	if a.Key() == c.Key() {
		t.Fatal("page size did not change the job key")
	}

	d := a
	d.Site = &record.SiteContext{ID: 3}
	if a.Key() == d.Key() {
		t.Fatal("site did not change the job key")
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

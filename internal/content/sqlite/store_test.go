package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/solrpress/solrpress/internal/content"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "content.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()

	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO records (id, type, status, title, body, author, permalink, published_at, modified_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{1, "post", "publish", "First", "body one", "alice", "https://example.org/1", "2024-01-02 03:04:05", "2024-01-03 03:04:05"}},
		{`INSERT INTO records (id, type, status, title) VALUES (?, ?, ?, ?)`,
			[]any{2, "page", "publish", "About"}},
		{`INSERT INTO records (id, type, status, title) VALUES (?, ?, ?, ?)`,
			[]any{3, "post", "draft", "Draft"}},
		{`INSERT INTO comments (record_id, body, approved) VALUES (1, 'nice', 1)`, nil},
		{`INSERT INTO comments (record_id, body, approved) VALUES (1, 'spam', 0)`, nil},
		{`INSERT INTO terms (record_id, taxonomy, name, path, position) VALUES (1, 'category', 'B', 'A/B', 0)`, nil},
		{`INSERT INTO terms (record_id, taxonomy, name, position) VALUES (1, 'tag', 'go', 0)`, nil},
		{`INSERT INTO terms (record_id, taxonomy, name, position) VALUES (1, 'series', 'intro', 0)`, nil},
		{`INSERT INTO custom_fields (record_id, name, value, position) VALUES (1, 'color', 'red', 0)`, nil},
		{`INSERT INTO custom_fields (record_id, name, value, position) VALUES (1, 'color', 'blue', 1)`, nil},
	}
	for _, st := range stmts {
		if _, err := s.DB().Exec(st.query, st.args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestListIDsScoping(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	ids, err := s.ListIDs(ctx, content.ListFilter{Types: []string{"post"}, Status: "publish", PageSize: 10, Page: 1})
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("ListIDs() = %v, want [1]", ids)
	}

	n, err := s.Count(ctx, content.ListFilter{Status: "publish"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Count() = %d, want 2", n)
	}
}

func TestListIDsPaging(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	page1, err := s.ListIDs(ctx, content.ListFilter{PageSize: 2, Page: 1})
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}
	page2, err := s.ListIDs(ctx, content.ListFilter{PageSize: 2, Page: 2})
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}
	if len(page1) != 2 || page1[0] != 1 || page1[1] != 2 {
		t.Fatalf("page1 = %v, want [1 2]", page1)
	}
	if len(page2) != 1 || page2[0] != 3 {
		t.Fatalf("page2 = %v, want [3]", page2)
	}
}

func TestRecordHydration(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	rec, err := s.Record(context.Background(), 1)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec.Title != "First" || rec.Author != "alice" {
		t.Fatalf("record core fields = %q/%q", rec.Title, rec.Author)
	}
	if rec.CommentCount != 2 {
		t.Fatalf("CommentCount = %d, want 2", rec.CommentCount)
	}
	if len(rec.Comments) != 1 || rec.Comments[0] != "nice" {
		t.Fatalf("Comments = %v, want only approved", rec.Comments)
	}
	if len(rec.Categories) != 1 || len(rec.Categories[0]) != 2 || rec.Categories[0][1] != "B" {
		t.Fatalf("Categories = %v, want [[A B]]", rec.Categories)
	}
	if len(rec.Tags) != 1 || rec.Tags[0] != "go" {
		t.Fatalf("Tags = %v", rec.Tags)
	}
	if got := rec.Taxonomies["series"]; len(got) != 1 || got[0] != "intro" {
		t.Fatalf("Taxonomies = %v", rec.Taxonomies)
	}
	if got := rec.Custom["color"]; len(got) != 2 || got[0] != "red" || got[1] != "blue" {
		t.Fatalf("Custom = %v", rec.Custom)
	}
}

func TestRecordNotFound(t *testing.T) {
	s := testStore(t)

	if _, err := s.Record(context.Background(), 99); err != content.ErrNotFound {
		t.Fatalf("Record() error = %v, want ErrNotFound", err)
	}
}

func TestTypes(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	types, err := s.Types(context.Background())
	if err != nil {
		t.Fatalf("Types() error = %v", err)
	}
	if len(types) != 2 || types[0] != "page" || types[1] != "post" {
		t.Fatalf("Types() = %v, want [page post]", types)
	}
}

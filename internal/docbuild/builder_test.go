package docbuild

import (
	"reflect"
	"testing"

	"github.com/solrpress/solrpress/internal/domain/record"
)

func sampleRecord() *record.ContentRecord {
	return &record.ContentRecord{
		ID:           42,
		Type:         "post",
		Status:       "publish",
		Title:        "Hello",
		Body:         "<p>Some <b>bold</b> text.</p><script>alert(1)</script>",
		Author:       "alice",
		AuthorLink:   "https://example.org/author/alice",
		Permalink:    "https://example.org/hello",
		PublishedAt:  "2024-01-02 03:04:05",
		ModifiedAt:   "2024-01-03 04:05:06",
		CommentCount: 2,
		Comments:     []string{"<p>first</p>", "second"},
		Categories:   [][]string{{"News", "Tech"}},
		Tags:         []string{"go", "search"},
		Taxonomies:   map[string][]string{"series": {"intro"}},
		Custom:       map[string][]string{"color": {"red", "blue"}, "ignored": {"x"}},
	}
}

func TestBuildCoreFields(t *testing.T) {
	b := New(Settings{
		IndexComments:         true,
		CategoriesAsHierarchy: true,
		CustomFields:          []string{"color"},
	})

	doc, err := b.Build(sampleRecord(), nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := map[string]any{
		"id":              "42",
		"title":           "Hello",
		"content":         "Some bold text.",
		"author":          "alice",
		"author_s":        "https://example.org/author/alice",
		"type":            "post",
		"date":            "2024-01-02T03:04:05Z",
		"modified":        "2024-01-03T04:05:06Z",
		"displaydate":     "2024-01-02 03:04:05",
		"displaymodified": "2024-01-03 04:05:06",
		"numcomments":     2,
	}
	for field, v := range want {
		got := doc.Get(field)
		if len(got) != 1 || got[0] != v {
			t.Errorf("field %q = %v, want %v", field, got, v)
		}
	}

	if got := doc.Get("comments"); !reflect.DeepEqual(got, []any{"first", "second"}) {
		t.Errorf("comments = %v", got)
	}
	if got := doc.Get("categories"); !reflect.DeepEqual(got, []any{"News^^Tech"}) {
		t.Errorf("categories = %v", got)
	}
	if got := doc.Get("tags"); !reflect.DeepEqual(got, []any{"go", "search"}) {
		t.Errorf("tags = %v", got)
	}
	if got := doc.Get("series_taxonomy"); !reflect.DeepEqual(got, []any{"intro"}) {
		t.Errorf("series_taxonomy = %v", got)
	}
	if got := doc.Get("color_str"); !reflect.DeepEqual(got, []any{"red", "blue"}) {
		t.Errorf("color_str = %v", got)
	}
	if got := doc.Get("color_srch"); !reflect.DeepEqual(got, []any{"red", "blue"}) {
		t.Errorf("color_srch = %v", got)
	}
	if got := doc.Get("ignored_str"); got != nil {
		t.Errorf("unconfigured custom field leaked: %v", got)
	}
}

func TestBuildDeterministic(t *testing.T) {
	b := New(Settings{IndexComments: true, CustomFields: []string{"color"}})

	first, err := b.Build(sampleRecord(), nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := b.Build(sampleRecord(), nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !reflect.DeepEqual(first.Fields(), second.Fields()) {
		t.Fatal("rebuilding the same record produced different documents")
	}
}

func TestBuildExcluded(t *testing.T) {
	b := New(Settings{Exclusions: []int64{42}})

	if _, err := b.Build(sampleRecord(), nil); err != ErrExcluded {
		t.Fatalf("Build() error = %v, want ErrExcluded", err)
	}
}

func TestBuildMultiTenant(t *testing.T) {
	b := New(Settings{MultiTenant: true})
	site := &record.SiteContext{ID: 7, Domain: "example.org", Path: "/blog/"}

	doc, err := b.Build(sampleRecord(), site)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := doc.ID(); got != "example.org/blog/42" {
		t.Errorf("id = %q", got)
	}
	if got := doc.Get("siteid"); len(got) != 1 || got[0] != int64(7) {
		t.Errorf("siteid = %v", got)
	}

	if _, err := b.Build(sampleRecord(), nil); err != ErrSiteRequired {
		t.Fatalf("Build() without site error = %v, want ErrSiteRequired", err)
	}
}

func TestBuildFlatCategories(t *testing.T) {
	b := New(Settings{})

	doc, err := b.Build(sampleRecord(), nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := doc.Get("categories"); !reflect.DeepEqual(got, []any{"Tech"}) {
		t.Errorf("categories = %v, want leaf name only", got)
	}
}

func TestBuildSanitizesDelimiterInSegments(t *testing.T) {
	rec := sampleRecord()
	rec.Categories = [][]string{{"A^^B", "C"}}
	b := New(Settings{CategoriesAsHierarchy: true})

	doc, err := b.Build(rec, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := doc.Get("categories"); !reflect.DeepEqual(got, []any{"A/B^^C"}) {
		t.Errorf("categories = %v", got)
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "already plain", "already plain"},
		{"tags", "<p>one <em>two</em></p>", "one two"},
		{"script dropped", "keep<script>var x;</script> this", "keep this"},
		{"entities", "a &amp; b", "a & b"},
		{"whitespace collapsed", "a\n\n  b\tc", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.in); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

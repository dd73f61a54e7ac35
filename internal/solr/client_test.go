package solr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/solrpress/solrpress/internal/domain/document"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())
	c, err := New(Config{Scheme: "http", Host: u.Hostname(), Port: port, Path: "/solr/content"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestNew_MissingConfig(t *testing.T) {
	_, err := New(Config{Host: "localhost"}, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestPing(t *testing.T) {
	var gotPath string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"status":"OK"}`)
	}))

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if gotPath != "/solr/content/admin/ping" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestPing_Non200IsUnavailable(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	err := c.Ping(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestUpdate_PostsDocumentsWithCommit(t *testing.T) {
	var gotBody []byte
	var gotQuery url.Values
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotQuery = r.URL.Query()
		_, _ = io.WriteString(w, `{"responseHeader":{"status":0}}`)
	}))

	doc := document.New()
	doc.Set("id", "7")
	doc.Set("title", "hello")

	err := c.Update(context.Background(), UpdateRequest{Documents: []*document.Document{doc}, Commit: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotQuery.Get("commit") != "true" {
		t.Errorf("commit param missing: %v", gotQuery)
	}
	want := `[{"id":"7","title":"hello"}]`
	if string(gotBody) != want {
		t.Errorf("body = %s, want %s", gotBody, want)
	}
}

func TestUpdate_DeleteByQuery(t *testing.T) {
	var gotBody []byte
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{}`)
	}))

	err := c.Update(context.Background(), UpdateRequest{DeleteQuery: "*:*", Commit: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	var cmd map[string]map[string]string
	if err := json.Unmarshal(gotBody, &cmd); err != nil {
		t.Fatalf("unmarshal body %s: %v", gotBody, err)
	}
	if cmd["delete"]["query"] != "*:*" {
		t.Errorf("body = %s", gotBody)
	}
}

func TestSelect_DecodesResponse(t *testing.T) {
	payload := `{
		"responseHeader": {"status": 0, "QTime": 12},
		"response": {"numFound": 2, "start": 0, "docs": [
			{"id": "1", "title": "first", "score": 1.5, "numcomments": 3},
			{"id": "2", "title": "second", "score": 0.5, "numcomments": 0}
		]},
		"facet_counts": {"facet_fields": {"tags": ["go", 4, "search", 1]}},
		"highlighting": {"1": {"content": ["a <b>hit</b> here"]}}
	}`
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, payload)
	}))

	resp, err := c.Select(context.Background(), &SelectQuery{Query: "hit", Rows: 10})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if resp.Body.NumFound != 2 {
		t.Errorf("NumFound = %d", resp.Body.NumFound)
	}
	if resp.Header.QTime != 12 {
		t.Errorf("QTime = %d", resp.Header.QTime)
	}

	tags := resp.FacetValues("tags")
	if tags["go"] != 4 || tags["search"] != 1 {
		t.Errorf("FacetValues = %v", tags)
	}
	if got := resp.FacetValues("absent"); len(got) != 0 {
		t.Errorf("absent field = %v, want empty", got)
	}

	snips := resp.Snippets("1", "content")
	if len(snips) != 1 || !strings.Contains(snips[0], "<b>hit</b>") {
		t.Errorf("Snippets = %v", snips)
	}
	if got := resp.Snippets("2", "content"); got != nil {
		t.Errorf("Snippets for unhighlighted doc = %v", got)
	}
}

func TestSelect_UnavailableOnTransportError(t *testing.T) {
	c, srv := testClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := c.Select(context.Background(), &SelectQuery{Query: "*:*"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestSelectQuery_Values(t *testing.T) {
	q := &SelectQuery{
		Query:             "cats",
		Start:             20,
		Rows:              10,
		Sort:              "date desc",
		FilterQueries:     []string{"type:post", ""},
		FacetFields:       []string{"categories", "tags"},
		FacetMinCount:     1,
		FacetLimits:       map[string]int{"tags": 25},
		QueryFields:       "title^10 content^3.5",
		PhraseFields:      "title^15",
		HighlightField:    "content",
		HighlightSnippets: 5,
		HighlightFragsize: 50,
		HighlightPre:      "<b>",
		HighlightPost:     "</b>",
		DefaultOperator:   "AND",
	}
	v := q.Values()

	if v.Get("q") != "cats" || v.Get("start") != "20" || v.Get("rows") != "10" {
		t.Errorf("paging params wrong: %v", v)
	}
	if got := v["fq"]; len(got) != 1 || got[0] != "type:post" {
		t.Errorf("fq = %v, empty filters must be dropped", got)
	}
	if got := v["facet.field"]; len(got) != 2 {
		t.Errorf("facet.field = %v", got)
	}
	if v.Get("facet.mincount") != "1" {
		t.Errorf("facet.mincount = %q", v.Get("facet.mincount"))
	}
	if v.Get("f.tags.facet.limit") != "25" {
		t.Errorf("tag facet limit = %q", v.Get("f.tags.facet.limit"))
	}
	if v.Get("defType") != "edismax" || v.Get("qf") == "" {
		t.Errorf("boost params wrong: %v", v)
	}
	if v.Get("hl") != "true" || v.Get("hl.snippets") != "5" || v.Get("hl.fragsize") != "50" {
		t.Errorf("highlight params wrong: %v", v)
	}
	if v.Get("q.op") != "AND" {
		t.Errorf("q.op = %q", v.Get("q.op"))
	}
}

func TestSelectQuery_Values_NoBoostsNoFacets(t *testing.T) {
	v := (&SelectQuery{Query: "x", Rows: 5}).Values()
	if v.Get("defType") != "" {
		t.Errorf("defType should be unset, got %q", v.Get("defType"))
	}
	if v.Get("facet") != "" {
		t.Errorf("facet should be unset, got %q", v.Get("facet"))
	}
	if v.Get("hl") != "" {
		t.Errorf("hl should be unset, got %q", v.Get("hl"))
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plus and parens", "a+b (c)", `a\+b \(c\)`},
		{"colon", "field:value", `field\:value`},
		{"boolean operators", "a && b || c", `a \&& b \|| c`},
		{"single ampersand untouched", "a & b", "a & b"},
		{"backslash", `a\b`, `a\\b`},
		{"quotes and wildcards", `"ab*?"`, `\"ab\*\?\"`},
		{"clean text untouched", "plain words 123", "plain words 123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.in); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscape_NoDoubleEscapeOutsideReservedSet(t *testing.T) {
	// Re-escaping may only add backslashes for reserved characters; the
	// letters themselves must come through untouched.
	once := Escape("a+b")
	twice := Escape(once)
	if strings.ReplaceAll(twice, `\`, "") != "a+b" {
		t.Errorf("double escape corrupted payload: %q", twice)
	}
}

package solr

import (
	"net/url"
	"strconv"
	"strings"
)

// SelectQuery is one fully specified select request: query text, paging,
// sort, filter clauses, facet directives, and highlighting directives.
type SelectQuery struct {
	Query string
	Start int
	Rows  int

	// Sort is a backend sort clause such as "date desc". Empty means
	// relevance order.
	Sort string

	// FilterQueries holds "field:value" clauses ANDed into the result set
	// without affecting scoring.
	FilterQueries []string

	// Facet directives.
	FacetFields   []string
	FacetMinCount int
	// FacetLimits caps the number of values returned per field; fields
	// absent from the map are uncapped.
	FacetLimits map[string]int

	// Boosted multi-field matching (edismax). Empty QueryFields leaves the
	// backend's single default field in charge.
	QueryFields  string
	PhraseFields string

	// Highlighting directives.
	HighlightField    string
	HighlightSnippets int
	HighlightFragsize int
	HighlightPre      string
	HighlightPost     string

	DefaultOperator string // "AND" or "OR", empty for server default
}

// Values serializes the query into select-handler request parameters.
func (q *SelectQuery) Values() url.Values {
	v := url.Values{}
	v.Set("q", q.Query)
	v.Set("fl", "*,score")
	v.Set("start", strconv.Itoa(q.Start))
	v.Set("rows", strconv.Itoa(q.Rows))
	v.Set("wt", "json")

	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	for _, fq := range q.FilterQueries {
		if fq != "" {
			v.Add("fq", fq)
		}
	}

	if len(q.FacetFields) > 0 {
		v.Set("facet", "true")
		for _, f := range q.FacetFields {
			v.Add("facet.field", f)
		}
		if q.FacetMinCount > 0 {
			v.Set("facet.mincount", strconv.Itoa(q.FacetMinCount))
		}
		for field, limit := range q.FacetLimits {
			v.Set("f."+field+".facet.limit", strconv.Itoa(limit))
		}
	}

	if q.QueryFields != "" {
		v.Set("defType", "edismax")
		v.Set("qf", q.QueryFields)
		if q.PhraseFields != "" {
			v.Set("pf", q.PhraseFields)
		}
	}

	if q.HighlightField != "" {
		v.Set("hl", "true")
		v.Set("hl.fl", q.HighlightField)
		v.Set("hl.snippets", strconv.Itoa(q.HighlightSnippets))
		v.Set("hl.fragsize", strconv.Itoa(q.HighlightFragsize))
		v.Set("hl.simple.pre", q.HighlightPre)
		v.Set("hl.simple.post", q.HighlightPost)
	}

	if q.DefaultOperator != "" {
		v.Set("q.op", q.DefaultOperator)
	}

	return v
}

// reserved holds the single characters the query syntax treats specially.
// "&&" and "||" are two-character operators handled separately.
const reserved = `+-!(){}[]^"~*?:\`

// Escape prefixes every reserved query-syntax character in s with a
// backslash so the value can be embedded verbatim in a query or filter
// expression. Characters outside the reserved set are never touched.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case strings.IndexByte(reserved, c) >= 0:
			b.WriteByte('\\')
			b.WriteByte(c)
		case (c == '&' || c == '|') && i+1 < len(s) && s[i+1] == c:
			b.WriteByte('\\')
			b.WriteByte(c)
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

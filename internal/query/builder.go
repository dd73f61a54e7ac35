// Package query translates search requests into backend select queries.
package query

import (
	"strconv"

	"github.com/solrpress/solrpress/internal/domain/search"
	"github.com/solrpress/solrpress/internal/solr"
)

// Fixed highlighting shape: five snippets of fifty characters over the body
// field.
const (
	highlightField    = "content"
	highlightSnippets = 5
	highlightFragsize = 50
)

// Boosted field sets used when query-time boosting is enabled. Title
// dominates, then tags and categories, then body and comments.
const (
	boostedQueryFields  = "tagssrch^5 title^10 categoriessrch^5 content^3.5 comments^1.5"
	boostedPhraseFields = "title^15 text^10"
)

// FacetSettings select which fields the query requests facet breakdowns for.
type FacetSettings struct {
	Categories bool
	Tags       bool
	Author     bool
	Type       bool
	// Taxonomies lists non-built-in taxonomy names, faceted as
	// "<name>_taxonomy".
	Taxonomies []string
	// CustomFields lists custom field names, faceted as "<name>_str".
	CustomFields []string
	// TagLimit caps how many tag facet values come back. Other facet
	// fields are uncapped.
	TagLimit int
}

// Settings configure a Builder.
type Settings struct {
	// Boosts enables weighted multi-field matching. Off, queries hit the
	// single DefaultField.
	Boosts bool
	// DefaultField is the fallback match field when boosting is off.
	DefaultField string
	// DefaultOperator is the backend's default boolean operator, "AND" or
	// "OR".
	DefaultOperator string
	HighlightPre    string
	HighlightPost   string
	Facets          FacetSettings
}

// Builder builds select queries from search requests.
type Builder struct {
	settings Settings
}

// NewBuilder returns a Builder. Highlight markers default to <b> and </b>.
func NewBuilder(settings Settings) *Builder {
	if settings.DefaultField == "" {
		settings.DefaultField = "text"
	}
	if settings.HighlightPre == "" {
		settings.HighlightPre = "<b>"
	}
	if settings.HighlightPost == "" {
		settings.HighlightPost = "</b>"
	}
	return &Builder{settings: settings}
}

// Build renders one request. Free text is escaped before embedding; an empty
// query matches everything. An unset sort orders by publication date,
// newest first.
func (b *Builder) Build(req search.Request) *solr.SelectQuery {
	q := &solr.SelectQuery{
		Query:             buildQueryString(req.Query),
		Start:             req.Offset,
		Rows:              req.PageSize,
		Sort:              sortClause(req.Sort, req.Order),
		FilterQueries:     req.Filters,
		FacetMinCount:     1,
		HighlightField:    highlightField,
		HighlightSnippets: highlightSnippets,
		HighlightFragsize: highlightFragsize,
		HighlightPre:      b.settings.HighlightPre,
		HighlightPost:     b.settings.HighlightPost,
		DefaultOperator:   b.settings.DefaultOperator,
	}

	if b.settings.Boosts {
		q.QueryFields = boostedQueryFields
		q.PhraseFields = boostedPhraseFields
	} else {
		q.QueryFields = b.settings.DefaultField
	}

	q.FacetFields = b.facetFields()
	if b.settings.Facets.Tags && b.settings.Facets.TagLimit > 0 {
		q.FacetLimits = map[string]int{"tags": b.settings.Facets.TagLimit}
	}
	return q
}

func (b *Builder) facetFields() []string {
	f := b.settings.Facets
	var fields []string
	if f.Categories {
		fields = append(fields, "categories")
	}
	if f.Tags {
		fields = append(fields, "tags")
	}
	if f.Author {
		fields = append(fields, "author")
	}
	if f.Type {
		fields = append(fields, "type")
	}
	for _, tax := range f.Taxonomies {
		fields = append(fields, tax+"_taxonomy")
	}
	for _, cf := range f.CustomFields {
		fields = append(fields, cf+"_str")
	}
	return fields
}

func buildQueryString(text string) string {
	if text == "" {
		return "*:*"
	}
	return solr.Escape(text)
}

func sortClause(sort, order string) string {
	field := ""
	switch sort {
	case search.SortScore:
		field = "score"
	case search.SortDate:
		field = "date"
	case search.SortModified:
		field = "modified"
	case search.SortComments:
		field = "numcomments"
	}
	if field == "" {
		return "date desc"
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}
	return field + " " + order
}

// FilterExpression renders one exact-match filter clause. The value is
// quoted so delimiters and spaces inside facet paths survive intact.
func FilterExpression(field, value string) string {
	return field + ":" + strconv.Quote(value)
}

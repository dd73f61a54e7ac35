// Package format turns raw backend select responses into display-ready
// search responses: result rows with teasers, facet trees with drill-down
// links, selected-filter breadcrumbs, a pager and sort links.
package format

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/solrpress/solrpress/internal/domain/facet"
	"github.com/solrpress/solrpress/internal/domain/search"
	"github.com/solrpress/solrpress/internal/query"
	"github.com/solrpress/solrpress/internal/solr"
)

// Settings configure a Formatter.
type Settings struct {
	// MaxPagerLinks caps how many page entries the pager carries. The
	// window slides to keep the current page inside it.
	MaxPagerLinks int
	// TeaserWords is the fallback teaser length when no highlighted
	// snippet exists for a hit.
	TeaserWords int
}

// Formatter builds search responses.
type Formatter struct {
	settings Settings
}

// NewFormatter returns a Formatter. Zero settings get the usual defaults of
// ten pager links and thirty teaser words.
func NewFormatter(settings Settings) *Formatter {
	if settings.MaxPagerLinks <= 0 {
		settings.MaxPagerLinks = 10
	}
	if settings.TeaserWords <= 0 {
		settings.TeaserWords = 30
	}
	return &Formatter{settings: settings}
}

// Unavailable renders the distinct backend-down state. No sections beyond
// the echoed query are attempted.
func (f *Formatter) Unavailable(req search.Request) *search.Response {
	return &search.Response{
		Available: false,
		Query:     req.Query,
		Offset:    req.Offset,
		PageSize:  req.PageSize,
	}
}

// Format renders one backend response. A zero-hit result still carries the
// facet and pager scaffolding so the caller can render an empty state.
func (f *Formatter) Format(req search.Request, resp *solr.Response) *search.Response {
	hits := resp.Body.NumFound

	out := &search.Response{
		Available:   true,
		Hits:        hits,
		QueryTime:   fmt.Sprintf("%.3f", float64(resp.Header.QTime)/1000),
		Query:       req.Query,
		Offset:      req.Offset,
		PageSize:    req.PageSize,
		FirstResult: firstResult(req.Offset, hits),
		LastResult:  lastResult(req.Offset, req.PageSize, hits),
		Sort:        req.Sort,
		Order:       req.Order,
	}

	out.Results = f.results(req, resp)
	out.Facets = f.facets(req, resp)
	out.Selected = f.selected(req)
	out.Pager = f.pager(req, hits)
	out.Sorting = f.sorting(req)
	return out
}

func firstResult(offset, hits int) int {
	if hits == 0 {
		return 0
	}
	return offset + 1
}

func lastResult(offset, pageSize, hits int) int {
	last := offset + pageSize
	if last > hits {
		last = hits
	}
	return last
}

func (f *Formatter) results(req search.Request, resp *solr.Response) []search.Hit {
	if resp.Body.NumFound == 0 {
		return nil
	}
	rows := make([]search.Hit, 0, len(resp.Body.Docs))
	for _, doc := range resp.Body.Docs {
		id := solr.DocString(doc, "id")
		permalink := solr.DocString(doc, "permalink")
		comments := solr.DocInt(doc, "numcomments")

		row := search.Hit{
			ID:          id,
			Permalink:   permalink,
			Title:       solr.DocString(doc, "title"),
			Author:      solr.DocString(doc, "author"),
			AuthorLink:  solr.DocString(doc, "author_s"),
			Comments:    comments,
			CommentLink: commentLink(permalink, comments),
			Date:        solr.DocString(doc, "displaydate"),
			Score:       solr.DocFloat(doc, "score"),
			Teaser:      f.teaser(resp.Snippets(id, "content"), solr.DocString(doc, "content")),
		}
		rows = append(rows, row)
	}
	return rows
}

// commentLink deep-links to the comment form when a result has no comments
// yet and to the comment list when it does.
func commentLink(permalink string, comments int) string {
	if comments == 0 {
		return permalink + "#respond"
	}
	return permalink + "#comments"
}

// teaser prefers highlighted snippets, joined and framed by ellipses. With
// no snippets it truncates the body to the configured word count.
func (f *Formatter) teaser(snippets []string, body string) string {
	if len(snippets) > 0 {
		return fmt.Sprintf("...%s...", strings.Join(snippets, "..."))
	}
	words := strings.Fields(body)
	if len(words) > f.settings.TeaserWords {
		words = words[:f.settings.TeaserWords]
	}
	return strings.Join(words, " ") + "..."
}

func (f *Formatter) facets(req search.Request, resp *solr.Response) map[string]search.FacetBlock {
	if resp.FacetCounts == nil || len(resp.FacetCounts.FacetFields) == 0 {
		return nil
	}
	blocks := make(map[string]search.FacetBlock, len(resp.FacetCounts.FacetFields))
	for field := range resp.FacetCounts.FacetFields {
		counts := resp.FacetValues(field)
		if len(counts) == 0 {
			continue
		}
		nodes := facet.BuildTree(counts)
		blocks[field] = search.FacetBlock{
			Name:  displayName(field),
			Items: f.facetItems(req, field, nodes),
		}
	}
	return blocks
}

func (f *Formatter) facetItems(req search.Request, field string, nodes []*facet.Node) []search.FacetItem {
	items := make([]search.FacetItem, 0, len(nodes))
	for _, n := range nodes {
		item := search.FacetItem{
			Name:  n.Name,
			Count: n.Count,
			Link:  f.drillLink(req, field, n.Path),
		}
		if len(n.Children) > 0 {
			item.Items = f.facetItems(req, field, n.Children)
		}
		items = append(items, item)
	}
	return items
}

// drillLink adds an exact-match constraint on one facet path to the current
// request, keeping the query term and every already-active filter.
func (f *Formatter) drillLink(req search.Request, field, path string) string {
	filters := append(append([]string(nil), req.Filters...), query.FilterExpression(field, path))
	return f.link(req, req.Offset, req.Sort, req.Order, filters)
}

func (f *Formatter) selected(req search.Request) []search.SelectedFilter {
	if len(req.Filters) == 0 {
		return nil
	}
	out := make([]search.SelectedFilter, 0, len(req.Filters))
	for i, expr := range req.Filters {
		others := make([]string, 0, len(req.Filters)-1)
		for j, other := range req.Filters {
			if j != i {
				others = append(others, other)
			}
		}
		out = append(out, search.SelectedFilter{
			Name:       filterLabel(expr),
			RemoveLink: f.link(req, 0, req.Sort, req.Order, others),
		})
	}
	return out
}

// filterLabel renders "field:value" for people: the field title-cased with
// any "_str" suffix dropped, the value unquoted with delimiter segments
// shown as a path.
func filterLabel(expr string) string {
	field, value, ok := strings.Cut(expr, ":")
	if !ok {
		return expr
	}
	if unquoted, err := strconv.Unquote(value); err == nil {
		value = unquoted
	}
	field = strings.TrimSuffix(field, "_str")
	return titleCase(field) + ":" + strings.ReplaceAll(value, facet.Delimiter, "/")
}

func displayName(field string) string {
	return titleCase(strings.TrimSuffix(field, "_str"))
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (f *Formatter) pager(req search.Request, hits int) []search.PageEntry {
	totalPages := (hits + req.PageSize - 1) / req.PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	current := req.Offset/req.PageSize + 1

	start, end := pagerWindow(current, totalPages, f.settings.MaxPagerLinks)

	sort, order := req.Sort, req.Order
	if sort == "" {
		sort, order = "score", "desc"
	}

	entries := make([]search.PageEntry, 0, end-start+1)
	for page := start; page <= end; page++ {
		entry := search.PageEntry{Page: page}
		if page != current {
			entry.Link = f.link(req, (page-1)*req.PageSize, sort, order, req.Filters)
		}
		entries = append(entries, entry)
	}
	return entries
}

// pagerWindow slides a window of at most max pages to keep current roughly
// centered.
func pagerWindow(current, total, max int) (int, int) {
	if total <= max {
		return 1, total
	}
	start := current - max/2
	if start < 1 {
		start = 1
	}
	end := start + max - 1
	if end > total {
		end = total
		start = end - max + 1
	}
	return start, end
}

// sorting builds the full sort-link set: every sortable field in both
// directions, each preserving the query term and active filters.
func (f *Formatter) sorting(req search.Request) map[string]string {
	fields := map[string]string{
		"score":    search.SortScore,
		"date":     search.SortDate,
		"modified": search.SortModified,
		"comments": search.SortComments,
	}
	out := make(map[string]string, len(fields)*2)
	for label, sort := range fields {
		out[label+"asc"] = f.link(req, 0, sort, "asc", req.Filters)
		out[label+"desc"] = f.link(req, 0, sort, "desc", req.Filters)
	}
	return out
}

// link serializes one request variant as a relative URL. Parameter names
// match the search transport so links round-trip.
func (f *Formatter) link(req search.Request, offset int, sort, order string, filters []string) string {
	v := url.Values{}
	v.Set("s", req.Query)
	if offset > 0 {
		v.Set("offset", strconv.Itoa(offset))
	}
	v.Set("count", strconv.Itoa(req.PageSize))
	if len(filters) > 0 {
		v.Set("fq", strings.Join(filters, "||"))
	}
	if sort != "" {
		v.Set("sort", sort)
		v.Set("order", order)
	}
	if req.Server != "" {
		v.Set("server", req.Server)
	}
	return "?" + v.Encode()
}

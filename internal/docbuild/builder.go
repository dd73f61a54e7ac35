// Package docbuild maps content records into index documents.
package docbuild

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/solrpress/solrpress/internal/domain/document"
	"github.com/solrpress/solrpress/internal/domain/facet"
	"github.com/solrpress/solrpress/internal/domain/record"
)

// ErrExcluded marks records skipped by the exclusion list. Callers treat it
// as "nothing to index", not a failure.
var ErrExcluded = errors.New("docbuild: record excluded from indexing")

// ErrSiteRequired is returned in multi-tenant mode when no site context is
// supplied. Document ids would collide across sites without it.
var ErrSiteRequired = errors.New("docbuild: site context required in multi-tenant mode")

// Settings control which optional fields a built document carries.
type Settings struct {
	// Exclusions lists record ids that must never be indexed.
	Exclusions []int64
	// IndexComments adds approved comment bodies as a multi-value field.
	IndexComments bool
	// CategoriesAsHierarchy emits delimiter-joined ancestor paths instead
	// of flat category names.
	CategoriesAsHierarchy bool
	// CustomFields lists custom field names to copy into the document.
	CustomFields []string
	// MultiTenant prefixes document ids with the site identity and adds a
	// siteid field.
	MultiTenant bool
}

// Builder converts content records to index documents.
type Builder struct {
	settings Settings
	excluded map[int64]struct{}
	custom   map[string]struct{}
}

// New returns a Builder with the given settings.
func New(settings Settings) *Builder {
	b := &Builder{
		settings: settings,
		excluded: make(map[int64]struct{}, len(settings.Exclusions)),
		custom:   make(map[string]struct{}, len(settings.CustomFields)),
	}
	for _, id := range settings.Exclusions {
		b.excluded[id] = struct{}{}
	}
	for _, name := range settings.CustomFields {
		b.custom[name] = struct{}{}
	}
	return b
}

// Build maps one record to a document. The same record and site always yield
// an identical document. Returns ErrExcluded for records on the exclusion
// list.
func (b *Builder) Build(rec *record.ContentRecord, site *record.SiteContext) (*document.Document, error) {
	if _, ok := b.excluded[rec.ID]; ok {
		return nil, ErrExcluded
	}
	if b.settings.MultiTenant && site == nil {
		return nil, ErrSiteRequired
	}

	doc := document.New()
	doc.Set("id", record.DocumentID(rec.ID, site))
	if b.settings.MultiTenant {
		doc.Set("siteid", site.ID)
	}
	doc.Set("permalink", rec.Permalink)
	doc.Set("title", rec.Title)
	doc.Set("content", StripMarkup(rec.Body))
	doc.Set("numcomments", rec.CommentCount)
	doc.Set("author", rec.Author)
	doc.Set("author_s", rec.AuthorLink)
	doc.Set("type", rec.Type)
	doc.Set("date", document.NormalizeDate(rec.PublishedAt))
	doc.Set("modified", document.NormalizeDate(rec.ModifiedAt))
	doc.Set("displaydate", rec.PublishedAt)
	doc.Set("displaymodified", rec.ModifiedAt)

	if b.settings.IndexComments {
		for _, c := range rec.Comments {
			doc.Add("comments", StripMarkup(c))
		}
	}

	for _, path := range rec.Categories {
		doc.Add("categories", b.categoryValue(path))
	}
	for _, tag := range rec.Tags {
		doc.Add("tags", tag)
	}
	for taxonomy, terms := range rec.Taxonomies {
		field := taxonomy + "_taxonomy"
		for _, term := range terms {
			doc.Add(field, term)
		}
	}

	for _, name := range b.settings.CustomFields {
		for _, value := range rec.Custom[name] {
			doc.Add(name+"_str", value)
			doc.Add(name+"_srch", value)
		}
	}

	return doc, nil
}

func (b *Builder) categoryValue(path []string) string {
	if len(path) == 0 {
		return ""
	}
	if !b.settings.CategoriesAsHierarchy {
		return facet.SanitizeSegment(path[len(path)-1])
	}
	segments := make([]string, len(path))
	for i, s := range path {
		segments[i] = facet.SanitizeSegment(s)
	}
	return facet.JoinPath(segments)
}

// StripMarkup extracts plain text from HTML, dropping script, style and
// noscript subtrees and collapsing whitespace. Parse errors fall back to the
// raw input so content is never lost.
func StripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') && !strings.ContainsRune(s, '&') {
		return strings.Join(strings.Fields(s), " ")
	}
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(strings.Fields(text.String()), " ")
}

// Describe returns a short human label for a record, used in job logs.
func Describe(rec *record.ContentRecord) string {
	return fmt.Sprintf("%s/%d", rec.Type, rec.ID)
}

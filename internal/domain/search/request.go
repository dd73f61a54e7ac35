// Package search defines the caller-facing search request and the formatted,
// display-ready response.
package search

import (
	"fmt"
	"strings"
)

// Sortable fields a request may order by. Anything else falls back to the
// default relevance ordering.
const (
	SortScore    = "score"
	SortDate     = "date"
	SortModified = "modified"
	SortComments = "numcomments"
)

// Request is one search invocation: free text, paging, active filters, sort,
// and the query-variant selector.
type Request struct {
	Query    string
	Offset   int
	PageSize int

	// Filters holds active "field:value" constraint expressions.
	Filters []string

	Sort  string
	Order string // "asc" or "desc"

	// Server selects a named query variant; unknown names fall back to the
	// default variant.
	Server string
}

// NewRequest validates paging bounds and creates a Request. Empty filter
// expressions are dropped here so every later stage can assume non-empty
// clauses.
func NewRequest(query string, offset, pageSize int, filters []string, sort, order, server string) (Request, error) {
	if offset < 0 {
		return Request{}, fmt.Errorf("offset must be >= 0, got %d", offset)
	}
	if pageSize < 1 {
		return Request{}, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}
	kept := make([]string, 0, len(filters))
	for _, f := range filters {
		if strings.TrimSpace(f) != "" {
			kept = append(kept, f)
		}
	}
	if sort == "" {
		order = ""
	}
	return Request{
		Query:    query,
		Offset:   offset,
		PageSize: pageSize,
		Filters:  kept,
		Sort:     sort,
		Order:    order,
		Server:   server,
	}, nil
}

// ParseFilters splits a "||"-joined filter query string into individual
// expressions, dropping empties.
func ParseFilters(fq string) []string {
	if fq == "" {
		return nil
	}
	parts := strings.Split(fq, "||")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package content defines the read-only interface to the repository that
// owns the publishable records.
package content

import (
	"context"
	"errors"

	"github.com/solrpress/solrpress/internal/domain/record"
)

// ErrNotFound means the requested record does not exist.
var ErrNotFound = errors.New("content: record not found")

// ListFilter scopes a page of record identifiers. Ordering is always id
// ascending so that bulk jobs page deterministically.
type ListFilter struct {
	// Types limits results to the given content types; empty means all.
	Types []string
	// PageSize is the page length; Page is 1-based.
	PageSize int
	Page     int
	// Status limits results; the pipeline indexes published records.
	Status string
}

// Source reads records from the content repository. The core never writes.
type Source interface {
	// ListIDs returns one page of record identifiers matching the filter.
	// An empty page means the end was reached.
	ListIDs(ctx context.Context, f ListFilter) ([]int64, error)

	// Count returns the number of records matching the filter's type and
	// status scope, ignoring paging.
	Count(ctx context.Context, f ListFilter) (int, error)

	// Record returns one fully hydrated record: comments, terms, and
	// custom fields attached.
	Record(ctx context.Context, id int64) (*record.ContentRecord, error)

	// Types returns the distinct content types present in the repository,
	// used to validate type filters before a job starts.
	Types(ctx context.Context) ([]string, error)
}

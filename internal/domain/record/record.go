// Package record defines the content records the indexing pipeline consumes.
// Records are read-only to the core: their lifecycle belongs to the content
// repository that produced them.
package record

import "strconv"

// ContentRecord is one publishable item (post, page, or a custom type) with
// everything the document builder needs already attached. Repositories return
// hydrated records so that building an index document stays a pure
// transformation with no further lookups.
type ContentRecord struct {
	ID           int64
	Type         string
	Status       string
	Title        string
	Body         string // raw body, may contain markup
	Author       string
	AuthorLink   string
	Permalink    string
	PublishedAt  string // native "YYYY-MM-DD HH:MM:SS" form
	ModifiedAt   string
	CommentCount int

	// Comments holds approved comment bodies only.
	Comments []string

	// Categories holds one ancestor path per category membership,
	// root first. A top-level category is a single-segment path.
	Categories [][]string

	Tags []string

	// Taxonomies maps each non-built-in taxonomy name to the record's
	// term names in that taxonomy.
	Taxonomies map[string][]string

	// Custom maps configured custom field names to their values.
	Custom map[string][]string
}

// Comment is a single reader comment on a record.
type Comment struct {
	RecordID int64
	Body     string
	Approved bool
}

// SiteContext identifies the tenant a record belongs to in multi-tenant
// deployments. It is threaded explicitly through every call that needs it;
// there is no ambient "current site".
type SiteContext struct {
	ID     int64
	Domain string
	Path   string
}

// DocumentID composes the globally unique index identifier for a record.
// Single-tenant mode uses the plain record id; multi-tenant mode prefixes
// domain and path so two sites can index the same record id.
func DocumentID(recordID int64, site *SiteContext) string {
	id := strconv.FormatInt(recordID, 10)
	if site == nil {
		return id
	}
	return site.Domain + site.Path + id
}

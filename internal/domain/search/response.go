package search

// Response is the display-ready result set built once per request. A nil or
// unavailable backend yields Available=false with no further sections; a
// zero-hit query keeps Available=true with facet and pager scaffolding.
type Response struct {
	Available bool   `json:"available"`
	Hits      int    `json:"hits"`
	QueryTime string `json:"qtime,omitempty"` // seconds with millisecond precision

	Query       string `json:"query"`
	Offset      int    `json:"offset"`
	PageSize    int    `json:"count"`
	FirstResult int    `json:"first_result"`
	LastResult  int    `json:"last_result"`
	Sort        string `json:"sort,omitempty"`
	Order       string `json:"order,omitempty"`

	Results  []Hit                 `json:"results,omitempty"`
	Facets   map[string]FacetBlock `json:"facets,omitempty"`
	Selected []SelectedFilter      `json:"selected,omitempty"`
	Pager    []PageEntry           `json:"pager,omitempty"`
	Sorting  map[string]string     `json:"sorting,omitempty"`
}

// Hit is one formatted result row.
type Hit struct {
	ID          string  `json:"id"`
	Permalink   string  `json:"permalink"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	AuthorLink  string  `json:"author_link"`
	Comments    int     `json:"numcomments"`
	CommentLink string  `json:"comment_link"`
	Date        string  `json:"date"`
	Score       float64 `json:"score"`
	Teaser      string  `json:"teaser"`
}

// FacetBlock is the rendered facet for one field: a display name plus its
// (possibly nested) items.
type FacetBlock struct {
	Name  string      `json:"name"`
	Items []FacetItem `json:"items"`
}

// FacetItem is one facet value with its drill-down link. Items nest for
// hierarchical facets.
type FacetItem struct {
	Name  string      `json:"name"`
	Count int         `json:"count"`
	Link  string      `json:"link"`
	Items []FacetItem `json:"items,omitempty"`
}

// SelectedFilter is a breadcrumb for one active filter with a link that
// removes just that filter.
type SelectedFilter struct {
	Name       string `json:"name"`
	RemoveLink string `json:"removelink"`
}

// PageEntry is one pager slot. The current page carries no link.
type PageEntry struct {
	Page int    `json:"page"`
	Link string `json:"link,omitempty"`
}

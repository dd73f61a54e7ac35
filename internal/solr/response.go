package solr

import (
	"encoding/json"
	"strconv"
)

// Response is the decoded body of a successful select call.
type Response struct {
	Header struct {
		Status int `json:"status"`
		QTime  int `json:"QTime"`
	} `json:"responseHeader"`

	Body struct {
		NumFound int              `json:"numFound"`
		Start    int              `json:"start"`
		Docs     []map[string]any `json:"docs"`
	} `json:"response"`

	FacetCounts *FacetCounts `json:"facet_counts,omitempty"`

	// Highlighting maps document id to field name to highlighted snippets.
	Highlighting map[string]map[string][]string `json:"highlighting,omitempty"`
}

// FacetCounts carries the backend's flat facet sections.
type FacetCounts struct {
	// FacetFields maps field name to an alternating [value, count, ...]
	// array, the backend's flat wire form.
	FacetFields map[string]json.RawMessage `json:"facet_fields"`
}

// FacetValues decodes the flat facet counts for one field into a value→count
// map. A missing field or malformed section yields an empty map.
func (r *Response) FacetValues(field string) map[string]int {
	out := make(map[string]int)
	if r == nil || r.FacetCounts == nil {
		return out
	}
	raw, ok := r.FacetCounts.FacetFields[field]
	if !ok {
		return out
	}
	var flat []json.RawMessage
	if err := json.Unmarshal(raw, &flat); err != nil {
		return out
	}
	for i := 0; i+1 < len(flat); i += 2 {
		var value string
		var count int
		if err := json.Unmarshal(flat[i], &value); err != nil {
			continue
		}
		if err := json.Unmarshal(flat[i+1], &count); err != nil {
			continue
		}
		out[value] = count
	}
	return out
}

// Snippets returns the highlighted fragments for one document and field.
func (r *Response) Snippets(docID, field string) []string {
	if r == nil || r.Highlighting == nil {
		return nil
	}
	return r.Highlighting[docID][field]
}

// DocString reads a document field as a string, unwrapping a single-element
// array the way multi-valued schemas report scalars.
func DocString(doc map[string]any, field string) string {
	switch v := doc[field].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// DocInt reads a document field as an int.
func DocInt(doc map[string]any, field string) int {
	switch v := doc[field].(type) {
	case float64:
		return int(v)
	case []any:
		if len(v) > 0 {
			if f, ok := v[0].(float64); ok {
				return int(f)
			}
		}
	}
	return 0
}

// DocFloat reads a document field as a float64.
func DocFloat(doc map[string]any, field string) float64 {
	switch v := doc[field].(type) {
	case float64:
		return v
	case []any:
		if len(v) > 0 {
			if f, ok := v[0].(float64); ok {
				return f
			}
		}
	}
	return 0
}

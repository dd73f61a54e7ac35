// Package document defines the index document value object submitted to the
// search backend.
package document

import (
	"bytes"
	"encoding/json"
	"regexp"
)

// Document maps index field names to one or more values. It is built once per
// submission and never mutated afterwards; repeated-value fields keep their
// insertion order as proper multi-value lists, never concatenated strings.
// The "id" field is always present and globally unique across the index.
type Document struct {
	order  []string
	fields map[string][]any
}

// New creates an empty document.
func New() *Document {
	return &Document{fields: make(map[string][]any)}
}

// Set replaces the value of a field.
func (d *Document) Set(name string, value any) {
	if _, ok := d.fields[name]; !ok {
		d.order = append(d.order, name)
	}
	d.fields[name] = []any{value}
}

// Add appends a value to a multi-value field.
func (d *Document) Add(name string, value any) {
	if _, ok := d.fields[name]; !ok {
		d.order = append(d.order, name)
	}
	d.fields[name] = append(d.fields[name], value)
}

// ID returns the document identifier, or "" if unset.
func (d *Document) ID() string {
	vals := d.fields["id"]
	if len(vals) == 0 {
		return ""
	}
	if s, ok := vals[0].(string); ok {
		return s
	}
	return ""
}

// Get returns the values of a field.
func (d *Document) Get(name string) []any {
	return d.fields[name]
}

// Fields returns the field names in insertion order.
func (d *Document) Fields() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the number of fields.
func (d *Document) Len() int { return len(d.order) }

// MarshalJSON renders the document in the backend's update format:
// single-value fields as scalars, multi-value fields as arrays, in insertion
// order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		vals := d.fields[name]
		var payload any = vals
		if len(vals) == 1 {
			payload = vals[0]
		}
		val, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var dateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) (\d{2}:\d{2}:\d{2})$`)

// NormalizeDate rewrites a native "YYYY-MM-DD HH:MM:SS" timestamp into the
// canonical lexicographically sortable "YYYY-MM-DDTHH:MM:SSZ" form the index
// expects. Any other shape passes through unchanged; no further correction is
// attempted.
func NormalizeDate(s string) string {
	return dateRe.ReplaceAllString(s, "${1}T${2}Z")
}

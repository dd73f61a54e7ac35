// Package facet reconstructs hierarchical facet trees from the flat
// delimiter-joined facet values a search backend reports.
package facet

import (
	"sort"
	"strings"
)

// Delimiter joins ancestor names inside a single hierarchical facet value,
// e.g. "News^^Sports^^Baseball". The document builder sanitizes segment
// names so the delimiter cannot occur inside one.
const Delimiter = "^^"

// Value is one flat facet value as reported by the backend.
type Value struct {
	Field string
	Path  string
	Count int
}

// Node is one node of a decoded facet tree. A node with no children is a
// leaf. Count is the backend's count for the node's own full path, not a sum
// over children: every prefix is an independently reported facet value, and a
// path the backend never reported counts zero.
type Node struct {
	Name     string
	Path     string // full accumulated path, segments joined by Delimiter
	Count    int
	Children []*Node
}

// BuildTree decodes a flat path→count map into a forest of facet nodes.
// An empty map yields an empty forest. Paths are normalized by trimming a
// trailing delimiter (the builder's hierarchical encoding historically kept
// one). Sibling order is lexicographic, which keeps output deterministic.
func BuildTree(flat map[string]int) []*Node {
	if len(flat) == 0 {
		return nil
	}

	counts := make(map[string]int, len(flat))
	paths := make([]string, 0, len(flat))
	for raw, count := range flat {
		path := strings.TrimSuffix(raw, Delimiter)
		if path == "" {
			continue
		}
		counts[path] = count
		paths = append(paths, path)
	}
	sort.Strings(paths)

	// Structure-only pass: nested mapping keyed by segment name. Counts are
	// assigned afterwards by looking each accumulated path back up, so a
	// prefix never reported by the backend stays at zero.
	root := newLevel()
	for _, path := range paths {
		root.insert(strings.Split(path, Delimiter))
	}
	return root.nodes("", counts)
}

type level struct {
	order    []string
	children map[string]*level
}

func newLevel() *level {
	return &level{children: make(map[string]*level)}
}

func (l *level) insert(segments []string) {
	if len(segments) == 0 {
		return
	}
	head := segments[0]
	child, ok := l.children[head]
	if !ok {
		child = newLevel()
		l.children[head] = child
		l.order = append(l.order, head)
	}
	child.insert(segments[1:])
}

func (l *level) nodes(prefix string, counts map[string]int) []*Node {
	if len(l.order) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(l.order))
	for _, name := range l.order {
		path := name
		if prefix != "" {
			path = prefix + Delimiter + name
		}
		out = append(out, &Node{
			Name:     name,
			Path:     path,
			Count:    counts[path],
			Children: l.children[name].nodes(path, counts),
		})
	}
	return out
}

// SanitizeSegment strips the reserved delimiter from a single path segment so
// a name cannot forge extra path depth. Occurrences are replaced with "/".
func SanitizeSegment(name string) string {
	return strings.ReplaceAll(name, Delimiter, "/")
}

// JoinPath joins sanitized segments into one encoded facet value.
func JoinPath(segments []string) string {
	clean := make([]string, len(segments))
	for i, s := range segments {
		clean[i] = SanitizeSegment(s)
	}
	return strings.Join(clean, Delimiter)
}

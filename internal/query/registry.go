package query

import (
	"sync"

	"github.com/solrpress/solrpress/internal/domain/search"
	"github.com/solrpress/solrpress/internal/solr"
)

// DefaultVariant names the strategy used when a request does not pick one,
// or picks one that was never registered.
const DefaultVariant = "default"

// Strategy builds a select query for one named query variant.
type Strategy interface {
	Build(req search.Request) *solr.SelectQuery
}

// Registry maps variant names to strategies. Lookup never fails: unknown
// names resolve to the default variant.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry returns a Registry seeded with the given default strategy.
func NewRegistry(def Strategy) *Registry {
	return &Registry{
		strategies: map[string]Strategy{DefaultVariant: def},
	}
}

// Register adds or replaces a named variant.
func (r *Registry) Register(name string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[name] = s
}

// Resolve returns the strategy for name, falling back to the default
// variant for empty or unknown names.
func (r *Registry) Resolve(name string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.strategies[name]; ok {
		return s
	}
	return r.strategies[DefaultVariant]
}

// Variants returns the registered variant names.
func (r *Registry) Variants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	return names
}

package query

import (
	"sort"
	"sync"
)

// Edge declares that a successful mutation invalidates a key prefix.
type Edge struct {
	Mutation string
	Prefix   Key
}

// Graph is the declared set of invalidation edges. Mutations look up their
// targets by name, so the whole dependency list can be inspected and tested
// in one place.
type Graph struct {
	mu    sync.RWMutex
	edges map[string][]Key
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[string][]Key)}
}

// Declare adds prefixes to the targets of mutation. Duplicate prefixes are ignored.
func (g *Graph) Declare(mutation string, prefixes ...Key) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()
	existing := g.edges[mutation]
	for _, p := range prefixes {
		dup := false
		for _, e := range existing {
			if e.String() == p.String() {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, p)
		}
	}
	g.edges[mutation] = existing
	return g
}

// Targets returns the prefixes invalidated when mutation succeeds.
func (g *Graph) Targets(mutation string) []Key {
	if g == nil || mutation == "" {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	targets := g.edges[mutation]
	out := make([]Key, len(targets))
	copy(out, targets)
	return out
}

// Mutations returns every declared mutation name, sorted.
func (g *Graph) Mutations() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.edges))
	for name := range g.edges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Edges returns every declared edge, ordered by mutation name.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, name := range g.Mutations() {
		for _, p := range g.Targets(name) {
			out = append(out, Edge{Mutation: name, Prefix: p})
		}
	}
	return out
}

// Affecting returns the mutations whose success invalidates key, sorted.
func (g *Graph) Affecting(key Key) []string {
	var out []string
	for _, name := range g.Mutations() {
		for _, p := range g.Targets(name) {
			if key.HasPrefix(p) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

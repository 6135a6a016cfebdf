package graph

import (
	"errors"
	"fmt"
	"sort"

	graphlib "github.com/dominikbraun/graph"

	"github.com/dusk-indust/srcmerge/internal/source"
)

// Graph is an immutable requirement graph over a set of units. An edge
// (Required, Requiring) means Required must be emitted before Requiring.
//
// Nodes keep their discovery order, which the sorter uses to break ties.
type Graph struct {
	g     graphlib.Graph[string, string]
	ids   []string       // discovery order
	index map[string]int // id -> discovery index
	edges []Edge         // declaration order, de-duplicated
}

// Build creates the requirement graph for units, which must already have
// excluded units removed.
//
// Build rejects:
//   - duplicate unit identifiers (source.ErrDuplicateUnit)
//   - a requirement on an unknown unit (MissingDependencyError)
//   - a unit requiring itself (CycleError)
func Build(units []source.Unit) (*Graph, error) {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	ids := make([]string, 0, len(units))
	index := make(map[string]int, len(units))

	for _, u := range units {
		id := u.ID()
		if err := g.AddVertex(id); err != nil {
			if errors.Is(err, graphlib.ErrVertexAlreadyExists) {
				return nil, fmt.Errorf("%w: %s", source.ErrDuplicateUnit, id)
			}
			return nil, fmt.Errorf("add unit %s: %w", id, err)
		}
		index[id] = len(ids)
		ids = append(ids, id)
	}

	var edges []Edge
	for _, u := range units {
		id := u.ID()
		for _, req := range u.Requires() {
			if req == id {
				return nil, &CycleError{Remaining: []string{id}, Cycle: []string{id, id}}
			}
			if _, ok := index[req]; !ok {
				return nil, &MissingDependencyError{ID: req, RequiredBy: id}
			}
			err := g.AddEdge(req, id)
			if errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("add requirement %s -> %s: %w", req, id, err)
			}
			edges = append(edges, Edge{Required: req, Requiring: id})
		}
	}

	return &Graph{g: g, ids: ids, index: index, edges: edges}, nil
}

// Len returns the number of units in the graph.
func (g *Graph) Len() int { return len(g.ids) }

// Nodes returns unit identifiers in discovery order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// Edges returns every requirement edge in declaration order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Contains reports whether id is a unit in the graph.
func (g *Graph) Contains(id string) bool {
	_, ok := g.index[id]
	return ok
}

// DiscoveryIndex returns id's position in discovery order.
func (g *Graph) DiscoveryIndex(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Requires returns the units id requires, in discovery order.
func (g *Graph) Requires(id string) ([]string, error) {
	preds, err := g.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	in, ok := preds[id]
	if !ok {
		return nil, fmt.Errorf("unit not found: %s", id)
	}
	return g.sortByDiscovery(in), nil
}

// Dependents returns the units that require id, in discovery order.
func (g *Graph) Dependents(id string) ([]string, error) {
	adj, err := g.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	out, ok := adj[id]
	if !ok {
		return nil, fmt.Errorf("unit not found: %s", id)
	}
	return g.sortByDiscovery(out), nil
}

// sortByDiscovery returns the keys of an edge map ordered by discovery index.
func (g *Graph) sortByDiscovery(m map[string]graphlib.Edge[string]) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return g.index[out[i]] < g.index[out[j]] })
	return out
}

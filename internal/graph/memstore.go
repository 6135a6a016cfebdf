package graph

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu    sync.RWMutex
	units map[string]UnitNode
	edges []Edge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		units: make(map[string]UnitNode),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddUnit stores a unit node keyed by its ID.
func (m *MemStore) AddUnit(_ context.Context, node UnitNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[node.ID] = node
	return nil
}

// AddEdge appends an edge to the internal slice.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// GetUnit returns the unit node for the given ID, or nil if not found.
func (m *MemStore) GetUnit(_ context.Context, id string) (*UnitNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetAllUnits returns every unit node ordered by discovery index.
func (m *MemStore) GetAllUnits(_ context.Context) ([]UnitNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UnitNode, 0, len(m.units))
	for _, u := range m.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Discovery < out[j].Discovery })
	return out, nil
}

// GetAllEdges returns a copy of all edges in the store.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// GetDependencies performs a BFS on edges from id in the given direction,
// up to maxDepth hops (DefaultMaxDepth when not positive). It returns one
// DependencyChain per reachable unit.
func (m *MemStore) GetDependencies(_ context.Context, id string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	// BFS state: each entry tracks the path from id to the current unit.
	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{id: true}
	queue := []bfsEntry{{id: id, path: []string{id}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.neighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// neighbors returns IDs reachable from id in one hop along the given
// direction, ordered by discovery index.
func (m *MemStore) neighbors(id string, direction Direction) []string {
	var result []string
	for _, e := range m.edges {
		switch direction {
		case DirectionUpstream:
			// upstream: id requires others -> follow edges where Requiring matches
			if e.Requiring == id {
				result = append(result, e.Required)
			}
		case DirectionDownstream:
			// downstream: others require id -> follow edges where Required matches
			if e.Required == id {
				result = append(result, e.Requiring)
			}
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return m.units[result[i]].Discovery < m.units[result[j]].Discovery
	})
	return result
}

// Stats returns counts of units and edges.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		UnitCount: len(m.units),
		EdgeCount: len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

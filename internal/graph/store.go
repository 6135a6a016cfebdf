package graph

import (
	"context"
	"io"
)

// Store is a queryable index of units and their requirement edges.
// Implementations: KuzuStore (persistent, cgo), MemStore (in-process).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddUnit(ctx context.Context, node UnitNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations.
	GetUnit(ctx context.Context, id string) (*UnitNode, error)
	GetAllUnits(ctx context.Context) ([]UnitNode, error) // in discovery order
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Graph traversal.
	GetDependencies(ctx context.Context, id string, direction Direction, maxDepth int) ([]DependencyChain, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Index writes every unit and edge of a resolution result into store. The
// store's schema must already be initialized.
func Index(ctx context.Context, store Store, r *Result) error {
	position := make(map[string]int, len(r.Order))
	for i, id := range r.Order {
		position[id] = i
	}

	for i, id := range r.Graph.Nodes() {
		level, _ := r.LevelOf(id)
		node := UnitNode{
			ID:        id,
			Discovery: i,
			Level:     level,
			Position:  position[id],
		}
		if err := store.AddUnit(ctx, node); err != nil {
			return err
		}
	}
	for _, e := range r.Graph.Edges() {
		if err := store.AddEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

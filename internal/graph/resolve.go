package graph

import "github.com/dusk-indust/srcmerge/internal/source"

// Result is the outcome of resolving a set of units. It is immutable once
// returned.
type Result struct {
	// Units are the non-excluded units in discovery order.
	Units []source.Unit

	// Graph is the requirement graph over Units.
	Graph *Graph

	// Levels are the topological levels before forced placement.
	Levels []Level

	// Order is the verified output order.
	Order ResolvedOrder
}

// Resolve runs the resolution pipeline: exclusion, graph construction,
// level sort, forced placement, and verification. cfg may be nil.
//
// Resolve performs no I/O and shares no state between calls.
func Resolve(units []source.Unit, cfg *OrderConfig) (*Result, error) {
	kept := Exclude(units, cfg)

	g, err := Build(kept)
	if err != nil {
		return nil, err
	}

	levels, err := Sort(g)
	if err != nil {
		return nil, err
	}

	candidate, err := ApplyPolicy(g, Flatten(levels), cfg)
	if err != nil {
		return nil, err
	}

	order, err := Verify(g, candidate)
	if err != nil {
		return nil, err
	}

	return &Result{Units: kept, Graph: g, Levels: levels, Order: order}, nil
}

// Unit returns the unit with the given identifier.
func (r *Result) Unit(id string) (source.Unit, bool) {
	i, ok := r.Graph.DiscoveryIndex(id)
	if !ok {
		return source.Unit{}, false
	}
	return r.Units[i], true
}

// LevelOf returns the topological level of id, 0-based.
func (r *Result) LevelOf(id string) (int, bool) {
	for i, l := range r.Levels {
		for _, u := range l {
			if u == id {
				return i, true
			}
		}
	}
	return 0, false
}

package graph

import (
	"fmt"

	graphlib "github.com/dominikbraun/graph"
)

// Sort orders the graph's units level by level (Kahn's algorithm).
//
// Each pass collects every unplaced unit whose requirements are all placed,
// in discovery order, as the next level. If units remain but none is ready,
// the remaining units contain a cycle and Sort returns a *CycleError.
func Sort(g *Graph) ([]Level, error) {
	preds, err := g.g.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("read predecessors: %w", err)
	}
	adj, err := g.g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("read adjacency: %w", err)
	}

	indeg := make(map[string]int, len(preds))
	for id, in := range preds {
		indeg[id] = len(in)
	}

	remaining := g.Nodes()
	var levels []Level

	for len(remaining) > 0 {
		var level Level
		var rest []string
		for _, id := range remaining {
			if indeg[id] == 0 {
				level = append(level, id)
			} else {
				rest = append(rest, id)
			}
		}

		if len(level) == 0 {
			return nil, &CycleError{
				Remaining: rest,
				Cycle:     g.findCycle(rest, preds),
			}
		}

		for _, id := range level {
			for succ := range adj[id] {
				indeg[succ]--
			}
		}
		levels = append(levels, level)
		remaining = rest
	}

	return levels, nil
}

// Flatten concatenates levels into a single topological order.
func Flatten(levels []Level) []string {
	var n int
	for _, l := range levels {
		n += len(l)
	}
	out := make([]string, 0, n)
	for _, l := range levels {
		out = append(out, l...)
	}
	return out
}

// findCycle extracts one cycle among the stalled units. Every stalled unit
// has at least one stalled predecessor, so walking predecessors from the
// first stalled unit must revisit a unit. The walk always takes the earliest
// discovered predecessor, which keeps the witness stable across runs.
func (g *Graph) findCycle(stalled []string, preds map[string]map[string]graphlib.Edge[string]) []string {
	if len(stalled) == 0 {
		return nil
	}
	inStalled := make(map[string]bool, len(stalled))
	for _, id := range stalled {
		inStalled[id] = true
	}

	seenAt := make(map[string]int)
	var walk []string
	cur := stalled[0]

	for {
		if k, seen := seenAt[cur]; seen {
			// walk[k:] follows predecessors; reverse it so the path reads
			// in requirement order and closes on its first unit.
			loop := append(walk[k:], cur)
			out := make([]string, len(loop))
			for i := range loop {
				out[i] = loop[len(loop)-1-i]
			}
			return out
		}
		seenAt[cur] = len(walk)
		walk = append(walk, cur)

		next := ""
		for _, p := range g.sortByDiscovery(preds[cur]) {
			if inStalled[p] {
				next = p
				break
			}
		}
		if next == "" {
			return nil
		}
		cur = next
	}
}

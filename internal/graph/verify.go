package graph

import "fmt"

// Verify checks that candidate places every unit of g exactly once and that
// every requirement edge points forward. All backward edges are reported
// together in one *InconsistentOrderError, in edge declaration order.
func Verify(g *Graph, candidate []string) (ResolvedOrder, error) {
	pos := make(map[string]int, len(candidate))
	for i, id := range candidate {
		if _, dup := pos[id]; dup {
			return nil, fmt.Errorf("%w: %q placed more than once", ErrInconsistentOrder, id)
		}
		if !g.Contains(id) {
			return nil, fmt.Errorf("%w: %q is not a known unit", ErrInconsistentOrder, id)
		}
		pos[id] = i
	}
	if len(pos) != g.Len() {
		return nil, fmt.Errorf("%w: %d of %d units placed", ErrInconsistentOrder, len(pos), g.Len())
	}

	var violations []Edge
	for _, e := range g.edges {
		if pos[e.Required] >= pos[e.Requiring] {
			violations = append(violations, e)
		}
	}
	if len(violations) > 0 {
		return nil, &InconsistentOrderError{Violations: violations}
	}

	out := make(ResolvedOrder, len(candidate))
	copy(out, candidate)
	return out, nil
}

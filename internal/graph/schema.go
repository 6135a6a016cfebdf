package graph

// --- Core models ---

// Edge is a requirement: Required must appear before Requiring.
type Edge struct {
	Required  string `json:"required"`
	Requiring string `json:"requiring"`
}

// Level is a set of units with no remaining requirements among the units not
// yet placed, in discovery order.
type Level []string

// ResolvedOrder is the final, dependency-consistent output order.
type ResolvedOrder []string

// OrderConfig pins units to the start or end of the output and removes
// units from it.
type OrderConfig struct {
	// First units are emitted first, in listed order.
	First []string `json:"first" yaml:"first"`

	// Last units are emitted last, in listed order.
	Last []string `json:"last" yaml:"last"`

	// Exclude units are dropped before the graph is built. Order is
	// insignificant.
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// IsZero reports whether the config forces or excludes nothing.
func (c *OrderConfig) IsZero() bool {
	return c == nil || (len(c.First) == 0 && len(c.Last) == 0 && len(c.Exclude) == 0)
}

// --- Index models ---

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what does this unit require?
	DirectionDownstream Direction = "downstream" // what requires this unit?
)

// DefaultMaxDepth bounds a dependency traversal when the caller gives no
// positive depth.
const DefaultMaxDepth = 5

// UnitNode is a unit as recorded in a dependency index.
type UnitNode struct {
	ID        string `json:"id"`
	Discovery int    `json:"discovery"` // index in discovery order
	Level     int    `json:"level"`     // topological level, 0-based
	Position  int    `json:"position"`  // index in the resolved order
}

// GraphStats summarizes a dependency index.
type GraphStats struct {
	UnitCount int `json:"unitCount"`
	EdgeCount int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of units forming a requirement path.
type DependencyChain struct {
	Nodes []string `json:"nodes"` // unit IDs in order
	Depth int      `json:"depth"`
}

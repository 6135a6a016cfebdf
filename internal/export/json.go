package export

import (
	"encoding/json"

	"github.com/dusk-indust/srcmerge/internal/graph"
)

// GraphExport is the top-level JSON export structure.
type GraphExport struct {
	Nodes []NodeExport `json:"nodes"`
	Edges []EdgeExport `json:"edges"`
}

// NodeExport describes one unit. Nodes are listed in resolved order, so
// Position equals the node's index.
type NodeExport struct {
	ID       string `json:"id"`
	Level    int    `json:"level"`
	Position int    `json:"position"`
}

// EdgeExport is a requirement: From must be emitted before To.
type EdgeExport struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BuildGraphExport converts a resolution result.
func BuildGraphExport(r *graph.Result) *GraphExport {
	out := &GraphExport{
		Nodes: make([]NodeExport, 0, len(r.Order)),
		Edges: make([]EdgeExport, 0),
	}
	for i, id := range r.Order {
		level, _ := r.LevelOf(id)
		out.Nodes = append(out.Nodes, NodeExport{ID: id, Level: level, Position: i})
	}
	for _, e := range r.Graph.Edges() {
		out.Edges = append(out.Edges, EdgeExport{From: e.Required, To: e.Requiring})
	}
	return out
}

// JSON renders the result as indented JSON with a trailing newline.
func JSON(r *graph.Result) ([]byte, error) {
	data, err := json.MarshalIndent(BuildGraphExport(r), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Package export renders a resolution result for humans and other tools.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/srcmerge/internal/graph"
)

// Mermaid produces a Mermaid graph TD diagram of a resolution result. Units
// are grouped into one subgraph per topological level; each requirement
// edge becomes an arrow from the required unit to the requiring one.
func Mermaid(r *graph.Result) string {
	nodes := make([]graph.UnitNode, 0, r.Graph.Len())
	for i, id := range r.Graph.Nodes() {
		level, _ := r.LevelOf(id)
		nodes = append(nodes, graph.UnitNode{ID: id, Discovery: i, Level: level})
	}
	return renderMermaid(nodes, r.Graph.Edges())
}

// MermaidFromStore renders the same diagram from a dependency index, such as
// one persisted by the index command.
func MermaidFromStore(ctx context.Context, store graph.Store) (string, error) {
	nodes, err := store.GetAllUnits(ctx)
	if err != nil {
		return "", fmt.Errorf("get units: %w", err)
	}
	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}
	return renderMermaid(nodes, edges), nil
}

// renderMermaid expects nodes in discovery order.
func renderMermaid(nodes []graph.UnitNode, edges []graph.Edge) string {
	// Mermaid node IDs must be alphanumeric, so units get N<discovery index>.
	discovery := make(map[string]int, len(nodes))
	var levels [][]graph.UnitNode
	for _, n := range nodes {
		discovery[n.ID] = n.Discovery
		for len(levels) <= n.Level {
			levels = append(levels, nil)
		}
		levels[n.Level] = append(levels[n.Level], n)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, level := range levels {
		fmt.Fprintf(&sb, "  subgraph L%d[\"Level %d\"]\n", i, i)
		for _, n := range level {
			fmt.Fprintf(&sb, "    N%d[\"%s\"]\n", n.Discovery, escapeLabel(shortPath(n.ID)))
		}
		sb.WriteString("  end\n")
	}

	for _, e := range edges {
		fmt.Fprintf(&sb, "  N%d --> N%d\n", discovery[e.Required], discovery[e.Requiring])
	}

	return sb.String()
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

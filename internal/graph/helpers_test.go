package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/srcmerge/internal/source"
)

// units builds source units from (id, requires) pairs. requires is a
// comma-separated list of identifiers, or "" for none.
func units(pairs ...string) []source.Unit {
	out := make([]source.Unit, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		var b strings.Builder
		if pairs[i+1] != "" {
			for _, req := range strings.Split(pairs[i+1], ",") {
				b.WriteString("// @require: " + req + "\n")
			}
		}
		b.WriteString("var x = 1;\n")
		out = append(out, source.NewUnit(pairs[i], b.String()))
	}
	return out
}

// mustBuild builds a graph or panics; only for inputs known to be valid.
func mustBuild(us []source.Unit) *Graph {
	g, err := Build(us)
	if err != nil {
		panic(err)
	}
	return g
}

// seedChain stores a -> b -> c where c requires b and b requires a.
func seedChain(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for i, id := range []string{"a.js", "b.js", "c.js"} {
		require.NoError(t, s.AddUnit(ctx, UnitNode{ID: id, Discovery: i, Level: i, Position: i}))
	}
	require.NoError(t, s.AddEdge(ctx, Edge{Required: "a.js", Requiring: "b.js"}))
	require.NoError(t, s.AddEdge(ctx, Edge{Required: "b.js", Requiring: "c.js"}))
}

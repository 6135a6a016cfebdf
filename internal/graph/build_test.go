package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/srcmerge/internal/source"
)

func TestBuild_EdgesAndNodes(t *testing.T) {
	g, err := Build(units(
		"a.js", "",
		"b.js", "a.js",
		"c.js", "a.js,b.js",
	))
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, g.Nodes())
	assert.Equal(t, []Edge{
		{Required: "a.js", Requiring: "b.js"},
		{Required: "a.js", Requiring: "c.js"},
		{Required: "b.js", Requiring: "c.js"},
	}, g.Edges())

	reqs, err := g.Requires("c.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "b.js"}, reqs)

	deps, err := g.Dependents("a.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.js", "c.js"}, deps)

	_, err = g.Requires("nope.js")
	assert.Error(t, err)
}

func TestBuild_DuplicateRequireCollapses(t *testing.T) {
	u := source.NewUnit("b.js", "// @require: a.js\n// @require: a.js\n")
	g, err := Build([]source.Unit{source.NewUnit("a.js", ""), u})
	require.NoError(t, err)
	assert.Len(t, g.Edges(), 1)
}

func TestBuild_MissingDependency(t *testing.T) {
	_, err := Build(units(
		"A", "Z",
		"B", "",
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDependency))

	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Z", missing.ID)
	assert.Equal(t, "A", missing.RequiredBy)
	assert.Contains(t, err.Error(), `"Z"`)
	assert.Contains(t, err.Error(), `"A"`)
}

func TestBuild_SelfRequireIsCycle(t *testing.T) {
	_, err := Build(units("A", "A"))
	require.Error(t, err)

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"A", "A"}, cycle.Cycle)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestBuild_DuplicateUnit(t *testing.T) {
	_, err := Build(units("A", "", "A", ""))
	assert.ErrorIs(t, err, source.ErrDuplicateUnit)
}

func TestBuild_Empty(t *testing.T) {
	g, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Edges())
}

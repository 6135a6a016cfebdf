package mcptools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/srcmerge/internal/config"
	"github.com/dusk-indust/srcmerge/internal/graph"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports.
func setupServerClient(t *testing.T) *mcp.ClientSession {
	t.Helper()
	return connect(t, NewMergeService(config.S3Config{}))
}

func connect(t *testing.T, svc *MergeService) *mcp.ClientSession {
	t.Helper()

	t.Cleanup(func() { _ = svc.Close() })
	server := NewMergeMCPServer(svc)

	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})
	return session
}

// sourceTree writes a small unit tree: app requires ui and core, ui requires
// core.
func sourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"app.js":     "// @require: ui/view.js\n// @require: core.js\napp();\n",
		"core.js":    "core();\n",
		"ui/view.js": "// @require: core.js\nview();\n",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// callTool invokes a tool and decodes its structured output into out.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args, out any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	if out != nil && !result.IsError {
		require.NotNil(t, result.StructuredContent, "expected structured content from %s", name)
		raw, err := json.Marshal(result.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return result
}

func TestMCPListTools(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{"get_dependencies", "merge_sources", "resolve_order"}, names)
}

func TestMCPResolveOrder(t *testing.T) {
	session := setupServerClient(t)

	var out ResolveOrderOutput
	result := callTool(t, session, "resolve_order", ResolveOrderInput{Dirs: []string{sourceTree(t)}}, &out)
	require.False(t, result.IsError)

	assert.Equal(t, []string{"core.js", "ui/view.js", "app.js"}, out.Order)
	assert.Equal(t, [][]string{{"core.js"}, {"ui/view.js"}, {"app.js"}}, out.Levels)
	assert.Equal(t, graph.GraphStats{UnitCount: 3, EdgeCount: 3}, out.Stats)
}

func TestMCPResolveOrder_CoreErrorIsToolError(t *testing.T) {
	session := setupServerClient(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("// @require: z.js\n"), 0o644))

	result := callTool(t, session, "resolve_order", ResolveOrderInput{Dirs: []string{dir}}, nil)
	assert.True(t, result.IsError, "a missing dependency should surface as a tool error")
}

func TestMCPMergeSources(t *testing.T) {
	session := setupServerClient(t)
	out := filepath.Join(t.TempDir(), "bundle.js")

	var got MergeSourcesOutput
	result := callTool(t, session, "merge_sources", MergeSourcesInput{
		Dirs:   []string{sourceTree(t)},
		Output: out,
		Banner: "line",
	}, &got)
	require.False(t, result.IsError)

	assert.Equal(t, out, got.Output)
	assert.Equal(t, 3, got.UnitCount)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, len(data), got.Bytes)
	assert.True(t, strings.HasPrefix(string(data), "// ===="))
	assert.Less(t, strings.Index(string(data), "core();"), strings.Index(string(data), "app();"))
}

func TestMCPMergeSources_RejectsStdout(t *testing.T) {
	session := setupServerClient(t)

	result := callTool(t, session, "merge_sources", MergeSourcesInput{
		Dirs:   []string{sourceTree(t)},
		Output: "-",
	}, nil)
	assert.True(t, result.IsError)
}

func TestMCPGetDependencies(t *testing.T) {
	session := setupServerClient(t)

	// Nothing indexed yet.
	result := callTool(t, session, "get_dependencies", GetDependenciesInput{Unit: "app.js"}, nil)
	require.True(t, result.IsError)

	callTool(t, session, "resolve_order", ResolveOrderInput{Dirs: []string{sourceTree(t)}}, &ResolveOrderOutput{})

	var up GetDependenciesOutput
	callTool(t, session, "get_dependencies", GetDependenciesInput{Unit: "app.js"}, &up)
	reached := make([]string, len(up.Chains))
	for i, c := range up.Chains {
		reached[i] = c.Nodes[len(c.Nodes)-1]
	}
	assert.Equal(t, []string{"core.js", "ui/view.js"}, reached)

	var down GetDependenciesOutput
	callTool(t, session, "get_dependencies", GetDependenciesInput{
		Unit: "core.js", Direction: "downstream", MaxDepth: 1,
	}, &down)
	require.Len(t, down.Chains, 2)
	assert.Equal(t, []string{"core.js", "app.js"}, down.Chains[0].Nodes)
	assert.Equal(t, []string{"core.js", "ui/view.js"}, down.Chains[1].Nodes)

	result = callTool(t, session, "get_dependencies", GetDependenciesInput{Unit: "ghost.js"}, nil)
	assert.True(t, result.IsError)
}

func TestMCPGetDependencies_FromPreloadedIndex(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()
	require.NoError(t, store.InitSchema(ctx))
	for i, id := range []string{"base.js", "mid.js", "top.js"} {
		require.NoError(t, store.AddUnit(ctx, graph.UnitNode{ID: id, Discovery: i, Level: i, Position: i}))
	}
	require.NoError(t, store.AddEdge(ctx, graph.Edge{Required: "base.js", Requiring: "mid.js"}))
	require.NoError(t, store.AddEdge(ctx, graph.Edge{Required: "mid.js", Requiring: "top.js"}))

	svc := NewMergeService(config.S3Config{})
	svc.UseIndex(store)
	session := connect(t, svc)

	var out GetDependenciesOutput
	result := callTool(t, session, "get_dependencies", GetDependenciesInput{Unit: "top.js"}, &out)
	require.False(t, result.IsError)
	require.Len(t, out.Chains, 2)
	assert.Equal(t, []string{"top.js", "mid.js", "base.js"}, out.Chains[1].Nodes)

	// A resolve replaces the preloaded index.
	callTool(t, session, "resolve_order", ResolveOrderInput{Dirs: []string{sourceTree(t)}}, &ResolveOrderOutput{})
	result = callTool(t, session, "get_dependencies", GetDependenciesInput{Unit: "top.js"}, nil)
	assert.True(t, result.IsError)
}

func TestMCPCallUnknownTool(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "nonexistent_tool",
		Arguments: map[string]any{},
	})

	// The MCP SDK may return an error at the protocol level or set IsError on
	// the result. Accept either behavior.
	if err != nil {
		return
	}
	require.NotNil(t, result)
	assert.True(t, result.IsError, "calling an unknown tool should set IsError")
}

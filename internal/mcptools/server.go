package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMergeMCPServer creates an MCP server with the srcmerge tools registered.
func NewMergeMCPServer(svc *MergeService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "srcmerge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_order",
		Description: "Scan source directories for @require markers and return the dependency-consistent merge order, grouped into topological levels. Applies an optional [first]/[last]/[exclude] order config.",
	}, svc.ResolveOrder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge_sources",
		Description: "Resolve the merge order and write all units, each preceded by a banner, into one output file or s3:// object.",
	}, svc.MergeSources)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse requirements upstream (what a unit requires) or downstream (what requires it) in the sources indexed by the last resolve_order or merge_sources call, or in the index the server was started with.",
	}, svc.GetDependencies)

	return server
}

// RunStdio runs the MCP server on stdio, blocking until stdin is closed or
// the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

package mcptools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/srcmerge/internal/build"
	"github.com/dusk-indust/srcmerge/internal/config"
	"github.com/dusk-indust/srcmerge/internal/graph"
	"github.com/dusk-indust/srcmerge/internal/merge"
)

// MergeService holds the state shared by MCP tool handlers: the S3 settings
// for s3:// outputs and the dependency index of the last resolved sources.
type MergeService struct {
	s3 config.S3Config

	mu    sync.RWMutex
	store graph.Store
}

// NewMergeService creates a MergeService. s3 is used only for s3:// outputs.
func NewMergeService(s3 config.S3Config) *MergeService {
	return &MergeService{s3: s3}
}

// UseIndex makes get_dependencies answer from store, typically one persisted
// by the index command, until the next resolve_order or merge_sources call
// replaces it. The service takes ownership of store.
func (s *MergeService) UseIndex(store graph.Store) {
	s.mu.Lock()
	old := s.store
	s.store = store
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

func loadOrder(path string) (*graph.OrderConfig, error) {
	if path == "" {
		return nil, nil
	}
	return config.LoadOrder(path)
}

// index replaces the service's dependency index with one built from res.
func (s *MergeService) index(ctx context.Context, res *graph.Result) (*graph.GraphStats, error) {
	store := graph.NewMemStore()
	if err := store.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if err := graph.Index(ctx, store, res); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	s.UseIndex(store)
	return stats, nil
}

// ResolveOrder discovers and resolves units, indexes them for
// get_dependencies, and returns the resolved order.
func (s *MergeService) ResolveOrder(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveOrderInput,
) (*mcp.CallToolResult, ResolveOrderOutput, error) {
	if len(input.Dirs) == 0 {
		return nil, ResolveOrderOutput{}, fmt.Errorf("dirs is required")
	}
	cfg, err := loadOrder(input.ConfigPath)
	if err != nil {
		return nil, ResolveOrderOutput{}, err
	}

	runner := build.NewRunner(build.Options{Suffix: input.Suffix, Strict: input.Strict}, nil)
	res, err := runner.Resolve(ctx, input.Dirs, cfg)
	if err != nil {
		return nil, ResolveOrderOutput{}, err
	}
	stats, err := s.index(ctx, res)
	if err != nil {
		return nil, ResolveOrderOutput{}, err
	}

	levels := make([][]string, len(res.Levels))
	for i, l := range res.Levels {
		levels[i] = []string(l)
	}
	return nil, ResolveOrderOutput{
		Order:  []string(res.Order),
		Levels: levels,
		Stats:  *stats,
	}, nil
}

// MergeSources builds one target and writes the merged artifact.
func (s *MergeService) MergeSources(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MergeSourcesInput,
) (*mcp.CallToolResult, MergeSourcesOutput, error) {
	if input.Output == "" {
		return nil, MergeSourcesOutput{}, fmt.Errorf("output is required")
	}
	if input.Output == merge.StdoutName {
		return nil, MergeSourcesOutput{}, fmt.Errorf("output %q is reserved for the CLI; the MCP transport owns stdout", merge.StdoutName)
	}
	if len(input.Dirs) == 0 {
		return nil, MergeSourcesOutput{}, fmt.Errorf("dirs is required")
	}
	banner, err := merge.ParseBannerStyle(input.Banner)
	if err != nil {
		return nil, MergeSourcesOutput{}, err
	}
	cfg, err := loadOrder(input.ConfigPath)
	if err != nil {
		return nil, MergeSourcesOutput{}, err
	}

	runner := build.NewRunner(build.Options{
		Suffix: input.Suffix,
		Strict: input.Strict,
		Banner: banner,
		S3:     s.s3,
	}, nil)
	rep, err := runner.Run(ctx, build.Target{Output: input.Output, Dirs: input.Dirs, Order: cfg})
	if err != nil {
		return nil, MergeSourcesOutput{}, err
	}
	if _, err := s.index(ctx, rep.Result); err != nil {
		return nil, MergeSourcesOutput{}, err
	}

	return nil, MergeSourcesOutput{
		Output:    rep.Output,
		UnitCount: len(rep.Result.Order),
		Bytes:     rep.Bytes,
	}, nil
}

// GetDependencies traverses the index built by the last resolve_order or
// merge_sources call.
func (s *MergeService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.Unit == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("unit is required")
	}

	direction := graph.DirectionUpstream
	if strings.EqualFold(input.Direction, string(graph.DirectionDownstream)) {
		direction = graph.DirectionDownstream
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = graph.DefaultMaxDepth
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("no sources indexed; call resolve_order first or start the server with -db")
	}
	node, err := s.store.GetUnit(ctx, input.Unit)
	if err != nil {
		return nil, GetDependenciesOutput{}, err
	}
	if node == nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("unknown unit: %s", input.Unit)
	}

	chains, err := s.store.GetDependencies(ctx, input.Unit, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}
	if chains == nil {
		chains = []graph.DependencyChain{}
	}
	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// Close releases the dependency index.
func (s *MergeService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

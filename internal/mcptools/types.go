package mcptools

import "github.com/dusk-indust/srcmerge/internal/graph"

// --- MCP Tool Input Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// ResolveOrderInput is the input for the resolve_order MCP tool.
type ResolveOrderInput struct {
	Dirs       []string `json:"dirs" jsonschema:"source directories to scan, in order"`
	ConfigPath string   `json:"configPath,omitempty" jsonschema:"optional order config file ([first]/[last]/[exclude] text or YAML)"`
	Suffix     string   `json:"suffix,omitempty" jsonschema:"file name suffix to include (default: .js)"`
	Strict     bool     `json:"strict,omitempty" jsonschema:"only honour @require markers inside comments"`
}

// ResolveOrderOutput is the result of the resolve_order MCP tool.
type ResolveOrderOutput struct {
	Order  []string         `json:"order"`
	Levels [][]string       `json:"levels"`
	Stats  graph.GraphStats `json:"stats"`
}

// MergeSourcesInput is the input for the merge_sources MCP tool.
type MergeSourcesInput struct {
	Dirs       []string `json:"dirs" jsonschema:"source directories to scan, in order"`
	ConfigPath string   `json:"configPath,omitempty" jsonschema:"optional order config file ([first]/[last]/[exclude] text or YAML)"`
	Suffix     string   `json:"suffix,omitempty" jsonschema:"file name suffix to include (default: .js)"`
	Strict     bool     `json:"strict,omitempty" jsonschema:"only honour @require markers inside comments"`
	Output     string   `json:"output" jsonschema:"output file path or s3://bucket/key"`
	Banner     string   `json:"banner,omitempty" jsonschema:"banner style: block (default), line or hash"`
}

// MergeSourcesOutput is the result of the merge_sources MCP tool.
type MergeSourcesOutput struct {
	Output    string `json:"output"`
	UnitCount int    `json:"unitCount"`
	Bytes     int    `json:"bytes"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	Unit      string `json:"unit" jsonschema:"unit identifier, e.g. lib/util.js"`
	Direction string `json:"direction,omitempty" jsonschema:"upstream (what it requires) or downstream (what requires it). Default: upstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

package source

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language identifies the grammar used to locate comments in a unit.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// extToLanguage maps file extensions to grammars. JavaScript is parsed with
// the TypeScript grammars, which accept plain JS.
var extToLanguage = map[string]Language{
	".js":  LangTypeScript,
	".mjs": LangTypeScript,
	".cjs": LangTypeScript,
	".ts":  LangTypeScript,
	".jsx": LangTSX,
	".tsx": LangTSX,
	".go":  LangGo,
	".py":  LangPython,
	".rs":  LangRust,
}

// commentKinds lists the node kinds each grammar uses for comments.
var commentKinds = map[string]bool{
	"comment":       true,
	"line_comment":  true,
	"block_comment": true,
}

// CommentExtractor only honours require markers that sit inside a comment
// node of the unit's language. Units whose extension has no grammar fall back
// to MarkerExtractor.
//
// A new tree-sitter parser is created per Extract call, so one
// CommentExtractor may be shared across goroutines.
type CommentExtractor struct {
	languages map[Language]*tree_sitter.Language
}

// NewCommentExtractor creates a CommentExtractor with TypeScript, TSX, Go,
// Python, and Rust grammars registered.
func NewCommentExtractor() *CommentExtractor {
	return &CommentExtractor{
		languages: map[Language]*tree_sitter.Language{
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangTSX:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
	}
}

// LanguageFor returns the grammar used for path, if any.
func LanguageFor(path string) (Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// Extract parses content and returns identifiers from markers found inside
// comments, in source order.
func (e *CommentExtractor) Extract(path, content string) ([]string, error) {
	lang, ok := LanguageFor(path)
	if !ok {
		return ExtractRequirements(content), nil
	}
	tsLang, ok := e.languages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	source := []byte(content)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	var comments strings.Builder
	cursor := tree.RootNode().Walk()
	defer cursor.Close()
	collectComments(cursor, source, &comments)

	return ExtractRequirements(comments.String()), nil
}

// collectComments appends the text of every comment node under the cursor,
// one per line, in document order.
func collectComments(cursor *tree_sitter.TreeCursor, source []byte, out *strings.Builder) {
	node := cursor.Node()
	if commentKinds[node.Kind()] {
		// Drop a block comment's terminator so "/* @require: a.js */" yields "a.js".
		out.WriteString(strings.TrimSuffix(node.Utf8Text(source), "*/"))
		out.WriteByte('\n')
		return
	}

	if cursor.GotoFirstChild() {
		collectComments(cursor, source, out)
		for cursor.GotoNextSibling() {
			collectComments(cursor, source, out)
		}
		cursor.GotoParent()
	}
}

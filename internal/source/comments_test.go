//go:build cgo

package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentExtractor_IgnoresMarkersOutsideComments(t *testing.T) {
	ex := NewCommentExtractor()

	content := `// @require: core/base.js
var label = "@require: not/a/dep.js";
/* @require: core/util.js */
function f() {}
`
	got, err := ex.Extract("app.js", content)
	require.NoError(t, err)
	assert.Equal(t, []string{"core/base.js", "core/util.js"}, got)
}

func TestCommentExtractor_Languages(t *testing.T) {
	ex := NewCommentExtractor()

	tests := []struct {
		name    string
		path    string
		content string
		want    []string
	}{
		{
			name:    "go line comment",
			path:    "pkg/a.go",
			content: "package a\n\n// @require: pkg/b.go\nconst s = \"@require: nope.go\"\n",
			want:    []string{"pkg/b.go"},
		},
		{
			name:    "python hash comment",
			path:    "mod/a.py",
			content: "# @require: mod/b.py\nx = '@require: nope.py'\n",
			want:    []string{"mod/b.py"},
		},
		{
			name:    "rust line comment",
			path:    "src/a.rs",
			content: "// @require: src/b.rs\nfn main() { let _s = \"@require: nope.rs\"; }\n",
			want:    []string{"src/b.rs"},
		},
		{
			name:    "tsx file",
			path:    "ui/App.tsx",
			content: "// @require: ui/Button.tsx\nexport const App = () => <div>@require: nope.tsx</div>;\n",
			want:    []string{"ui/Button.tsx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ex.Extract(tt.path, tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommentExtractor_UnknownExtensionFallsBack(t *testing.T) {
	ex := NewCommentExtractor()

	got, err := ex.Extract("styles/site.css", "/* @require: styles/base.css */\n")
	require.NoError(t, err)
	// Without a grammar the permissive extractor runs and keeps the terminator.
	assert.Equal(t, []string{"styles/base.css */"}, got)
}

func TestLanguageFor(t *testing.T) {
	lang, ok := LanguageFor("a/B.JS")
	require.True(t, ok)
	assert.Equal(t, LangTypeScript, lang)

	_, ok = LanguageFor("README.md")
	assert.False(t, ok)
}

func TestDiscover_StrictExtractor(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.js": "// @require: lib.js\nvar s = '@require: fake.js';\n",
		"lib.js": "",
	})

	units, err := Discover(context.Background(), []string{root}, DiscoverOptions{Extractor: NewCommentExtractor()})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, []string{"lib.js"}, units[0].Requires())
}

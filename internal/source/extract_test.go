package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRequirements(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "no markers",
			content: "var a = 1;\n",
			want:    nil,
		},
		{
			name:    "single marker",
			content: "// @require: core/base.js\nvar a = 1;\n",
			want:    []string{"core/base.js"},
		},
		{
			name:    "declaration order kept",
			content: "// @require: b.js\n// @require: a.js\n// @require: c.js\n",
			want:    []string{"b.js", "a.js", "c.js"},
		},
		{
			name:    "duplicates collapse to first",
			content: "// @require: a.js\n// @require: b.js\n// @require: a.js\n",
			want:    []string{"a.js", "b.js"},
		},
		{
			name:    "last line without newline",
			content: "var a = 1;\n// @require: tail.js",
			want:    []string{"tail.js"},
		},
		{
			name:    "crlf and trailing spaces trimmed",
			content: "// @require: win.js  \r\n",
			want:    []string{"win.js"},
		},
		{
			name:    "empty identifier ignored",
			content: "// @require: \n// @require: real.js\n",
			want:    []string{"real.js"},
		},
		{
			name:    "matches outside comments",
			content: "var s = \"@require: inline.js\n\";\n",
			want:    []string{"inline.js"},
		},
		{
			name:    "marker needs the colon and space",
			content: "// @require:nospace.js\n// @requires: other.js\n",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRequirements(tt.content))
		})
	}
}

func TestNewUnit_StoresRequirements(t *testing.T) {
	u := NewUnit("app.js", "// @require: lib.js\napp();\n")

	assert.Equal(t, "app.js", u.ID())
	assert.Equal(t, "// @require: lib.js\napp();\n", u.Content())
	assert.Equal(t, []string{"lib.js"}, u.Requires())

	// Requires returns a copy; mutating it must not affect the unit.
	reqs := u.Requires()
	reqs[0] = "mutated.js"
	assert.Equal(t, []string{"lib.js"}, u.Requires())
}

func TestNewUnitWith_RejectsEmptyID(t *testing.T) {
	_, err := NewUnitWith(MarkerExtractor{}, "", "x")
	require.Error(t, err)
}

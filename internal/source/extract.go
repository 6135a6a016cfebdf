package source

import (
	"regexp"
	"strings"
)

// Extractor pulls requirement identifiers out of a unit's text.
// Implementations: MarkerExtractor (permissive), CommentExtractor (strict).
type Extractor interface {
	Extract(path, content string) ([]string, error)
}

// requireMarker matches "@require: <identifier>" anywhere on a line.
var requireMarker = regexp.MustCompile(`(?m)@require: ([^\n]*)$`)

// MarkerExtractor matches require markers anywhere in the text, without
// checking that they sit inside a comment.
type MarkerExtractor struct{}

// Extract returns the identifiers declared in content, first occurrence wins.
func (MarkerExtractor) Extract(_ string, content string) ([]string, error) {
	return ExtractRequirements(content), nil
}

// ExtractRequirements scans text for require markers and returns the declared
// identifiers in order, trimmed and de-duplicated. Markers with an empty
// identifier are ignored.
func ExtractRequirements(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range requireMarker.FindAllStringSubmatch(text, -1) {
		id := strings.TrimSpace(m[1])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

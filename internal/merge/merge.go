// Package merge serializes resolved units into one output artifact and
// persists it.
package merge

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dusk-indust/srcmerge/internal/source"
)

// BannerStyle selects the comment syntax of the per-unit header.
type BannerStyle string

const (
	BannerBlock BannerStyle = "block" // /* ... */
	BannerLine  BannerStyle = "line"  // // ...
	BannerHash  BannerStyle = "hash"  // # ...
)

var rule = strings.Repeat("=", 70)

// ParseBannerStyle maps a flag or config value to a style. The empty string
// selects BannerBlock.
func ParseBannerStyle(s string) (BannerStyle, error) {
	switch BannerStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "", BannerBlock:
		return BannerBlock, nil
	case BannerLine:
		return BannerLine, nil
	case BannerHash:
		return BannerHash, nil
	default:
		return "", fmt.Errorf("unknown banner style %q (want block, line or hash)", s)
	}
}

// Banner returns the header emitted before the unit id, including the
// trailing blank line.
func (s BannerStyle) Banner(id string) string {
	switch s {
	case BannerLine:
		return "// " + rule + "\n//  " + id + "\n// " + rule + "\n\n"
	case BannerHash:
		return "# " + rule + "\n#   " + id + "\n# " + rule + "\n\n"
	default:
		return "/* " + rule + "\n    " + id + "\n   " + rule + " */\n\n"
	}
}

// Merge concatenates units in order. Each unit is preceded by its banner and
// followed by a newline when its content does not already end with one.
// Content is otherwise copied byte for byte.
//
// Every id in order must name one of units.
func Merge(order []string, units []source.Unit, style BannerStyle) ([]byte, error) {
	byID := make(map[string]source.Unit, len(units))
	size := 0
	for _, u := range units {
		byID[u.ID()] = u
		size += len(u.Content())
	}

	var buf bytes.Buffer
	buf.Grow(size + len(order)*(2*len(rule)+32))
	for _, id := range order {
		u, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("merge: no content for unit %q", id)
		}
		buf.WriteString(style.Banner(id))
		content := u.Content()
		buf.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

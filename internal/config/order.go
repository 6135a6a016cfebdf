package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/srcmerge/internal/graph"
)

// ErrConfigParse is the sentinel for every malformed configuration file.
var ErrConfigParse = errors.New("config parse error")

// ParseError reports a malformed order or project config.
type ParseError struct {
	Path string // empty when parsing from a reader
	Line int    // 1-based; 0 when the position is unknown
	Msg  string
}

func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfigParse, loc, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrConfigParse }

var sectionNames = []string{graph.SectionFirst, graph.SectionLast, graph.SectionExclude}

// LoadOrder reads an order config file. Files ending in .yml or .yaml are
// decoded as YAML; anything else uses the sectioned text format.
func LoadOrder(path string) (*graph.OrderConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open order config: %w", err)
	}
	defer f.Close()

	var cfg *graph.OrderConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		cfg, err = ParseOrderYAML(f)
	default:
		cfg, err = ParseOrder(f)
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Path = path
	}
	return cfg, err
}

// ParseOrder parses the sectioned text format:
//
//	[first]
//	core/base.js
//
//	[last]
//	main.js
//
//	[exclude]
//	debug.js
//
// All three headers are required, each exactly once, in any order. Each
// following non-blank line is one identifier, trimmed, until the next header.
func ParseOrder(r io.Reader) (*graph.OrderConfig, error) {
	cfg := &graph.OrderConfig{}
	lists := map[string]*[]string{
		graph.SectionFirst:   &cfg.First,
		graph.SectionLast:    &cfg.Last,
		graph.SectionExclude: &cfg.Exclude,
	}
	seenSection := make(map[string]int)
	seenID := make(map[string]string)

	var current *[]string
	var currentName string
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			list, ok := lists[text]
			if !ok {
				return nil, &ParseError{Line: line, Msg: fmt.Sprintf("unknown section %s", text)}
			}
			if prev, dup := seenSection[text]; dup {
				return nil, &ParseError{Line: line, Msg: fmt.Sprintf("section %s repeated (first at line %d)", text, prev)}
			}
			seenSection[text] = line
			current, currentName = list, text
			continue
		}

		if current == nil {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("identifier %q before any section header", text)}
		}
		if where, dup := seenID[text]; dup {
			return nil, &ParseError{Line: line, Msg: duplicateMsg(text, where, currentName)}
		}
		seenID[text] = currentName
		*current = append(*current, text)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read order config: %w", err)
	}

	for _, name := range sectionNames {
		if _, ok := seenSection[name]; !ok {
			return nil, &ParseError{Line: 0, Msg: fmt.Sprintf("missing section %s", name)}
		}
	}
	return cfg, nil
}

type yamlOrder struct {
	First   *[]string `yaml:"first"`
	Last    *[]string `yaml:"last"`
	Exclude *[]string `yaml:"exclude"`
}

// ParseOrderYAML decodes {first: [...], last: [...], exclude: [...]}. All
// three keys are required; an empty list is written as [].
func ParseOrderYAML(r io.Reader) (*graph.OrderConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw yamlOrder
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Msg: "empty document"}
		}
		return nil, &ParseError{Msg: err.Error()}
	}

	cfg := &graph.OrderConfig{}
	fields := []struct {
		name string
		src  *[]string
		dst  *[]string
	}{
		{graph.SectionFirst, raw.First, &cfg.First},
		{graph.SectionLast, raw.Last, &cfg.Last},
		{graph.SectionExclude, raw.Exclude, &cfg.Exclude},
	}
	seenID := make(map[string]string)
	for _, f := range fields {
		if f.src == nil {
			return nil, &ParseError{Msg: fmt.Sprintf("missing key %s", strings.Trim(f.name, "[]"))}
		}
		for _, id := range *f.src {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if where, dup := seenID[id]; dup {
				return nil, &ParseError{Msg: duplicateMsg(id, where, f.name)}
			}
			seenID[id] = f.name
			*f.dst = append(*f.dst, id)
		}
	}
	return cfg, nil
}

func duplicateMsg(id, prev, cur string) string {
	if prev == cur {
		return fmt.Sprintf("%q listed twice in %s", id, cur)
	}
	return fmt.Sprintf("%q listed in both %s and %s", id, prev, cur)
}

package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultSuffix is the file suffix discovered when none is configured.
const DefaultSuffix = ".js"

// ErrDuplicateUnit reports two units with the same identifier.
var ErrDuplicateUnit = errors.New("duplicate unit")

// DiscoverOptions controls which files become units and how their
// requirements are extracted.
type DiscoverOptions struct {
	// Suffix selects files by name suffix. Empty means DefaultSuffix.
	Suffix string

	// Extractor extracts requirements. Nil means MarkerExtractor.
	Extractor Extractor

	// Concurrency bounds parallel file reads. Zero means GOMAXPROCS.
	Concurrency int
}

// candidate is a file found during the walk, before it is read.
type candidate struct {
	id   string
	path string
}

// Discover walks each directory in order and loads every matching file as a
// Unit. Identifiers are slash-separated paths relative to the directory they
// were found in. Hidden files and directories are skipped.
//
// The walk is sequential and lexical, so the returned order (the discovery
// order) is stable. File reads run concurrently.
func Discover(ctx context.Context, dirs []string, opts DiscoverOptions) ([]Unit, error) {
	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	ex := opts.Extractor
	if ex == nil {
		ex = MarkerExtractor{}
	}

	var found []candidate
	origin := make(map[string]string)

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("cannot access source directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source path is not a directory: %s", dir)
		}

		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if path != dir && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, suffix) {
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			id := filepath.ToSlash(rel)
			if prev, dup := origin[id]; dup {
				return fmt.Errorf("%w: %s found in both %s and %s", ErrDuplicateUnit, id, prev, dir)
			}
			origin[id] = dir
			found = append(found, candidate{id: id, path: path})
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, walkErr)
		}
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	units := make([]Unit, len(found))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, c := range found {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(c.path)
			if err != nil {
				return fmt.Errorf("read %s: %w", c.path, err)
			}
			u, err := NewUnitWith(ex, c.id, string(data))
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

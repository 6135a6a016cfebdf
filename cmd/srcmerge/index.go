//go:build cgo

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dusk-indust/srcmerge/internal/graph"
)

// runIndex resolves the sources and stores the graph in a Kuzu database for
// later queries.
func runIndex(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	dbPath := fs.String("db", filepath.Join(".srcmerge", "index"), "database path")

	e, err := setup(ctx, fs, common, args, ".", stdout, stderr)
	if err != nil {
		return err
	}
	dirs := fs.Args()
	if len(dirs) == 0 {
		return usageErrorf("index: missing source directory argument")
	}

	res, err := e.resolve(dirs)
	if err != nil {
		return err
	}

	// A stale database would mix old edges into the new graph.
	if err := os.RemoveAll(*dbPath); err != nil {
		return fmt.Errorf("remove old index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	store, err := graph.NewKuzuFileStore(*dbPath)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer store.Close()

	if err := store.InitSchema(e.ctx); err != nil {
		return err
	}
	if err := graph.Index(e.ctx, store, res); err != nil {
		return err
	}
	stats, err := store.Stats(e.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Indexed %d units and %d requirements into %s\n", stats.UnitCount, stats.EdgeCount, *dbPath)
	return nil
}

// openIndex opens a database written by runIndex for querying.
func openIndex(path string) (graph.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no index found at %s\nRun 'srcmerge index' first", path)
	}
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return store, nil
}

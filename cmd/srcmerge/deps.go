package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/srcmerge/internal/graph"
)

// runDeps prints the requirement chains reachable from one unit. The chains
// come from a fresh resolve of the directories, or from a database written
// by the index command when -db is given.
func runDeps(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("deps", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	downstream := fs.Bool("downstream", false, "list units that require <unit> instead of units it requires")
	depth := fs.Int("depth", graph.DefaultMaxDepth, "maximum traversal depth")
	dbPath := fs.String("db", "", "query an index written by 'srcmerge index' instead of scanning directories")

	e, err := setup(ctx, fs, common, args, ".", stdout, stderr)
	if err != nil {
		return err
	}
	if *depth < 1 {
		return usageErrorf("deps: -depth must be at least 1")
	}

	rest := fs.Args()
	var store graph.Store
	switch {
	case *dbPath != "":
		if len(rest) != 1 {
			return usageErrorf("deps: with -db, want exactly one <unit>")
		}
		store, err = openIndex(*dbPath)
	case len(rest) < 2:
		return usageErrorf("deps: want <unit> <directory>...")
	default:
		store, err = e.memIndex(rest[1:])
	}
	if err != nil {
		return err
	}
	defer store.Close()
	unit := rest[0]

	node, err := store.GetUnit(e.ctx, unit)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("deps: unknown unit %q", unit)
	}

	dir := graph.DirectionUpstream
	if *downstream {
		dir = graph.DirectionDownstream
	}
	chains, err := store.GetDependencies(e.ctx, unit, dir, *depth)
	if err != nil {
		return err
	}
	for _, c := range chains {
		fmt.Fprintln(stdout, strings.Join(c.Nodes, " -> "))
	}
	return nil
}

// memIndex resolves dirs and loads the result into an in-process store.
func (e *env) memIndex(dirs []string) (graph.Store, error) {
	res, err := e.resolve(dirs)
	if err != nil {
		return nil, err
	}
	store := graph.NewMemStore()
	if err := store.InitSchema(e.ctx); err != nil {
		return nil, err
	}
	if err := graph.Index(e.ctx, store, res); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dusk-indust/srcmerge/internal/export"
)

// runDiagram prints the requirement graph as a Mermaid flowchart, either
// from the directories or from a database written by the index command.
func runDiagram(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("diagram", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	dbPath := fs.String("db", "", "render an index written by 'srcmerge index' instead of scanning directories")

	e, err := setup(ctx, fs, common, args, ".", stdout, stderr)
	if err != nil {
		return err
	}
	dirs := fs.Args()

	if *dbPath != "" {
		if len(dirs) > 0 {
			return usageErrorf("diagram: -db takes no directories")
		}
		store, err := openIndex(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		mermaid, err := export.MermaidFromStore(e.ctx, store)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, mermaid)
		return nil
	}

	if len(dirs) == 0 {
		return usageErrorf("diagram: missing source directory argument")
	}
	res, err := e.resolve(dirs)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, export.Mermaid(res))
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/srcmerge/internal/export"
)

// runOrder prints the resolved order without merging anything.
func runOrder(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	asJSON := fs.Bool("json", false, "print the graph with levels and positions as JSON")
	levels := fs.Bool("levels", false, "print one line per topological level")

	e, err := setup(ctx, fs, common, args, ".", stdout, stderr)
	if err != nil {
		return err
	}
	dirs := fs.Args()
	if len(dirs) == 0 {
		return usageErrorf("order: missing source directory argument")
	}

	res, err := e.resolve(dirs)
	if err != nil {
		return err
	}

	switch {
	case *asJSON:
		data, err := export.JSON(res)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	case *levels:
		for i, l := range res.Levels {
			fmt.Fprintf(stdout, "%d: %s\n", i, strings.Join(l, " "))
		}
	default:
		for _, id := range res.Order {
			fmt.Fprintln(stdout, id)
		}
	}
	return nil
}

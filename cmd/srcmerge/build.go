package main

import (
	"context"
	"errors"
	"flag"
	"io"

	"github.com/dusk-indust/srcmerge/internal/build"
)

// runBuild merges every target listed in srcmerge.yml.
func runBuild(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	projectRoot := fs.String("project-root", ".", "directory containing srcmerge.yml")

	// -project-root must be known before setup loads the project config.
	if err := common.parse(fs, args); err != nil {
		return err
	}
	e, err := setup(ctx, fs, common, args, *projectRoot, stdout, stderr)
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usageErrorf("build: unexpected arguments %v", fs.Args())
	}

	targets, err := build.LoadTargets(e.project)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return errors.New("build: no targets in srcmerge.yml")
	}

	runner, err := e.runner(progressPrinter(stdout, common.Quiet))
	if err != nil {
		return err
	}
	_, err = runner.RunAll(e.ctx, targets)
	return err
}

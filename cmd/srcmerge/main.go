package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/srcmerge/internal/build"
	"github.com/dusk-indust/srcmerge/internal/mcptools"
	"github.com/dusk-indust/srcmerge/internal/merge"
)

// version is set by goreleaser at build time.
var version = "dev"

// exitError carries a process exit code. Usage mistakes exit with 2; every
// other failure exits with 1.
type exitError struct {
	Code    int
	Message string
	err     error
}

func (e *exitError) Error() string { return e.Message }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{Code: 2, Message: err.Error(), err: err}
}

func usageErrorf(format string, args ...any) error {
	return usageError(fmt.Errorf(format, args...))
}

const usageText = `usage:
  srcmerge [flags] [-c <config file>] <output> <directory>...
  srcmerge order   [flags] [-json] <directory>...
  srcmerge deps    [flags] [-downstream] [-depth N] <unit> <directory>...
  srcmerge deps    [flags] [-downstream] [-depth N] -db <path> <unit>
  srcmerge diagram [flags] <directory>... | -db <path>
  srcmerge index   [flags] [-db path] <directory>...
  srcmerge build   [flags] [-project-root dir]
  srcmerge -serve-mcp | -mcp-addr <addr> [-db <path>]
  srcmerge -version

<output> may be a file path, "-" for stdout, or s3://bucket/key.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "error: %s\n", exitErr.Message)
		if exitErr.Code == 2 {
			fmt.Fprint(os.Stderr, usageText)
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// commands maps subcommand names to their entry points.
var commands = map[string]func(ctx context.Context, args []string, stdout, stderr io.Writer) error{
	"order":   runOrder,
	"deps":    runDeps,
	"diagram": runDiagram,
	"index":   runIndex,
	"build":   runBuild,
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		if cmd, ok := commands[args[0]]; ok {
			return cmd(ctx, args[1:], stdout, stderr)
		}
	}
	return runMerge(ctx, args, stdout, stderr)
}

// runMerge is the default command: merge directories into one output.
func runMerge(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("srcmerge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	serveMCP := fs.Bool("serve-mcp", false, "run as an MCP server on stdio")
	mcpAddr := fs.String("mcp-addr", "", "run as an MCP server over streamable HTTP on this address")
	mcpDB := fs.String("db", "", "with -serve-mcp or -mcp-addr, answer get_dependencies from this index until sources are resolved")
	showVersion := fs.Bool("version", false, "print version and exit")

	e, err := setup(ctx, fs, common, args, ".", stdout, stderr)
	if err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, version)
		return nil
	}
	if *serveMCP || *mcpAddr != "" {
		svc := mcptools.NewMergeService(e.project.S3)
		defer svc.Close()
		if *mcpDB != "" {
			store, err := openIndex(*mcpDB)
			if err != nil {
				return err
			}
			svc.UseIndex(store)
		}
		server := mcptools.NewMergeMCPServer(svc)
		if *mcpAddr != "" {
			return mcptools.RunHTTP(e.ctx, server, *mcpAddr)
		}
		return mcptools.RunStdio(e.ctx, server)
	}

	rest := fs.Args()
	if len(rest) < 1 {
		return usageErrorf("missing output argument")
	}
	if len(rest) < 2 {
		return usageErrorf("missing source directory argument")
	}
	output, dirs := rest[0], rest[1:]

	// Progress must not interleave with a merged artifact on stdout.
	progress := stdout
	if output == merge.StdoutName {
		progress = stderr
	}

	cfg, err := common.loadOrder(progress)
	if err != nil {
		return err
	}
	runner, err := e.runner(progressPrinter(progress, common.Quiet))
	if err != nil {
		return err
	}
	if output == merge.StdoutName {
		runner.WithWriter(merge.StdoutWriter{Out: stdout})
	}
	_, err = runner.Run(e.ctx, build.Target{Output: output, Dirs: dirs, Order: cfg})
	return err
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dusk-indust/srcmerge/internal/build"
	"github.com/dusk-indust/srcmerge/internal/config"
	"github.com/dusk-indust/srcmerge/internal/ctxlog"
	"github.com/dusk-indust/srcmerge/internal/graph"
	"github.com/dusk-indust/srcmerge/internal/merge"
	"github.com/dusk-indust/srcmerge/internal/source"
)

// commonFlags are accepted by every command that reads sources.
type commonFlags struct {
	ConfigPath string
	Suffix     string
	Strict     bool
	Banner     string
	Quiet      bool
	LogLevel   string
	LogFormat  string

	set map[string]bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.ConfigPath, "c", "", "order config file with [first], [last] and [exclude] sections (or .yml/.yaml)")
	fs.StringVar(&c.Suffix, "suffix", source.DefaultSuffix, "file name suffix of source units")
	fs.BoolVar(&c.Strict, "strict", false, "only honour @require markers inside comments")
	fs.StringVar(&c.Banner, "banner", string(merge.BannerBlock), "banner style: block, line or hash")
	fs.BoolVar(&c.Quiet, "quiet", false, "suppress progress output")
	fs.StringVar(&c.LogLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", "text", "log format: text or json")
	return c
}

// parse parses args and records which flags were given explicitly, so
// project config values only fill in the rest.
func (c *commonFlags) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	c.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.set[f.Name] = true })
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return usageErrorf("invalid -log-format %q: must be text or json", c.LogFormat)
	}
	return nil
}

// applyProject fills unset flags from srcmerge.yml.
func (c *commonFlags) applyProject(pc *config.ProjectConfig) {
	if !c.set["suffix"] && pc.Suffix != "" {
		c.Suffix = pc.Suffix
	}
	if !c.set["strict"] && pc.Strict {
		c.Strict = true
	}
	if !c.set["banner"] && pc.Banner != "" {
		c.Banner = pc.Banner
	}
}

func (c *commonFlags) options(s3 config.S3Config) (build.Options, error) {
	banner, err := merge.ParseBannerStyle(c.Banner)
	if err != nil {
		return build.Options{}, usageError(err)
	}
	return build.Options{
		Suffix: c.Suffix,
		Strict: c.Strict,
		Banner: banner,
		S3:     s3,
	}, nil
}

func (c *commonFlags) withLogger(ctx context.Context, stderr io.Writer) context.Context {
	return ctxlog.WithLogger(ctx, ctxlog.New(c.LogLevel, c.LogFormat, stderr))
}

// loadOrder reads the -c file, announcing it the way progress lines do.
func (c *commonFlags) loadOrder(progress io.Writer) (*graph.OrderConfig, error) {
	if c.ConfigPath == "" {
		return nil, nil
	}
	if !c.Quiet {
		fmt.Fprintf(progress, "Parsing configuration file: %s\n", c.ConfigPath)
	}
	return config.LoadOrder(c.ConfigPath)
}

// env bundles everything a command needs after flag parsing.
type env struct {
	ctx     context.Context
	flags   *commonFlags
	project *config.ProjectConfig
	stdout  io.Writer
	stderr  io.Writer
}

// setup parses common flags and loads srcmerge.yml and .env from root.
func setup(ctx context.Context, fs *flag.FlagSet, c *commonFlags, args []string, root string, stdout, stderr io.Writer) (*env, error) {
	if err := c.parse(fs, args); err != nil {
		return nil, err
	}
	pc, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	config.LoadEnv(pc)
	c.applyProject(pc)

	ctx = c.withLogger(ctx, stderr)
	ctxlog.FromContext(ctx).Debug("configuration loaded",
		"root", root, "suffix", c.Suffix, "strict", c.Strict, "banner", c.Banner, "targets", len(pc.Targets))
	return &env{ctx: ctx, flags: c, project: pc, stdout: stdout, stderr: stderr}, nil
}

func (e *env) runner(onProgress func(build.ProgressEvent)) (*build.Runner, error) {
	opts, err := e.flags.options(e.project.S3)
	if err != nil {
		return nil, err
	}
	return build.NewRunner(opts, onProgress), nil
}

// resolve discovers and resolves the given directories with the -c config.
func (e *env) resolve(dirs []string) (*graph.Result, error) {
	cfg, err := e.flags.loadOrder(e.stderr)
	if err != nil {
		return nil, err
	}
	r, err := e.runner(nil)
	if err != nil {
		return nil, err
	}
	return r.Resolve(e.ctx, dirs, cfg)
}

// progressPrinter prints events to w, ending with the Generating line. In
// quiet mode only the total is printed. Failures are left to the caller's
// error report.
func progressPrinter(w io.Writer, quiet bool) func(build.ProgressEvent) {
	return func(ev build.ProgressEvent) {
		switch {
		case ev.Phase == build.PhaseFailed, ev.Phase == build.PhaseDone:
			return
		case quiet && ev.Phase != build.PhaseMerged:
			return
		}
		fmt.Fprintln(w, build.FormatProgress(ev))
	}
}

// Package build runs targets end to end: discovery, resolution, merge and
// output.
package build

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/srcmerge/internal/config"
	"github.com/dusk-indust/srcmerge/internal/ctxlog"
	"github.com/dusk-indust/srcmerge/internal/graph"
	"github.com/dusk-indust/srcmerge/internal/merge"
	"github.com/dusk-indust/srcmerge/internal/source"
)

// Target is one output built from a set of source directories.
type Target struct {
	// Name labels progress for multi-target builds. Optional.
	Name string

	// Output is a file path, "-" for stdout, or an s3:// URL.
	Output string

	// Dirs are scanned in order.
	Dirs []string

	// Order forces and excludes units. Nil means none.
	Order *graph.OrderConfig
}

// Options apply to every target a Runner builds.
type Options struct {
	Suffix      string
	Strict      bool // only honour @require markers inside comments
	Banner      merge.BannerStyle
	Concurrency int // parallel file reads per target; zero means GOMAXPROCS
	S3          config.S3Config
}

// Report summarizes a finished target.
type Report struct {
	Target string
	Output string
	Result *graph.Result
	Bytes  int
}

// Runner builds targets. It is safe for concurrent use.
type Runner struct {
	opts       Options
	writerFor  func(output string) (merge.Writer, error)
	onProgress func(ProgressEvent)
	progressMu sync.Mutex
}

// NewRunner creates a Runner. onProgress may be nil; calls to it are
// serialized even when targets build concurrently.
func NewRunner(opts Options, onProgress func(ProgressEvent)) *Runner {
	r := &Runner{opts: opts, onProgress: onProgress}
	r.writerFor = func(output string) (merge.Writer, error) {
		return merge.WriterFor(output, r.opts.S3)
	}
	return r
}

// WithWriter replaces writer selection; used to capture output in tests and
// by callers that already hold a writer.
func (r *Runner) WithWriter(w merge.Writer) *Runner {
	r.writerFor = func(string) (merge.Writer, error) { return w, nil }
	return r
}

func (r *Runner) extractor() source.Extractor {
	if r.opts.Strict {
		return source.NewCommentExtractor()
	}
	return source.MarkerExtractor{}
}

// Load discovers the units under dirs without resolving them.
func (r *Runner) Load(ctx context.Context, dirs []string) ([]source.Unit, error) {
	return source.Discover(ctx, dirs, source.DiscoverOptions{
		Suffix:      r.opts.Suffix,
		Extractor:   r.extractor(),
		Concurrency: r.opts.Concurrency,
	})
}

// Resolve discovers and resolves the units under dirs.
func (r *Runner) Resolve(ctx context.Context, dirs []string, cfg *graph.OrderConfig) (*graph.Result, error) {
	units, err := r.Load(ctx, dirs)
	if err != nil {
		return nil, err
	}
	return graph.Resolve(units, cfg)
}

// Run builds one target. Nothing is written unless resolution and merging
// both succeed.
func (r *Runner) Run(ctx context.Context, t Target) (*Report, error) {
	log := ctxlog.FromContext(ctx).With("target", targetLabel(t))

	rep, err := r.run(ctx, t)
	if err != nil {
		log.Debug("target failed", "err", err)
		r.emit(ProgressEvent{Target: t.Name, Phase: PhaseFailed, Message: err.Error()})
		return nil, err
	}
	log.Debug("target built", "units", len(rep.Result.Order), "bytes", rep.Bytes)
	return rep, nil
}

func (r *Runner) run(ctx context.Context, t Target) (*Report, error) {
	if t.Output == "" {
		return nil, fmt.Errorf("target %s: no output", targetLabel(t))
	}
	if len(t.Dirs) == 0 {
		return nil, fmt.Errorf("target %s: no source directories", targetLabel(t))
	}

	units, err := r.Load(ctx, t.Dirs)
	if err != nil {
		return nil, err
	}
	for _, u := range graph.Exclude(units, t.Order) {
		r.emit(ProgressEvent{Target: t.Name, Phase: PhaseImporting, Unit: u.ID()})
	}

	r.emit(ProgressEvent{Target: t.Name, Phase: PhaseResolving})
	res, err := graph.Resolve(units, t.Order)
	if err != nil {
		return nil, err
	}
	if !t.Order.IsZero() {
		r.emit(ProgressEvent{Target: t.Name, Phase: PhaseReordering})
	}

	data, err := merge.Merge(res.Order, res.Units, r.opts.Banner)
	if err != nil {
		return nil, err
	}
	for _, id := range res.Order {
		r.emit(ProgressEvent{Target: t.Name, Phase: PhaseExporting, Unit: id})
	}
	r.emit(ProgressEvent{Target: t.Name, Phase: PhaseMerged, Count: len(res.Order)})

	w, err := r.writerFor(t.Output)
	if err != nil {
		return nil, err
	}
	r.emit(ProgressEvent{Target: t.Name, Phase: PhaseGenerating, Output: t.Output})
	if err := w.Write(ctx, t.Output, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", t.Output, err)
	}
	r.emit(ProgressEvent{Target: t.Name, Phase: PhaseDone, Output: t.Output, Count: len(res.Order)})

	return &Report{Target: t.Name, Output: t.Output, Result: res, Bytes: len(data)}, nil
}

// RunAll builds targets concurrently. Targets share no state; the first
// failure cancels the rest. Reports are returned in target order.
func (r *Runner) RunAll(ctx context.Context, targets []Target) ([]*Report, error) {
	reports := make([]*Report, len(targets))
	g, gctx := errgroup.WithContext(ctx)

	for i, t := range targets {
		g.Go(func() error {
			rep, err := r.Run(gctx, t)
			if err != nil {
				return fmt.Errorf("%s: %w", targetLabel(t), err)
			}
			reports[i] = rep
			return nil
		})
	}

	err := g.Wait()
	return reports, err
}

// LoadTargets converts project config targets, reading each order config.
func LoadTargets(pc *config.ProjectConfig) ([]Target, error) {
	targets := make([]Target, 0, len(pc.Targets))
	for _, ct := range pc.Targets {
		t := Target{
			Name:   strings.TrimSuffix(filepath.Base(ct.Output), filepath.Ext(ct.Output)),
			Output: ct.Output,
			Dirs:   ct.Dirs,
		}
		if ct.Order != "" {
			cfg, err := config.LoadOrder(ct.Order)
			if err != nil {
				return nil, err
			}
			t.Order = cfg
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (r *Runner) emit(ev ProgressEvent) {
	if r.onProgress == nil {
		return
	}
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.onProgress(ev)
}

func targetLabel(t Target) string {
	if t.Name != "" {
		return t.Name
	}
	return t.Output
}

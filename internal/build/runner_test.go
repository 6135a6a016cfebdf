package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/srcmerge/internal/config"
	"github.com/dusk-indust/srcmerge/internal/graph"
)

// memWriter captures artifacts by output name.
type memWriter struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemWriter() *memWriter { return &memWriter{data: make(map[string]string)} }

func (w *memWriter) Write(_ context.Context, name string, data []byte) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data[name] = string(data)
	return nil
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"app.js":       "// @require: lib/util.js\napp();",
		"lib/util.js":  "util();\n",
		"debug.js":     "debug();\n",
		"notes.txt":    "ignored",
		".hidden/x.js": "ignored",
	})

	var events []ProgressEvent
	w := newMemWriter()
	r := NewRunner(Options{}, func(ev ProgressEvent) { events = append(events, ev) }).WithWriter(w)

	rep, err := r.Run(context.Background(), Target{
		Output: "bundle.js",
		Dirs:   []string{dir},
		Order:  &graph.OrderConfig{Exclude: []string{"debug.js"}},
	})
	require.NoError(t, err)
	assert.Equal(t, graph.ResolvedOrder{"lib/util.js", "app.js"}, rep.Result.Order)

	out := w.data["bundle.js"]
	assert.Equal(t, len(out), rep.Bytes)
	assert.Less(t, strings.Index(out, "util();"), strings.Index(out, "app();"))
	assert.NotContains(t, out, "debug()")
	assert.True(t, strings.HasSuffix(out, "app();\n"))

	var phases []Phase
	for _, ev := range events {
		phases = append(phases, ev.Phase)
	}
	assert.Equal(t, []Phase{
		PhaseImporting, PhaseImporting,
		PhaseResolving, PhaseReordering,
		PhaseExporting, PhaseExporting,
		PhaseMerged, PhaseGenerating, PhaseDone,
	}, phases)
	merged := events[len(events)-3]
	assert.Equal(t, 2, merged.Count, "the total is reported before the artifact is generated")
	assert.Equal(t, 2, events[len(events)-1].Count)
}

func TestRunner_NoOutputOnCoreError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js": "// @require: b.js\n",
		"b.js": "// @require: a.js\n",
	})

	var last ProgressEvent
	w := newMemWriter()
	r := NewRunner(Options{}, func(ev ProgressEvent) { last = ev }).WithWriter(w)

	_, err := r.Run(context.Background(), Target{Output: "out.js", Dirs: []string{dir}})
	require.ErrorIs(t, err, graph.ErrCycleDetected)
	assert.Empty(t, w.data)
	assert.Equal(t, PhaseFailed, last.Phase)
}

func TestRunner_Validation(t *testing.T) {
	r := NewRunner(Options{}, nil).WithWriter(newMemWriter())

	_, err := r.Run(context.Background(), Target{Dirs: []string{t.TempDir()}})
	assert.ErrorContains(t, err, "no output")

	_, err = r.Run(context.Background(), Target{Output: "x.js"})
	assert.ErrorContains(t, err, "no source directories")
}

func TestRunner_WriterError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.js": "a();"})

	w := newMemWriter()
	w.err = errors.New("disk full")
	_, err := NewRunner(Options{}, nil).WithWriter(w).Run(context.Background(), Target{Output: "o.js", Dirs: []string{dir}})
	assert.ErrorContains(t, err, "disk full")
}

func TestRunner_RunAll(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"one", "two", "three"} {
		writeFiles(t, filepath.Join(root, name), map[string]string{
			"base.js": name + "_base();",
			"top.js":  "// @require: base.js\n" + name + "_top();",
		})
	}

	w := newMemWriter()
	r := NewRunner(Options{Banner: "line"}, nil).WithWriter(w)

	targets := []Target{
		{Name: "one", Output: "one.js", Dirs: []string{filepath.Join(root, "one")}},
		{Name: "two", Output: "two.js", Dirs: []string{filepath.Join(root, "two")}},
		{Name: "three", Output: "three.js", Dirs: []string{filepath.Join(root, "three")}},
	}
	reports, err := r.RunAll(context.Background(), targets)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	for i, name := range []string{"one", "two", "three"} {
		assert.Equal(t, name, reports[i].Target)
		out := w.data[name+".js"]
		assert.Contains(t, out, "//  base.js\n")
		assert.Less(t, strings.Index(out, name+"_base"), strings.Index(out, name+"_top"))
	}
}

func TestRunner_RunAllReportsFailingTarget(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, filepath.Join(root, "ok"), map[string]string{"a.js": "a();"})
	writeFiles(t, filepath.Join(root, "bad"), map[string]string{"a.js": "// @require: z.js\n"})

	r := NewRunner(Options{}, nil).WithWriter(newMemWriter())
	_, err := r.RunAll(context.Background(), []Target{
		{Name: "ok", Output: "ok.js", Dirs: []string{filepath.Join(root, "ok")}},
		{Name: "bad", Output: "bad.js", Dirs: []string{filepath.Join(root, "bad")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrMissingDependency)
	assert.True(t, strings.HasPrefix(err.Error(), "bad: "))
}

func TestLoadTargets(t *testing.T) {
	dir := t.TempDir()
	orderPath := filepath.Join(dir, "app.cfg")
	require.NoError(t, os.WriteFile(orderPath, []byte("[first]\nbase.js\n[last]\n[exclude]\n"), 0o644))

	targets, err := LoadTargets(&config.ProjectConfig{Targets: []config.Target{
		{Output: filepath.Join(dir, "dist/app.js"), Dirs: []string{"src"}, Order: orderPath},
		{Output: "s3://b/lib.min.js", Dirs: []string{"lib"}},
	}})
	require.NoError(t, err)
	require.Len(t, targets, 2)

	assert.Equal(t, "app", targets[0].Name)
	assert.Equal(t, []string{"base.js"}, targets[0].Order.First)
	assert.Equal(t, "lib.min", targets[1].Name)
	assert.Nil(t, targets[1].Order)

	_, err = LoadTargets(&config.ProjectConfig{Targets: []config.Target{
		{Output: "x.js", Order: filepath.Join(dir, "missing.cfg")},
	}})
	assert.Error(t, err)
}

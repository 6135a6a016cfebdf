package merge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/srcmerge/internal/config"
)

// Writer persists a merged artifact under an output name.
type Writer interface {
	Write(ctx context.Context, name string, data []byte) error
}

// StdoutName is the output name that selects standard output.
const StdoutName = "-"

// WriterFor picks a writer for the output name: "-" is stdout, s3://bucket/key
// is an object store upload, anything else is a local file.
func WriterFor(name string, s3 config.S3Config) (Writer, error) {
	switch {
	case name == StdoutName:
		return StdoutWriter{Out: os.Stdout}, nil
	case strings.HasPrefix(name, s3Scheme):
		bucket, _, err := ParseS3URL(name)
		if err != nil {
			return nil, err
		}
		s3.Bucket = bucket
		return NewS3Writer(s3)
	default:
		return FileWriter{}, nil
	}
}

// FileWriter writes to the local filesystem. The data lands in a temporary
// file next to the target and is renamed into place, so readers never see a
// partial artifact.
type FileWriter struct {
	// Perm is applied to the final file; zero means 0o644.
	Perm os.FileMode
}

func (w FileWriter) Write(_ context.Context, name string, data []byte) (err error) {
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}

	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("rename into %s: %w", name, err)
	}
	return nil
}

// StdoutWriter copies the artifact to Out and ignores the name.
type StdoutWriter struct {
	Out io.Writer
}

func (w StdoutWriter) Write(_ context.Context, _ string, data []byte) error {
	_, err := w.Out.Write(data)
	return err
}

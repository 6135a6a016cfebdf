//go:build !cgo

package main

import (
	"context"
	"errors"
	"io"

	"github.com/dusk-indust/srcmerge/internal/graph"
)

var errNoKuzu = errors.New("the dependency index requires a cgo build (Kuzu is a C library)")

func runIndex(_ context.Context, _ []string, _, _ io.Writer) error {
	return errNoKuzu
}

func openIndex(string) (graph.Store, error) {
	return nil, errNoKuzu
}

package resolve

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/szaher/layermake/internal/probe"
	"github.com/szaher/layermake/internal/registry"
)

// Request is one independent resolution in a batch.
type Request struct {
	Name    string
	Targets []string
}

// BatchResult pairs a request with its outcome.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// ResolveBatch resolves several independent request sets concurrently
// against one shared registry. Each run gets its own transient state and
// probe snapshot; the base probe must be safe for concurrent use (the
// filesystem probe is). Results are returned in request order; one
// request's failure never stops the others.
func ResolveBatch(ctx context.Context, reg *registry.Registry, p probe.Probe, requests []Request, limit int) []BatchResult {
	results := make([]BatchResult, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{Name: req.Name, Err: err}
				return nil
			}
			res, err := Resolve(reg, req.Targets, p)
			results[i] = BatchResult{Name: req.Name, Result: res, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

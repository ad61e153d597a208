// Package parallel runs batch work in chunks on a bounded errgroup.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the batch size below which work stays on the caller's
// goroutine.
const DefaultThreshold = 256

// Parallelize divides items into one contiguous range per CPU core and runs
// fn on each range concurrently. The first error cancels ctx for the other
// workers and is returned once all of them have finished.
func Parallelize(ctx context.Context, items int, fn func(ctx context.Context, start, end int) error) error {
	if items <= 0 {
		return nil
	}

	// No need for more workers than items
	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		s, e := start, end
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, s, e)
		})
	}

	return g.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of
// items exceeds threshold. Otherwise fn runs once over the whole range.
func ParallelizeWithThreshold(ctx context.Context, items, threshold int, fn func(ctx context.Context, start, end int) error) error {
	if items <= 0 {
		return nil
	}
	if items <= threshold {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(ctx, 0, items)
	}
	return Parallelize(ctx, items, fn)
}

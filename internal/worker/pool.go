// Package worker fans indexed jobs out to a fixed number of goroutines.
package worker

import (
	"context"
	"sync"
)

// Job is one item handed to a worker, with its position in the input.
type Job[T any] struct {
	Index int
	Data  T
}

// ProcessFunc handles one job.
type ProcessFunc[I, O any] func(ctx context.Context, job Job[I]) (O, error)

// ProgressFunc is called after each job completes. Calls are serialized.
type ProgressFunc func(completed, total int)

// Process runs fn over items on at most workers goroutines and returns the
// outputs in input order. The first failure cancels the jobs still running
// and is returned; a cancelled ctx returns its error.
func Process[I, O any](ctx context.Context, items []I, workers int, fn ProcessFunc[I, O], onProgress ProgressFunc) ([]O, error) {
	if len(items) == 0 {
		return nil, nil
	}
	workers = max(1, min(workers, len(items)))

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	out := make([]O, len(items))
	next := make(chan int)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				v, err := fn(ctx, Job[I]{Index: i, Data: items[i]})
				if err != nil {
					cancel(err)
					return
				}
				out[i] = v

				mu.Lock()
				completed++
				if onProgress != nil {
					onProgress(completed, len(items))
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range items {
		select {
		case next <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(next)
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

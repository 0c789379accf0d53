// Package parallel provides deterministic work partitioning and a fork-join
// barrier for the search workers.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Range is a half-open [Start, End) interval of item indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of items in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Chunks splits items into exactly workers contiguous ranges of size
// ceil(items/workers); the last range absorbs the remainder. Trailing ranges
// may be empty when items is not much larger than workers. Concatenating the
// ranges in order reproduces [0, items).
func Chunks(items, workers int) []Range {
	if workers < 1 {
		workers = 1
	}
	chunkSize := (items + workers - 1) / workers

	ranges := make([]Range, workers)
	for i := 0; i < workers; i++ {
		start := min(i*chunkSize, items)
		end := min((i+1)*chunkSize, items)
		if i == workers-1 {
			end = items
		}
		ranges[i] = Range{Start: start, End: end}
	}
	return ranges
}

// ForkJoin runs fn for every job index in [0, jobs) on its own goroutine and
// blocks until all of them return. The first error cancels the context passed
// to the remaining jobs and is returned.
func ForkJoin(ctx context.Context, jobs int, fn func(ctx context.Context, job int) error) error {
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < jobs; i++ {
		job := i
		g.Go(func() error {
			return fn(gCtx, job)
		})
	}
	return g.Wait()
}

// Parallelize divides items across the available CPU cores and runs fn on each
// [start, end) range concurrently.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	var wg sync.WaitGroup
	for _, r := range Chunks(items, numWorkers) {
		if r.Len() == 0 {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(r.Start, r.End)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items <= threshold.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

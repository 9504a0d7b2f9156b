// Package parallel implements the chunked fork-join executor the bootstrap
// engines use to generate replicates concurrently: indices are split into
// contiguous, write-disjoint chunks and run one goroutine per chunk, with
// no ordering guarantee across chunks and no cancellation support (every
// index always runs to completion).
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForChunked calls body(i) for every i in [0,count), splitting the range
// into contiguous chunks and running each chunk on its own goroutine.
// chunkSizeHint overrides the default chunk size (max(1, count/NumCPU));
// pass 0 to use the default. Output buffers indexed by i are safe to write
// from body without further synchronization, since chunks never overlap.
func ForChunked(count int, body func(i int), chunkSizeHint int) {
	if count <= 0 {
		return
	}

	chunkSize := chunkSizeHint
	if chunkSize <= 0 {
		chunkSize = count / runtime.NumCPU()
		if chunkSize < 1 {
			chunkSize = 1
		}
	}

	var g errgroup.Group
	for start := 0; start < count; start += chunkSize {
		end := start + chunkSize
		if end > count {
			end = count
		}
		s, e := start, end
		g.Go(func() error {
			for i := s; i < e; i++ {
				body(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}

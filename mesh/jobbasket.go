// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// JobBasket hands out [start,stop) cell ranges to a fixed pool of worker
// goroutines: "threads loop get_job -> process -> get_job until empty"
// (spec.md §5). It is the only suspension point in the core's cooperative
// scheduling model — the outer driver loop itself never awaits anything.
type JobBasket struct {
	n        int
	chunk    int
	next     int64
	nWorkers int
}

// NewJobBasket divides n cells into jobs of chunk cells each (the last job
// may be smaller). If nWorkers <= 0, GOMAXPROCS is used.
func NewJobBasket(n, chunk, nWorkers int) *JobBasket {
	if chunk < 1 {
		chunk = 1
	}
	if nWorkers <= 0 {
		nWorkers = runtime.GOMAXPROCS(0)
	}
	return &JobBasket{n: n, chunk: chunk, nWorkers: nWorkers}
}

// getJob atomically claims the next [start,stop) range, or returns
// ok=false once the basket is empty.
func (jb *JobBasket) getJob() (b Block, ok bool) {
	start := atomic.AddInt64(&jb.next, int64(jb.chunk)) - int64(jb.chunk)
	if int(start) >= jb.n {
		return Block{}, false
	}
	stop := int(start) + jb.chunk
	if stop > jb.n {
		stop = jb.n
	}
	return Block{Start: int(start), Stop: stop}, true
}

// RunParallel fans work out across nWorkers goroutines, each looping
// get_job -> process -> get_job until the basket is drained. If any
// worker's call to fn returns an error, RunParallel stops dispensing new
// jobs and returns the first error observed (errgroup semantics); a step
// may be rejected as a result, but no kernel is cancelled mid-range.
func (jb *JobBasket) RunParallel(fn func(b Block) error) error {
	atomic.StoreInt64(&jb.next, 0)
	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < jb.nWorkers; w++ {
		g.Go(func() error {
			for {
				if ctx.Err() != nil {
					return nil
				}
				b, ok := jb.getJob()
				if !ok {
					return nil
				}
				if err := fn(b); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}

// Reset rewinds the basket so it can be reused for a fresh pass (e.g. the
// next kernel phase within the same step).
func (jb *JobBasket) Reset() { atomic.StoreInt64(&jb.next, 0) }

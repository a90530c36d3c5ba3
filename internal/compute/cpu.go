package compute

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps tiny batches on one goroutine.
const minChunk = 16

type Parallel struct {
	workers int
}

func NewParallel(workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Parallel{workers: workers}
}

func (p *Parallel) Name() string { return fmt.Sprintf("parallel (%d workers)", p.workers) }
func (p *Parallel) Workers() int { return p.workers }

func (p *Parallel) Evaluate(ctx context.Context, n int, fn Func, out []float64) error {
	workers := p.workers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		return NewSerial().Evaluate(ctx, n, fn, out)
	}

	chunkSize := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = fn(i)
			}
			return nil
		})
	}

	return g.Wait()
}

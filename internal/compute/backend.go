package compute

import (
	"context"
	"runtime"
)

// Func computes the result for item i of a batch. It must not depend on
// the order in which items are evaluated.
type Func func(i int) float64

type Backend interface {
	Name() string
	Workers() int
	// Evaluate fills out[0:n]. It stops between items once ctx is done
	// and returns ctx.Err(); out is then only partially written.
	Evaluate(ctx context.Context, n int, fn Func, out []float64) error
}

// AutoSelect returns a Serial backend for one worker and a Parallel
// backend otherwise. Zero means one worker per CPU.
func AutoSelect(workers int) Backend {
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers <= 1 {
		return NewSerial()
	}
	return NewParallel(workers)
}

type Serial struct{}

func NewSerial() *Serial { return &Serial{} }

func (s *Serial) Name() string { return "serial" }
func (s *Serial) Workers() int { return 1 }

func (s *Serial) Evaluate(ctx context.Context, n int, fn Func, out []float64) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		out[i] = fn(i)
	}
	return nil
}

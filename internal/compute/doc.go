// Package compute provides evaluation backends for batches of
// independent per-pixel computations.
//
// The package selects a backend from the requested worker count:
//
//   - Serial: evaluates in index order on the calling goroutine
//   - Parallel: fans the batch out over goroutines with errgroup
//
// Both write result i into out[i], so the output of a batch does not
// depend on which backend computed it:
//
//	backend := compute.AutoSelect(0)
//	err := backend.Evaluate(ctx, len(out), fn, out)
package compute

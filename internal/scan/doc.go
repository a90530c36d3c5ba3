// Package scan sweeps a grid of initial conditions through the
// flip-time classifier in cooperative batches.
//
// Pixel (x, y) of a Width x Height image maps to the initial angles
//
//	theta1 = x/Width*2pi - pi
//	theta2 = y/Height*2pi - pi
//
// and only every Resolution-th pixel is sampled. A Scanner moves through
// Idle -> Scanning -> Complete | Cancelled. Each call to Step evaluates
// one batch and emits its samples to the Sink in row-major order; the
// caller owns the loop and decides what happens between batches. Run is
// the default loop.
package scan

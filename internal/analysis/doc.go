// Package analysis classifies and characterizes double pendulum
// trajectories.
//
//   - [Classifier]: time-to-flip of a trajectory started at rest
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [Summarize], [Histogram]: statistics over a finished chaos map
//
// # Flip Criterion
//
// A trajectory flips once either angle has moved more than pi away from
// its starting value. A trajectory that has not flipped by MaxTime is
// reported as exactly MaxTime:
//
//	c := analysis.NewClassifier(config.DefaultParams(), integrators.NewRK4())
//	if c.TimeToFlip(0.1, -0.2) == c.MaxTime() {
//	    // did not flip
//	}
package analysis

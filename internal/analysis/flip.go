package analysis

import (
	"math"

	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/dynamo"
)

// Classifier measures how long a pendulum released at rest takes to
// flip. It holds a copy of its parameters and is safe for concurrent
// use.
type Classifier struct {
	params config.Params
	integ  dynamo.Integrator
}

func NewClassifier(p config.Params, integ dynamo.Integrator) *Classifier {
	return &Classifier{params: p, integ: integ}
}

func (c *Classifier) Params() config.Params { return c.params }
func (c *Classifier) MaxTime() float64      { return c.params.MaxTime }

// TimeToFlip integrates from (theta1, theta2) with zero angular
// velocity and returns the simulated time at which the step that first
// tripped the flip criterion started. A non-finite state counts as a
// trip. If nothing trips before MaxTime the result is exactly MaxTime;
// every other result is strictly below it.
func (c *Classifier) TimeToFlip(theta1, theta2 float64) float64 {
	var sys dynamo.System = c.params.Physics
	dt, maxTime := c.params.Dt, c.params.MaxTime

	x := dynamo.State{Theta1: theta1, Theta2: theta2}
	for t := 0.0; t < maxTime; t += dt {
		x = c.integ.Step(sys, x, dt)

		if !x.IsValid() {
			return t
		}
		if math.Abs(x.Theta2-theta2) > math.Pi || math.Abs(x.Theta1-theta1) > math.Pi {
			return t
		}
	}
	return maxTime
}

// Flipped reports whether v is a flip time rather than the sentinel.
func (c *Classifier) Flipped(v float64) bool {
	return v != c.params.MaxTime
}

package analysis

import (
	"math"

	"github.com/san-kum/chaosmap/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run two nearby trajectories, the second offset in theta1
// 2. Measure their divergence after every step
// 3. λ ≈ (1/t) * Σ ln(|δx(t)/δx(0)|), renormalizing once the pair separates
func LyapunovExponent(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) float64 {
	if perturbation <= 0 || dt <= 0 || duration <= 0 {
		return 0
	}

	x := x0
	xp := x0
	xp.Theta1 += perturbation
	d0 := perturbation

	sumLog := 0.0
	steps := 0

	for t := 0.0; t < duration; t += dt {
		x = integ.Step(sys, x, dt)
		xp = integ.Step(sys, xp, dt)
		steps++

		if !x.IsValid() || !xp.IsValid() {
			return math.NaN()
		}

		sep := x.Distance(xp)
		if sep == 0 {
			continue
		}

		// Renormalize every step so the pair stays in the linear regime
		sumLog += math.Log(sep / d0)
		scale := d0 / sep
		xp = dynamo.State{
			Theta1: x.Theta1 + (xp.Theta1-x.Theta1)*scale,
			Theta2: x.Theta2 + (xp.Theta2-x.Theta2)*scale,
			Omega1: x.Omega1 + (xp.Omega1-x.Omega1)*scale,
			Omega2: x.Omega2 + (xp.Omega2-x.Omega2)*scale,
		}
	}

	if steps == 0 {
		return 0
	}
	return sumLog / (float64(steps) * dt)
}

package dynamo

import "math"

// State is the dynamical state of a double pendulum. Angles are in
// radians measured from the downward vertical and are never wrapped.
type State struct {
	Theta1, Theta2 float64
	Omega1, Omega2 float64
}

// Derivatives is the time derivative of a State.
type Derivatives struct {
	DTheta1, DTheta2 float64
	DOmega1, DOmega2 float64
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	return isFinite(s.Theta1) && isFinite(s.Theta2) &&
		isFinite(s.Omega1) && isFinite(s.Omega2)
}

// Advance returns s + h*d.
func (s State) Advance(d Derivatives, h float64) State {
	return State{
		Theta1: s.Theta1 + d.DTheta1*h,
		Theta2: s.Theta2 + d.DTheta2*h,
		Omega1: s.Omega1 + d.DOmega1*h,
		Omega2: s.Omega2 + d.DOmega2*h,
	}
}

// Reversed returns the state with both angular velocities negated.
func (s State) Reversed() State {
	return State{Theta1: s.Theta1, Theta2: s.Theta2, Omega1: -s.Omega1, Omega2: -s.Omega2}
}

// Distance is the Euclidean distance between two states in phase space.
func (s State) Distance(o State) float64 {
	d1 := s.Theta1 - o.Theta1
	d2 := s.Theta2 - o.Theta2
	d3 := s.Omega1 - o.Omega1
	d4 := s.Omega2 - o.Omega2
	return math.Sqrt(d1*d1 + d2*d2 + d3*d3 + d4*d4)
}

// Add returns d + o.
func (d Derivatives) Add(o Derivatives) Derivatives {
	return Derivatives{
		DTheta1: d.DTheta1 + o.DTheta1,
		DTheta2: d.DTheta2 + o.DTheta2,
		DOmega1: d.DOmega1 + o.DOmega1,
		DOmega2: d.DOmega2 + o.DOmega2,
	}
}

// Scale returns d * factor.
func (d Derivatives) Scale(factor float64) Derivatives {
	return Derivatives{
		DTheta1: d.DTheta1 * factor,
		DTheta2: d.DTheta2 * factor,
		DOmega1: d.DOmega1 * factor,
		DOmega2: d.DOmega2 * factor,
	}
}

// System computes the time derivative of a State.
type System interface {
	Derive(x State) Derivatives
}

// Hamiltonian reports the total mechanical energy of a State.
type Hamiltonian interface {
	Energy(x State) float64
}

// Integrator advances a State by one fixed step dt.
type Integrator interface {
	Step(sys System, x State, dt float64) State
}

// Configurable exposes scalar parameters by name.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isInf(v float64) bool {
	return math.IsInf(v, 0)
}

package integrators

import "github.com/san-kum/chaosmap/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. It keeps no
// state between steps, so a single value may be shared across
// goroutines.
type RK4 struct{}

func NewRK4() RK4 {
	return RK4{}
}

func (RK4) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	half := dt * 0.5

	k1 := sys.Derive(x)
	k2 := sys.Derive(x.Advance(k1, half))
	k3 := sys.Derive(x.Advance(k2, half))
	k4 := sys.Derive(x.Advance(k3, dt))

	dt6 := dt / 6.0
	return dynamo.State{
		Theta1: x.Theta1 + dt6*(k1.DTheta1+2*k2.DTheta1+2*k3.DTheta1+k4.DTheta1),
		Theta2: x.Theta2 + dt6*(k1.DTheta2+2*k2.DTheta2+2*k3.DTheta2+k4.DTheta2),
		Omega1: x.Omega1 + dt6*(k1.DOmega1+2*k2.DOmega1+2*k3.DOmega1+k4.DOmega1),
		Omega2: x.Omega2 + dt6*(k1.DOmega2+2*k2.DOmega2+2*k3.DOmega2+k4.DOmega2),
	}
}

// Package dynamo provides the core value types shared by the chaos map
// pipeline.
//
// The package defines the state of a double pendulum and the interfaces
// that connect the physics model to a numerical integrator:
//
//   - [State]: two angles and two angular velocities
//   - [Derivatives]: time derivative of a [State]
//   - [System]: anything that can compute [Derivatives] for a [State]
//   - [Integrator]: fixed-step numerical integrator
//
// # Example
//
//	dp := physics.NewDoublePendulum()
//	integ := integrators.NewRK4()
//	x := dynamo.State{Theta1: 1.2, Theta2: -0.4}
//	for i := 0; i < 100; i++ {
//	    x = integ.Step(dp, x, 0.01)
//	}
//
// # Thread Safety
//
// State and Derivatives are plain values and may be copied freely. A
// System is read-only during integration, so one instance can be shared
// by any number of goroutines as long as nobody mutates its parameters.
package dynamo

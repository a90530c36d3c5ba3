// Package physics provides the double pendulum model.
//
// [DoublePendulum] implements [dynamo.System] with the coupled equations
// of motion for two point masses on massless rigid arms. It also
// implements [dynamo.Hamiltonian] for energy monitoring and
// [dynamo.Configurable] for runtime parameter adjustment.
//
// # Energy Conservation
//
// Use [dynamo.Hamiltonian] to monitor energy drift:
//
//	dp := physics.NewDoublePendulum()
//	e0 := dp.Energy(x0)
//	x := integ.Step(dp, x0, 0.01)
//	drift := math.Abs(dp.Energy(x)-e0) / math.Abs(e0)
package physics

// Package dynamo provides core primitives for integrating ordinary
// differential equations.
//
// The package defines the interfaces shared by models and solvers:
//
//   - [State]: vector representing system state
//   - [System]: autonomous or time-dependent ODE system (dX/dt = f(X, t))
//   - [JacobianSystem]: a System that can supply df/dX analytically
//   - [Stepper]: fixed-step numerical integrator
//   - [AdaptiveStepper]: embedded-error integrator driven with step control
//
// # Example
//
//	net, _ := kinetics.NewNetwork(r1, r2)
//	step := integrators.NewRK45(1e-6, 1e-9)
//	x1, errNorm := step.Attempt(net, x0, 0, 0.01)
//
// # Thread Safety
//
// Steppers keep scratch buffers and are NOT safe for concurrent use.
// Build one stepper per integration run.
package dynamo

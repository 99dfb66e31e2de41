package integrators

import "github.com/san-kum/kinsim/internal/dynamo"

// Euler is the explicit first-order method. It matches the fixed-step
// scheme classic kinetics worksheets use and is mostly useful as a
// reference for the higher-order steppers.
type Euler struct {
	dx dynamo.State
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	if len(e.dx) != len(x) {
		e.dx = make(dynamo.State, len(x))
	}
	dynamo.Derive(sys, e.dx, x, t)

	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*e.dx[i]
	}
	return result
}

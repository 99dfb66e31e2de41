package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RMSNorm returns the root-mean-square of s/w elementwise, the error norm
// used by the adaptive steppers.
func RMSNorm(s, w State) float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for i, v := range s {
		r := v / w[i]
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(s)))
}

// System is an ODE right-hand side.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// InPlaceSystem writes the derivative into dst instead of allocating.
// Steppers prefer it when available.
type InPlaceSystem interface {
	System
	DeriveInto(dst, x State, t float64)
}

// JacobianSystem supplies df/dx. jac is StateDim x StateDim and is
// overwritten.
type JacobianSystem interface {
	System
	Jacobian(x State, t float64, jac [][]float64)
}

// Stepper advances x by one fixed step of size dt.
type Stepper interface {
	Step(sys System, x State, t, dt float64) State
}

// AdaptiveStepper attempts one step of size h and reports the scaled
// error norm of the embedded estimate. errNorm <= 1 means accept.
// NextStep proposes the following step size from that norm.
type AdaptiveStepper interface {
	Attempt(sys System, x State, t, h float64) (next State, errNorm float64, err error)
	NextStep(h, errNorm float64) float64
	Order() int
}

// Derive evaluates sys into dst, using DeriveInto when available.
func Derive(sys System, dst, x State, t float64) {
	if ip, ok := sys.(InPlaceSystem); ok {
		ip.DeriveInto(dst, x, t)
		return
	}
	copy(dst, sys.Derive(x, t))
}

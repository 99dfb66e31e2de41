package integrators

import "math"

const (
	DefaultRelTol = 1e-6
	DefaultAbsTol = 1e-9
)

// Tolerance is the mixed error target of the adaptive steppers: a
// component passes when |err_i| <= Abs + Rel*max(|x_i|, |x_i'|).
type Tolerance struct {
	Rel float64
	Abs float64
}

func DefaultTolerance() Tolerance {
	return Tolerance{Rel: DefaultRelTol, Abs: DefaultAbsTol}
}

func (t Tolerance) withDefaults() Tolerance {
	if t.Rel <= 0 {
		t.Rel = DefaultRelTol
	}
	if t.Abs <= 0 {
		t.Abs = DefaultAbsTol
	}
	return t
}

func (t Tolerance) weights(dst, x, xNew []float64) {
	for i := range dst {
		dst[i] = t.Abs + t.Rel*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
	}
}

package integrators

import (
	"math"

	"github.com/san-kum/kinsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the Dormand-Prince 5(4) embedded pair with mixed
// absolute/relative error control.
type RK45 struct {
	tol      Tolerance
	safety   float64
	minScale float64
	maxScale float64

	k          [7]dynamo.State
	stage, err dynamo.State
	weight     dynamo.State
}

func NewRK45(tol Tolerance) *RK45 {
	return &RK45{
		tol:      tol.withDefaults(),
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) ensureScratch(n int) {
	if len(r.stage) == n && r.k[0] != nil {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.stage = make(dynamo.State, n)
	r.err = make(dynamo.State, n)
	r.weight = make(dynamo.State, n)
}

func (r *RK45) Order() int { return 4 }

// Step takes one step of size dt and ignores the error estimate.
func (r *RK45) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	next, _, _ := r.Attempt(sys, x, t, dt)
	return next
}

func (r *RK45) Attempt(sys dynamo.System, x dynamo.State, t, h float64) (dynamo.State, float64, error) {
	n := len(x)
	r.ensureScratch(n)
	k1, k2, k3, k4, k5, k6, k7 := r.k[0], r.k[1], r.k[2], r.k[3], r.k[4], r.k[5], r.k[6]

	dynamo.Derive(sys, k1, x, t)

	for i := 0; i < n; i++ {
		r.stage[i] = x[i] + h*b21*k1[i]
	}
	dynamo.Derive(sys, k2, r.stage, t+a2*h)

	for i := 0; i < n; i++ {
		r.stage[i] = x[i] + h*(b31*k1[i]+b32*k2[i])
	}
	dynamo.Derive(sys, k3, r.stage, t+a3*h)

	for i := 0; i < n; i++ {
		r.stage[i] = x[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	dynamo.Derive(sys, k4, r.stage, t+a4*h)

	for i := 0; i < n; i++ {
		r.stage[i] = x[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	dynamo.Derive(sys, k5, r.stage, t+a5*h)

	for i := 0; i < n; i++ {
		r.stage[i] = x[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	dynamo.Derive(sys, k6, r.stage, t+h)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	dynamo.Derive(sys, k7, xNew, t+h)

	for i := 0; i < n; i++ {
		r.err[i] = h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
	}
	r.tol.weights(r.weight, x, xNew)

	return xNew, dynamo.RMSNorm(r.err, r.weight), nil
}

func (r *RK45) NextStep(h, errNorm float64) float64 {
	return nextStep(h, errNorm, r.Order(), r.safety, r.minScale, r.maxScale)
}

// nextStep is the standard controller: shrink with exponent 1/q on
// rejection, grow with 1/(q+1) on acceptance, clamped to [minScale,
// maxScale]. A NaN norm shrinks as hard as allowed.
func nextStep(h, errNorm float64, q int, safety, minScale, maxScale float64) float64 {
	if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
		return h * minScale
	}
	if errNorm == 0 {
		return h * maxScale
	}

	var scale float64
	if errNorm > 1 {
		scale = safety * math.Pow(errNorm, -1.0/float64(q))
	} else {
		scale = safety * math.Pow(errNorm, -1.0/float64(q+1))
	}
	scale = math.Max(minScale, math.Min(maxScale, scale))
	return h * scale
}

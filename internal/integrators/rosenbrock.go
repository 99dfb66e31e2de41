package integrators

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/kinsim/internal/dynamo"
)

// Rosenbrock 2(3) coefficients (Shampine & Reichelt, the ode23s scheme).
var (
	rosD   = 1.0 / (2.0 + math.Sqrt2)
	rosE32 = 6.0 + math.Sqrt2
)

// Rosenbrock23 is a linearly implicit, L-stable 2(3) pair for stiff
// systems. Each attempt costs one Jacobian, one LU factorization and three
// right-hand-side evaluations. Systems implementing dynamo.JacobianSystem
// supply df/dx; others fall back to forward differences. The time
// derivative df/dt is taken as zero.
type Rosenbrock23 struct {
	tol      Tolerance
	safety   float64
	minScale float64
	maxScale float64

	n          int
	jac        [][]float64
	w          *mat.Dense
	lu         mat.LU
	f0, f1, f2 dynamo.State
	k1, k2, k3 dynamo.State
	stage, rhs dynamo.State
	err        dynamo.State
	weight     dynamo.State
	fdBase     dynamo.State
}

func NewRosenbrock23(tol Tolerance) *Rosenbrock23 {
	return &Rosenbrock23{
		tol:      tol.withDefaults(),
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

func (r *Rosenbrock23) ensureScratch(n int) {
	if r.n == n && r.w != nil {
		return
	}
	r.n = n
	r.jac = make([][]float64, n)
	for i := range r.jac {
		r.jac[i] = make([]float64, n)
	}
	r.w = mat.NewDense(n, n, nil)
	for _, v := range []*dynamo.State{&r.f0, &r.f1, &r.f2, &r.k1, &r.k2, &r.k3, &r.stage, &r.rhs, &r.err, &r.weight, &r.fdBase} {
		*v = make(dynamo.State, n)
	}
}

func (r *Rosenbrock23) Order() int { return 2 }

func (r *Rosenbrock23) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	next, _, err := r.Attempt(sys, x, t, dt)
	if err != nil {
		return nanState(len(x))
	}
	return next
}

func (r *Rosenbrock23) Attempt(sys dynamo.System, x dynamo.State, t, h float64) (dynamo.State, float64, error) {
	n := len(x)
	if n == 0 {
		return dynamo.State{}, 0, nil
	}
	r.ensureScratch(n)

	dynamo.Derive(sys, r.f0, x, t)
	r.jacobian(sys, x, t)

	// W = I - h*d*J
	hd := h * rosD
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := -hd * r.jac[i][j]
			if i == j {
				v += 1
			}
			r.w.Set(i, j, v)
		}
	}
	r.lu.Factorize(r.w)

	// k1 = W \ F0
	if err := r.solve(r.k1, r.f0); err != nil {
		return nil, math.Inf(1), err
	}

	for i := 0; i < n; i++ {
		r.stage[i] = x[i] + 0.5*h*r.k1[i]
	}
	dynamo.Derive(sys, r.f1, r.stage, t+0.5*h)

	// k2 = W \ (F1 - k1) + k1
	for i := 0; i < n; i++ {
		r.rhs[i] = r.f1[i] - r.k1[i]
	}
	if err := r.solve(r.k2, r.rhs); err != nil {
		return nil, math.Inf(1), err
	}
	for i := 0; i < n; i++ {
		r.k2[i] += r.k1[i]
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + h*r.k2[i]
	}
	dynamo.Derive(sys, r.f2, xNew, t+h)

	// k3 = W \ (F2 - e32*(k2 - F1) - 2*(k1 - F0))
	for i := 0; i < n; i++ {
		r.rhs[i] = r.f2[i] - rosE32*(r.k2[i]-r.f1[i]) - 2*(r.k1[i]-r.f0[i])
	}
	if err := r.solve(r.k3, r.rhs); err != nil {
		return nil, math.Inf(1), err
	}

	for i := 0; i < n; i++ {
		r.err[i] = h / 6 * (r.k1[i] - 2*r.k2[i] + r.k3[i])
	}
	r.tol.weights(r.weight, x, xNew)

	return xNew, dynamo.RMSNorm(r.err, r.weight), nil
}

func (r *Rosenbrock23) NextStep(h, errNorm float64) float64 {
	return nextStep(h, errNorm, r.Order(), r.safety, r.minScale, r.maxScale)
}

func (r *Rosenbrock23) solve(dst, b dynamo.State) error {
	out := mat.NewVecDense(len(dst), dst)
	err := r.lu.SolveVecTo(out, false, mat.NewVecDense(len(b), b))
	if err == nil {
		return nil
	}
	// a finite condition number still yields a usable solution; an
	// infinite one means the factorization broke down and dst is unset
	var cond mat.Condition
	if errors.As(err, &cond) && !math.IsInf(float64(cond), 1) {
		return nil
	}
	return fmt.Errorf("%w: %v", dynamo.ErrSingular, err)
}

func (r *Rosenbrock23) jacobian(sys dynamo.System, x dynamo.State, t float64) {
	if js, ok := sys.(dynamo.JacobianSystem); ok {
		js.Jacobian(x, t, r.jac)
		return
	}

	// forward differences, one column per component
	copy(r.stage, x)
	for j := range x {
		h := math.Sqrt(2.2e-16) * math.Max(math.Abs(x[j]), 1)
		r.stage[j] = x[j] + h
		dynamo.Derive(sys, r.fdBase, r.stage, t)
		for i := range x {
			r.jac[i][j] = (r.fdBase[i] - r.f0[i]) / h
		}
		r.stage[j] = x[j]
	}
}

func nanState(n int) dynamo.State {
	s := make(dynamo.State, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

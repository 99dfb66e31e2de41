package sim

import (
	"math"
	"sort"

	"github.com/san-kum/kinsim/internal/dynamo"
	"github.com/san-kum/kinsim/internal/integrators"
	"github.com/san-kum/kinsim/internal/kinetics"
)

// Simulate integrates net from span[0] to span[1] and samples the state at
// resolution evenly spaced times, both ends included.
//
// Species missing from initial start at zero; names the network does not
// know are ignored, whatever their value. Invalid input yields a *kinetics.ConfigurationError
// before any work is done. A solver failure yields an *IntegrationError
// and no trajectory.
func Simulate(net *kinetics.Network, initial map[string]float64, span [2]float64, resolution int, opts ...Option) (*Trajectory, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := validate(net, initial, span, resolution, &o); err != nil {
		return nil, err
	}

	method := integrators.Canonical(o.method)
	stepper, err := integrators.New(method, integrators.Tolerance{Rel: o.rtol, Abs: o.atol})
	if err != nil {
		return nil, kinetics.Errorf("%v", err)
	}

	x := make(dynamo.State, net.StateDim())
	names := make([]string, 0, len(initial))
	for name := range initial {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		idx, ok := net.Index(name)
		if !ok {
			o.logger.Debug("ignoring initial value for unknown species", "species", name)
			continue
		}
		x[idx] = initial[name]
	}

	times := sampleTimes(span[0], span[1], resolution)
	traj := &Trajectory{
		Times:          times,
		Concentrations: make([][]float64, resolution),
		Species:        net.Species(),
		Stats:          Stats{Method: method},
	}
	traj.Concentrations[0] = x.Clone()

	if len(x) == 0 {
		for i := range traj.Concentrations {
			traj.Concentrations[i] = []float64{}
		}
		return traj, nil
	}

	sys := &counted{net: net}
	r := &run{
		sys:    sys,
		opts:   &o,
		method: method,
		traj:   traj,
	}

	if ad, ok := stepper.(dynamo.AdaptiveStepper); ok {
		err = r.adaptive(ad, x)
	} else {
		err = r.fixed(stepper, x)
	}
	if err != nil {
		o.logger.Debug("integration failed", "method", method, "error", err)
		return nil, err
	}

	traj.Stats.Evaluations = sys.rhs
	traj.Stats.JacobianEvals = sys.jac
	o.logger.Debug("integration finished",
		"method", method,
		"steps", traj.Stats.Steps,
		"rejected", traj.Stats.Rejected,
		"evaluations", traj.Stats.Evaluations)

	return traj, nil
}

func validate(net *kinetics.Network, initial map[string]float64, span [2]float64, resolution int, o *options) error {
	cfgErr := &kinetics.ConfigurationError{}

	if net == nil {
		cfgErr.Add("nil network")
	}
	if resolution < 2 {
		cfgErr.Add("resolution must be at least 2, got %d", resolution)
	}
	if !finite(span[0]) || !finite(span[1]) {
		cfgErr.Add("time span must be finite, got [%g, %g]", span[0], span[1])
	} else if span[1] <= span[0] {
		cfgErr.Add("time span end %g must be after start %g", span[1], span[0])
	}

	names := make([]string, 0, len(initial))
	for name := range initial {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if net != nil {
			if _, ok := net.Index(name); !ok {
				continue
			}
		}
		v := initial[name]
		if !finite(v) || v < 0 {
			cfgErr.Add("initial concentration of %s must be finite and non-negative, got %g", name, v)
		}
	}

	if !(o.rtol >= 0) || !(o.atol >= 0) || math.IsInf(o.rtol, 0) || math.IsInf(o.atol, 0) {
		cfgErr.Add("tolerances must be finite and non-negative, got rtol=%g atol=%g", o.rtol, o.atol)
	}
	if o.dt < 0 || math.IsNaN(o.dt) || math.IsInf(o.dt, 0) {
		cfgErr.Add("step must be positive, got %g", o.dt)
	}
	if o.initialStep < 0 || math.IsNaN(o.initialStep) {
		cfgErr.Add("initial step must be positive, got %g", o.initialStep)
	}
	if o.minStep < 0 || math.IsNaN(o.minStep) {
		cfgErr.Add("minimum step must be positive, got %g", o.minStep)
	}
	if o.maxSteps <= 0 {
		cfgErr.Add("max steps must be positive, got %d", o.maxSteps)
	}

	if cfgErr.HasIssues() {
		return cfgErr
	}
	return nil
}

// sampleTimes returns n evenly spaced points with the last exactly t1.
func sampleTimes(t0, t1 float64, n int) []float64 {
	times := make([]float64, n)
	dt := (t1 - t0) / float64(n-1)
	for i := range times {
		times[i] = t0 + float64(i)*dt
	}
	times[n-1] = t1
	return times
}

type run struct {
	sys    *counted
	opts   *options
	method string
	traj   *Trajectory
	steps  int
}

func (r *run) fail(t float64, err error) error {
	return &IntegrationError{Method: r.method, Step: r.steps, Time: t, Err: err}
}

func (r *run) fixed(st dynamo.Stepper, x dynamo.State) error {
	times := r.traj.Times
	dt := r.opts.dt
	if dt == 0 {
		dt = times[1] - times[0]
	}

	t := times[0]
	for i := 1; i < len(times); i++ {
		target := times[i]
		for t < target {
			if r.steps >= r.opts.maxSteps {
				return r.fail(t, dynamo.ErrMaxSteps)
			}
			h, last := clip(t, dt, target)

			next := st.Step(r.sys, x, t, h)
			r.steps++
			if !next.IsValid() {
				return r.fail(t, dynamo.ErrInvalidState)
			}

			x = next
			if last {
				t = target
			} else {
				t += h
			}
			r.traj.Stats.Steps++
		}
		r.traj.Concentrations[i] = x.Clone()
	}
	return nil
}

func (r *run) adaptive(st dynamo.AdaptiveStepper, x dynamo.State) error {
	times := r.traj.Times
	h := r.opts.initialStep
	if h == 0 {
		h = r.firstStep(x, times[0], times[1]-times[0])
	}

	t := times[0]
	for i := 1; i < len(times); i++ {
		target := times[i]
		for t < target {
			if r.steps >= r.opts.maxSteps {
				return r.fail(t, dynamo.ErrMaxSteps)
			}
			if h < r.minStep(t) || t+h == t {
				return r.fail(t, dynamo.ErrStepTooSmall)
			}
			hTry, last := clip(t, h, target)

			next, errNorm, err := st.Attempt(r.sys, x, t, hTry)
			r.steps++
			if err != nil {
				// a failed linear solve is treated like a rejected step
				r.opts.logger.Debug("step attempt failed", "t", t, "h", hTry, "error", err)
				errNorm = math.Inf(1)
			}

			if errNorm <= 1 && next.IsValid() {
				x = next
				if last {
					t = target
				} else {
					t += hTry
				}
				r.traj.Stats.Steps++
				proposed := st.NextStep(hTry, errNorm)
				if !last || proposed > h {
					h = proposed
				}
				continue
			}

			r.traj.Stats.Rejected++
			h = st.NextStep(hTry, errNorm)
		}
		if !x.IsValid() {
			return r.fail(t, dynamo.ErrInvalidState)
		}
		r.traj.Concentrations[i] = x.Clone()
	}
	return nil
}

// firstStep estimates a starting step from the scaled sizes of x and
// x' (Hairer, Norsett & Wanner, II.4), capped at the sample interval.
func (r *run) firstStep(x dynamo.State, t, spacing float64) float64 {
	n := len(x)
	f0 := make(dynamo.State, n)
	dynamo.Derive(r.sys, f0, x, t)

	w := make(dynamo.State, n)
	for i, v := range x {
		w[i] = r.opts.atol + r.opts.rtol*math.Abs(v)
		if w[i] == 0 {
			w[i] = integrators.DefaultAbsTol
		}
	}
	d0 := dynamo.RMSNorm(x, w)
	d1 := dynamo.RMSNorm(f0, w)

	h := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h = 0.01 * d0 / d1
	}
	if !finite(h) || h <= 0 {
		h = 1e-6
	}
	return math.Min(h, spacing)
}

func (r *run) minStep(t float64) float64 {
	if r.opts.minStep > 0 {
		return r.opts.minStep
	}
	scale := r.traj.Times[len(r.traj.Times)-1] - r.traj.Times[0]
	return 16 * epsilon * math.Max(math.Abs(t), scale)
}

const epsilon = 2.220446049250313e-16

// clip shortens h so that t+h does not overshoot target, and snaps to the
// target when the remainder would be a sliver.
func clip(t, h, target float64) (float64, bool) {
	remaining := target - t
	if h >= remaining || remaining-h <= 1e-10*h {
		return remaining, true
	}
	return h, false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// counted forwards to the network and counts evaluations for Stats.
type counted struct {
	net      *kinetics.Network
	rhs, jac int
}

func (c *counted) StateDim() int { return c.net.StateDim() }

func (c *counted) Derive(x dynamo.State, t float64) dynamo.State {
	c.rhs++
	return c.net.Derive(x, t)
}

func (c *counted) DeriveInto(dst, x dynamo.State, t float64) {
	c.rhs++
	c.net.DeriveInto(dst, x, t)
}

func (c *counted) Jacobian(x dynamo.State, t float64, jac [][]float64) {
	c.jac++
	c.net.Jacobian(x, t, jac)
}

var _ dynamo.JacobianSystem = (*counted)(nil)
var _ dynamo.InPlaceSystem = (*counted)(nil)

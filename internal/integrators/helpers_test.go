package integrators

import "github.com/san-kum/kinsim/internal/dynamo"

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

type decay struct{ k float64 }

func (d *decay) StateDim() int { return 1 }

func (d *decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-d.k * x[0]}
}

// stiffPair is the Robertson-like two-rate problem y0' = -k*y0,
// y1' = k*y0 - y1 with k large.
type stiffPair struct {
	k        float64
	jacCalls int
}

func (s *stiffPair) StateDim() int { return 2 }

func (s *stiffPair) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-s.k * x[0], s.k*x[0] - x[1]}
}

type stiffPairJac struct{ stiffPair }

func (s *stiffPairJac) Jacobian(x dynamo.State, t float64, jac [][]float64) {
	s.jacCalls++
	jac[0][0], jac[0][1] = -s.k, 0
	jac[1][0], jac[1][1] = s.k, -1
}

// integrate drives an adaptive stepper from t0 to t1 with the shared
// accept/reject loop and returns the final state plus step counts.
func integrate(st dynamo.AdaptiveStepper, sys dynamo.System, x dynamo.State, t0, t1, h float64) (dynamo.State, int, int) {
	t := t0
	accepted, rejected := 0, 0
	for t < t1 && accepted+rejected < 1_000_000 {
		if t+h > t1 {
			h = t1 - t
		}
		next, errNorm, err := st.Attempt(sys, x, t, h)
		if err != nil {
			return nil, accepted, rejected
		}
		if errNorm <= 1 {
			x = next
			t += h
			accepted++
		} else {
			rejected++
		}
		h = st.NextStep(h, errNorm)
	}
	return x, accepted, rejected
}

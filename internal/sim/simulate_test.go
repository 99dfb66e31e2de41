package sim

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/kinsim/internal/dynamo"
	"github.com/san-kum/kinsim/internal/kinetics"
)

func mustNetwork(t *testing.T, reactions ...*kinetics.Reaction) *kinetics.Network {
	t.Helper()
	net, err := kinetics.NewNetwork(reactions...)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	return net
}

func mustReaction(t *testing.T, reactants, products map[string]int, k float64, opts ...kinetics.ReactionOption) *kinetics.Reaction {
	t.Helper()
	r, err := kinetics.NewReaction(reactants, products, k, opts...)
	if err != nil {
		t.Fatalf("NewReaction: %v", err)
	}
	return r
}

func decayNetwork(t *testing.T) *kinetics.Network {
	return mustNetwork(t, mustReaction(t, map[string]int{"A": 1}, map[string]int{"B": 1}, 1))
}

func TestSimulate_Decay(t *testing.T) {
	for _, method := range []string{"rk45", "rosenbrock23", "rk4"} {
		t.Run(method, func(t *testing.T) {
			opts := []Option{WithMethod(method), WithTolerance(1e-8, 1e-10)}
			if method == "rk4" {
				opts = append(opts, WithStep(0.01))
			}

			traj, err := Simulate(decayNetwork(t), map[string]float64{"A": 1}, [2]float64{0, 5}, 50, opts...)
			if err != nil {
				t.Fatalf("Simulate: %v", err)
			}
			if traj.Len() != 50 {
				t.Fatalf("expected 50 samples, got %d", traj.Len())
			}
			if traj.Times[0] != 0 || traj.Times[49] != 5 {
				t.Errorf("times span [%v, %v], want [0, 5]", traj.Times[0], traj.Times[49])
			}

			a, _ := traj.Series("A")
			b, _ := traj.Series("B")
			for i := range traj.Times {
				if i > 0 {
					if a[i] > a[i-1] {
						t.Errorf("A increased at t=%v: %v -> %v", traj.Times[i], a[i-1], a[i])
					}
					if b[i] < b[i-1] {
						t.Errorf("B decreased at t=%v: %v -> %v", traj.Times[i], b[i-1], b[i])
					}
				}
				if math.Abs(a[i]+b[i]-1) > 1e-6 {
					t.Errorf("A+B = %v at t=%v", a[i]+b[i], traj.Times[i])
				}
				if want := math.Exp(-traj.Times[i]); math.Abs(a[i]-want) > 1e-5 {
					t.Errorf("A(%v) = %v, want %v", traj.Times[i], a[i], want)
				}
			}
		})
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	net := mustNetwork(t,
		mustReaction(t, map[string]int{"A": 1, "X": 1}, map[string]int{"X": 2}, 0.06),
		mustReaction(t, map[string]int{"X": 1, "Y": 1}, map[string]int{"Y": 2}, 0.6),
		mustReaction(t, map[string]int{"Y": 1}, map[string]int{"B": 1}, 0.06),
	)
	initial := map[string]float64{"A": 8, "X": 0.1, "Y": 0.05}

	first, err := Simulate(net, initial, [2]float64{0, 100}, 200)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	second, err := Simulate(net, initial, [2]float64{0, 100}, 200)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	for i := range first.Concentrations {
		for j := range first.Concentrations[i] {
			a, b := first.Concentrations[i][j], second.Concentrations[i][j]
			if math.Float64bits(a) != math.Float64bits(b) {
				t.Fatalf("sample %d species %s differs: %v vs %v", i, first.Species[j], a, b)
			}
		}
	}
	if first.Stats != second.Stats {
		t.Errorf("stats differ: %+v vs %+v", first.Stats, second.Stats)
	}
}

func TestSimulate_ZeroReactions(t *testing.T) {
	net := mustNetwork(t)

	traj, err := Simulate(net, map[string]float64{"A": 1}, [2]float64{0, 1}, 5)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if traj.Len() != 5 {
		t.Errorf("expected 5 samples, got %d", traj.Len())
	}
	if len(traj.Species) != 0 {
		t.Errorf("expected no species, got %v", traj.Species)
	}
	for i, row := range traj.Concentrations {
		if len(row) != 0 {
			t.Errorf("row %d = %v, want empty", i, row)
		}
	}
}

func TestSimulate_SampleTimes(t *testing.T) {
	traj, err := Simulate(decayNetwork(t), map[string]float64{"A": 1}, [2]float64{0.3, 2.1}, 7)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	for i := 1; i < traj.Len(); i++ {
		if traj.Times[i] <= traj.Times[i-1] {
			t.Errorf("times not increasing at %d: %v", i, traj.Times)
		}
	}
	if traj.Times[0] != 0.3 || traj.Times[6] != 2.1 {
		t.Errorf("endpoints = %v, %v", traj.Times[0], traj.Times[6])
	}
	if math.Abs(traj.Times[3]-1.2) > 1e-12 {
		t.Errorf("midpoint = %v, want 1.2", traj.Times[3])
	}
}

func TestSimulate_MissingAndUnknownSpecies(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	initial := map[string]float64{"A": 1, "Q": 5, "Ghost": -1, "Void": math.NaN()}
	traj, err := Simulate(decayNetwork(t), initial, [2]float64{0, 1}, 3, WithLogger(logger))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if b := traj.Concentrations[0][1]; b != 0 {
		t.Errorf("B(0) = %v, want 0", b)
	}
	if _, ok := traj.Series("Q"); ok {
		t.Error("unknown species Q should not appear in the trajectory")
	}
	for _, name := range []string{"Q", "Ghost", "Void"} {
		if !strings.Contains(buf.String(), "species="+name) {
			t.Errorf("expected debug log for %s, got %q", name, buf.String())
		}
	}
}

func TestSimulate_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		initial    map[string]float64
		span       [2]float64
		resolution int
		opts       []Option
	}{
		{"resolution 1", nil, [2]float64{0, 1}, 1, nil},
		{"reversed span", nil, [2]float64{1, 0}, 10, nil},
		{"empty span", nil, [2]float64{1, 1}, 10, nil},
		{"infinite span", nil, [2]float64{0, math.Inf(1)}, 10, nil},
		{"NaN span", nil, [2]float64{math.NaN(), 1}, 10, nil},
		{"negative initial", map[string]float64{"A": -1}, [2]float64{0, 1}, 10, nil},
		{"NaN initial", map[string]float64{"A": math.NaN()}, [2]float64{0, 1}, 10, nil},
		{"unknown method", nil, [2]float64{0, 1}, 10, []Option{WithMethod("leapfrog")}},
		{"negative tolerance", nil, [2]float64{0, 1}, 10, []Option{WithTolerance(-1, 0)}},
		{"negative step", nil, [2]float64{0, 1}, 10, []Option{WithStep(-0.1)}},
		{"zero max steps", nil, [2]float64{0, 1}, 10, []Option{WithMaxSteps(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traj, err := Simulate(decayNetwork(t), tt.initial, tt.span, tt.resolution, tt.opts...)
			if traj != nil {
				t.Error("expected no trajectory")
			}
			if !errors.Is(err, kinetics.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestSimulate_NilNetwork(t *testing.T) {
	if _, err := Simulate(nil, nil, [2]float64{0, 1}, 2); !errors.Is(err, kinetics.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestSimulate_BlowUpFails(t *testing.T) {
	// 2 A -> 3 A explodes in finite time t* = 1/(k*A0) = 1e-6
	net := mustNetwork(t, mustReaction(t, map[string]int{"A": 2}, map[string]int{"A": 3}, 1e6))

	traj, err := Simulate(net, map[string]float64{"A": 1}, [2]float64{0, 1}, 10)
	if traj != nil {
		t.Error("expected no trajectory on failure")
	}
	if !errors.Is(err, ErrIntegration) {
		t.Fatalf("expected ErrIntegration, got %v", err)
	}

	var ie *IntegrationError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IntegrationError, got %T", err)
	}
	if !errors.Is(err, dynamo.ErrStepTooSmall) && !errors.Is(err, dynamo.ErrMaxSteps) && !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("unexpected cause: %v", ie.Err)
	}
	if ie.Method != "rk45" {
		t.Errorf("Method = %q, want rk45", ie.Method)
	}
}

func TestSimulate_MaxSteps(t *testing.T) {
	_, err := Simulate(decayNetwork(t), map[string]float64{"A": 1}, [2]float64{0, 100}, 2,
		WithMethod("euler"), WithStep(0.01), WithMaxSteps(10))
	if !errors.Is(err, dynamo.ErrMaxSteps) {
		t.Fatalf("expected ErrMaxSteps, got %v", err)
	}
	var ie *IntegrationError
	if errors.As(err, &ie) && ie.Step != 10 {
		t.Errorf("Step = %d, want 10", ie.Step)
	}
}

func TestSimulate_FixedStepNonFinite(t *testing.T) {
	// explicit Euler far beyond its stability limit overflows to Inf
	net := mustNetwork(t, mustReaction(t, map[string]int{"A": 2}, map[string]int{"A": 3}, 1e6))

	_, err := Simulate(net, map[string]float64{"A": 1}, [2]float64{0, 1}, 2, WithMethod("euler"), WithStep(0.1))
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestSimulate_HeldSpecies(t *testing.T) {
	net := mustNetwork(t, mustReaction(t, map[string]int{"A": 1, "X": 1}, map[string]int{"X": 2}, 0.1))
	if err := net.Hold("A"); err != nil {
		t.Fatalf("Hold: %v", err)
	}

	traj, err := Simulate(net, map[string]float64{"A": 2, "X": 1}, [2]float64{0, 5}, 11)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	a, _ := traj.Series("A")
	x, _ := traj.Series("X")
	for i := range a {
		if a[i] != 2 {
			t.Errorf("held A changed to %v at t=%v", a[i], traj.Times[i])
		}
	}
	if want := math.Exp(0.2 * 5); math.Abs(x[10]-want) > 1e-4*want {
		t.Errorf("X(5) = %v, want %v", x[10], want)
	}
}

func TestSimulate_ReversibleEquilibrium(t *testing.T) {
	// A <=> B with k=2, kr=1 settles at B/A = 2
	net := mustNetwork(t, mustReaction(t, map[string]int{"A": 1}, map[string]int{"B": 1}, 2, kinetics.Reversible(1)))

	traj, err := Simulate(net, map[string]float64{"A": 3}, [2]float64{0, 20}, 5)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	final := traj.Final()
	if math.Abs(final["A"]-1) > 1e-5 || math.Abs(final["B"]-2) > 1e-5 {
		t.Errorf("equilibrium = %v, want A=1 B=2", final)
	}
}

func TestSimulate_Stats(t *testing.T) {
	traj, err := Simulate(decayNetwork(t), map[string]float64{"A": 1}, [2]float64{0, 5}, 10, WithMethod("ode23s"))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	s := traj.Stats
	if s.Method != "rosenbrock23" {
		t.Errorf("Method = %q, want rosenbrock23", s.Method)
	}
	if s.Steps < 9 {
		t.Errorf("Steps = %d, expected at least one per sample interval", s.Steps)
	}
	if s.Evaluations < 3*s.Steps {
		t.Errorf("Evaluations = %d for %d steps", s.Evaluations, s.Steps)
	}
	if s.JacobianEvals == 0 {
		t.Error("expected Jacobian evaluations")
	}
}

func TestSimulate_Concurrent(t *testing.T) {
	net := decayNetwork(t)
	want, err := Simulate(net, map[string]float64{"A": 1}, [2]float64{0, 5}, 20)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			got, err := Simulate(net, map[string]float64{"A": 1}, [2]float64{0, 5}, 20)
			if err == nil && got.Final()["A"] != want.Final()["A"] {
				err = errors.New("result differs from sequential run")
			}
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}
